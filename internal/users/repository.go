// Package users persists the local directory mirror of provider identities.
package users

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository defines persistence operations for the directory mirror.
// Lookups return (nil, nil) when no record matches.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByNationalID(ctx context.Context, nationalID string) (*User, error)
	FindBySubjectID(ctx context.Context, subjectID string) (*User, error)
}

// SQLRepository implements Repository over a relational store.
type SQLRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLRepository)(nil)

// NewSQLRepository creates a repository over the given database handle.
func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, u *User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, national_id, email, subject_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		u.Name, u.NationalID, u.Email, u.SubjectID, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("users: create: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("users: create: %w", err)
	}
	u.ID = id
	return nil
}

func (r *SQLRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, `WHERE email = ?`, email)
}

func (r *SQLRepository) FindByNationalID(ctx context.Context, nationalID string) (*User, error) {
	return r.findOne(ctx, `WHERE national_id = ?`, nationalID)
}

func (r *SQLRepository) FindBySubjectID(ctx context.Context, subjectID string) (*User, error) {
	return r.findOne(ctx, `WHERE subject_id = ?`, subjectID)
}

func (r *SQLRepository) findOne(ctx context.Context, where string, arg any) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, national_id, email, subject_id, created_at FROM users `+where+` LIMIT 1`, arg)
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.NationalID, &u.Email, &u.SubjectID, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("users: find: %w", err)
	}
	return &u, nil
}
