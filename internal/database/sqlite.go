// Package database opens the directory store and keeps its schema current.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	gdb "github.com/pressly/goose/v3/database"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Open opens the store with a bounded connection pool. Callers block on
// pool exhaustion; the pool never grows past maxOpenConns.
func Open(path string, maxOpenConns int) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", path, err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	return db, nil
}

// Ping checks store connectivity; it is the bootstrap probe.
func Ping(ctx context.Context, db *sql.DB) error {
	return db.PingContext(ctx)
}

// Sync applies all pending schema migrations. Running it against an
// already-current schema is a no-op.
func Sync(ctx context.Context, db *sql.DB) error {
	migrationFS, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("database: migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(gdb.DialectSQLite3, db, migrationFS)
	if err != nil {
		return fmt.Errorf("database: goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("database: apply migrations: %w", err)
	}
	return nil
}
