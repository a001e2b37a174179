package users

import "time"

// User is the local mirror of an identity provider account: the subset of
// attributes the applications query without a round trip to the provider.
type User struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	NationalID string    `json:"nationalId"`
	Email      string    `json:"email"`
	SubjectID  string    `json:"subjectId"`
	CreatedAt  time.Time `json:"createdAt"`
}
