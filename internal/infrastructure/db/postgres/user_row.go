package postgres

import "time"

type userRow struct {
	ID            string
	Email         string
	FirstName     string
	LastName      string
	PasswordHash  string
	Role          string
	EmailVerified bool
	CreatedAt     time.Time
}
