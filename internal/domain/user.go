package domain

import "time"

// User is the directory record the identity service owns.
// PasswordHash never leaves the service; transport views strip it.
type User struct {
	ID            string
	Email         string
	FirstName     string
	LastName      string
	PasswordHash  string
	Role          string
	EmailVerified bool
	CreatedAt     time.Time
}
