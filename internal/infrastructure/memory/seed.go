package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"

	"github.com/acme/identity-service/internal/domain"
)

// Hasher is the minimal surface we need for seeding.
type Hasher interface {
	Hash(password string) (string, error)
}

// SeedUsers creates initial users for local development (in-memory only).
// Safe to call multiple times (duplicates ignored).
func SeedUsers(ctx context.Context, users *UserRepo, hasher Hasher) {
	type seedUser struct {
		Email string
		First string
		Last  string
		Role  string
		Pass  string
	}

	seeds := []seedUser{
		{Email: "admin@example.com", First: "Ada", Last: "Admin", Role: string(domain.RoleAdmin), Pass: "AdminPassword123!"},
		{Email: "user@example.com", First: "Uma", Last: "User", Role: string(domain.RoleUser), Pass: "UserPassword123!"},
	}

	for _, s := range seeds {
		hash, err := hasher.Hash(s.Pass)
		if err != nil {
			log.Printf("[seed] hash failed (%s): %v", s.Email, err)
			continue
		}

		u := domain.User{
			ID:            newID(),
			Email:         s.Email,
			FirstName:     s.First,
			LastName:      s.Last,
			PasswordHash:  hash,
			Role:          s.Role,
			EmailVerified: true,
		}

		if _, err := users.Create(ctx, u); err != nil {
			// ignore duplicates / restart
			continue
		}
	}

	log.Println("[seed] in-memory users seeded")
}

func newID() string {
	// 16 bytes => 32 hex chars; good enough for in-memory dev IDs
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
