package postgres

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/acme/identity-service/internal/domain"
)

type SeederHasher interface {
	Hash(password string) (string, error)
}

type SeederRepo interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
}

// SeedUsers inserts the development accounts. Restart safe: duplicate
// emails are skipped.
func SeedUsers(ctx context.Context, repo SeederRepo, hasher SeederHasher) {
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
			ID:            uuid.NewString(),
			Email:         s.Email,
			FirstName:     s.First,
			LastName:      s.Last,
			PasswordHash:  hash,
			Role:          s.Role,
			EmailVerified: true,
		}

		if _, err := repo.Create(ctx, u); err != nil {
			// ignore duplicates (restart safe)
			continue
		}
	}

	log.Println("[seed] postgres users seeded")
}
