package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/acme/identity-service/internal/domain"
)

type SignUpInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// SignUp creates a pending account and dispatches the verification
// email before returning. The new account always starts as USER with
// emailVerified=false; no session is issued until verification.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (SignUpResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if in.Email == "" {
		return SignUpResult{}, domain.ErrMissingField("email")
	}
	if in.FirstName == "" {
		return SignUpResult{}, domain.ErrMissingField("firstName")
	}
	if in.LastName == "" {
		return SignUpResult{}, domain.ErrMissingField("lastName")
	}
	if err := validatePassword(in.Password); err != nil {
		return SignUpResult{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return SignUpResult{}, domain.ErrHashFailed(err)
	}

	u := domain.User{
		ID:            uuid.NewString(),
		Email:         in.Email,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		PasswordHash:  hash,
		Role:          string(domain.RoleUser),
		EmailVerified: false,
		CreatedAt:     time.Now().UTC(),
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return SignUpResult{}, err
	}

	// sendOnSignUp: issue the verification token right away. Dispatch is
	// best-effort; the account exists either way and resend is available.
	if err := s.sendVerification(ctx, created); err != nil {
		s.audit("auth.sign_up", map[string]string{
			"user_id":    created.ID,
			"result":     "verification_dispatch_failed",
			"error_code": domainCode(err),
		})
	}

	return SignUpResult{User: created}, nil
}
