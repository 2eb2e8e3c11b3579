package identity

import (
	"context"
	"strings"

	"github.com/acme/identity-service/internal/domain"
)

// SignIn authenticates a user and issues tokens.
// IMPORTANT: must not leak whether the email exists (avoid user
// enumeration), but an unverified account with correct credentials
// fails with email_not_verified, never invalid_credentials, so the
// caller can offer a resend action.
func (s *Service) SignIn(ctx context.Context, email, password string) (SignInResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if email == "" || password == "" {
		return SignInResult{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Hide not-found behind invalid credentials
		return SignInResult{}, domain.ErrInvalidCredentials()
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return SignInResult{}, domain.ErrInvalidCredentials()
	}

	// requireEmailVerification: credentials checked first so this error
	// only ever reaches the account owner.
	if !u.EmailVerified {
		return SignInResult{}, domain.ErrEmailNotVerified()
	}

	toks, err := s.issueTokens(ctx, u.ID, u.Role)
	if err != nil {
		return SignInResult{}, err
	}

	return SignInResult{User: u, Tokens: toks}, nil
}
