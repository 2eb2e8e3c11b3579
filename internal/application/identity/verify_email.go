package identity

import (
	"context"
	"strings"

	"github.com/acme/identity-service/internal/domain"
)

// sendVerification issues a fresh one-time token and invokes the mailer
// hook. A newer token simply overwrites any unexpired predecessor in
// the store.
func (s *Service) sendVerification(ctx context.Context, u domain.User) error {
	token, err := newOpaqueToken(32)
	if err != nil {
		return domain.ErrRandomFailed(err)
	}

	if err := s.ott.Save(ctx, TokenVerifyEmail, token, u.ID, s.verifyEmailTTL); err != nil {
		return err
	}

	return s.mailer.SendVerificationEmail(ctx, u, s.verifyEmailBaseURL+token)
}

// VerifyEmailRequest re-issues the verification token and email.
// IMPORTANT: non-enumerating; if the user is not found, return nil.
// Idempotent from the caller's perspective.
func (s *Service) VerifyEmailRequest(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil
	}
	if u.EmailVerified {
		// Nothing to verify; still indistinguishable from the happy path.
		return nil
	}

	return s.sendVerification(ctx, u)
}

// VerifyEmailConfirm consumes the token, marks the user verified and
// establishes a session right away.
func (s *Service) VerifyEmailConfirm(ctx context.Context, token string) (SignInResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		// Missing token is a terminal local error; the store is not asked.
		return SignInResult{}, domain.ErrInvalidToken()
	}

	userID, err := s.ott.Consume(ctx, TokenVerifyEmail, token)
	if err != nil {
		return SignInResult{}, err
	}

	if err := s.users.SetEmailVerified(ctx, userID); err != nil {
		return SignInResult{}, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return SignInResult{}, err
	}

	toks, err := s.issueTokens(ctx, u.ID, u.Role)
	if err != nil {
		return SignInResult{}, err
	}

	return SignInResult{User: u, Tokens: toks}, nil
}
