package identity

import (
	"context"
	"strings"

	"github.com/acme/identity-service/internal/domain"
)

// PasswordResetRequest issues a one-time reset token and dispatches the
// reset email. IMPORTANT: non-enumerating; the caller always sees
// success, whether or not the account exists.
func (s *Service) PasswordResetRequest(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil
	}

	token, err := newOpaqueToken(32)
	if err != nil {
		return domain.ErrRandomFailed(err)
	}

	if err := s.ott.Save(ctx, TokenPasswordReset, token, u.ID, s.passwordResetTTL); err != nil {
		return err
	}

	url := s.passwordResetBaseURL + token
	if err := s.mailer.SendPasswordResetEmail(ctx, u, url); err != nil {
		// Token stays valid until expiry or use; the user can retry.
		s.audit("auth.password_reset_request", map[string]string{
			"user_id":    u.ID,
			"result":     "dispatch_failed",
			"error_code": domainCode(err),
		})
	}
	return nil
}

// PasswordResetValidate checks whether a reset token is still usable
// without consuming it (the reset form probes before rendering).
func (s *Service) PasswordResetValidate(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return domain.ErrInvalidToken()
	}
	_, err := s.ott.Peek(ctx, TokenPasswordReset, token)
	return err
}

// PasswordResetConfirm consumes the token and overwrites the credential.
// A missing token short-circuits locally; the store is never contacted.
func (s *Service) PasswordResetConfirm(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return domain.ErrInvalidToken()
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	userID, err := s.ott.Consume(ctx, TokenPasswordReset, token)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return domain.ErrHashFailed(err)
	}

	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	// Credential changed: every outstanding session dies with it.
	_ = s.sessions.RevokeAll(ctx, userID)
	return nil
}
