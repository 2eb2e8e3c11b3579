package identity

import (
	"context"
	"strings"

	"github.com/acme/identity-service/internal/domain"
)

// Refresh rotates the refresh token and mints a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthTokens, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return AuthTokens{}, domain.ErrRefreshTokenInvalid()
	}

	newRT, userID, err := s.sessions.RotateRefreshToken(ctx, refreshToken, s.refreshTTL)
	if err != nil {
		return AuthTokens{}, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return AuthTokens{}, err
	}

	access, err := s.signer.SignAccessToken(u.ID, u.Role, s.accessTTL)
	if err != nil {
		return AuthTokens{}, domain.ErrTokenSignFailed(err)
	}

	return AuthTokens{
		AccessToken:  access,
		RefreshToken: newRT,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

// Logout revokes a single refresh token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}
	return s.sessions.RevokeRefreshToken(ctx, refreshToken)
}

// GetUserByID loads the user backing an authenticated request.
func (s *Service) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return s.users.GetByID(ctx, id)
}
