package identity

import (
	"context"
	"testing"

	"github.com/acme/identity-service/internal/domain"
)

func TestRefreshRotatesToken(t *testing.T) {
	env := newTestEnv()
	env.seedUser(t, "jane@example.com", "password123", string(domain.RoleUser), true)

	res, err := env.svc.SignIn(context.Background(), "jane@example.com", "password123")
	requireNoErr(t, err)

	toks, err := env.svc.Refresh(context.Background(), res.Tokens.RefreshToken)
	requireNoErr(t, err)
	if toks.RefreshToken == res.Tokens.RefreshToken {
		t.Fatalf("refresh token must rotate")
	}
	if toks.AccessToken == "" {
		t.Fatalf("expected new access token")
	}

	// Old token is dead after rotation.
	_, err = env.svc.Refresh(context.Background(), res.Tokens.RefreshToken)
	requireErrCode(t, err, "refresh_token_invalid")
}

func TestRefreshEmptyToken(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.Refresh(context.Background(), " ")
	requireErrCode(t, err, "refresh_token_invalid")
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv()
	env.seedUser(t, "jane@example.com", "password123", string(domain.RoleUser), true)

	res, err := env.svc.SignIn(context.Background(), "jane@example.com", "password123")
	requireNoErr(t, err)

	requireNoErr(t, env.svc.Logout(context.Background(), res.Tokens.RefreshToken))

	_, err = env.svc.Refresh(context.Background(), res.Tokens.RefreshToken)
	requireErrCode(t, err, "refresh_token_invalid")
}

func TestLogoutWithoutTokenIsNoop(t *testing.T) {
	env := newTestEnv()
	requireNoErr(t, env.svc.Logout(context.Background(), ""))
}
