package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/acme/identity-service/internal/application/identity"
	"github.com/acme/identity-service/internal/infrastructure/memory"
	"github.com/acme/identity-service/internal/transport/http/middleware"
)

// newTestService wires a Service over the in-memory adapters.
func newTestService(t *testing.T) (*identity.Service, *memory.Mailer, *memory.UserRepo) {
	t.Helper()

	users := memory.NewUserRepo()
	mailer := memory.NewMailer()

	svc := identity.NewService(
		users,
		plainHasher{},
		staticSigner{},
		memory.NewSessionStore(),
		memory.NewOneTimeTokenStore(),
		mailer,
		identity.Config{
			AccessTTL:            15 * time.Minute,
			RefreshTTL:           7 * 24 * time.Hour,
			VerifyEmailBaseURL:   "https://app.test/verify-email?token=",
			PasswordResetBaseURL: "https://app.test/reset-password?token=",
		},
	)
	return svc, mailer, users
}

// plainHasher keeps handler tests free of bcrypt cost.
type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "h:" + pw, nil }

func (plainHasher) Compare(hash, pw string) error {
	if hash != "h:"+pw {
		return errors.New("mismatch")
	}
	return nil
}

type staticSigner struct{}

func (staticSigner) SignAccessToken(userID, role string, ttl time.Duration) (string, error) {
	return "at:" + userID + ":" + role, nil
}

func (staticSigner) VerifyAccessToken(token string) (identity.TokenClaims, error) {
	return identity.TokenClaims{}, nil
}

// mustJSONBody marshals v to JSON and returns an io.Reader for request body.
func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

// mustReadJSON decodes JSON from r into out, unwrapping the {"data": ...}
// envelope when present.
func mustReadJSON(t *testing.T, r io.Reader, out any) {
	t.Helper()

	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	wrapped := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Data) > 0 {
		if err := json.Unmarshal(wrapped.Data, out); err != nil {
			t.Fatalf("decode wrapped.data failed; body=%s err=%v", string(raw), err)
		}
		return
	}

	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode json failed; body=%s", string(raw))
	}
}

// readCookie finds cookie by name from response headers.
func readCookie(res *http.Response, name string) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// withUserCtx injects user_id + role into request context.
func withUserCtx(req *http.Request, userID, role string) *http.Request {
	ctx := middleware.WithUser(req.Context(), userID, role)
	return req.WithContext(ctx)
}

// withURLParam injects chi URL param (e.g. /users/{id}) into request context.
func withURLParam(req *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)

	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

// errCodeFromBody pulls error.code out of the error envelope.
func errCodeFromBody(t *testing.T, r io.Reader) string {
	t.Helper()

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode error envelope failed; body=%s", string(raw))
	}
	return body.Error.Code
}
