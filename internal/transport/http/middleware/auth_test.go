package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/acme/identity-service/internal/application/identity"
	"github.com/acme/identity-service/internal/domain"
)

// ---- fakes ----

type fakeVerifier struct {
	claims identity.TokenClaims
	err    error
	calls  int
	gotTok string
}

func (f *fakeVerifier) VerifyAccessToken(token string) (identity.TokenClaims, error) {
	f.calls++
	f.gotTok = token
	return f.claims, f.err
}

type writeErrRecorder struct {
	calls int
	last  error
}

func (w *writeErrRecorder) fn(_ http.ResponseWriter, _ *http.Request, err error) {
	w.calls++
	w.last = err
}

// next handler checks context injection
type nextRecorder struct {
	calls   int
	gotUID  string
	gotRole string
}

func (n *nextRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.calls++
	uid, _ := UserIDFromContext(r.Context())
	role, _ := RoleFromContext(r.Context())
	n.gotUID = uid
	n.gotRole = role
	w.WriteHeader(http.StatusOK)
}

func runAuthMW(t *testing.T, verifier TokenVerifier, req *http.Request) (*httptest.ResponseRecorder, *writeErrRecorder, *nextRecorder) {
	t.Helper()

	rr := httptest.NewRecorder()
	we := &writeErrRecorder{}
	nx := &nextRecorder{}

	h := Auth(verifier, we.fn)(nx)
	h.ServeHTTP(rr, req)

	return rr, we, nx
}

// ---- tests ----

func TestAuthMissingAuthorizationHeader(t *testing.T) {
	v := &fakeVerifier{}
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	_, we, nx := runAuthMW(t, v, req)

	if nx.calls != 0 {
		t.Fatalf("expected next not called")
	}
	if we.calls != 1 {
		t.Fatalf("expected writeErr called once, got %d", we.calls)
	}
	if !domain.Is(we.last, "token_missing") {
		t.Fatalf("expected token_missing, got %v", we.last)
	}
	if v.calls != 0 {
		t.Fatalf("verifier should not be called when header missing")
	}
}

func TestAuthBadAuthorizationScheme(t *testing.T) {
	v := &fakeVerifier{}
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Basic abc")

	_, we, nx := runAuthMW(t, v, req)

	if nx.calls != 0 {
		t.Fatalf("expected next not called")
	}
	if !domain.Is(we.last, "access_token_invalid") {
		t.Fatalf("expected access_token_invalid, got %v", we.last)
	}
}

func TestAuthEmptyBearerToken(t *testing.T) {
	v := &fakeVerifier{}
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer ")

	_, we, nx := runAuthMW(t, v, req)

	if nx.calls != 0 {
		t.Fatalf("expected next not called")
	}
	if !domain.Is(we.last, "access_token_invalid") {
		t.Fatalf("expected access_token_invalid, got %v", we.last)
	}
}

func TestAuthVerifierError(t *testing.T) {
	v := &fakeVerifier{err: domain.ErrAccessTokenExpired()}
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer tok")

	_, we, nx := runAuthMW(t, v, req)

	if nx.calls != 0 {
		t.Fatalf("expected next not called")
	}
	if !domain.Is(we.last, "access_token_expired") {
		t.Fatalf("expected access_token_expired, got %v", we.last)
	}
	if v.gotTok != "tok" {
		t.Fatalf("verifier got token %q", v.gotTok)
	}
}

func TestAuthSuccessInjectsContext(t *testing.T) {
	v := &fakeVerifier{claims: identity.TokenClaims{UserID: "u1", Role: "ADMIN"}}
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer good")

	rr, we, nx := runAuthMW(t, v, req)

	if we.calls != 0 {
		t.Fatalf("unexpected writeErr: %v", we.last)
	}
	if nx.calls != 1 {
		t.Fatalf("expected next called once, got %d", nx.calls)
	}
	if nx.gotUID != "u1" || nx.gotRole != "ADMIN" {
		t.Fatalf("context not injected: uid=%q role=%q", nx.gotUID, nx.gotRole)
	}
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}
