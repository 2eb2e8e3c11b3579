package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/acme/identity-service/internal/domain"
)

func TestJWTSigner_SignAndVerify_Success(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("secret", "identity-service")
	tok, err := s.SignAccessToken("u1", "USER", 2*time.Minute)
	if err != nil {
		t.Fatalf("sign err: %v", err)
	}
	if tok == "" {
		t.Fatalf("expected non-empty token")
	}

	claims, err := s.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("verify err: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != "USER" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Exp.IsZero() {
		t.Fatalf("expected exp to be set")
	}
}

func TestJWTSigner_Verify_Expired(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("secret", "identity-service")
	tok, err := s.SignAccessToken("u1", "USER", -1*time.Second) // already expired
	if err != nil {
		t.Fatalf("sign err: %v", err)
	}

	_, verr := s.VerifyAccessToken(tok)
	if !domain.Is(verr, "access_token_expired") {
		t.Fatalf("expected access_token_expired, got %v", verr)
	}
}

func TestJWTSigner_Verify_WrongSecret(t *testing.T) {
	t.Parallel()

	s1 := NewJWTSigner("secret1", "identity-service")
	s2 := NewJWTSigner("secret2", "identity-service")

	tok, err := s1.SignAccessToken("u1", "USER", time.Minute)
	if err != nil {
		t.Fatalf("sign err: %v", err)
	}

	_, verr := s2.VerifyAccessToken(tok)
	if !domain.Is(verr, "access_token_invalid") {
		t.Fatalf("expected access_token_invalid, got %v", verr)
	}
}

func TestJWTSigner_Verify_AlgConfusion_Rejected(t *testing.T) {
	t.Parallel()

	// Unsigned ("none" alg) token must be rejected.
	claims := jwt.MapClaims{
		"uid":  "u1",
		"role": "ADMIN",
		"exp":  time.Now().Add(time.Minute).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	unsigned, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	s := NewJWTSigner("secret", "identity-service")
	_, verr := s.VerifyAccessToken(unsigned)
	if !domain.Is(verr, "access_token_invalid") {
		t.Fatalf("expected access_token_invalid, got %v", verr)
	}
}

func TestJWTSigner_Verify_Garbage(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("secret", "identity-service")
	_, err := s.VerifyAccessToken("not.a.jwt")
	if !domain.Is(err, "access_token_invalid") {
		t.Fatalf("expected access_token_invalid, got %v", err)
	}
}
