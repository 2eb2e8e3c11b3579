package identity

import (
	"context"
	"time"

	"github.com/acme/identity-service/internal/domain"
)

/*
UserDirectory
-------------
Persistence port for the user directory store.
Only describes WHAT the identity service needs, not HOW it's stored.
*/
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)

	// Updates needed by business flows
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
	SetEmailVerified(ctx context.Context, userID string) error
	SetRole(ctx context.Context, userID string, role string) error
	Delete(ctx context.Context, userID string) error

	// List returns up to limit users in creation order.
	List(ctx context.Context, limit int) ([]domain.User, error)
	CountByRole(ctx context.Context, role string) (int, error)
}

/*
PasswordHasher
--------------
Abstracts bcrypt / argon2.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenSigner
-----------
Issues and verifies access tokens (JWT).
Used by service + auth middleware.
*/
type TokenClaims struct {
	UserID string
	Role   string
	Exp    time.Time
}

type TokenSigner interface {
	SignAccessToken(userID string, role string, ttl time.Duration) (string, error)
	VerifyAccessToken(token string) (TokenClaims, error)
}

/*
SessionStore
------------
Refresh token / session management. Backed by Redis or memory.
*/
type SessionStore interface {
	CreateRefreshToken(ctx context.Context, userID string, ttl time.Duration) (token string, err error)
	RotateRefreshToken(ctx context.Context, oldToken string, ttl time.Duration) (newToken string, userID string, err error)
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, userID string) error
}

/*
OneTimeTokenStore
-----------------
Opaque one-time tokens for email verification and password reset.
Stored + consumed ONLY by the identity service; clients forward the
opaque value captured from the emailed URL.
*/
type OneTimeTokenKind string

const (
	TokenVerifyEmail   OneTimeTokenKind = "verify_email"
	TokenPasswordReset OneTimeTokenKind = "password_reset"
)

type OneTimeTokenStore interface {
	Save(ctx context.Context, kind OneTimeTokenKind, token string, userID string, ttl time.Duration) error
	Consume(ctx context.Context, kind OneTimeTokenKind, token string) (userID string, err error)
	Peek(ctx context.Context, kind OneTimeTokenKind, token string) (userID string, err error) // for validate endpoint
}

/*
Mailer
------
Notification dispatcher hook. Invoked synchronously, once per token
issuance, before the operation returns. Delivery is best-effort: a
mailer failure never rolls back the token it announces.
*/
type Mailer interface {
	SendVerificationEmail(ctx context.Context, user domain.User, url string) error
	SendPasswordResetEmail(ctx context.Context, user domain.User, url string) error
}
