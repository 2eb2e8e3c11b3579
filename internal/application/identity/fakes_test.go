package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/acme/identity-service/internal/domain"
)

// ---- user directory fake ----

type fakeUserRepo struct {
	mu    sync.Mutex
	byID  map[string]domain.User
	order []string

	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]domain.User{}}
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.User{}, f.getErr
	}
	for _, id := range f.order {
		if f.byID[id].Email == email {
			return f.byID[id], nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.User{}, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) Create(_ context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	for _, id := range f.order {
		if f.byID[id].Email == u.Email {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
	}
	f.byID[u.ID] = u
	f.order = append(f.order, u.ID)
	return u, nil
}

func (f *fakeUserRepo) UpdatePasswordHash(_ context.Context, userID, newHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.PasswordHash = newHash
	f.byID[userID] = u
	return nil
}

func (f *fakeUserRepo) SetEmailVerified(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.EmailVerified = true
	f.byID[userID] = u
	return nil
}

func (f *fakeUserRepo) SetRole(_ context.Context, userID, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.Role = role
	f.byID[userID] = u
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[userID]; !ok {
		return domain.ErrUserNotFound()
	}
	delete(f.byID, userID)
	for i, id := range f.order {
		if id == userID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, limit int) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.User, 0, limit)
	for _, id := range f.order {
		if len(out) == limit {
			break
		}
		out = append(out, f.byID[id])
	}
	return out, nil
}

func (f *fakeUserRepo) CountByRole(_ context.Context, role string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, u := range f.byID {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// ---- hasher fake (reversible, test only) ----

type fakeHasher struct{ hashErr error }

func (f fakeHasher) Hash(password string) (string, error) {
	if f.hashErr != nil {
		return "", f.hashErr
	}
	return "hashed:" + password, nil
}

func (f fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return fmt.Errorf("mismatch")
	}
	return nil
}

// ---- signer fake ----

type fakeSigner struct{ signErr error }

func (f fakeSigner) SignAccessToken(userID, role string, ttl time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return "at." + userID + "." + role, nil
}

func (f fakeSigner) VerifyAccessToken(token string) (TokenClaims, error) {
	return TokenClaims{}, fmt.Errorf("not implemented in fake")
}

// ---- session store fake ----

type fakeSessions struct {
	mu      sync.Mutex
	next    int
	byToken map[string]string // token -> userID
	revoked []string          // userIDs passed to RevokeAll
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byToken: map[string]string{}}
}

func (f *fakeSessions) CreateRefreshToken(_ context.Context, userID string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	t := fmt.Sprintf("rt-%d", f.next)
	f.byToken[t] = userID
	return t, nil
}

func (f *fakeSessions) RotateRefreshToken(_ context.Context, oldToken string, _ time.Duration) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.byToken[oldToken]
	if !ok {
		return "", "", domain.ErrRefreshTokenInvalid()
	}
	delete(f.byToken, oldToken)
	f.next++
	t := fmt.Sprintf("rt-%d", f.next)
	f.byToken[t] = uid
	return t, uid, nil
}

func (f *fakeSessions) RevokeRefreshToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byToken, token)
	return nil
}

func (f *fakeSessions) RevokeAll(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for t, uid := range f.byToken {
		if uid == userID {
			delete(f.byToken, t)
		}
	}
	f.revoked = append(f.revoked, userID)
	return nil
}

// ---- one-time token store fake ----

type fakeOTT struct {
	mu     sync.Mutex
	tokens map[string]string // kind|token -> userID
	latest map[string]string // kind|userID -> token
}

func newFakeOTT() *fakeOTT {
	return &fakeOTT{tokens: map[string]string{}, latest: map[string]string{}}
}

func (f *fakeOTT) key(kind OneTimeTokenKind, token string) string {
	return string(kind) + "|" + token
}

func (f *fakeOTT) Save(_ context.Context, kind OneTimeTokenKind, token, userID string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// A fresh token supersedes the previous one for the same user+kind.
	if prev, ok := f.latest[string(kind)+"|"+userID]; ok {
		delete(f.tokens, f.key(kind, prev))
	}
	f.tokens[f.key(kind, token)] = userID
	f.latest[string(kind)+"|"+userID] = token
	return nil
}

func (f *fakeOTT) Consume(_ context.Context, kind OneTimeTokenKind, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := f.key(kind, token)
	uid, ok := f.tokens[k]
	if !ok {
		return "", domain.ErrInvalidToken()
	}
	delete(f.tokens, k)
	return uid, nil
}

func (f *fakeOTT) Peek(_ context.Context, kind OneTimeTokenKind, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.tokens[f.key(kind, token)]
	if !ok {
		return "", domain.ErrInvalidToken()
	}
	return uid, nil
}

// lastFor returns the most recently saved token of a kind (tests grab
// the opaque value the "email" would carry).
func (f *fakeOTT) lastFor(kind OneTimeTokenKind, userID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest[string(kind)+"|"+userID]
}

// ---- mailer fake ----

type sentMail struct {
	Kind  string // "verify" | "reset"
	To    string
	URL   string
	First string
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	sendErr error
}

func (f *fakeMailer) SendVerificationEmail(_ context.Context, u domain.User, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMail{Kind: "verify", To: u.Email, URL: url, First: u.FirstName})
	return nil
}

func (f *fakeMailer) SendPasswordResetEmail(_ context.Context, u domain.User, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMail{Kind: "reset", To: u.Email, URL: url, First: u.FirstName})
	return nil
}

// ---- harness ----

type testEnv struct {
	svc      *Service
	users    *fakeUserRepo
	sessions *fakeSessions
	ott      *fakeOTT
	mailer   *fakeMailer
	audits   *[]string
}

func newTestEnv() testEnv {
	users := newFakeUserRepo()
	sessions := newFakeSessions()
	ott := newFakeOTT()
	mailer := &fakeMailer{}
	audits := &[]string{}

	svc := NewService(users, fakeHasher{}, fakeSigner{}, sessions, ott, mailer, Config{
		AccessTTL:            15 * time.Minute,
		RefreshTTL:           7 * 24 * time.Hour,
		VerifyEmailBaseURL:   "https://app.test/verify-email?token=",
		PasswordResetBaseURL: "https://app.test/reset-password?token=",
	}).WithAudit(func(action string, _ map[string]string) {
		*audits = append(*audits, action)
	})

	return testEnv{svc: svc, users: users, sessions: sessions, ott: ott, mailer: mailer, audits: audits}
}

// seedUser inserts a user directly, bypassing sign-up.
func (e testEnv) seedUser(t interface{ Fatalf(string, ...any) }, email, password, role string, verified bool) domain.User {
	u := domain.User{
		ID:            "u-" + email,
		Email:         email,
		FirstName:     "Test",
		LastName:      "User",
		PasswordHash:  "hashed:" + password,
		Role:          role,
		EmailVerified: verified,
		CreatedAt:     time.Now().UTC(),
	}
	created, err := e.users.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return created
}
