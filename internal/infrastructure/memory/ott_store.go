package memory

import (
	"context"
	"sync"
	"time"

	"github.com/acme/identity-service/internal/application/identity"
	"github.com/acme/identity-service/internal/domain"
)

type ottEntry struct {
	userID    string
	expiresAt time.Time
}

type OneTimeTokenStore struct {
	mu sync.RWMutex
	// kind|token -> entry
	data map[string]ottEntry
	// kind|userID -> token (latest per user, resend supersedes)
	latest map[string]string
}

func NewOneTimeTokenStore() *OneTimeTokenStore {
	return &OneTimeTokenStore{
		data:   make(map[string]ottEntry),
		latest: make(map[string]string),
	}
}

func key(kind identity.OneTimeTokenKind, token string) string { return string(kind) + "|" + token }

func (s *OneTimeTokenStore) Save(ctx context.Context, kind identity.OneTimeTokenKind, token string, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lk := string(kind) + "|" + userID
	if prev, ok := s.latest[lk]; ok {
		delete(s.data, key(kind, prev))
	}
	s.data[key(kind, token)] = ottEntry{userID: userID, expiresAt: time.Now().Add(ttl)}
	s.latest[lk] = token
	return nil
}

func (s *OneTimeTokenStore) Consume(ctx context.Context, kind identity.OneTimeTokenKind, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(kind, token)
	e, ok := s.data[k]
	if !ok {
		return "", domain.ErrInvalidToken()
	}
	delete(s.data, k)
	if time.Now().After(e.expiresAt) {
		return "", domain.ErrInvalidToken()
	}
	return e.userID, nil
}

func (s *OneTimeTokenStore) Peek(ctx context.Context, kind identity.OneTimeTokenKind, token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key(kind, token)]
	if !ok || time.Now().After(e.expiresAt) {
		return "", domain.ErrInvalidToken()
	}
	return e.userID, nil
}
