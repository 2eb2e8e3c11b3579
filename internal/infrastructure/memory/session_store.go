package memory

import (
	"context"
	"sync"
	"time"

	"github.com/acme/identity-service/internal/domain"
)

type tokenEntry struct {
	userID    string
	expiresAt time.Time
}

type SessionStore struct {
	mu sync.RWMutex
	// refreshToken -> entry
	tokenToEntry map[string]tokenEntry
	// userID -> set(refreshToken)
	userTokens map[string]map[string]struct{}
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		tokenToEntry: make(map[string]tokenEntry),
		userTokens:   make(map[string]map[string]struct{}),
	}
}

func (s *SessionStore) CreateRefreshToken(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	tok, err := newOpaqueToken(32)
	if err != nil {
		return "", domain.ErrRandomFailed(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokenToEntry[tok] = tokenEntry{
		userID:    userID,
		expiresAt: time.Now().Add(ttl),
	}
	if s.userTokens[userID] == nil {
		s.userTokens[userID] = make(map[string]struct{})
	}
	s.userTokens[userID][tok] = struct{}{}
	return tok, nil
}

func (s *SessionStore) RotateRefreshToken(ctx context.Context, oldToken string, ttl time.Duration) (string, string, error) {
	s.mu.RLock()
	entry, ok := s.tokenToEntry[oldToken]
	s.mu.RUnlock()

	if !ok {
		return "", "", domain.ErrRefreshTokenInvalid()
	}
	if time.Now().After(entry.expiresAt) {
		_ = s.RevokeRefreshToken(ctx, oldToken)
		return "", "", domain.ErrRefreshTokenInvalid()
	}

	_ = s.RevokeRefreshToken(ctx, oldToken)

	newTok, err := s.CreateRefreshToken(ctx, entry.userID, ttl)
	if err != nil {
		return "", "", err
	}
	return newTok, entry.userID, nil
}

func (s *SessionStore) RevokeRefreshToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokenToEntry[token]
	if !ok {
		return nil // idempotent
	}
	delete(s.tokenToEntry, token)
	if set := s.userTokens[entry.userID]; set != nil {
		delete(set, token)
		if len(set) == 0 {
			delete(s.userTokens, entry.userID)
		}
	}
	return nil
}

func (s *SessionStore) RevokeAll(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for tok := range s.userTokens[userID] {
		delete(s.tokenToEntry, tok)
	}
	delete(s.userTokens, userID)
	return nil
}
