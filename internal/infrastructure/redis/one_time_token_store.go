package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/acme/identity-service/internal/application/identity"
	"github.com/acme/identity-service/internal/domain"
)

// OneTimeTokenStore keeps the opaque verification/reset tokens:
// - ott:<kind>:<token>  -> userID, with TTL
// - ottcur:<kind>:<uid> -> token, with TTL (latest token per user)
// Saving supersedes the previous token for the same user+kind, so a
// resend invalidates the older emailed link.
type OneTimeTokenStore struct {
	rdb       *goredis.Client
	prefix    string // "ott:"
	curPrefix string // "ottcur:"
}

func NewOneTimeTokenStore(c *Client) *OneTimeTokenStore {
	var rdb *goredis.Client
	if c != nil {
		rdb = c.rdb
	}
	return &OneTimeTokenStore{
		rdb:       rdb,
		prefix:    "ott:",
		curPrefix: "ottcur:",
	}
}

func (s *OneTimeTokenStore) Save(ctx context.Context, kind identity.OneTimeTokenKind, token string, userID string, ttl time.Duration) error {
	token = strings.TrimSpace(token)
	userID = strings.TrimSpace(userID)
	if token == "" {
		return domain.ErrMissingField("token")
	}
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if ttl <= 0 {
		return domain.ErrMissingField("ttl")
	}
	if s.rdb == nil {
		return errors.New("redis one-time-token store not configured")
	}

	// Atomic: drop the user's previous token, store the new pair.
	const lua = `
local prev = redis.call("GET", KEYS[2])
if prev then
  redis.call("DEL", ARGV[3] .. prev)
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
redis.call("SET", KEYS[2], ARGV[4], "PX", ARGV[2])
return 1
`
	kindPrefix := s.prefix + string(kind) + ":"
	err := s.rdb.Eval(ctx, lua,
		[]string{s.key(kind, token), s.curKey(kind, userID)},
		userID, ttl.Milliseconds(), kindPrefix, token,
	).Err()
	if err != nil {
		return fmt.Errorf("ott save: %w", err)
	}
	return nil
}

func (s *OneTimeTokenStore) Consume(ctx context.Context, kind identity.OneTimeTokenKind, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrMissingField("token")
	}
	if s.rdb == nil {
		return "", errors.New("redis one-time-token store not configured")
	}

	// Atomic GET + DEL
	const lua = `
local v = redis.call("GET", KEYS[1])
if not v then
  return nil
end
redis.call("DEL", KEYS[1])
return v
`
	res, err := s.rdb.Eval(ctx, lua, []string{s.key(kind, token)}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", domain.ErrInvalidToken()
		}
		return "", fmt.Errorf("ott consume: %w", err)
	}
	if res == nil {
		// not found / expired / already consumed
		return "", domain.ErrInvalidToken()
	}

	uid, ok := res.(string)
	if !ok || strings.TrimSpace(uid) == "" {
		return "", domain.ErrInvalidToken()
	}
	return uid, nil
}

func (s *OneTimeTokenStore) Peek(ctx context.Context, kind identity.OneTimeTokenKind, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrMissingField("token")
	}
	if s.rdb == nil {
		return "", errors.New("redis one-time-token store not configured")
	}

	uid, err := s.rdb.Get(ctx, s.key(kind, token)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", domain.ErrInvalidToken()
		}
		return "", fmt.Errorf("ott peek: %w", err)
	}

	uid = strings.TrimSpace(uid)
	if uid == "" {
		return "", domain.ErrInvalidToken()
	}
	return uid, nil
}

func (s *OneTimeTokenStore) key(kind identity.OneTimeTokenKind, token string) string {
	// kind is a controlled constant ("verify_email"/"password_reset")
	return s.prefix + string(kind) + ":" + token
}

func (s *OneTimeTokenStore) curKey(kind identity.OneTimeTokenKind, userID string) string {
	return s.curPrefix + string(kind) + ":" + userID
}
