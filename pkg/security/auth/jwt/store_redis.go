package jwt

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisStore keeps revocation entries in Redis so logout takes effect
// across all API instances.
type RedisStore struct {
	client *goredis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed token store. The client's
// lifecycle is managed by the caller.
func NewRedisStore(client *goredis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "jwt:revoked:"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

// Revoke records the token under its revocation key with the remaining
// refresh-window TTL; Redis expires the entry on its own.
func (s *RedisStore) Revoke(ctx context.Context, token string, expiration time.Duration) error {
	return s.client.Set(ctx, s.prefix+token, "revoked", expiration).Err()
}

// IsRevoked reports whether a revocation key exists for the token.
func (s *RedisStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	count, err := s.client.Exists(ctx, s.prefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return count > 0, nil
}

// Close is a no-op; the client is shared with the rest of the service.
func (s *RedisStore) Close() error {
	return nil
}
