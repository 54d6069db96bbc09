package countdown

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps deadlines in Redis so every replica sees the same countdown
// for a visitor. Entries carry no TTL.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore builds a store writing keys as "<prefix>:<visitor>:cd_<key>".
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "landing"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Scope implements Scoper.
func (s *RedisStore) Scope(visitorID string) Store {
	return prefixedStore{inner: s, prefix: s.prefix + ":" + scopePrefix(visitorID)}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, name string) (string, bool, error) {
	v, err := s.client.Get(ctx, name).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("countdown: redis get %s: %w", name, err)
	}
	return v, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, name, value string) error {
	if err := s.client.Set(ctx, name, value, 0).Err(); err != nil {
		return fmt.Errorf("countdown: redis set %s: %w", name, err)
	}
	return nil
}
