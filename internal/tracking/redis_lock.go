package tracking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLock shares the debounce state between replicas with SET NX PX, so a
// burst of clicks spread over several instances still yields one event.
type RedisLock struct {
	client redis.Cmdable
	prefix string
}

// NewRedisLock builds a lock storing keys under prefix.
func NewRedisLock(client redis.Cmdable, prefix string) *RedisLock {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "landing"
	}
	return &RedisLock{client: client, prefix: prefix}
}

// Acquire implements Lock.
func (l *RedisLock) Acquire(ctx context.Context, scope string, ttl time.Duration) (bool, error) {
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}
	ok, err := l.client.SetNX(ctx, l.key(scope), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("tracking: acquire checkout lock: %w", err)
	}
	return ok, nil
}

func (l *RedisLock) key(scope string) string {
	if scope == "" {
		scope = "anonymous"
	}
	return l.prefix + ":checkout-lock:" + scope
}
