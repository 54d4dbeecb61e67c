package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript increments a window counter and sets its expiry atomically.
// Compiled once at package initialization.
var incrScript = redis.NewScript(`
	local key = KEYS[1]
	local ttl_ms = tonumber(ARGV[1])

	local count = redis.call('INCR', key)
	if count == 1 then
		redis.call('PEXPIRE', key, ttl_ms)
	end
	return count
`)

// CounterStore implements the limiter's counter store on Redis, so windows
// are shared across all server instances.
type CounterStore struct {
	client *Client
}

// NewCounterStore creates a Redis-backed counter store.
func NewCounterStore(client *Client) (*CounterStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return &CounterStore{client: client}, nil
}

// Incr atomically increments the counter at key. The expiry is set on the
// first increment only, so the window boundary is stable for its lifetime.
func (s *CounterStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if key == "" {
		return 0, errors.New("key is required")
	}

	ttlMs := ttl.Milliseconds()
	if ttlMs < 1 {
		ttlMs = 1
	}

	count, err := incrScript.Run(ctx, s.client.client, []string{key}, ttlMs).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis counter incr: %w", err)
	}
	return count, nil
}
