// Package limiter implements fixed-window rate limiting on top of a pluggable
// counter store. The store may be in-process or external (Redis); the window
// arithmetic lives here so both backends behave identically.
package limiter

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// CounterStore increments per-window counters. Implementations must be safe
// for concurrent use.
type CounterStore interface {
	// Incr atomically increments the counter at key, setting its expiry to
	// ttl on first increment, and returns the new count.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Result is the outcome of a rate limit check.
type Result struct {
	// Allowed indicates if the request is permitted.
	Allowed bool

	// Limit is the configured maximum requests per window.
	Limit int

	// Remaining is the number of requests left in the current window.
	Remaining int

	// ResetAt is when the current window ends and the counter resets.
	ResetAt time.Time

	// RetryAfter is how long the client should wait (only set when denied).
	RetryAfter time.Duration
}

// Limiter enforces a fixed-window limit per key. All requests whose arrival
// time falls inside the same window share one counter; the counter resets at
// the window boundary, never sliding.
type Limiter struct {
	store  CounterStore
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// New creates a fixed-window limiter.
func New(store CounterStore, prefix string, limit int, window time.Duration) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("counter store is required")
	}
	if prefix == "" {
		return nil, errors.New("key prefix is required")
	}
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}

	return &Limiter{
		store:  store,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}, nil
}

// MustNew creates a limiter or panics on error. Use only in initialization
// code where failure is unrecoverable.
func MustNew(store CounterStore, prefix string, limit int, window time.Duration) *Limiter {
	l, err := New(store, prefix, limit, window)
	if err != nil {
		panic(fmt.Sprintf("failed to create limiter: %v", err))
	}
	return l
}

// WithClock overrides the limiter's clock. Intended for tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow checks and consumes one request for key. A request arriving exactly
// at a window boundary belongs to the new window.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		// Unattributable clients share one bucket.
		key = "unknown"
	}

	now := l.now()
	windowStart := now.Truncate(l.window)
	resetAt := windowStart.Add(l.window)

	storeKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, windowStart.Unix())

	count, err := l.store.Incr(ctx, storeKey, resetAt.Sub(now))
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	if !result.Allowed {
		result.RetryAfter = resetAt.Sub(now)
	}

	return result, nil
}

// Limit returns the configured maximum requests per window.
func (l *Limiter) Limit() int {
	return l.limit
}

// Window returns the configured window duration.
func (l *Limiter) Window() time.Duration {
	return l.window
}
