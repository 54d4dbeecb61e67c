package limiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

func newTestLimiter(t *testing.T, limit int, window time.Duration, at time.Time) (*Limiter, *MemoryStore) {
	t.Helper()

	store := NewMemoryStore(0, time.Minute)
	t.Cleanup(store.Stop)

	l, err := New(store, "test", limit, window)
	require.NoError(t, err)
	l.WithClock(func() time.Time { return at })

	return l, store
}

func TestNew_Validation(t *testing.T) {
	store := NewMemoryStore(0, time.Minute)
	defer store.Stop()

	_, err := New(nil, "p", 5, time.Minute)
	assert.Error(t, err)

	_, err = New(store, "", 5, time.Minute)
	assert.Error(t, err)

	_, err = New(store, "p", 0, time.Minute)
	assert.Error(t, err)

	_, err = New(store, "p", 5, 0)
	assert.Error(t, err)
}

func TestLimiter_Allow_WithinLimit(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 10, 0, time.UTC)
	l, _ := newTestLimiter(t, 3, time.Minute, at)

	for i := 0; i < 3; i++ {
		res, err := l.Allow(context.Background(), "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 3, res.Limit)
		assert.Equal(t, 2-i, res.Remaining)
		assert.Zero(t, res.RetryAfter)
	}
}

func TestLimiter_Allow_Denied(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 10, 0, time.UTC)
	l, _ := newTestLimiter(t, 2, time.Minute, at)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}

	res, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	// Window started at 12:00:00, so 50 seconds remain.
	assert.Equal(t, 50*time.Second, res.RetryAfter)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 1, 0, 0, time.UTC), res.ResetAt)
}

func TestLimiter_Allow_WindowReset(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 59, 0, time.UTC)
	l, _ := newTestLimiter(t, 1, time.Minute, at)

	ctx := context.Background()
	res, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	// A request at exactly the boundary belongs to the new window.
	l.WithClock(func() time.Time { return time.Date(2025, 6, 1, 12, 1, 0, 0, time.UTC) })

	res, err = l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestLimiter_Allow_KeysAreIndependent(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 10, 0, time.UTC)
	l, _ := newTestLimiter(t, 1, time.Minute, at)

	ctx := context.Background()
	res, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestLimiter_Allow_EmptyKeySharesBucket(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 10, 0, time.UTC)
	l, _ := newTestLimiter(t, 2, time.Minute, at)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, "")
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}

	// Third unattributable request lands in the same shared bucket.
	res, err := l.Allow(ctx, "")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestLimiter_Allow_StoreError(t *testing.T) {
	l, err := New(failingStore{}, "test", 5, time.Minute)
	require.NoError(t, err)

	_, err = l.Allow(context.Background(), "1.2.3.4")
	assert.Error(t, err)
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustNew(nil, "p", 5, time.Minute)
	})
}

func TestMemoryStore_Incr(t *testing.T) {
	store := NewMemoryStore(0, time.Minute)
	defer store.Stop()

	ctx := context.Background()

	n, err := store.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMemoryStore_ExpiredCounterResets(t *testing.T) {
	store := NewMemoryStore(0, time.Minute)
	defer store.Stop()

	ctx := context.Background()

	n, err := store.Incr(ctx, "k", -time.Second)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	// Counter already expired, so the next increment starts over.
	n, err = store.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryStore_CapacityEvictsExpired(t *testing.T) {
	store := NewMemoryStore(2, time.Hour)
	defer store.Stop()

	ctx := context.Background()

	_, err := store.Incr(ctx, "a", -time.Second)
	require.NoError(t, err)
	_, err = store.Incr(ctx, "b", -time.Second)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	// At capacity; the expired counters are reaped to make room.
	_, err = store.Incr(ctx, "c", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_StopIsIdempotent(t *testing.T) {
	store := NewMemoryStore(0, time.Minute)

	assert.NotPanics(t, func() {
		store.Stop()
		store.Stop()
	})
}
