package limiter

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process CounterStore. Counters expire with their
// window; a background goroutine reaps expired entries.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counter
	capacity int

	done     chan struct{}
	stopped  chan struct{} // signals goroutine has exited
	stopOnce sync.Once     // prevents double-close panic
}

type counter struct {
	count     int64
	expiresAt time.Time
}

// NewMemoryStore creates a memory store. capacity bounds the number of live
// counters; zero means unbounded. cleanupInterval controls how often expired
// counters are reaped.
func NewMemoryStore(capacity int, cleanupInterval time.Duration) *MemoryStore {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	s := &MemoryStore{
		counters: make(map[string]*counter),
		capacity: capacity,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}

	go s.cleanupLoop(cleanupInterval)

	return s
}

// Incr implements CounterStore.
func (s *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok || now.After(c.expiresAt) {
		if !ok && s.capacity > 0 && len(s.counters) >= s.capacity {
			s.evictExpiredLocked(now)
		}
		c = &counter{expiresAt: now.Add(ttl)}
		s.counters[key] = c
	}

	c.count++
	return c.count, nil
}

// Stop stops the cleanup goroutine and waits for it to exit.
// Safe to call multiple times.
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	<-s.stopped
}

// cleanupLoop reaps expired counters.
func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(s.stopped)

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.evictExpiredLocked(time.Now())
			s.mu.Unlock()
		}
	}
}

// evictExpiredLocked removes expired counters. Caller must hold mu.
func (s *MemoryStore) evictExpiredLocked(now time.Time) {
	for key, c := range s.counters {
		if now.After(c.expiresAt) {
			delete(s.counters, key)
		}
	}
}

// Len reports the number of live counters. Intended for tests.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}
