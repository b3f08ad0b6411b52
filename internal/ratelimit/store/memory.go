package store

import (
	"context"
	"math"
	"sync"
	"time"

	"storefront/internal/ratelimit/models"
)

// InMemoryStore keeps a sliding window of request timestamps per key. It is
// per-process; use RedisStore when several instances share a budget.
type InMemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*slidingWindow
	now     func() time.Time
}

type slidingWindow struct {
	timestamps []time.Time
}

type MemoryOption func(*InMemoryStore)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryStore) {
		s.now = now
	}
}

func NewInMemory(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{buckets: make(map[string]*slidingWindow), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow records one request against key when the window has room.
func (s *InMemoryStore) Allow(_ context.Context, key string, p models.Policy) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sw := s.buckets[key]
	if sw == nil {
		sw = &slidingWindow{}
		s.buckets[key] = sw
	}
	sw.cleanup(now, p.Window)

	if len(sw.timestamps) < p.Limit {
		sw.timestamps = append(sw.timestamps, now)
		return &models.Result{
			Allowed:   true,
			Limit:     p.Limit,
			Remaining: p.Limit - len(sw.timestamps),
			ResetAt:   sw.timestamps[0].Add(p.Window),
		}, nil
	}

	resetAt := now.Add(p.Window)
	if len(sw.timestamps) > 0 {
		resetAt = sw.timestamps[0].Add(p.Window)
	}
	return &models.Result{
		Allowed:    false,
		Limit:      p.Limit,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: retryAfter(resetAt.Sub(now)),
	}, nil
}

// Reset clears the window for key.
func (s *InMemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// cleanup drops timestamps that fell out of the window.
func (sw *slidingWindow) cleanup(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

func retryAfter(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
