// Package store persists currencies and caches their rates.
package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"storefront/internal/currency/models"
	"storefront/pkg/platform/sentinel"
)

// InMemoryStore holds currencies keyed by code. It starts with the base
// currency so conversions to and from it always resolve.
type InMemoryStore struct {
	mu         sync.RWMutex
	currencies map[string]models.Currency
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{currencies: map[string]models.Currency{
		models.BaseCurrency: {
			Code:   models.BaseCurrency,
			Name:   "US Dollar",
			Symbol: "$",
			Rate:   1,
			Active: true,
		},
	}}
}

func (s *InMemoryStore) Get(_ context.Context, code string) (*models.Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.currencies[code]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

// List returns currencies ordered by code.
func (s *InMemoryStore) List(_ context.Context, f models.ListFilter) ([]*models.Currency, error) {
	s.mu.RLock()
	out := make([]*models.Currency, 0, len(s.currencies))
	for _, c := range s.currencies {
		if f.Active != nil && c.Active != *f.Active {
			continue
		}
		out = append(out, &c)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b *models.Currency) int {
		return strings.Compare(a.Code, b.Code)
	})
	return out, nil
}

func (s *InMemoryStore) Upsert(_ context.Context, c *models.Currency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currencies[c.Code] = *c
	return nil
}

type cacheEntry struct {
	rate    float64
	expires time.Time
}

// MemoryRateCache is a process-local rate cache with a shared TTL.
type MemoryRateCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

func NewMemoryRateCache(ttl time.Duration) *MemoryRateCache {
	return &MemoryRateCache{ttl: ttl, now: time.Now, entries: make(map[string]cacheEntry)}
}

func (c *MemoryRateCache) Get(_ context.Context, code string) (float64, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[code]
	if !ok || !c.now().Before(e.expires) {
		return 0, false, nil
	}
	return e.rate, true, nil
}

func (c *MemoryRateCache) Put(_ context.Context, rates map[string]float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	expires := c.now().Add(c.ttl)
	for code, rate := range rates {
		c.entries[code] = cacheEntry{rate: rate, expires: expires}
	}
	return nil
}

func (c *MemoryRateCache) Delete(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, code)
	return nil
}

func (c *MemoryRateCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	return nil
}
