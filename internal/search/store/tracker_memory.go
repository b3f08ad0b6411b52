package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"storefront/internal/search/models"
)

// MemoryTracker counts queries in a map. Used when Redis is not configured.
type MemoryTracker struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{counts: make(map[string]int64)}
}

func (t *MemoryTracker) Record(_ context.Context, query string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[query]++
	return nil
}

// Popular orders by count descending, then query ascending.
func (t *MemoryTracker) Popular(_ context.Context, limit int) ([]models.PopularQuery, error) {
	t.mu.Lock()
	out := make([]models.PopularQuery, 0, len(t.counts))
	for q, n := range t.counts {
		out = append(out, models.PopularQuery{Query: q, Count: n})
	}
	t.mu.Unlock()

	slices.SortFunc(out, comparePopular)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func comparePopular(a, b models.PopularQuery) int {
	if c := cmp.Compare(b.Count, a.Count); c != 0 {
		return c
	}
	return cmp.Compare(a.Query, b.Query)
}
