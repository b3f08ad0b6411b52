// Package store keeps A/B tests in memory.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"storefront/internal/abtest/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

// InMemoryStore is a mutex-guarded map of tests. Returned tests are copies.
type InMemoryStore struct {
	mu    sync.RWMutex
	tests map[id.ObjectID]*models.Test
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{tests: make(map[id.ObjectID]*models.Test)}
}

func (s *InMemoryStore) Create(_ context.Context, test *models.Test) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tests[test.ID]; exists {
		return sentinel.ErrConflict
	}
	s.tests[test.ID] = test.Clone()
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, testID id.ObjectID) (*models.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	test, ok := s.tests[testID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return test.Clone(), nil
}

func (s *InMemoryStore) Update(_ context.Context, test *models.Test) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tests[test.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.tests[test.ID] = test.Clone()
	return nil
}

func (s *InMemoryStore) List(_ context.Context, filter models.ListFilter) ([]*models.Test, int, error) {
	s.mu.RLock()
	matched := make([]*models.Test, 0, len(s.tests))
	for _, t := range s.tests {
		if matches(t, filter) {
			matched = append(matched, t.Clone())
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, less(matched, filter))

	total := len(matched)
	start := min(max(filter.Offset, 0), total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return matched[start:end], total, nil
}

// RecordEvent increments counters under the write lock.
func (s *InMemoryStore) RecordEvent(_ context.Context, testID id.ObjectID, event models.TrackEvent) (*models.Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	test, ok := s.tests[testID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	v, ok := test.Variant(event.VariantKey)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	switch event.Type {
	case models.EventImpression:
		v.Impressions++
	case models.EventConversion:
		v.Conversions++
	case models.EventRevenue:
		v.Conversions++
		v.Revenue += event.Amount
	}
	return test.Clone(), nil
}

func matches(t *models.Test, f models.ListFilter) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.CreatedFrom != nil && t.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && t.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}

func less(items []*models.Test, f models.ListFilter) func(i, j int) bool {
	desc := f.Order != models.OrderAsc
	return func(i, j int) bool {
		a, b := items[i], items[j]
		var before bool
		if f.SortBy == models.SortByName {
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if an == bn {
				before = a.ID < b.ID
			} else {
				before = an < bn
			}
		} else {
			if a.CreatedAt.Equal(b.CreatedAt) {
				before = a.ID < b.ID
			} else {
				before = a.CreatedAt.Before(b.CreatedAt)
			}
		}
		if desc {
			return !before
		}
		return before
	}
}
