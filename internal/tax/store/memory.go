// Package store keeps tax rates in memory.
package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"storefront/internal/tax/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	rates map[id.ObjectID]models.TaxRate
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{rates: make(map[id.ObjectID]models.TaxRate)}
}

func (s *InMemoryStore) Create(_ context.Context, rate *models.TaxRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rates[rate.ID]; ok {
		return sentinel.ErrConflict
	}
	s.rates[rate.ID] = *rate
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, rateID id.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rates[rateID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.rates, rateID)
	return nil
}

// ListByCountry returns rates ordered by country, region, category, then id.
// An empty country returns every rate.
func (s *InMemoryStore) ListByCountry(_ context.Context, country string) ([]*models.TaxRate, error) {
	s.mu.RLock()
	out := make([]*models.TaxRate, 0, len(s.rates))
	for _, r := range s.rates {
		if country == "" || r.Country == country {
			out = append(out, &r)
		}
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b *models.TaxRate) int {
		return cmp.Or(
			cmp.Compare(a.Country, b.Country),
			cmp.Compare(a.Region, b.Region),
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return out, nil
}
