// Package store persists vendors and payouts in memory or PostgreSQL.
package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"storefront/internal/vendors/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	vendors map[id.VendorID]models.Vendor
	emails  map[string]id.VendorID
	payouts map[id.VendorID][]models.Payout
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		vendors: make(map[id.VendorID]models.Vendor),
		emails:  make(map[string]id.VendorID),
		payouts: make(map[id.VendorID][]models.Payout),
	}
}

func (s *InMemoryStore) Create(_ context.Context, vendor *models.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(vendor.Email)
	if _, taken := s.emails[key]; taken {
		return sentinel.ErrConflict
	}
	s.vendors[vendor.ID] = *vendor
	s.emails[key] = vendor.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, vendorID id.VendorID) (*models.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vendors[vendorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &v, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, vendorID id.VendorID, status models.Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vendors[vendorID]
	if !ok {
		return sentinel.ErrNotFound
	}
	v.Status = status
	v.UpdatedAt = at
	s.vendors[vendorID] = v
	return nil
}

// List orders by name, then id. Query matches name or email, case-insensitively.
func (s *InMemoryStore) List(_ context.Context, f models.ListFilter) ([]*models.Vendor, int, error) {
	q := strings.ToLower(f.Query)
	s.mu.RLock()
	matched := make([]*models.Vendor, 0, len(s.vendors))
	for _, v := range s.vendors {
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(v.Name), q) && !strings.Contains(strings.ToLower(v.Email), q) {
			continue
		}
		matched = append(matched, &v)
	}
	s.mu.RUnlock()
	slices.SortFunc(matched, func(a, b *models.Vendor) int {
		if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return window(matched, f.Offset, f.Limit), len(matched), nil
}

func (s *InMemoryStore) CreatePayout(_ context.Context, payout *models.Payout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vendors[payout.VendorID]; !ok {
		return sentinel.ErrNotFound
	}
	s.payouts[payout.VendorID] = append(s.payouts[payout.VendorID], *payout)
	return nil
}

// ListPayouts returns the newest first.
func (s *InMemoryStore) ListPayouts(_ context.Context, vendorID id.VendorID, offset, limit int) ([]*models.Payout, int, error) {
	s.mu.RLock()
	all := s.payouts[vendorID]
	out := make([]*models.Payout, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		p := all[i]
		out = append(out, &p)
	}
	s.mu.RUnlock()
	return window(out, offset, limit), len(out), nil
}

func window[T any](items []T, offset, limit int) []T {
	start := min(max(offset, 0), len(items))
	end := len(items)
	if limit > 0 {
		end = min(start+limit, len(items))
	}
	return items[start:end]
}
