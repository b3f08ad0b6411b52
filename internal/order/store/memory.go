package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"storefront/internal/order/models"
	vendormodels "storefront/internal/vendors/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

// InMemoryStore keeps orders in insertion order.
type InMemoryStore struct {
	mu     sync.RWMutex
	orders []models.Order
	byID   map[id.OrderID]int
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{byID: make(map[id.OrderID]int)}
}

func (s *InMemoryStore) Create(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[o.ID]; ok {
		return sentinel.ErrConflict
	}
	s.byID[o.ID] = len(s.orders)
	s.orders = append(s.orders, *o)
	return nil
}

// List returns the newest orders first.
func (s *InMemoryStore) List(_ context.Context, f models.ListFilter) ([]*models.Order, int, error) {
	s.mu.RLock()
	matched := make([]*models.Order, 0)
	for i := range s.orders {
		if f.Matches(&s.orders[i]) {
			o := s.orders[i]
			matched = append(matched, &o)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *models.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	total := len(matched)
	start := min(max(f.Offset, 0), total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}
	return matched[start:end], total, nil
}

// VendorTotals sums non-cancelled orders for the vendor within the range.
func (s *InMemoryStore) VendorTotals(_ context.Context, vendorID id.VendorID, from, to *time.Time) (vendormodels.SalesTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var totals vendormodels.SalesTotals
	for i := range s.orders {
		o := &s.orders[i]
		if o.VendorID != vendorID || !o.Status.CountsAsSale() || !models.InRange(o.CreatedAt, from, to) {
			continue
		}
		totals.Orders++
		totals.Gross += o.Total
	}
	return totals, nil
}
