package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"storefront/internal/notification/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu            sync.RWMutex
	notifications map[id.ObjectID]*models.Notification
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{notifications: make(map[id.ObjectID]*models.Notification)}
}

func (s *InMemoryStore) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[n.ID]; ok {
		return sentinel.ErrConflict
	}
	s.notifications[n.ID] = clone(n)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, notificationID id.ObjectID) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[notificationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(n), nil
}

// List returns the newest notifications first.
func (s *InMemoryStore) List(_ context.Context, f models.ListFilter) ([]*models.Notification, int, error) {
	s.mu.RLock()
	matched := make([]*models.Notification, 0)
	for _, n := range s.notifications {
		if f.Matches(n) {
			matched = append(matched, clone(n))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *models.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	total := len(matched)
	start := min(max(f.Offset, 0), total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}
	return matched[start:end], total, nil
}

// MarkRead keeps the first read time when called twice.
func (s *InMemoryStore) MarkRead(_ context.Context, notificationID id.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[notificationID]
	if !ok {
		return sentinel.ErrNotFound
	}
	markRead(n, at)
	return nil
}

func (s *InMemoryStore) MarkAllRead(_ context.Context, userID id.UserID, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := 0
	for _, n := range s.notifications {
		if n.UserID == userID && !n.Read {
			markRead(n, at)
			updated++
		}
	}
	return updated, nil
}

// PurgeRead deletes notifications read before the cutoff.
func (s *InMemoryStore) PurgeRead(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for key, n := range s.notifications {
		if n.Read && n.ReadAt != nil && n.ReadAt.Before(before) {
			delete(s.notifications, key)
			purged++
		}
	}
	return purged, nil
}

func markRead(n *models.Notification, at time.Time) {
	if n.Read {
		return
	}
	n.Read = true
	n.ReadAt = &at
}

func clone(n *models.Notification) *models.Notification {
	c := *n
	if n.ReadAt != nil {
		at := *n.ReadAt
		c.ReadAt = &at
	}
	return &c
}
