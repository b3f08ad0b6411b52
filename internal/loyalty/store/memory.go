// Package store keeps loyalty accounts, transactions and rewards in memory.
package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"storefront/internal/loyalty/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu           sync.RWMutex
	accounts     map[id.UserID]models.Account
	transactions map[id.UserID][]models.Transaction
	rewards      map[id.ObjectID]models.Reward
	redemptions  []models.Redemption
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		accounts:     make(map[id.UserID]models.Account),
		transactions: make(map[id.UserID][]models.Transaction),
		rewards:      make(map[id.ObjectID]models.Reward),
	}
}

func (s *InMemoryStore) FindAccount(_ context.Context, userID id.UserID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &a, nil
}

func (s *InMemoryStore) SaveAccount(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.UserID] = *account
	return nil
}

// ListAccounts orders by lifetime points descending.
func (s *InMemoryStore) ListAccounts(_ context.Context) ([]models.Account, error) {
	s.mu.RLock()
	out := make([]models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b models.Account) int {
		if c := cmp.Compare(b.LifetimePoints, a.LifetimePoints); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID.String(), b.UserID.String())
	})
	return out, nil
}

func (s *InMemoryStore) AppendTransaction(_ context.Context, tx models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[tx.UserID] = append(s.transactions[tx.UserID], tx)
	return nil
}

// ListTransactions returns the newest first.
func (s *InMemoryStore) ListTransactions(_ context.Context, userID id.UserID, f models.HistoryFilter) ([]models.Transaction, int, error) {
	s.mu.RLock()
	all := s.transactions[userID]
	matched := make([]models.Transaction, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		tx := all[i]
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if f.From != nil && tx.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && tx.CreatedAt.After(*f.To) {
			continue
		}
		matched = append(matched, tx)
	}
	s.mu.RUnlock()
	return window(matched, f.Offset, f.Limit), len(matched), nil
}

func (s *InMemoryStore) CreateReward(_ context.Context, reward *models.Reward) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rewards[reward.ID]; exists {
		return sentinel.ErrConflict
	}
	s.rewards[reward.ID] = cloneReward(*reward)
	return nil
}

func (s *InMemoryStore) FindReward(_ context.Context, rewardID id.ObjectID) (*models.Reward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rewards[rewardID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	r = cloneReward(r)
	return &r, nil
}

// ListRewards orders by points cost, then name.
func (s *InMemoryStore) ListRewards(_ context.Context, activeOnly bool, offset, limit int) ([]models.Reward, int, error) {
	s.mu.RLock()
	matched := make([]models.Reward, 0, len(s.rewards))
	for _, r := range s.rewards {
		if activeOnly && !r.Active {
			continue
		}
		matched = append(matched, cloneReward(r))
	}
	s.mu.RUnlock()
	slices.SortFunc(matched, func(a, b models.Reward) int {
		if c := cmp.Compare(a.PointsCost, b.PointsCost); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return window(matched, offset, limit), len(matched), nil
}

func (s *InMemoryStore) ReserveReward(_ context.Context, rewardID id.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rewards[rewardID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if r.Stock == nil {
		return nil
	}
	if *r.Stock <= 0 {
		return sentinel.ErrInvalidState
	}
	left := *r.Stock - 1
	r.Stock = &left
	s.rewards[rewardID] = r
	return nil
}

func (s *InMemoryStore) ReleaseReward(_ context.Context, rewardID id.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rewards[rewardID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if r.Stock == nil {
		return nil
	}
	left := *r.Stock + 1
	r.Stock = &left
	s.rewards[rewardID] = r
	return nil
}

func (s *InMemoryStore) SaveRedemption(_ context.Context, r models.Redemption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redemptions = append(s.redemptions, r)
	return nil
}

func cloneReward(r models.Reward) models.Reward {
	if r.Stock != nil {
		stock := *r.Stock
		r.Stock = &stock
	}
	return r
}

func window[T any](items []T, offset, limit int) []T {
	start := min(max(offset, 0), len(items))
	end := len(items)
	if limit > 0 {
		end = min(start+limit, len(items))
	}
	return items[start:end]
}
