// Package models holds loyalty program, account, transaction and reward types.
package models

import (
	"time"

	id "storefront/pkg/domain"
)

const (
	MaxRewardNameLength = 100
	MaxRewardDescLength = 500
	MaxReasonLength     = 200
	DefaultHistoryLimit = 20
	DefaultRewardsLimit = 20
)

// Tier is a program level reached by lifetime points.
type Tier struct {
	Name       string
	MinPoints  int64
	Multiplier float64
	Benefits   []string
}

// Program is the loyalty configuration. Tiers are ordered by MinPoints.
type Program struct {
	Name          string
	PointsPerUnit float64
	Currency      string
	Tiers         []Tier
}

// DefaultProgram is used when no program is configured.
func DefaultProgram() Program {
	return Program{
		Name:          "Storefront Rewards",
		PointsPerUnit: 1,
		Currency:      "USD",
		Tiers: []Tier{
			{Name: "Bronze", MinPoints: 0, Multiplier: 1, Benefits: []string{"Member-only offers"}},
			{Name: "Silver", MinPoints: 1000, Multiplier: 1.25, Benefits: []string{"Member-only offers", "Free standard shipping"}},
			{Name: "Gold", MinPoints: 5000, Multiplier: 1.5, Benefits: []string{"Member-only offers", "Free express shipping", "Early access"}},
			{Name: "Platinum", MinPoints: 15000, Multiplier: 2, Benefits: []string{"Member-only offers", "Free express shipping", "Early access", "Dedicated support"}},
		},
	}
}

// TierFor returns the highest tier reached by lifetime points and the next
// tier, if any.
func (p Program) TierFor(lifetime int64) (Tier, *Tier) {
	var current Tier
	for i, t := range p.Tiers {
		if lifetime < t.MinPoints {
			next := p.Tiers[i]
			return current, &next
		}
		current = t
	}
	return current, nil
}

type Account struct {
	UserID         id.UserID
	Balance        int64
	LifetimePoints int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AccountSummary is an account with its tier position.
type AccountSummary struct {
	Account          Account
	Tier             Tier
	NextTier         *Tier
	PointsToNextTier int64
}

type TransactionType string

const (
	TransactionEarn   TransactionType = "earn"
	TransactionRedeem TransactionType = "redeem"
	TransactionAdjust TransactionType = "adjust"
)

var TransactionTypes = []string{string(TransactionEarn), string(TransactionRedeem), string(TransactionAdjust)}

// Transaction is one signed balance change.
type Transaction struct {
	ID           id.ObjectID
	UserID       id.UserID
	Type         TransactionType
	Points       int64
	BalanceAfter int64
	Description  string
	OrderID      *id.OrderID
	RewardID     *id.ObjectID
	CreatedAt    time.Time
}

type HistoryFilter struct {
	Type   TransactionType
	From   *time.Time
	To     *time.Time
	Offset int
	Limit  int
}

type TransactionPage struct {
	Items []Transaction
	Total int
}

// Reward is redeemable for points. A nil Stock is unlimited.
type Reward struct {
	ID          id.ObjectID
	Name        string
	Description string
	PointsCost  int64
	Stock       *int
	Active      bool
	CreatedAt   time.Time
}

type RewardPage struct {
	Items []Reward
	Total int
}

type CreateReward struct {
	Name        string
	Description string
	PointsCost  int64
	Stock       *int
	Active      bool
}

type Redemption struct {
	ID          id.ObjectID
	UserID      id.UserID
	RewardID    id.ObjectID
	RewardName  string
	PointsSpent int64
	Balance     int64
	CreatedAt   time.Time
}
