package handler

import (
	"time"

	"storefront/internal/loyalty/models"
)

type TierResponse struct {
	Name       string   `json:"name"`
	MinPoints  int64    `json:"minPoints"`
	Multiplier float64  `json:"multiplier"`
	Benefits   []string `json:"benefits"`
}

type ProgramResponse struct {
	Name          string         `json:"name"`
	PointsPerUnit float64        `json:"pointsPerUnit"`
	Currency      string         `json:"currency"`
	Tiers         []TierResponse `json:"tiers"`
}

type AccountResponse struct {
	UserID           string        `json:"userId"`
	Balance          int64         `json:"balance"`
	LifetimePoints   int64         `json:"lifetimePoints"`
	Tier             TierResponse  `json:"tier"`
	NextTier         *TierResponse `json:"nextTier"`
	PointsToNextTier int64         `json:"pointsToNextTier"`
}

type TransactionResponse struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Points       int64     `json:"points"`
	BalanceAfter int64     `json:"balanceAfter"`
	Description  string    `json:"description"`
	OrderID      *string   `json:"orderId,omitempty"`
	RewardID     *string   `json:"rewardId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type RewardResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PointsCost  int64     `json:"pointsCost"`
	Stock       *int      `json:"stock"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

type RedemptionResponse struct {
	ID          string    `json:"id"`
	RewardID    string    `json:"rewardId"`
	RewardName  string    `json:"rewardName"`
	PointsSpent int64     `json:"pointsSpent"`
	Balance     int64     `json:"balance"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toTierResponse(t models.Tier) TierResponse {
	benefits := t.Benefits
	if benefits == nil {
		benefits = []string{}
	}
	return TierResponse{Name: t.Name, MinPoints: t.MinPoints, Multiplier: t.Multiplier, Benefits: benefits}
}

func toProgramResponse(p models.Program) ProgramResponse {
	tiers := make([]TierResponse, len(p.Tiers))
	for i, t := range p.Tiers {
		tiers[i] = toTierResponse(t)
	}
	return ProgramResponse{Name: p.Name, PointsPerUnit: p.PointsPerUnit, Currency: p.Currency, Tiers: tiers}
}

func toAccountResponse(s *models.AccountSummary) AccountResponse {
	resp := AccountResponse{
		UserID:           s.Account.UserID.String(),
		Balance:          s.Account.Balance,
		LifetimePoints:   s.Account.LifetimePoints,
		Tier:             toTierResponse(s.Tier),
		PointsToNextTier: s.PointsToNextTier,
	}
	if s.NextTier != nil {
		next := toTierResponse(*s.NextTier)
		resp.NextTier = &next
	}
	return resp
}

func toTransactionResponse(tx models.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:           tx.ID.String(),
		Type:         string(tx.Type),
		Points:       tx.Points,
		BalanceAfter: tx.BalanceAfter,
		Description:  tx.Description,
		CreatedAt:    tx.CreatedAt,
	}
	if tx.OrderID != nil {
		s := tx.OrderID.String()
		resp.OrderID = &s
	}
	if tx.RewardID != nil {
		s := tx.RewardID.String()
		resp.RewardID = &s
	}
	return resp
}

func toRewardResponse(r models.Reward) RewardResponse {
	return RewardResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		PointsCost:  r.PointsCost,
		Stock:       r.Stock,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
	}
}
