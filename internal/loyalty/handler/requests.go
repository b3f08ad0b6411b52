package handler

import (
	"strings"

	"storefront/internal/loyalty/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/query"
	"storefront/pkg/platform/validation"
)

type RedeemRequest struct {
	RewardID string `json:"rewardId"`

	rewardID id.ObjectID
}

func (r *RedeemRequest) Normalize() {
	r.RewardID = strings.ToLower(strings.TrimSpace(r.RewardID))
}

func (r *RedeemRequest) Validate() error {
	var v validation.Violations
	if v.Required("rewardId", r.RewardID, "Reward ID is required") && v.ObjectID("rewardId", r.RewardID, "reward ID") {
		r.rewardID, _ = id.ParseObjectID(r.RewardID)
	}
	return v.Err()
}

type AdjustPointsRequest struct {
	UserID string `json:"userId"`
	Points int64  `json:"points"`
	Reason string `json:"reason"`

	userID id.UserID
}

func (r *AdjustPointsRequest) Normalize() {
	r.UserID = strings.TrimSpace(r.UserID)
	r.Reason = strings.TrimSpace(r.Reason)
}

// Validate checks the request. Order: Size -> Required -> Syntax -> Semantic.
func (r *AdjustPointsRequest) Validate() error {
	var v validation.Violations

	// Phase 1: Size
	v.MaxLength("reason", r.Reason, models.MaxReasonLength, "Reason")

	// Phase 2: Required
	hasUser := v.Required("userId", r.UserID, "User ID is required")
	v.Required("reason", r.Reason, "Reason is required")

	// Phase 3: Syntax
	if hasUser && v.UUID("userId", r.UserID, "user ID") {
		r.userID, _ = id.ParseUserID(r.UserID)
	}

	// Phase 4: Semantic
	if r.Points == 0 {
		v.Add("points", "Points must not be zero")
	}
	return v.Err()
}

type CreateRewardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PointsCost  int64  `json:"pointsCost"`
	Stock       *int   `json:"stock"`
	Active      *bool  `json:"active"`
}

func (r *CreateRewardRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
}

func (r *CreateRewardRequest) Validate() error {
	var v validation.Violations
	v.MaxLength("name", r.Name, models.MaxRewardNameLength, "Name")
	v.MaxLength("description", r.Description, models.MaxRewardDescLength, "Description")
	v.Required("name", r.Name, "Name is required")
	if r.PointsCost <= 0 {
		v.Add("pointsCost", "Points cost must be greater than 0")
	}
	if r.Stock != nil && *r.Stock < 0 {
		v.Add("stock", "Stock must be greater than or equal to 0")
	}
	return v.Err()
}

func (r *CreateRewardRequest) ToModel() models.CreateReward {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return models.CreateReward{
		Name:        r.Name,
		Description: r.Description,
		PointsCost:  r.PointsCost,
		Stock:       r.Stock,
		Active:      active,
	}
}

// parseHistoryFilter reads GET /loyalty/history.
func parseHistoryFilter(p *query.Parser) (models.HistoryFilter, int, int, error) {
	page := p.Pagination(models.DefaultHistoryLimit, query.MaxPageLimit)
	typ := p.Enum("type", "Type", "", models.TransactionTypes...)
	from := p.Date("startDate", "Start date")
	to := p.Date("endDate", "End date")
	p.Violations().DateRange("startDate", from, to, "Start date must be before end date")
	if err := p.Err(); err != nil {
		return models.HistoryFilter{}, 0, 0, err
	}
	return models.HistoryFilter{
		Type:   models.TransactionType(typ),
		From:   from,
		To:     to,
		Offset: page.Offset(),
		Limit:  page.Limit,
	}, page.Page, page.Limit, nil
}
