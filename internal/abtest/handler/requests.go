package handler

import (
	"strconv"
	"strings"
	"time"

	"storefront/internal/abtest/models"
	"storefront/pkg/platform/query"
	"storefront/pkg/platform/validation"
)

// VariantRequest is one variant in a create request.
type VariantRequest struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

type CreateTestRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Goal        string           `json:"goal"`
	Variants    []VariantRequest `json:"variants"`
	StartDate   string           `json:"startDate"`
	EndDate     string           `json:"endDate"`

	startDate *time.Time
	endDate   *time.Time
}

func (r *CreateTestRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Goal = strings.ToLower(strings.TrimSpace(r.Goal))
	if r.Goal == "" {
		r.Goal = string(models.GoalConversion)
	}
	for i := range r.Variants {
		r.Variants[i].Key = strings.TrimSpace(r.Variants[i].Key)
		r.Variants[i].Name = strings.TrimSpace(r.Variants[i].Name)
		if r.Variants[i].Name == "" {
			r.Variants[i].Name = r.Variants[i].Key
		}
	}
	r.StartDate = strings.TrimSpace(r.StartDate)
	r.EndDate = strings.TrimSpace(r.EndDate)
}

// Validate checks the request. Order: Size -> Required -> Syntax -> Semantic.
func (r *CreateTestRequest) Validate() error {
	var v validation.Violations

	// Phase 1: Size
	v.MaxLength("name", r.Name, models.MaxNameLen, "Name")
	v.MaxLength("description", r.Description, models.MaxDescLen, "Description")
	if len(r.Variants) < models.MinVariants || len(r.Variants) > models.MaxVariants {
		v.Addf("variants", "Between %d and %d variants are required", models.MinVariants, models.MaxVariants)
	}

	// Phase 2: Required
	v.Required("name", r.Name, "Name is required")

	// Phase 3: Syntax
	v.OneOf("goal", r.Goal, models.Goals, "Goal")
	r.startDate = v.Date("startDate", r.StartDate, "Start date")
	r.endDate = v.Date("endDate", r.EndDate, "End date")

	// Phase 4: Semantic
	seen := make(map[string]bool, len(r.Variants))
	total := 0
	for i, variant := range r.Variants {
		field := "variants[" + strconv.Itoa(i) + "]"
		if variant.Key == "" {
			v.Add(field+".key", "Variant key is required")
			continue
		}
		v.MaxLength(field+".key", variant.Key, models.MaxKeyLength, "Variant key")
		if seen[variant.Key] {
			v.Add(field+".key", "Variant keys must be unique")
		}
		seen[variant.Key] = true
		if variant.Weight <= 0 {
			v.Add(field+".weight", "Variant weight must be greater than 0")
		}
		total += variant.Weight
	}
	if !v.Has("variants") && total != models.TotalWeight {
		v.Add("variants", "Variant weights must sum to 100")
	}
	v.DateRange("startDate", r.startDate, r.endDate, "Start date must be before end date")

	return v.Err()
}

// ToModel converts a validated request.
func (r *CreateTestRequest) ToModel() models.CreateTest {
	variants := make([]models.Variant, len(r.Variants))
	for i, vr := range r.Variants {
		variants[i] = models.Variant{Key: vr.Key, Name: vr.Name, Weight: vr.Weight}
	}
	return models.CreateTest{
		Name:        r.Name,
		Description: r.Description,
		Goal:        models.Goal(r.Goal),
		Variants:    variants,
		StartDate:   r.startDate,
		EndDate:     r.endDate,
	}
}

type TrackEventRequest struct {
	VariantKey string   `json:"variantKey"`
	EventType  string   `json:"eventType"`
	Amount     *float64 `json:"amount"`
}

func (r *TrackEventRequest) Normalize() {
	r.VariantKey = strings.TrimSpace(r.VariantKey)
	r.EventType = strings.ToLower(strings.TrimSpace(r.EventType))
}

func (r *TrackEventRequest) Validate() error {
	var v validation.Violations
	v.Required("variantKey", r.VariantKey, "Variant key is required")
	if v.Required("eventType", r.EventType, "Event type is required") {
		v.OneOf("eventType", r.EventType, models.EventTypes, "Event type")
	}
	if r.EventType == string(models.EventRevenue) && r.Amount == nil {
		v.Add("amount", "Amount is required for revenue events")
	}
	if r.Amount != nil {
		v.NonNegative("amount", *r.Amount, "Amount must be greater than or equal to 0")
	}
	return v.Err()
}

func (r *TrackEventRequest) ToModel() models.TrackEvent {
	ev := models.TrackEvent{VariantKey: r.VariantKey, Type: models.EventType(r.EventType)}
	if r.Amount != nil {
		ev.Amount = *r.Amount
	}
	return ev
}

// parseListFilter reads GET /ab-tests query parameters.
func parseListFilter(p *query.Parser) (models.ListFilter, int, int, error) {
	page := p.Pagination(10, query.MaxPageLimit)
	status := p.Enum("status", "Status", "", models.Statuses...)
	sortBy := p.Enum("sortBy", "Sort field", string(models.SortByCreatedAt),
		string(models.SortByCreatedAt), string(models.SortByName))
	order := p.Enum("order", "Order", string(models.OrderDesc), string(models.OrderAsc), string(models.OrderDesc))
	from := p.Date("createdFrom", "Created from")
	to := p.Date("createdTo", "Created to")
	p.Violations().DateRange("createdFrom", from, to, "Start date must be before end date")
	if err := p.Err(); err != nil {
		return models.ListFilter{}, 0, 0, err
	}
	return models.ListFilter{
		Status:      models.Status(status),
		SortBy:      models.SortField(sortBy),
		Order:       models.SortOrder(order),
		CreatedFrom: from,
		CreatedTo:   to,
		Offset:      page.Offset(),
		Limit:       page.Limit,
	}, page.Page, page.Limit, nil
}
