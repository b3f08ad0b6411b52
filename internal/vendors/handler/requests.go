package handler

import (
	"strings"
	"time"

	"storefront/internal/vendors/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/query"
	"storefront/pkg/platform/validation"
)

type CreateVendorRequest struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	CommissionRate *float64 `json:"commissionRate"`
	Country        string   `json:"country"`
}

func (r *CreateVendorRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Country = strings.ToUpper(strings.TrimSpace(r.Country))
}

// Validate checks the request. Order: Size -> Required -> Syntax -> Semantic.
func (r *CreateVendorRequest) Validate() error {
	var v validation.Violations

	// Phase 1: Size
	v.MaxLength("name", r.Name, models.MaxNameLength, "Name")

	// Phase 2: Required
	v.Required("name", r.Name, "Name is required")
	hasEmail := v.Required("email", r.Email, "Email is required")
	hasCountry := v.Required("country", r.Country, "Country is required")
	if r.CommissionRate == nil {
		v.Add("commissionRate", "Commission rate is required")
	}

	// Phase 3: Syntax
	if hasEmail {
		v.Email("email", r.Email)
	}
	if hasCountry {
		v.CountryCode("country", r.Country, "Country")
	}

	// Phase 4: Semantic
	if r.CommissionRate != nil {
		v.Between("commissionRate", *r.CommissionRate, 0, 1, "Commission rate must be between 0 and 1")
	}
	return v.Err()
}

func (r *CreateVendorRequest) ToModel() models.CreateVendor {
	return models.CreateVendor{
		Name:           r.Name,
		Email:          r.Email,
		CommissionRate: *r.CommissionRate,
		Country:        r.Country,
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (r *UpdateStatusRequest) Normalize() {
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
}

func (r *UpdateStatusRequest) Validate() error {
	var v validation.Violations
	if v.Required("status", r.Status, "Status is required") {
		v.OneOf("status", r.Status, models.Statuses, "Status")
	}
	return v.Err()
}

type CreatePayoutRequest struct {
	VendorID    string  `json:"vendorId"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	PeriodStart string  `json:"periodStart"`
	PeriodEnd   string  `json:"periodEnd"`

	vendorID    id.VendorID
	periodStart *time.Time
	periodEnd   *time.Time
}

func (r *CreatePayoutRequest) Normalize() {
	r.VendorID = strings.TrimSpace(r.VendorID)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
}

func (r *CreatePayoutRequest) Validate() error {
	var v validation.Violations

	hasVendor := v.Required("vendorId", r.VendorID, "Vendor ID is required")
	hasCurrency := v.Required("currency", r.Currency, "Currency is required")
	v.Required("periodStart", r.PeriodStart, "Period start is required")
	v.Required("periodEnd", r.PeriodEnd, "Period end is required")

	if hasVendor && v.UUID("vendorId", r.VendorID, "vendor ID") {
		r.vendorID, _ = id.ParseVendorID(r.VendorID)
	}
	if hasCurrency {
		v.CurrencyCode("currency", r.Currency, "Currency")
	}
	r.periodStart = v.Date("periodStart", r.PeriodStart, "Period start")
	r.periodEnd = v.Date("periodEnd", r.PeriodEnd, "Period end")

	v.Positive("amount", r.Amount, "Amount must be greater than 0")
	v.DateRange("periodStart", r.periodStart, r.periodEnd, "Period start must be before period end")
	return v.Err()
}

func (r *CreatePayoutRequest) ToModel() models.CreatePayout {
	return models.CreatePayout{
		VendorID:    r.vendorID,
		Amount:      r.Amount,
		Currency:    r.Currency,
		PeriodStart: *r.periodStart,
		PeriodEnd:   *r.periodEnd,
	}
}

// parseListFilter reads GET /vendors.
func parseListFilter(p *query.Parser) (models.ListFilter, int, int, error) {
	page := p.Pagination(models.DefaultListLimit, query.MaxPageLimit)
	status := p.Enum("status", "Status", "", models.Statuses...)
	q := p.String("q", "")
	p.Violations().MaxLength("q", q, models.MaxNameLength, "Search query")
	if err := p.Err(); err != nil {
		return models.ListFilter{}, 0, 0, err
	}
	return models.ListFilter{
		Status: models.Status(status),
		Query:  q,
		Offset: page.Offset(),
		Limit:  page.Limit,
	}, page.Page, page.Limit, nil
}
