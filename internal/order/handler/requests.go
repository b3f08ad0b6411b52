package handler

import (
	"strings"

	"storefront/internal/order/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/query"
	"storefront/pkg/platform/validation"
)

type PlaceOrderRequest struct {
	VendorID string  `json:"vendorId"`
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`

	vendorID id.VendorID
}

func (r *PlaceOrderRequest) Normalize() {
	r.VendorID = strings.TrimSpace(r.VendorID)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
}

func (r *PlaceOrderRequest) Validate() error {
	var v validation.Violations
	hasVendor := v.Required("vendorId", r.VendorID, "Vendor ID is required")
	hasCurrency := v.Required("currency", r.Currency, "Currency is required")
	if hasVendor && v.UUID("vendorId", r.VendorID, "vendor ID") {
		r.vendorID, _ = id.ParseVendorID(r.VendorID)
	}
	if hasCurrency {
		v.CurrencyCode("currency", r.Currency, "Currency")
	}
	v.Positive("total", r.Total, "Total must be greater than 0")
	return v.Err()
}

func (r *PlaceOrderRequest) ToModel(customerID id.UserID) models.PlaceOrder {
	return models.PlaceOrder{
		CustomerID: customerID,
		VendorID:   r.vendorID,
		Total:      r.Total,
		Currency:   r.Currency,
	}
}

// parseListFilter reads GET /orders. status accepts a comma separated list.
func parseListFilter(p *query.Parser) (models.ListFilter, int, int, error) {
	page := p.Pagination(models.DefaultListLimit, query.MaxPageLimit)
	v := p.Violations()

	var statuses []models.Status
	for _, raw := range p.List("status") {
		if v.OneOf("status", strings.ToLower(raw), models.Statuses, "Status") {
			statuses = append(statuses, models.Status(strings.ToLower(raw)))
		}
	}
	var vendorID *id.VendorID
	if raw := p.String("vendorId", ""); raw != "" && v.UUID("vendorId", raw, "vendor ID") {
		parsed, _ := id.ParseVendorID(raw)
		vendorID = &parsed
	}
	from := p.Date("startDate", "Start date")
	to := p.Date("endDate", "End date")
	v.DateRange("startDate", from, to, "Start date must be before end date")

	if err := p.Err(); err != nil {
		return models.ListFilter{}, 0, 0, err
	}
	return models.ListFilter{
		Statuses: statuses,
		VendorID: vendorID,
		From:     from,
		To:       to,
		Offset:   page.Offset(),
		Limit:    page.Limit,
	}, page.Page, page.Limit, nil
}
