package handler

import (
	"time"

	"storefront/internal/tax/models"
)

type RateResponse struct {
	ID        string    `json:"id"`
	Country   string    `json:"country"`
	Region    string    `json:"region,omitempty"`
	Category  string    `json:"category"`
	Rate      float64   `json:"rate"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

type CalculationResponse struct {
	Amount      float64      `json:"amount"`
	Inclusive   bool         `json:"inclusive"`
	TaxRate     float64      `json:"taxRate"`
	NetAmount   float64      `json:"netAmount"`
	TaxAmount   float64      `json:"taxAmount"`
	TotalAmount float64      `json:"totalAmount"`
	AppliedRate RateResponse `json:"appliedRate"`
}

func toRateResponse(r *models.TaxRate) RateResponse {
	return RateResponse{
		ID:        r.ID.String(),
		Country:   r.Country,
		Region:    r.Region,
		Category:  r.Category,
		Rate:      r.Rate,
		Name:      r.Name,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
	}
}

func toCalculationResponse(c *models.Calculation) CalculationResponse {
	return CalculationResponse{
		Amount:      c.Amount,
		Inclusive:   c.Inclusive,
		TaxRate:     c.Rate.Rate,
		NetAmount:   c.Net,
		TaxAmount:   c.Tax,
		TotalAmount: c.Total,
		AppliedRate: toRateResponse(c.Rate),
	}
}
