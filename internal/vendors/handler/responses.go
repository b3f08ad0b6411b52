package handler

import (
	"time"

	"storefront/internal/vendors/models"
)

type VendorResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Status         string    `json:"status"`
	CommissionRate float64   `json:"commissionRate"`
	Country        string    `json:"country"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type PayoutResponse struct {
	ID          string    `json:"id"`
	VendorID    string    `json:"vendorId"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

type MetricsResponse struct {
	VendorID          string     `json:"vendorId"`
	StartDate         *time.Time `json:"startDate,omitempty"`
	EndDate           *time.Time `json:"endDate,omitempty"`
	TotalOrders       int        `json:"totalOrders"`
	GrossRevenue      float64    `json:"grossRevenue"`
	CommissionRate    float64    `json:"commissionRate"`
	Commission        float64    `json:"commission"`
	NetEarnings       float64    `json:"netEarnings"`
	AverageOrderValue float64    `json:"averageOrderValue"`
}

func toVendorResponse(v *models.Vendor) VendorResponse {
	return VendorResponse{
		ID:             v.ID.String(),
		Name:           v.Name,
		Email:          v.Email,
		Status:         string(v.Status),
		CommissionRate: v.CommissionRate,
		Country:        v.Country,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}

func toPayoutResponse(p *models.Payout) PayoutResponse {
	return PayoutResponse{
		ID:          p.ID.String(),
		VendorID:    p.VendorID.String(),
		Amount:      p.Amount,
		Currency:    p.Currency,
		PeriodStart: p.PeriodStart,
		PeriodEnd:   p.PeriodEnd,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
	}
}

func toMetricsResponse(m *models.Metrics) MetricsResponse {
	return MetricsResponse{
		VendorID:          m.VendorID.String(),
		StartDate:         m.From,
		EndDate:           m.To,
		TotalOrders:       m.TotalOrders,
		GrossRevenue:      m.GrossRevenue,
		CommissionRate:    m.CommissionRate,
		Commission:        m.Commission,
		NetEarnings:       m.NetEarnings,
		AverageOrderValue: m.AverageOrderValue,
	}
}
