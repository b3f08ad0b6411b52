package handler

import (
	"time"

	"storefront/internal/order/models"
)

type OrderResponse struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customerId"`
	VendorID   string    `json:"vendorId"`
	Total      float64   `json:"total"`
	Currency   string    `json:"currency"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

type PlacedOrderResponse struct {
	OrderResponse
	PointsEarned int64 `json:"pointsEarned"`
}

func toOrderResponse(o *models.Order) OrderResponse {
	return OrderResponse{
		ID:         o.ID.String(),
		CustomerID: o.CustomerID.String(),
		VendorID:   o.VendorID.String(),
		Total:      o.Total,
		Currency:   o.Currency,
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt,
	}
}
