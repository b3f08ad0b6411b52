package handler

import (
	"time"

	"storefront/internal/currency/models"
)

type CurrencyResponse struct {
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Symbol    string     `json:"symbol"`
	Rate      float64    `json:"rate"`
	Active    bool       `json:"active"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type ConversionResponse struct {
	Amount          float64 `json:"amount"`
	FromCurrency    string  `json:"fromCurrency"`
	ToCurrency      string  `json:"toCurrency"`
	ConvertedAmount float64 `json:"convertedAmount"`
}

func toCurrencyResponse(c *models.Currency) CurrencyResponse {
	resp := CurrencyResponse{Code: c.Code, Name: c.Name, Symbol: c.Symbol, Rate: c.Rate, Active: c.Active}
	if !c.UpdatedAt.IsZero() {
		at := c.UpdatedAt
		resp.UpdatedAt = &at
	}
	return resp
}
