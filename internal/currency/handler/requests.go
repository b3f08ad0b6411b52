package handler

import (
	"strings"

	"storefront/internal/currency/models"
	"storefront/pkg/platform/query"
	"storefront/pkg/platform/validation"
)

type UpdateCurrencyRequest struct {
	Name   string   `json:"name"`
	Symbol string   `json:"symbol"`
	Rate   *float64 `json:"rate"`
	Active *bool    `json:"active"`
}

func (r *UpdateCurrencyRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Symbol = strings.TrimSpace(r.Symbol)
}

func (r *UpdateCurrencyRequest) Validate() error {
	var v validation.Violations
	v.MaxLength("name", r.Name, models.MaxNameLength, "Name")
	v.MaxLength("symbol", r.Symbol, models.MaxSymbolLength, "Symbol")
	v.Required("name", r.Name, "Name is required")
	v.Required("symbol", r.Symbol, "Symbol is required")
	if r.Rate == nil {
		v.Add("rate", "Rate is required")
	} else {
		v.Positive("rate", *r.Rate, "Rate must be greater than 0")
	}
	return v.Err()
}

func (r *UpdateCurrencyRequest) ToModel() models.UpdateCurrency {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return models.UpdateCurrency{Name: r.Name, Symbol: r.Symbol, Rate: *r.Rate, Active: active}
}

type convertQuery struct {
	amount   float64
	from, to string
}

func parseConvert(p *query.Parser) (convertQuery, error) {
	v := p.Violations()
	q := convertQuery{
		amount: p.RequiredFloat("amount", "Amount"),
		from:   strings.ToUpper(p.String("from", "")),
		to:     strings.ToUpper(p.String("to", "")),
	}
	if !v.Has("amount") {
		v.NonNegative("amount", q.amount, "Amount must be greater than or equal to 0")
	}
	if v.Required("from", q.from, "Source currency is required") {
		v.CurrencyCode("from", q.from, "Source currency")
	}
	if v.Required("to", q.to, "Target currency is required") {
		v.CurrencyCode("to", q.to, "Target currency")
	}
	return q, p.Err()
}
