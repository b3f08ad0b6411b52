// Package models holds currencies and their exchange rates.
package models

import "time"

// BaseCurrency is the unit every rate is quoted against.
const BaseCurrency = "USD"

const (
	MaxNameLength   = 50
	MaxSymbolLength = 5
)

// Currency carries Rate units per one BaseCurrency.
type Currency struct {
	Code      string
	Name      string
	Symbol    string
	Rate      float64
	Active    bool
	UpdatedAt time.Time
}

type UpdateCurrency struct {
	Name   string
	Symbol string
	Rate   float64
	Active bool
}

// ListFilter narrows GET /currencies. A nil Active returns every currency.
type ListFilter struct {
	Active *bool
}
