// Package models holds tax rates and tax calculations.
package models

import (
	"time"

	id "storefront/pkg/domain"
)

const (
	DefaultCategory   = "standard"
	MaxNameLength     = 100
	MaxRegionLength   = 50
	MaxCategoryLength = 50
	MaxRate           = 100
	DefaultListLimit  = 20
)

// TaxRate is a percentage applied to a country, optionally narrowed to a
// region and a product category.
type TaxRate struct {
	ID        id.ObjectID
	Country   string
	Region    string
	Category  string
	Rate      float64
	Name      string
	Active    bool
	CreatedAt time.Time
}

// Applies reports whether the rate may be used for the lookup.
func (r *TaxRate) Applies(l Lookup) bool {
	if !r.Active || r.Country != l.Country {
		return false
	}
	if r.Region != "" && r.Region != l.Region {
		return false
	}
	return r.Category == DefaultCategory || r.Category == l.Category
}

// Specificity ranks applicable rates: region beats category, both beat the
// country-wide rate.
func (r *TaxRate) Specificity() int {
	score := 0
	if r.Region != "" {
		score += 2
	}
	if r.Category != DefaultCategory {
		score++
	}
	return score
}

type CreateRate struct {
	Country  string
	Region   string
	Category string
	Rate     float64
	Name     string
	Active   bool
}

type Lookup struct {
	Country  string
	Region   string
	Category string
}

type CalculateInput struct {
	Lookup
	Amount    float64
	Inclusive bool
}

// Calculation splits an amount into net and tax. For inclusive amounts Total
// equals the input amount.
type Calculation struct {
	Amount    float64
	Inclusive bool
	Rate      *TaxRate
	Net       float64
	Tax       float64
	Total     float64
}

type RatePage struct {
	Items []*TaxRate
	Total int
}
