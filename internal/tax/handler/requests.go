package handler

import (
	"strings"

	"storefront/internal/tax/models"
	"storefront/pkg/platform/query"
	"storefront/pkg/platform/validation"
)

type CreateRateRequest struct {
	Country  string   `json:"country"`
	Region   string   `json:"region"`
	Category string   `json:"category"`
	Rate     *float64 `json:"rate"`
	Name     string   `json:"name"`
	Active   *bool    `json:"active"`
}

func (r *CreateRateRequest) Normalize() {
	r.Country = strings.ToUpper(strings.TrimSpace(r.Country))
	r.Region = strings.ToUpper(strings.TrimSpace(r.Region))
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	r.Name = strings.TrimSpace(r.Name)
}

// Validate checks the request. Order: Size -> Required -> Syntax -> Semantic.
func (r *CreateRateRequest) Validate() error {
	var v validation.Violations

	v.MaxLength("name", r.Name, models.MaxNameLength, "Name")
	v.MaxLength("region", r.Region, models.MaxRegionLength, "Region")
	v.MaxLength("category", r.Category, models.MaxCategoryLength, "Category")

	hasCountry := v.Required("country", r.Country, "Country is required")
	v.Required("name", r.Name, "Name is required")
	if r.Rate == nil {
		v.Add("rate", "Rate is required")
	}

	if hasCountry {
		v.CountryCode("country", r.Country, "Country")
	}
	if r.Rate != nil {
		v.Between("rate", *r.Rate, 0, models.MaxRate, "Rate must be between 0 and 100")
	}
	return v.Err()
}

func (r *CreateRateRequest) ToModel() models.CreateRate {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return models.CreateRate{
		Country:  r.Country,
		Region:   r.Region,
		Category: r.Category,
		Rate:     *r.Rate,
		Name:     r.Name,
		Active:   active,
	}
}

// parseCalculate reads GET /taxes/calculate.
func parseCalculate(p *query.Parser) (models.CalculateInput, error) {
	v := p.Violations()
	amount := p.RequiredFloat("amount", "Amount")
	if !v.Has("amount") {
		v.NonNegative("amount", amount, "Amount must be greater than or equal to 0")
	}
	country := strings.ToUpper(p.String("country", ""))
	if v.Required("country", country, "Country is required") {
		v.CountryCode("country", country, "Country")
	}
	region := strings.ToUpper(p.String("region", ""))
	v.MaxLength("region", region, models.MaxRegionLength, "Region")
	category := strings.ToLower(p.String("category", models.DefaultCategory))
	v.MaxLength("category", category, models.MaxCategoryLength, "Category")
	inclusive := p.BoolDefault("inclusive", "Inclusive", false)
	if err := p.Err(); err != nil {
		return models.CalculateInput{}, err
	}
	return models.CalculateInput{
		Lookup:    models.Lookup{Country: country, Region: region, Category: category},
		Amount:    amount,
		Inclusive: inclusive,
	}, nil
}

func parseCountryFilter(p *query.Parser) string {
	country := strings.ToUpper(p.String("country", ""))
	if country != "" {
		p.Violations().CountryCode("country", country, "Country")
	}
	return country
}
