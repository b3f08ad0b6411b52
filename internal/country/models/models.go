// Package models holds ISO 3166-1 country data.
package models

const (
	DefaultListLimit = 50
	MaxQueryLength   = 100
)

// Country is localized at read time; Name and Region follow the request
// language.
type Country struct {
	Code     string
	Name     string
	Currency string
	Region   string
}

type CountryPage struct {
	Items []Country
	Total int
}
