// Package validation accumulates field violations for request structs.
//
// Validators follow the order Size -> Required -> Syntax -> Semantic. Violations
// are kept in call order, so the error returned by Err is deterministic: its
// message is the first violation and its field list carries all of them.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
)

// Violations collects rejected fields for one request.
type Violations struct {
	list []dErrors.FieldError
}

// Add records a violation.
func (v *Violations) Add(field, message string) {
	v.list = append(v.list, dErrors.FieldError{Field: field, Message: message})
}

// Addf records a formatted violation.
func (v *Violations) Addf(field, format string, args ...any) {
	v.Add(field, fmt.Sprintf(format, args...))
}

// Merge appends violations from another collection.
func (v *Violations) Merge(other *Violations) {
	if other == nil {
		return
	}
	v.list = append(v.list, other.list...)
}

// Has reports whether field already has a violation. Used to skip
// cross-field checks on fields that failed to parse.
func (v *Violations) Has(field string) bool {
	for _, f := range v.list {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (v *Violations) Empty() bool {
	return len(v.list) == 0
}

func (v *Violations) List() []dErrors.FieldError {
	return v.list
}

// Err returns nil or a CodeValidation error.
func (v *Violations) Err() error {
	return dErrors.Validation(v.list)
}

// Required rejects blank strings.
func (v *Violations) Required(field, value, message string) bool {
	if strings.TrimSpace(value) == "" {
		v.Add(field, message)
		return false
	}
	return true
}

// MaxLength rejects strings longer than max runes.
func (v *Violations) MaxLength(field, value string, max int, label string) bool {
	if len([]rune(value)) > max {
		v.Addf(field, "%s must be at most %d characters", label, max)
		return false
	}
	return true
}

// DateRange rejects start after end. Nil bounds are open.
func (v *Violations) DateRange(startField string, start, end *time.Time, message string) bool {
	if start == nil || end == nil {
		return true
	}
	if start.After(*end) {
		v.Add(startField, message)
		return false
	}
	return true
}

// Date parses an optional ISO-8601 date. Blank input yields nil.
func (v *Violations) Date(field, raw, label string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, ok := ParseISODate(raw)
	if !ok {
		v.Addf(field, "%s must be a valid ISO-8601 date", label)
		return nil
	}
	return &t
}

// NumberRange rejects min greater than max. Nil bounds are open.
func (v *Violations) NumberRange(minField string, min, max *float64, message string) bool {
	if min == nil || max == nil {
		return true
	}
	if *min > *max {
		v.Add(minField, message)
		return false
	}
	return true
}

// Between rejects values outside [lo, hi].
func (v *Violations) Between(field string, value, lo, hi float64, message string) bool {
	if value < lo || value > hi {
		v.Add(field, message)
		return false
	}
	return true
}

// NonNegative rejects values below zero.
func (v *Violations) NonNegative(field string, value float64, message string) bool {
	if value < 0 {
		v.Add(field, message)
		return false
	}
	return true
}

// Positive rejects values that are zero or below.
func (v *Violations) Positive(field string, value float64, message string) bool {
	if value <= 0 {
		v.Add(field, message)
		return false
	}
	return true
}

// OneOf rejects values outside allowed.
func (v *Violations) OneOf(field, value string, allowed []string, label string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	v.Addf(field, "%s must be one of: %s", label, strings.Join(allowed, ", "))
	return false
}

// ObjectID rejects values that are not 24 hex characters.
func (v *Violations) ObjectID(field, value, label string) bool {
	if !id.IsObjectID(value) {
		v.Addf(field, "Invalid %s format", label)
		return false
	}
	return true
}

// UUID rejects values that are not canonical, non-nil UUIDs.
func (v *Violations) UUID(field, value, label string) bool {
	if !IsUUID(value) {
		v.Addf(field, "Invalid %s format", label)
		return false
	}
	return true
}

// CurrencyCode rejects values that are not three uppercase letters.
func (v *Violations) CurrencyCode(field, value, label string) bool {
	if !IsCurrencyCode(value) {
		v.Addf(field, "%s must be a 3-letter ISO currency code", label)
		return false
	}
	return true
}

// CountryCode rejects values that are not ISO 3166-1 alpha-2 country codes.
func (v *Violations) CountryCode(field, value, label string) bool {
	if !IsCountryCode(value) {
		v.Addf(field, "%s must be a valid 2-letter ISO country code", label)
		return false
	}
	return true
}

// Email rejects values that are not a bare address.
func (v *Violations) Email(field, value string) bool {
	if !IsEmail(value) {
		v.Addf(field, "Invalid email address: %s", value)
		return false
	}
	return true
}

// IsUUID reports whether s is a canonical, non-nil UUID.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	u, err := uuid.Parse(s)
	return err == nil && u != uuid.Nil
}

// IsCurrencyCode reports whether s is three uppercase ASCII letters.
func IsCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// IsCountryCode reports whether s is a known ISO 3166-1 alpha-2 country.
func IsCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) || r > unicode.MaxASCII {
			return false
		}
	}
	region, err := language.ParseRegion(strings.ToUpper(s))
	if err != nil {
		return false
	}
	return region.IsCountry()
}

// IsEmail reports whether s parses as a single address without a display name.
func IsEmail(s string) bool {
	if s == "" || len(s) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && addr.Name == ""
}

// ParseISODate accepts a calendar date or an RFC 3339 timestamp.
func ParseISODate(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
