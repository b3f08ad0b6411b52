// Package query parses URL query parameters into typed, defaulted values.
//
// Parsing never fails hard: a malformed value records a violation and the
// accessor returns the default, so a handler can collect every problem and
// reject the request once with Err.
package query

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront/pkg/platform/httputil"
	pstrings "storefront/pkg/platform/strings"
	"storefront/pkg/platform/validation"
)

// MaxPageLimit is the upper bound every list endpoint clamps limit to.
const MaxPageLimit = 100

// Parser reads one request's query string.
type Parser struct {
	values     url.Values
	violations validation.Violations
}

// New creates a parser over the request's URL query.
func New(r *http.Request) *Parser {
	return FromValues(r.URL.Query())
}

// FromValues creates a parser over already-split values.
func FromValues(values url.Values) *Parser {
	return &Parser{values: values}
}

// Violations exposes the accumulated violations so handlers can add
// cross-field checks before calling Err.
func (p *Parser) Violations() *validation.Violations {
	return &p.violations
}

// Err returns nil or a validation error describing the first violation.
func (p *Parser) Err() error {
	return p.violations.Err()
}

// Has reports whether the parameter was supplied with a non-blank value.
func (p *Parser) Has(name string) bool {
	return strings.TrimSpace(p.values.Get(name)) != ""
}

// String returns the trimmed value or def when absent.
func (p *Parser) String(name, def string) string {
	v := strings.TrimSpace(p.values.Get(name))
	if v == "" {
		return def
	}
	return v
}

// Int parses an integer, recording "<Label> must be an integer" on failure.
func (p *Parser) Int(name, label string, def int) int {
	raw := strings.TrimSpace(p.values.Get(name))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.violations.Addf(name, "%s must be an integer", label)
		return def
	}
	return n
}

// Float parses an optional finite number, returning nil when absent or
// malformed. NaN and infinities are malformed.
func (p *Parser) Float(name, label string) *float64 {
	raw := strings.TrimSpace(p.values.Get(name))
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		p.violations.Addf(name, "%s must be a number", label)
		return nil
	}
	return &f
}

// RequiredFloat parses a number that must be present.
func (p *Parser) RequiredFloat(name, label string) float64 {
	if !p.Has(name) {
		p.violations.Addf(name, "%s is required", label)
		return 0
	}
	f := p.Float(name, label)
	if f == nil {
		return 0
	}
	return *f
}

// Bool parses an optional boolean; accepts true/false/1/0.
func (p *Parser) Bool(name, label string) *bool {
	raw := strings.TrimSpace(p.values.Get(name))
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.violations.Addf(name, "%s must be true or false", label)
		return nil
	}
	return &b
}

// BoolDefault parses a boolean with a default.
func (p *Parser) BoolDefault(name, label string, def bool) bool {
	if b := p.Bool(name, label); b != nil {
		return *b
	}
	return def
}

// Date parses an ISO-8601 date (2006-01-02) or timestamp (RFC 3339).
func (p *Parser) Date(name, label string) *time.Time {
	return p.violations.Date(name, p.values.Get(name), label)
}

// Enum returns the value if it is one of allowed, def when absent, and records
// a violation otherwise. Matching is case-sensitive.
func (p *Parser) Enum(name, label, def string, allowed ...string) string {
	raw := strings.TrimSpace(p.values.Get(name))
	if raw == "" {
		return def
	}
	if !p.violations.OneOf(name, raw, allowed, label) {
		return def
	}
	return raw
}

// List splits a comma separated value, also accepting repeated parameters.
// Elements are trimmed and deduplicated.
func (p *Parser) List(name string) []string {
	var parts []string
	for _, v := range p.values[name] {
		parts = append(parts, strings.Split(v, ",")...)
	}
	out := pstrings.DedupeAndTrim(parts)
	if len(out) == 0 {
		return nil
	}
	return out
}

// Pagination parses page and limit. page < 1 and limit < 1 are violations;
// limit above maxLimit is clamped.
func (p *Parser) Pagination(defaultLimit, maxLimit int) httputil.PageRequest {
	if maxLimit <= 0 || maxLimit > MaxPageLimit {
		maxLimit = MaxPageLimit
	}
	page := p.Int("page", "Page", 1)
	limit := p.Int("limit", "Limit", defaultLimit)
	if !p.violations.Has("page") && page < 1 {
		p.violations.Add("page", "Page must be greater than 0")
		page = 1
	}
	if !p.violations.Has("limit") && limit < 1 {
		p.violations.Add("limit", "Limit must be greater than 0")
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return httputil.PageRequest{Page: page, Limit: limit}
}

// ParseISODate accepts a calendar date or an RFC 3339 timestamp.
func ParseISODate(raw string) (time.Time, bool) {
	return validation.ParseISODate(raw)
}
