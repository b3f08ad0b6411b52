// Package models defines A/B tests, their variants and the statistics
// reported for them.
package models

import (
	"time"

	id "storefront/pkg/domain"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Statuses lists every status in lifecycle order.
var Statuses = []string{string(StatusDraft), string(StatusRunning), string(StatusPaused), string(StatusCompleted)}

// CanTransitionTo reports whether the lifecycle allows moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	switch next {
	case StatusRunning:
		return s == StatusDraft || s == StatusPaused
	case StatusPaused:
		return s == StatusRunning
	case StatusCompleted:
		return s == StatusRunning || s == StatusPaused
	default:
		return false
	}
}

type Goal string

const (
	GoalConversion Goal = "conversion"
	GoalRevenue    Goal = "revenue"
)

var Goals = []string{string(GoalConversion), string(GoalRevenue)}

type EventType string

const (
	EventImpression EventType = "impression"
	EventConversion EventType = "conversion"
	EventRevenue    EventType = "revenue"
)

var EventTypes = []string{string(EventImpression), string(EventConversion), string(EventRevenue)}

const (
	MinVariants  = 2
	MaxVariants  = 10
	TotalWeight  = 100
	MaxNameLen   = 100
	MaxDescLen   = 500
	MaxKeyLength = 50
)

// Variant is one arm of a test. Weight is the share of traffic in percent.
type Variant struct {
	Key         string
	Name        string
	Weight      int
	Impressions int64
	Conversions int64
	Revenue     float64
}

// Test is an A/B experiment. The first variant is the control.
type Test struct {
	ID          id.ObjectID
	Name        string
	Description string
	Status      Status
	Goal        Goal
	Variants    []Variant
	StartDate   *time.Time
	EndDate     *time.Time
	Winner      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// Variant returns the variant with key, if any.
func (t *Test) Variant(key string) (*Variant, bool) {
	for i := range t.Variants {
		if t.Variants[i].Key == key {
			return &t.Variants[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy so stores never hand out shared slices.
func (t *Test) Clone() *Test {
	c := *t
	c.Variants = append([]Variant(nil), t.Variants...)
	return &c
}

// SortField and SortOrder drive list ordering.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByName      SortField = "name"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ListFilter narrows and orders a page of tests.
type ListFilter struct {
	Status      Status
	SortBy      SortField
	Order       SortOrder
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Offset      int
	Limit       int
}

// TestPage is one page of tests plus the total matching the filter.
type TestPage struct {
	Items []*Test
	Total int
}

// CreateTest is the validated input for a new test.
type CreateTest struct {
	Name        string
	Description string
	Goal        Goal
	Variants    []Variant
	StartDate   *time.Time
	EndDate     *time.Time
}

// TrackEvent is a validated event for one variant.
type TrackEvent struct {
	VariantKey string
	Type       EventType
	Amount     float64
}

// Assignment is the variant a user is bucketed into.
type Assignment struct {
	TestID     id.ObjectID
	UserID     id.UserID
	VariantKey string
	Bucket     int
}
