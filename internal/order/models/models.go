// Package models holds order types. Orders feed loyalty earning, vendor
// metrics and exports.
package models

import (
	"slices"
	"time"

	id "storefront/pkg/domain"
)

const DefaultListLimit = 20

type Status string

const (
	StatusPlaced    Status = "placed"
	StatusShipped   Status = "shipped"
	StatusCancelled Status = "cancelled"
)

var Statuses = []string{string(StatusPlaced), string(StatusShipped), string(StatusCancelled)}

// CountsAsSale reports whether the order contributes to vendor revenue.
func (s Status) CountsAsSale() bool {
	return s != StatusCancelled
}

type Order struct {
	ID         id.OrderID
	CustomerID id.UserID
	VendorID   id.VendorID
	Total      float64
	Currency   string
	Status     Status
	CreatedAt  time.Time
}

type PlaceOrder struct {
	CustomerID id.UserID
	VendorID   id.VendorID
	Total      float64
	Currency   string
}

// Placed is the outcome of placing an order.
type Placed struct {
	Order        *Order
	PointsEarned int64
}

// ListFilter selects orders. A Limit of zero or less returns every match.
type ListFilter struct {
	Statuses []Status
	VendorID *id.VendorID
	From     *time.Time
	To       *time.Time
	Offset   int
	Limit    int
}

// Matches applies every filter except paging.
func (f ListFilter) Matches(o *Order) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, o.Status) {
		return false
	}
	if f.VendorID != nil && o.VendorID != *f.VendorID {
		return false
	}
	return InRange(o.CreatedAt, f.From, f.To)
}

type OrderPage struct {
	Items []*Order
	Total int
}

// InclusiveEnd widens a date-only upper bound to the end of that day.
func InclusiveEnd(to *time.Time) *time.Time {
	if to == nil {
		return nil
	}
	t := to.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t
}

// InRange reports whether at falls within [from, to]. Nil bounds are open.
func InRange(at time.Time, from, to *time.Time) bool {
	if from != nil && at.Before(*from) {
		return false
	}
	if end := InclusiveEnd(to); end != nil && at.After(*end) {
		return false
	}
	return true
}
