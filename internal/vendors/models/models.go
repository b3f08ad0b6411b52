// Package models holds vendor, payout and vendor metrics types.
package models

import (
	"time"

	id "storefront/pkg/domain"
)

const (
	MaxNameLength      = 100
	DefaultListLimit   = 20
	DefaultPayoutLimit = 20
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

var Statuses = []string{string(StatusPending), string(StatusActive), string(StatusSuspended)}

// CanTransitionTo reports whether an admin may move a vendor to next.
// Vendors never return to pending.
func (s Status) CanTransitionTo(next Status) bool {
	switch next {
	case StatusActive, StatusSuspended:
		return true
	default:
		return s == next
	}
}

type Vendor struct {
	ID             id.VendorID
	Name           string
	Email          string
	Status         Status
	CommissionRate float64
	Country        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CreateVendor struct {
	Name           string
	Email          string
	CommissionRate float64
	Country        string
}

type ListFilter struct {
	Status Status
	Query  string
	Offset int
	Limit  int
}

type VendorPage struct {
	Items []*Vendor
	Total int
}

type PayoutStatus string

const (
	PayoutPending PayoutStatus = "pending"
	PayoutPaid    PayoutStatus = "paid"
)

type Payout struct {
	ID          id.PayoutID
	VendorID    id.VendorID
	Amount      float64
	Currency    string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Status      PayoutStatus
	CreatedAt   time.Time
}

type CreatePayout struct {
	VendorID    id.VendorID
	Amount      float64
	Currency    string
	PeriodStart time.Time
	PeriodEnd   time.Time
}

type PayoutPage struct {
	Items []*Payout
	Total int
}

// SalesTotals aggregates non-cancelled orders for a vendor.
type SalesTotals struct {
	Orders int
	Gross  float64
}

// Metrics is a vendor's sales performance over an optional period.
type Metrics struct {
	VendorID          id.VendorID
	From              *time.Time
	To                *time.Time
	TotalOrders       int
	GrossRevenue      float64
	CommissionRate    float64
	Commission        float64
	NetEarnings       float64
	AverageOrderValue float64
}
