package models

import (
	"net/http"
	"time"
)

// Class categorizes endpoints for differentiated budgets.
type Class string

const (
	ClassRead  Class = "read"
	ClassWrite Class = "write"
)

// ClassOf treats safe methods as reads.
func ClassOf(method string) Class {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ClassRead
	default:
		return ClassWrite
	}
}

// Policy is the budget for one class.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Result is the outcome of one check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is whole seconds, only set when not allowed.
	RetryAfter int
}

// Key builds the bucket key for a client within a class.
func Key(class Class, client string) string {
	return "ratelimit:" + string(class) + ":" + client
}
