package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, caches and publishers
// return these (optionally wrapped) so services can translate them into
// domain errors:
//
//	ErrNotFound     row or key does not exist
//	ErrConflict     unique constraint hit (vendor email, currency code)
//	ErrInvalidState entity cannot move to the requested state
//	ErrUnavailable  broker, cache or database is not reachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
