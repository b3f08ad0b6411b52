package httputil

import (
	"math"

	dErrors "storefront/pkg/domain-errors"
)

// Status is the top-level outcome of an envelope.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Envelope is the uniform response wrapper. A success envelope always has
// Data; an error envelope always has Message. Envelopes are built once per
// request and never mutated afterwards.
type Envelope struct {
	Status     Status               `json:"status"`
	RequestID  string               `json:"requestId"`
	Results    *int                 `json:"results,omitempty"`
	Data       any                  `json:"data,omitempty"`
	Pagination *Pagination          `json:"pagination,omitempty"`
	Message    string               `json:"message,omitempty"`
	Code       dErrors.Code         `json:"code,omitempty"`
	Errors     []dErrors.FieldError `json:"errors,omitempty"`
}

// Pagination describes the page a list envelope carries.
type Pagination struct {
	Page         int  `json:"page"`
	Limit        int  `json:"limit"`
	TotalPages   int  `json:"totalPages"`
	TotalResults int  `json:"totalResults"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// PageRequest is a validated page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the number of items to skip. It saturates at math.MaxInt
// instead of overflowing for very large pages.
func (p PageRequest) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Window returns the [start, end) bounds of the page within total items.
func (p PageRequest) Window(total int) (int, int) {
	start := min(max(p.Offset(), 0), total)
	end := min(start+p.Limit, total)
	return start, end
}

// NewPagination computes page metadata. totalPages is ceil(total/limit).
func NewPagination(page, limit, total int) *Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return &Pagination{
		Page:         page,
		Limit:        limit,
		TotalPages:   totalPages,
		TotalResults: total,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}

// Success builds a success envelope. A nil payload becomes an empty object.
func Success(requestID string, data any) Envelope {
	if data == nil {
		data = struct{}{}
	}
	return Envelope{Status: StatusSuccess, RequestID: requestID, Data: data}
}

// List builds a success envelope for a collection.
func List(requestID string, data any, count int, pagination *Pagination) Envelope {
	env := Success(requestID, data)
	env.Results = &count
	env.Pagination = pagination
	return env
}

// Failure builds an error envelope.
func Failure(requestID string, code dErrors.Code, message string, fields []dErrors.FieldError) Envelope {
	return Envelope{
		Status:    StatusError,
		RequestID: requestID,
		Message:   message,
		Code:      code,
		Errors:    fields,
	}
}
