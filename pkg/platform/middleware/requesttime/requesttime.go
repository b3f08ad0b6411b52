// Package requesttime pins one "now" per request so createdAt, readAt and
// date-range defaults inside a request agree with each other.
package requesttime

import (
	"net/http"
	"time"

	"storefront/pkg/requestcontext"
)

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// Middleware captures time.Now at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock is Middleware with an injectable clock.
func WithClock(clock Clock) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), clock().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
