// Package metrics times every request and reports it under the matched chi
// route pattern so ids do not explode label cardinality.
package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Recorder receives one observation per request.
type Recorder interface {
	ObserveRequest(route, method string, status int, d time.Duration)
}

const unmatchedRoute = "unmatched"

// Middleware reports request duration and status to rec.
func Middleware(rec Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			rec.ObserveRequest(route, r.Method, status, time.Since(start))
		})
	}
}
