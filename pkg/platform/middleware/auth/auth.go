// Package auth authenticates bearer tokens and enforces roles. Failures are
// written as standard error envelopes.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/requestcontext"
)

// TokenValidator validates a raw bearer token.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims is what the middleware needs from a validated token.
type Claims struct {
	UserID   string
	Role     string
	VendorID string
}

const bearerPrefix = "Bearer "

var (
	errMissingToken = dErrors.New(dErrors.CodeUnauthorized, "Authentication required")
	errInvalidToken = dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token")
	errForbidden    = dErrors.New(dErrors.CodeForbidden, "You do not have permission to perform this action")
)

// RequireAuth rejects requests without a valid bearer token with 401.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return authenticate(validator, logger, true)
}

// OptionalAuth attaches the identity when a token is supplied. A supplied but
// invalid token is still rejected so clients notice expired credentials.
func OptionalAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return authenticate(validator, logger, false)
}

func authenticate(validator TokenValidator, logger *slog.Logger, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			token = strings.TrimSpace(token)
			if !ok || token == "" {
				if !required {
					next.ServeHTTP(w, r)
					return
				}
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, r, nil, errMissingToken)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, r, nil, errInvalidToken)
				return
			}

			ident, err := identityFromClaims(claims)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed claims",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, r, nil, errInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithUser(ctx, ident)))
		})
	}
}

func identityFromClaims(claims *Claims) (requestcontext.Identity, error) {
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return requestcontext.Identity{}, err
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return requestcontext.Identity{}, err
	}
	ident := requestcontext.Identity{ID: userID, Role: role}
	if role == id.RoleVendor && claims.VendorID != "" {
		vendorID, err := id.ParseVendorID(claims.VendorID)
		if err != nil {
			return requestcontext.Identity{}, err
		}
		ident.VendorID = vendorID
	}
	return ident, nil
}

// RequireRole rejects authenticated callers outside roles with 403 and
// anonymous callers with 401. Mount it after RequireAuth.
func RequireRole(logger *slog.Logger, roles ...id.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ident, ok := requestcontext.User(ctx)
			if !ok {
				httputil.WriteError(w, r, nil, errMissingToken)
				return
			}
			if !ident.HasRole(roles...) {
				logger.WarnContext(ctx, "forbidden - role mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"user_id", ident.ID.String(),
					"role", ident.Role.String(),
				)
				httputil.WriteError(w, r, nil, errForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
