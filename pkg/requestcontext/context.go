// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values; handlers and services only read them. Keeping
// the package free of net/http lets services import it without pulling in
// transport code.
//
// Usage in services (read values):
//
//	user, ok := requestcontext.User(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithUser(ctx, requestcontext.Identity{ID: userID, Role: id.RoleAdmin})
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "storefront/pkg/domain"
)

// DefaultLanguage is used when no language was negotiated.
const DefaultLanguage = "en"

type (
	identityKey    struct{}
	requestIDKey   struct{}
	languageKey    struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	deviceKey      struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyIdentity    = identityKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyLanguage    = languageKey{}
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyUserAgent   = userAgentKey{}
	ContextKeyDevice      = deviceKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Identity is the authenticated caller. VendorID is only set for vendor tokens.
type Identity struct {
	ID       id.UserID
	Role     id.Role
	VendorID id.VendorID
}

// HasRole reports whether the caller holds one of roles.
func (i Identity) HasRole(roles ...id.Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Identity
// -----------------------------------------------------------------------------

// User returns the authenticated identity, if any.
func User(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(ContextKeyIdentity).(Identity)
	if !ok || ident.ID.IsNil() {
		return Identity{}, false
	}
	return ident, true
}

// UserID returns the authenticated user ID or the zero value.
func UserID(ctx context.Context) id.UserID {
	ident, _ := User(ctx)
	return ident.ID
}

// VendorID returns the vendor bound to the caller's token or the zero value.
func VendorID(ctx context.Context) id.VendorID {
	ident, _ := User(ctx)
	return ident.VendorID
}

// WithUser injects an authenticated identity.
func WithUser(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, ident)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Language returns the negotiated language, defaulting to DefaultLanguage.
func Language(ctx context.Context) string {
	if lang, ok := ctx.Value(ContextKeyLanguage).(string); ok && lang != "" {
		return lang
	}
	return DefaultLanguage
}

// WithLanguage injects the negotiated language.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ContextKeyLanguage, lang)
}

// -----------------------------------------------------------------------------
// Client metadata (IP, User-Agent, device)
// -----------------------------------------------------------------------------

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the raw User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// Device retrieves the parsed "browser on os" label from the context.
func Device(ctx context.Context) string {
	if d, ok := ctx.Value(ContextKeyDevice).(string); ok {
		return d
	}
	return ""
}

// WithClientMetadata injects client IP, User-Agent and device label into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent, device string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	ctx = context.WithValue(ctx, ContextKeyUserAgent, userAgent)
	ctx = context.WithValue(ctx, ContextKeyDevice, device)
	return ctx
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like scheduled jobs and tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
