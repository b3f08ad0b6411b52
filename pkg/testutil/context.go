package testutil

import (
	"net/http"

	id "storefront/pkg/domain"
	"storefront/pkg/requestcontext"
)

// WithRequestID sets the request id the way the request middleware would.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithIdentity attaches an authenticated caller, simulating the auth middleware.
func WithIdentity(req *http.Request, ident requestcontext.Identity) *http.Request {
	return req.WithContext(requestcontext.WithUser(req.Context(), ident))
}

// AsAdmin authenticates the request as a fresh admin.
func AsAdmin(req *http.Request) *http.Request {
	return WithIdentity(req, requestcontext.Identity{ID: id.NewUserID(), Role: id.RoleAdmin})
}

// AsCustomer authenticates the request as the given customer.
func AsCustomer(req *http.Request, userID id.UserID) *http.Request {
	return WithIdentity(req, requestcontext.Identity{ID: userID, Role: id.RoleCustomer})
}

// AsVendor authenticates the request as a vendor user bound to vendorID.
func AsVendor(req *http.Request, userID id.UserID, vendorID id.VendorID) *http.Request {
	return WithIdentity(req, requestcontext.Identity{ID: userID, Role: id.RoleVendor, VendorID: vendorID})
}
