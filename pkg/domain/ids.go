// Package domain holds identifier and enum primitives shared across modules.
// Parse functions are meant for trust boundaries; casting skips validation.
package domain

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	dErrors "storefront/pkg/domain-errors"
)

// UUID-backed identifiers. Distinct types keep a vendor ID from being passed
// where a user ID is expected.
type (
	UserID   uuid.UUID
	VendorID uuid.UUID
	PayoutID uuid.UUID
	OrderID  uuid.UUID
)

func (id UserID) String() string   { return uuid.UUID(id).String() }
func (id VendorID) String() string { return uuid.UUID(id).String() }
func (id PayoutID) String() string { return uuid.UUID(id).String() }
func (id OrderID) String() string  { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id VendorID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id UserID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id VendorID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id PayoutID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id OrderID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }

func NewUserID() UserID     { return UserID(uuid.New()) }
func NewVendorID() VendorID { return VendorID(uuid.New()) }
func NewPayoutID() PayoutID { return PayoutID(uuid.New()) }
func NewOrderID() OrderID   { return OrderID(uuid.New()) }

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

func ParseVendorID(s string) (VendorID, error) {
	u, err := parseUUID(s, "vendor id")
	return VendorID(u), err
}

func ParsePayoutID(s string) (PayoutID, error) {
	u, err := parseUUID(s, "payout id")
	return PayoutID(u), err
}

func ParseOrderID(s string) (OrderID, error) {
	u, err := parseUUID(s, "order id")
	return OrderID(u), err
}

// parseUUID accepts only the canonical 36 character form and rejects the nil UUID.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	if len(s) != 36 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}

// ObjectID is a 24 character lowercase hex identifier: a 4 byte unix
// timestamp, 5 random bytes and a 3 byte counter.
type ObjectID string

var (
	objectIDCounter = randomCounter()
	objectIDProcess = randomProcess()
)

// NewObjectID generates an ObjectID for the current time.
func NewObjectID() ObjectID {
	return NewObjectIDAt(time.Now())
}

// NewObjectIDAt generates an ObjectID with the given creation time.
func NewObjectIDAt(t time.Time) ObjectID {
	var b [12]byte
	binary.BigEndian.PutUint32(b[0:4], uint32(t.Unix()))
	copy(b[4:9], objectIDProcess[:])
	c := objectIDCounter.Add(1)
	b[9] = byte(c >> 16)
	b[10] = byte(c >> 8)
	b[11] = byte(c)
	return ObjectID(hex.EncodeToString(b[:]))
}

// ParseObjectID validates a 24 character hex string. Uppercase input is
// normalized to lowercase.
func ParseObjectID(s string) (ObjectID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	if !IsObjectID(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid id format")
	}
	return ObjectID(strings.ToLower(s)), nil
}

// IsObjectID reports whether s is 24 hex characters.
func IsObjectID(s string) bool {
	if len(s) != 24 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func (id ObjectID) String() string { return string(id) }

// Timestamp returns the creation time encoded in the id.
func (id ObjectID) Timestamp() time.Time {
	b, err := hex.DecodeString(string(id))
	if err != nil || len(b) != 12 {
		return time.Time{}
	}
	return time.Unix(int64(binary.BigEndian.Uint32(b[0:4])), 0).UTC()
}

func randomCounter() *atomic.Uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	c := &atomic.Uint32{}
	c.Store(binary.BigEndian.Uint32(b[:]) & 0x00ffffff)
	return c
}

func randomProcess() [5]byte {
	var b [5]byte
	_, _ = rand.Read(b[:])
	return b
}
