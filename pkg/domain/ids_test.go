package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "storefront/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseVendorID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(validUUID), id)
	})
}

// TestParseID_SecurityInvariants validates that parsing rejects hostile input
// at API entry points.
func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE users;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Braced UUID", "{550e8400-e29b-41d4-a716-446655440000}", true},
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVendorID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errUser := ParseUserID(validUUID)
		_, errVendor := ParseVendorID(validUUID)
		_, errPayout := ParsePayoutID(validUUID)
		_, errOrder := ParseOrderID(validUUID)

		require.NoError(t, errUser)
		require.NoError(t, errVendor)
		require.NoError(t, errPayout)
		require.NoError(t, errOrder)
	})

	for _, input := range []string{"", "invalid", uuid.Nil.String()} {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errUser := ParseUserID(input)
			_, errVendor := ParseVendorID(input)
			_, errPayout := ParsePayoutID(input)
			_, errOrder := ParseOrderID(input)

			require.Error(t, errUser)
			require.Error(t, errVendor)
			require.Error(t, errPayout)
			require.Error(t, errOrder)
		})
	}
}

func TestObjectID(t *testing.T) {
	t.Run("generated ids are valid and unique", func(t *testing.T) {
		seen := make(map[ObjectID]struct{}, 1000)
		for i := 0; i < 1000; i++ {
			id := NewObjectID()
			require.True(t, IsObjectID(id.String()))
			_, dup := seen[id]
			require.False(t, dup, "duplicate id %s", id)
			seen[id] = struct{}{}
		}
	})

	t.Run("timestamp round-trips to the second", func(t *testing.T) {
		at := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
		assert.Equal(t, at, NewObjectIDAt(at).Timestamp())
	})

	t.Run("parse normalizes case", func(t *testing.T) {
		id, err := ParseObjectID("507F1F77BCF86CD799439011")
		require.NoError(t, err)
		assert.Equal(t, ObjectID("507f1f77bcf86cd799439011"), id)
	})

	t.Run("parse rejects malformed ids", func(t *testing.T) {
		for _, input := range []string{"", "507f1f77bcf86cd79943901", "507f1f77bcf86cd79943901g", uuid.NewString()} {
			_, err := ParseObjectID(input)
			require.Error(t, err, input)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("vendor")
	require.NoError(t, err)
	assert.Equal(t, RoleVendor, r)

	_, err = ParseRole("superuser")
	require.Error(t, err)
	_, err = ParseRole("")
	require.Error(t, err)
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 8.5, RoundMoney(8.499999))
	assert.Equal(t, 10.01, RoundMoney(10.006))
	assert.Equal(t, -2.35, RoundMoney(-2.346))
	assert.Equal(t, 0.1235, RoundTo(0.12346, 4))
}
