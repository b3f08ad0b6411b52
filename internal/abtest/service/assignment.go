package service

import (
	"hash/fnv"

	"storefront/internal/abtest/models"
	id "storefront/pkg/domain"
)

// bucketFor maps a user to [0,100) deterministically per test.
func bucketFor(testID id.ObjectID, userID id.UserID) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(testID.String() + ":" + userID.String()))
	return int(h.Sum32() % models.TotalWeight)
}

// variantForBucket walks the cumulative weights. Weights sum to 100, so the
// last variant is only a guard against rounding in legacy data.
func variantForBucket(variants []models.Variant, bucket int) string {
	cumulative := 0
	for _, v := range variants {
		cumulative += v.Weight
		if bucket < cumulative {
			return v.Key
		}
	}
	if len(variants) == 0 {
		return ""
	}
	return variants[len(variants)-1].Key
}
