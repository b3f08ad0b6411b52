package service

import (
	"math"

	"storefront/internal/abtest/models"
	id "storefront/pkg/domain"
)

// computeResults compares every variant with the control (the first variant)
// using a two-proportion z-test on conversion rates.
func computeResults(t *models.Test) []models.VariantResult {
	results := make([]models.VariantResult, 0, len(t.Variants))
	if len(t.Variants) == 0 {
		return results
	}
	control := t.Variants[0]
	controlMetric := goalMetric(t.Goal, control)

	for i, v := range t.Variants {
		r := models.VariantResult{
			Key:               v.Key,
			Name:              v.Name,
			IsControl:         i == 0,
			Impressions:       v.Impressions,
			Conversions:       v.Conversions,
			ConversionRate:    id.RoundTo(rate(v.Conversions, v.Impressions), 4),
			Revenue:           id.RoundMoney(v.Revenue),
			RevenuePerVisitor: id.RoundMoney(perVisitor(v.Revenue, v.Impressions)),
			PValue:            1,
		}
		if i > 0 {
			if controlMetric > 0 {
				r.Lift = id.RoundTo((goalMetric(t.Goal, v)-controlMetric)/controlMetric*100, 2)
			}
			z, p := twoProportionZTest(control.Conversions, control.Impressions, v.Conversions, v.Impressions)
			r.ZScore = id.RoundTo(z, 4)
			r.PValue = id.RoundTo(p, 4)
			r.Significant = p < models.SignificanceLevel
		}
		results = append(results, r)
	}
	return results
}

// winnerCandidate picks the variant with the best goal metric. Ties keep the
// earlier variant; a test without impressions has no candidate.
func winnerCandidate(t *models.Test) string {
	best := ""
	bestMetric := -1.0
	for _, v := range t.Variants {
		if v.Impressions == 0 {
			continue
		}
		if m := goalMetric(t.Goal, v); m > bestMetric {
			best, bestMetric = v.Key, m
		}
	}
	return best
}

func sampleSizeSufficient(t *models.Test) bool {
	if len(t.Variants) == 0 {
		return false
	}
	for _, v := range t.Variants {
		if v.Impressions < models.MinSampleSize {
			return false
		}
	}
	return true
}

func goalMetric(goal models.Goal, v models.Variant) float64 {
	if goal == models.GoalRevenue {
		return perVisitor(v.Revenue, v.Impressions)
	}
	return rate(v.Conversions, v.Impressions)
}

// rate is capped at 1: a conversion can be tracked before its impression.
func rate(conversions, impressions int64) float64 {
	if impressions == 0 {
		return 0
	}
	return float64(min(conversions, impressions)) / float64(impressions)
}

func perVisitor(revenue float64, impressions int64) float64 {
	if impressions == 0 {
		return 0
	}
	return revenue / float64(impressions)
}

// twoProportionZTest returns the z score of b against a and the two-sided
// p-value. Degenerate samples yield (0, 1). Conversions beyond the
// impression count are ignored.
func twoProportionZTest(convA, nA, convB, nB int64) (float64, float64) {
	if nA <= 0 || nB <= 0 {
		return 0, 1
	}
	convA = min(max(convA, 0), nA)
	convB = min(max(convB, 0), nB)
	pA := float64(convA) / float64(nA)
	pB := float64(convB) / float64(nB)
	pooled := float64(convA+convB) / float64(nA+nB)
	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(nA) + 1/float64(nB)))
	if se == 0 || math.IsNaN(se) || math.IsInf(se, 0) {
		return 0, 1
	}
	z := (pB - pA) / se
	p := math.Erfc(math.Abs(z) / math.Sqrt2)
	return z, p
}
