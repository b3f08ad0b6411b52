package service

import (
	"cmp"
	"slices"
	"strings"

	"storefront/internal/search/models"
)

// terms splits a query into lowercase words.
func terms(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// score sums the per-term weights for name, tag and description matches.
func score(p models.Product, words []string) int {
	name := strings.ToLower(p.Name)
	desc := strings.ToLower(p.Description)
	total := 0
	for _, w := range words {
		if strings.Contains(name, w) {
			total += models.WeightName
		}
		if slices.ContainsFunc(p.Tags, func(tag string) bool {
			return strings.Contains(strings.ToLower(tag), w)
		}) {
			total += models.WeightTag
		}
		if strings.Contains(desc, w) {
			total += models.WeightDescription
		}
	}
	return total
}

func matchesFilters(p models.Product, q models.Query) bool {
	if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
		return false
	}
	if len(q.Brands) > 0 && !slices.ContainsFunc(q.Brands, func(b string) bool {
		return strings.EqualFold(b, p.Brand)
	}) {
		return false
	}
	if len(q.Tags) > 0 && !slices.ContainsFunc(q.Tags, func(t string) bool {
		return slices.ContainsFunc(p.Tags, func(pt string) bool { return strings.EqualFold(pt, t) })
	}) {
		return false
	}
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}
	if q.MinRating != nil && p.Rating < *q.MinRating {
		return false
	}
	if q.InStock != nil && p.InStock != *q.InStock {
		return false
	}
	if q.CreatedFrom != nil && p.CreatedAt.Before(*q.CreatedFrom) {
		return false
	}
	if q.CreatedTo != nil && p.CreatedAt.After(*q.CreatedTo) {
		return false
	}
	return true
}

// rank filters and scores products. Without query text every filtered product
// matches with score 0.
func rank(products []models.Product, q models.Query) []models.Hit {
	words := terms(q.Text)
	hits := make([]models.Hit, 0, len(products))
	for _, p := range products {
		if !matchesFilters(p, q) {
			continue
		}
		s := 0
		if len(words) > 0 {
			if s = score(p, words); s == 0 {
				continue
			}
		}
		hits = append(hits, models.Hit{Product: p, Score: s})
	}
	slices.SortStableFunc(hits, compareHits(q.Sort))
	return hits
}

func compareHits(sort models.SortOption) func(a, b models.Hit) int {
	byName := func(a, b models.Hit) int {
		return cmp.Compare(strings.ToLower(a.Product.Name), strings.ToLower(b.Product.Name))
	}
	return func(a, b models.Hit) int {
		var c int
		switch sort {
		case models.SortPriceAsc:
			c = cmp.Compare(a.Product.Price, b.Product.Price)
		case models.SortPriceDesc:
			c = cmp.Compare(b.Product.Price, a.Product.Price)
		case models.SortRating:
			c = cmp.Compare(b.Product.Rating, a.Product.Rating)
		case models.SortNewest:
			c = b.Product.CreatedAt.Compare(a.Product.CreatedAt)
		default:
			c = cmp.Compare(b.Score, a.Score)
		}
		if c != 0 {
			return c
		}
		return byName(a, b)
	}
}
