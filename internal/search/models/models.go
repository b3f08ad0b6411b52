// Package models holds the catalog and search types.
package models

import (
	"slices"
	"time"

	id "storefront/pkg/domain"
)

const (
	MaxQueryLength       = 200
	MinSuggestionLength  = 2
	MaxRating            = 5.0
	DefaultSearchLimit   = 20
	DefaultSuggestLimit  = 5
	MaxSuggestLimit      = 20
	DefaultPopularLimit  = 10
	MaxPopularLimit      = 50
	MaxProductNameLength = 200
)

// Relevance weights applied per query term.
const (
	WeightName        = 3
	WeightTag         = 2
	WeightDescription = 1
)

type Product struct {
	ID          id.ObjectID
	Name        string
	Description string
	Category    string
	Brand       string
	Price       float64
	Rating      float64
	InStock     bool
	Tags        []string
	CreatedAt   time.Time
}

func (p Product) Clone() Product {
	p.Tags = slices.Clone(p.Tags)
	return p
}

type SortOption string

const (
	SortRelevance SortOption = "relevance"
	SortPriceAsc  SortOption = "price_asc"
	SortPriceDesc SortOption = "price_desc"
	SortRating    SortOption = "rating"
	SortNewest    SortOption = "newest"
)

var SortOptions = []string{
	string(SortRelevance), string(SortPriceAsc), string(SortPriceDesc), string(SortRating), string(SortNewest),
}

// Query is a validated search. Nil pointers and empty slices are unset filters.
type Query struct {
	Text        string
	Category    string
	Brands      []string
	Tags        []string
	MinPrice    *float64
	MaxPrice    *float64
	MinRating   *float64
	InStock     *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Sort        SortOption
	Offset      int
	Limit       int
}

// Hit is a matching product with its relevance score.
type Hit struct {
	Product Product
	Score   int
}

type ResultPage struct {
	Items []Hit
	Total int
}

type Suggestions struct {
	Products []string
	Queries  []string
}

// PopularQuery is a recorded search term and how often it was searched.
type PopularQuery struct {
	Query string
	Count int64
}
