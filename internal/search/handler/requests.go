package handler

import (
	"strings"

	"storefront/internal/search/models"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/platform/query"
	"storefront/pkg/platform/validation"
)

// parseSearch reads GET /search. q is required.
func parseSearch(p *query.Parser) (models.Query, httputil.PageRequest, error) {
	v := p.Violations()
	text := p.String("q", "")
	v.MaxLength("q", text, models.MaxQueryLength, "Search query")
	v.Required("q", text, "Search query is required")
	q, page := parseCommon(p)
	q.Text = text
	if err := p.Err(); err != nil {
		return models.Query{}, page, err
	}
	return q, page, nil
}

// parseAdvanced reads GET /search/advanced. q is optional; list, stock and
// creation-date filters are added.
func parseAdvanced(p *query.Parser) (models.Query, httputil.PageRequest, error) {
	v := p.Violations()
	text := p.String("q", "")
	v.MaxLength("q", text, models.MaxQueryLength, "Search query")
	q, page := parseCommon(p)
	q.Text = text
	q.Brands = p.List("brands")
	q.Tags = p.List("tags")
	q.InStock = p.Bool("inStock", "In stock")
	q.CreatedFrom = p.Date("createdFrom", "Created from")
	q.CreatedTo = p.Date("createdTo", "Created to")
	v.DateRange("createdFrom", q.CreatedFrom, q.CreatedTo, "Start date must be before end date")
	if err := p.Err(); err != nil {
		return models.Query{}, page, err
	}
	return q, page, nil
}

func parseCommon(p *query.Parser) (models.Query, httputil.PageRequest) {
	v := p.Violations()
	page := p.Pagination(models.DefaultSearchLimit, query.MaxPageLimit)
	q := models.Query{
		Category:  p.String("category", ""),
		MinPrice:  p.Float("minPrice", "Minimum price"),
		MaxPrice:  p.Float("maxPrice", "Maximum price"),
		MinRating: p.Float("minRating", "Minimum rating"),
		Sort:      models.SortOption(p.Enum("sort", "Sort", string(models.SortRelevance), models.SortOptions...)),
		Offset:    page.Offset(),
		Limit:     page.Limit,
	}
	if q.MinPrice != nil {
		v.NonNegative("minPrice", *q.MinPrice, "Minimum price must be greater than or equal to 0")
	}
	if q.MaxPrice != nil {
		v.NonNegative("maxPrice", *q.MaxPrice, "Maximum price must be greater than or equal to 0")
	}
	if q.MinRating != nil {
		v.Between("minRating", *q.MinRating, 0, models.MaxRating, "Minimum rating must be between 0 and 5")
	}
	v.NumberRange("minPrice", q.MinPrice, q.MaxPrice, "Minimum price cannot be greater than maximum price")
	return q, page
}

// parseSuggest reads GET /search/suggestions.
func parseSuggest(p *query.Parser) (string, int, error) {
	v := p.Violations()
	text := p.String("q", "")
	if v.Required("q", text, "Search query is required") && len([]rune(text)) < models.MinSuggestionLength {
		v.Addf("q", "Search query must be at least %d characters", models.MinSuggestionLength)
	}
	limit := parseLimit(p, models.DefaultSuggestLimit, models.MaxSuggestLimit)
	return text, limit, p.Err()
}

// parseLimit reads a bare limit parameter without page.
func parseLimit(p *query.Parser, def, max int) int {
	limit := p.Int("limit", "Limit", def)
	if p.Violations().Has("limit") {
		return def
	}
	if limit < 1 {
		p.Violations().Add("limit", "Limit must be greater than 0")
		return def
	}
	return min(limit, max)
}

// IndexProductRequest is the body of POST /search/products.
type IndexProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Brand       string   `json:"brand"`
	Price       float64  `json:"price"`
	Rating      float64  `json:"rating"`
	InStock     bool     `json:"inStock"`
	Tags        []string `json:"tags"`
}

func (r *IndexProductRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	r.Brand = strings.TrimSpace(r.Brand)
	tags := r.Tags[:0]
	for _, t := range r.Tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tags = append(tags, t)
		}
	}
	r.Tags = tags
}

func (r *IndexProductRequest) Validate() error {
	var v validation.Violations
	v.MaxLength("name", r.Name, models.MaxProductNameLength, "Name")
	v.Required("name", r.Name, "Name is required")
	v.NonNegative("price", r.Price, "Price must be greater than or equal to 0")
	v.Between("rating", r.Rating, 0, models.MaxRating, "Rating must be between 0 and 5")
	return v.Err()
}

func (r *IndexProductRequest) ToModel() models.Product {
	return models.Product{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Brand:       r.Brand,
		Price:       r.Price,
		Rating:      r.Rating,
		InStock:     r.InStock,
		Tags:        r.Tags,
	}
}
