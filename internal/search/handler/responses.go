package handler

import (
	"time"

	"storefront/internal/search/models"
	id "storefront/pkg/domain"
)

type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Brand       string    `json:"brand"`
	Price       float64   `json:"price"`
	Rating      float64   `json:"rating"`
	InStock     bool      `json:"inStock"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	Score       *int      `json:"score,omitempty"`
}

type SuggestionsResponse struct {
	Query    string   `json:"query"`
	Products []string `json:"products"`
	Queries  []string `json:"queries"`
}

type PopularQueryResponse struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

func toProductResponse(p models.Product) ProductResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Brand:       p.Brand,
		Price:       id.RoundMoney(p.Price),
		Rating:      p.Rating,
		InStock:     p.InStock,
		Tags:        tags,
		CreatedAt:   p.CreatedAt,
	}
}

func toHitResponses(hits []models.Hit) []ProductResponse {
	out := make([]ProductResponse, len(hits))
	for i, h := range hits {
		out[i] = toProductResponse(h.Product)
		score := h.Score
		out[i].Score = &score
	}
	return out
}
