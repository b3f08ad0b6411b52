package handler

import (
	"time"

	"storefront/internal/abtest/models"
)

type VariantResponse struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Weight      int     `json:"weight"`
	Impressions int64   `json:"impressions"`
	Conversions int64   `json:"conversions"`
	Revenue     float64 `json:"revenue"`
}

type TestResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Status      string            `json:"status"`
	Goal        string            `json:"goal"`
	Variants    []VariantResponse `json:"variants"`
	StartDate   *time.Time        `json:"startDate,omitempty"`
	EndDate     *time.Time        `json:"endDate,omitempty"`
	Winner      string            `json:"winner,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	StartedAt   *time.Time        `json:"startedAt,omitempty"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
}

func toVariantResponse(v models.Variant) VariantResponse {
	return VariantResponse{
		Key:         v.Key,
		Name:        v.Name,
		Weight:      v.Weight,
		Impressions: v.Impressions,
		Conversions: v.Conversions,
		Revenue:     v.Revenue,
	}
}

func toTestResponse(t *models.Test) TestResponse {
	variants := make([]VariantResponse, len(t.Variants))
	for i, v := range t.Variants {
		variants[i] = toVariantResponse(v)
	}
	return TestResponse{
		ID:          t.ID.String(),
		Name:        t.Name,
		Description: t.Description,
		Status:      string(t.Status),
		Goal:        string(t.Goal),
		Variants:    variants,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Winner:      t.Winner,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		StartedAt:   t.StartedAt,
		CompletedAt: t.CompletedAt,
	}
}

func toTestResponses(tests []*models.Test) []TestResponse {
	out := make([]TestResponse, len(tests))
	for i, t := range tests {
		out[i] = toTestResponse(t)
	}
	return out
}

type VariantResultResponse struct {
	Key               string  `json:"key"`
	Name              string  `json:"name"`
	IsControl         bool    `json:"isControl"`
	Impressions       int64   `json:"impressions"`
	Conversions       int64   `json:"conversions"`
	ConversionRate    float64 `json:"conversionRate"`
	Revenue           float64 `json:"revenue"`
	RevenuePerVisitor float64 `json:"revenuePerVisitor"`
	Lift              float64 `json:"lift"`
	ZScore            float64 `json:"zScore"`
	PValue            float64 `json:"pValue"`
	Significant       bool    `json:"significant"`
}

type ResultsResponse struct {
	TestID               string                  `json:"testId"`
	Name                 string                  `json:"name"`
	Status               string                  `json:"status"`
	Goal                 string                  `json:"goal"`
	Variants             []VariantResultResponse `json:"variants"`
	WinnerCandidate      string                  `json:"winnerCandidate,omitempty"`
	SampleSizeSufficient bool                    `json:"sampleSizeSufficient"`
	TotalImpressions     int64                   `json:"totalImpressions"`
	GeneratedAt          time.Time               `json:"generatedAt"`
}

func toResultsResponse(r *models.Results) ResultsResponse {
	variants := make([]VariantResultResponse, len(r.Variants))
	for i, v := range r.Variants {
		variants[i] = VariantResultResponse(v)
	}
	return ResultsResponse{
		TestID:               r.TestID,
		Name:                 r.Name,
		Status:               string(r.Status),
		Goal:                 string(r.Goal),
		Variants:             variants,
		WinnerCandidate:      r.WinnerCandidate,
		SampleSizeSufficient: r.SampleSizeSufficient,
		TotalImpressions:     r.TotalImpressions,
		GeneratedAt:          r.GeneratedAt,
	}
}

type AssignmentResponse struct {
	TestID     string `json:"testId"`
	UserID     string `json:"userId"`
	VariantKey string `json:"variantKey"`
	Bucket     int    `json:"bucket"`
}
