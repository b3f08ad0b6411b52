package models

import "time"

// SignificanceLevel is the p-value below which a difference is reported as significant.
const SignificanceLevel = 0.05

// MinSampleSize is the impressions every variant needs before results are
// considered reliable.
const MinSampleSize = 100

// VariantResult is the computed performance of one variant against the control.
type VariantResult struct {
	Key               string
	Name              string
	IsControl         bool
	Impressions       int64
	Conversions       int64
	ConversionRate    float64
	Revenue           float64
	RevenuePerVisitor float64
	Lift              float64
	ZScore            float64
	PValue            float64
	Significant       bool
}

// Results summarizes a test.
type Results struct {
	TestID               string
	Name                 string
	Status               Status
	Goal                 Goal
	Variants             []VariantResult
	WinnerCandidate      string
	SampleSizeSufficient bool
	TotalImpressions     int64
	GeneratedAt          time.Time
}
