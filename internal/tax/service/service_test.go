package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"storefront/internal/tax/models"
	"storefront/internal/tax/store"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	s.service = New(store.NewInMemory(), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	for _, in := range []models.CreateRate{
		{Country: "US", Rate: 0, Name: "No federal sales tax", Active: true},
		{Country: "US", Region: "CA", Rate: 7.25, Name: "California", Active: true},
		{Country: "US", Region: "CA", Category: "food", Rate: 0, Name: "California groceries", Active: true},
		{Country: "DE", Rate: 19, Name: "MwSt", Active: true},
		{Country: "DE", Category: "books", Rate: 7, Name: "MwSt reduced", Active: true},
		{Country: "FR", Rate: 20, Name: "TVA", Active: false},
	} {
		_, err := s.service.CreateRate(s.ctx, in)
		s.Require().NoError(err)
	}
}

func (s *ServiceSuite) calc(country, region, category string, amount float64, inclusive bool) (*models.Calculation, error) {
	if category == "" {
		category = models.DefaultCategory
	}
	return s.service.Calculate(s.ctx, models.CalculateInput{
		Lookup: models.Lookup{Country: country, Region: region, Category: category},
		Amount: amount, Inclusive: inclusive,
	})
}

func (s *ServiceSuite) TestMostSpecificRateWins() {
	tests := []struct {
		name                      string
		country, region, category string
		wantRate                  string
	}{
		{"country only", "US", "", "", "No federal sales tax"},
		{"region", "US", "CA", "", "California"},
		{"region and category", "US", "CA", "food", "California groceries"},
		{"category falls back to region", "US", "CA", "books", "California"},
		{"country and category", "DE", "", "books", "MwSt reduced"},
		{"unknown region uses country", "DE", "BY", "", "MwSt"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			c, err := s.calc(tt.country, tt.region, tt.category, 100, false)
			s.Require().NoError(err)
			s.Equal(tt.wantRate, c.Rate.Name)
		})
	}
}

func (s *ServiceSuite) TestExclusiveAndInclusive() {
	c, err := s.calc("DE", "", "", 100, false)
	s.Require().NoError(err)
	s.Equal(19.0, c.Tax)
	s.Equal(119.0, c.Total)

	c, err = s.calc("DE", "", "", 119, true)
	s.Require().NoError(err)
	s.Equal(100.0, c.Net)
	s.Equal(19.0, c.Tax)
	s.Equal(119.0, c.Total)
}

func (s *ServiceSuite) TestNoApplicableRate() {
	for _, country := range []string{"FR", "JP"} {
		_, err := s.calc(country, "", "", 10, false)
		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Equal(dErrors.CodeNotFound, de.Code)
		s.Equal("No tax rate found for "+country, de.Message)
	}
}

func (s *ServiceSuite) TestRatesAndDelete() {
	page, err := s.service.Rates(s.ctx, "US", 0, 2)
	s.Require().NoError(err)
	s.Equal(3, page.Total)
	s.Len(page.Items, 2)
	s.Equal("", page.Items[0].Region)

	s.Require().NoError(s.service.DeleteRate(s.ctx, page.Items[0].ID))
	_, err = s.calc("US", "", "", 10, false)
	s.Error(err)

	err = s.service.DeleteRate(s.ctx, id.NewObjectID())
	de, ok := dErrors.As(err)
	s.Require().True(ok)
	s.Equal("Tax rate not found", de.Message)
}

func TestApply_RoundsToCents(t *testing.T) {
	rate := &models.TaxRate{Rate: 7.25}
	c := Apply(19.99, rate, false)
	assert.Equal(t, 1.45, c.Tax)
	assert.Equal(t, 21.44, c.Total)

	c = Apply(10, rate, true)
	require.NotNil(t, c.Rate)
	assert.Equal(t, 9.32, c.Net)
	assert.Equal(t, 0.68, c.Tax)
}
