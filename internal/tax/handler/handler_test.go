package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"storefront/internal/tax/handler/mocks"
	"storefront/internal/tax/models"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
	h.RegisterAdmin(s.router)
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) TestCalculateValidation() {
	s.service.EXPECT().Calculate(gomock.Any(), gomock.Any()).Times(0)
	cases := []struct {
		path string
		want string
	}{
		{"/taxes/calculate?country=US", "Amount is required"},
		{"/taxes/calculate?amount=-1&country=US", "Amount must be greater than or equal to 0"},
		{"/taxes/calculate?amount=abc&country=US", "Amount must be a number"},
		{"/taxes/calculate?amount=10", "Country is required"},
		{"/taxes/calculate?amount=10&country=USA", "Country must be a valid 2-letter ISO country code"},
		{"/taxes/calculate?amount=10&country=US&inclusive=perhaps", "Inclusive must be true or false"},
	}
	for _, tc := range cases {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, tc.path))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, tc.want)
	}
}

func (s *HandlerSuite) TestCalculate() {
	rate := &models.TaxRate{ID: id.NewObjectID(), Country: "US", Region: "CA", Category: "standard", Rate: 7.25, Name: "California", Active: true}

	s.Run("defaults category and normalizes codes", func() {
		s.service.EXPECT().
			Calculate(gomock.Any(), models.CalculateInput{
				Lookup: models.Lookup{Country: "US", Region: "CA", Category: "standard"},
				Amount: 100,
			}).
			Return(&models.Calculation{Amount: 100, Rate: rate, Net: 100, Tax: 7.25, Total: 107.25}, nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/taxes/calculate?amount=100&country=us&region=ca"))
		env := testutil.AssertSuccess[CalculationResponse](s.T(), rr, http.StatusOK)
		s.Equal(7.25, env.Data.TaxAmount)
		s.Equal(107.25, env.Data.TotalAmount)
		s.Equal("California", env.Data.AppliedRate.Name)
	})

	s.Run("no rate", func() {
		s.service.EXPECT().Calculate(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "No tax rate found for JP"))
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/taxes/calculate?amount=1&country=JP"))
		testutil.AssertError(s.T(), rr, http.StatusNotFound, "No tax rate found for JP")
	})
}

func (s *HandlerSuite) TestCreateRate() {
	s.Run("rate bounds", func() {
		s.service.EXPECT().CreateRate(gomock.Any(), gomock.Any()).Times(0)
		body := map[string]any{"country": "FR", "rate": 120, "name": "TVA"}
		rr := testutil.DoRequest(s.router, testutil.AsAdmin(testutil.NewJSONRequest(s.T(), http.MethodPost, "/taxes/rates", body)))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "Rate must be between 0 and 100")
	})

	s.Run("active by default", func() {
		s.service.EXPECT().
			CreateRate(gomock.Any(), models.CreateRate{Country: "FR", Rate: 20, Name: "TVA", Active: true}).
			Return(&models.TaxRate{ID: id.NewObjectID(), Country: "FR", Category: "standard", Rate: 20, Name: "TVA", Active: true}, nil)
		body := map[string]any{"country": "fr", "rate": 20, "name": "TVA"}
		rr := testutil.DoRequest(s.router, testutil.AsAdmin(testutil.NewJSONRequest(s.T(), http.MethodPost, "/taxes/rates", body)))
		env := testutil.AssertSuccess[RateResponse](s.T(), rr, http.StatusCreated)
		s.True(env.Data.Active)
	})
}

func (s *HandlerSuite) TestDeleteRate() {
	s.Run("malformed id", func() {
		rr := testutil.DoRequest(s.router, testutil.AsAdmin(testutil.NewRequest(s.T(), http.MethodDelete, "/taxes/rates/123")))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "Invalid tax rate ID format")
	})

	s.Run("deleted", func() {
		rateID := id.NewObjectID()
		s.service.EXPECT().DeleteRate(gomock.Any(), rateID).Return(nil)
		rr := testutil.DoRequest(s.router, testutil.AsAdmin(testutil.NewRequest(s.T(), http.MethodDelete, "/taxes/rates/"+rateID.String())))
		testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
	})
}

func (s *HandlerSuite) TestRates() {
	s.service.EXPECT().Rates(gomock.Any(), "DE", 0, 20).Return(&models.RatePage{}, nil)
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/taxes/rates?country=de"))
	env := testutil.AssertSuccess[[]RateResponse](s.T(), rr, http.StatusOK)
	s.Empty(env.Data)
}
