package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"storefront/internal/abtest/handler/mocks"
	"storefront/internal/abtest/models"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/testutil"
)

// =============================================================================
// A/B Test Handler Suite
// =============================================================================
// Justification: the handler owns query/body validation and must reject bad
// input before the service is reached. The service is mocked so every
// rejected request can assert it was never called.

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
	testID  id.ObjectID
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
	h.RegisterParticipant(s.router)
	s.testID = id.NewObjectID()
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) sampleTest() *models.Test {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	return &models.Test{
		ID:     s.testID,
		Name:   "Checkout button color",
		Status: models.StatusRunning,
		Goal:   models.GoalConversion,
		Variants: []models.Variant{
			{Key: "control", Name: "Blue", Weight: 50, Impressions: 120, Conversions: 12},
			{Key: "green", Name: "Green", Weight: 50, Impressions: 118, Conversions: 20},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *HandlerSuite) TestList() {
	s.Run("page zero is rejected before the service", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/ab-tests?page=0"))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "Page must be greater than 0")
	})

	s.Run("inverted created range is rejected", func() {
		s.service.EXPECT().List(gomock.Any(), gomock.Any()).Times(0)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet,
			"/ab-tests?createdFrom=2026-06-01&createdTo=2026-05-01"))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "Start date must be before end date")
	})

	s.Run("unknown status is rejected", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/ab-tests?status=archived"))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "Status must be one of: draft, running, paused, completed")
	})

	s.Run("valid query returns a paginated list", func() {
		s.service.EXPECT().List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, f models.ListFilter) (*models.TestPage, error) {
				s.Equal(models.StatusRunning, f.Status)
				s.Equal(models.SortByName, f.SortBy)
				s.Equal(models.OrderAsc, f.Order)
				s.Equal(10, f.Offset)
				s.Equal(10, f.Limit)
				return &models.TestPage{Items: []*models.Test{s.sampleTest()}, Total: 11}, nil
			})

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet,
			"/ab-tests?status=running&sortBy=name&order=asc&page=2&limit=10"))

		env := testutil.AssertSuccess[[]TestResponse](s.T(), rr, http.StatusOK)
		s.Require().NotNil(env.Results)
		s.Equal(1, *env.Results)
		s.Require().NotNil(env.Pagination)
		s.Equal(2, env.Pagination.TotalPages)
		s.False(env.Pagination.HasNextPage)
		s.True(env.Pagination.HasPrevPage)
		s.Equal("green", env.Data[0].Variants[1].Key)
	})
}

func (s *HandlerSuite) TestGet() {
	s.Run("malformed id is rejected", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/ab-tests/not-an-id"))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "Invalid A/B test ID format")
	})

	s.Run("not found maps to 404", func() {
		s.service.EXPECT().Get(gomock.Any(), s.testID).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "A/B test not found"))
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/ab-tests/"+s.testID.String()))
		testutil.AssertError(s.T(), rr, http.StatusNotFound, "A/B test not found")
	})

	s.Run("repeated GET returns the same envelope shape", func() {
		s.service.EXPECT().Get(gomock.Any(), s.testID).Return(s.sampleTest(), nil).Times(2)

		first := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/ab-tests/"+s.testID.String()))
		second := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/ab-tests/"+s.testID.String()))

		s.Equal(first.Code, second.Code)
		a, b := testutil.DecodeMap(s.T(), first), testutil.DecodeMap(s.T(), second)
		s.Equal(keys(a), keys(b))
		s.Equal(a["data"], b["data"])
	})
}

func (s *HandlerSuite) TestCreate() {
	s.Run("weights not summing to 100 are rejected", func() {
		body := map[string]any{
			"name": "Hero banner",
			"variants": []map[string]any{
				{"key": "a", "weight": 50},
				{"key": "b", "weight": 40},
			},
		}
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/ab-tests", body))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "Variant weights must sum to 100")
	})

	s.Run("valid request creates the test", func() {
		s.service.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in models.CreateTest) (*models.Test, error) {
				s.Equal(models.GoalConversion, in.Goal)
				s.Equal("a", in.Variants[0].Name)
				s.Require().NotNil(in.StartDate)
				t := s.sampleTest()
				t.Status = models.StatusDraft
				return t, nil
			})

		body := map[string]any{
			"name":      "Hero banner",
			"startDate": "2026-05-01",
			"endDate":   "2026-06-01",
			"variants": []map[string]any{
				{"key": "a", "weight": 50},
				{"key": "b", "name": "Variant B", "weight": 50},
			},
		}
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/ab-tests", body))
		env := testutil.AssertSuccess[TestResponse](s.T(), rr, http.StatusCreated)
		s.Equal("draft", env.Data.Status)
	})
}

func (s *HandlerSuite) TestTransitions() {
	s.Run("invalid transition maps to 422", func() {
		s.service.EXPECT().Pause(gomock.Any(), s.testID).
			Return(nil, dErrors.New(dErrors.CodeBusinessRule, "Cannot move A/B test from draft to paused"))
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPatch, "/ab-tests/"+s.testID.String()+"/pause"))
		testutil.AssertError(s.T(), rr, http.StatusUnprocessableEntity, "Cannot move A/B test from draft to paused")
	})

	s.Run("start returns the running test", func() {
		s.service.EXPECT().Start(gomock.Any(), s.testID).Return(s.sampleTest(), nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPatch, "/ab-tests/"+s.testID.String()+"/start"))
		env := testutil.AssertSuccess[TestResponse](s.T(), rr, http.StatusOK)
		s.Equal("running", env.Data.Status)
	})
}

func (s *HandlerSuite) TestTrack() {
	path := func() string { return "/ab-tests/" + s.testID.String() + "/track" }

	s.Run("revenue without amount is rejected", func() {
		s.service.EXPECT().Track(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		body := map[string]any{"variantKey": "control", "eventType": "revenue"}
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, path(), body))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "Amount is required for revenue events")
	})

	s.Run("negative amount is rejected", func() {
		body := map[string]any{"variantKey": "control", "eventType": "revenue", "amount": -1}
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, path(), body))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "Amount must be greater than or equal to 0")
	})

	s.Run("tracks a revenue event", func() {
		s.service.EXPECT().Track(gomock.Any(), s.testID, models.TrackEvent{
			VariantKey: "control", Type: models.EventRevenue, Amount: 19.99,
		}).Return(&models.Variant{Key: "control", Conversions: 1, Revenue: 19.99}, nil)

		body := map[string]any{"variantKey": "control", "eventType": "REVENUE", "amount": 19.99}
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, path(), body))
		env := testutil.AssertSuccess[VariantResponse](s.T(), rr, http.StatusOK)
		s.Equal(19.99, env.Data.Revenue)
	})
}

func (s *HandlerSuite) TestAssignment() {
	s.Run("anonymous caller is rejected", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/ab-tests/"+s.testID.String()+"/assignment"))
		testutil.AssertError(s.T(), rr, http.StatusUnauthorized, "Authentication required")
	})

	s.Run("returns the caller's variant", func() {
		userID := id.NewUserID()
		s.service.EXPECT().Assign(gomock.Any(), s.testID, userID).
			Return(&models.Assignment{TestID: s.testID, UserID: userID, VariantKey: "green", Bucket: 73}, nil)

		req := testutil.AsCustomer(testutil.NewRequest(s.T(), http.MethodGet, "/ab-tests/"+s.testID.String()+"/assignment"), userID)
		env := testutil.AssertSuccess[AssignmentResponse](s.T(), testutil.DoRequest(s.router, req), http.StatusOK)
		s.Equal("green", env.Data.VariantKey)
	})
}

func (s *HandlerSuite) TestResults() {
	s.service.EXPECT().Results(gomock.Any(), s.testID).Return(&models.Results{
		TestID: s.testID.String(),
		Status: models.StatusRunning,
		Goal:   models.GoalConversion,
		Variants: []models.VariantResult{
			{Key: "control", IsControl: true, PValue: 1},
			{Key: "green", PValue: 0.03, Significant: true},
		},
		WinnerCandidate: "green",
	}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/ab-tests/"+s.testID.String()+"/results"))
	env := testutil.AssertSuccess[json.RawMessage](s.T(), rr, http.StatusOK)
	var data ResultsResponse
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.True(data.Variants[1].Significant)
	s.Equal("green", data.WinnerCandidate)
}

func keys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
