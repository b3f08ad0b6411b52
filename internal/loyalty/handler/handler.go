package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/loyalty/models"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/platform/query"
	"storefront/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the loyalty operations the handler depends on.
type Service interface {
	Program(ctx context.Context) models.Program
	Account(ctx context.Context, userID id.UserID) (*models.AccountSummary, error)
	History(ctx context.Context, userID id.UserID, filter models.HistoryFilter) (*models.TransactionPage, error)
	Rewards(ctx context.Context, offset, limit int) (*models.RewardPage, error)
	Redeem(ctx context.Context, userID id.UserID, rewardID id.ObjectID) (*models.Redemption, error)
	Adjust(ctx context.Context, userID id.UserID, points int64, reason string) (*models.Transaction, error)
	CreateReward(ctx context.Context, in models.CreateReward) (*models.Reward, error)
}

// Handler serves /loyalty.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts routes available to any signed-in user.
func (h *Handler) Register(r chi.Router) {
	r.Get("/loyalty/program", h.HandleProgram)
	r.Get("/loyalty/account", h.HandleAccount)
	r.Get("/loyalty/history", h.HandleHistory)
	r.Get("/loyalty/rewards", h.HandleRewards)
	r.Post("/loyalty/rewards/redeem", h.HandleRedeem)
}

// RegisterAdmin mounts adjustment and reward management.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/loyalty/points/adjust", h.HandleAdjust)
	r.Post("/loyalty/rewards", h.HandleCreateReward)
}

// HandleProgram handles GET /loyalty/program.
func (h *Handler) HandleProgram(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireUser(w, r); !ok {
		return
	}
	httputil.WriteSuccess(w, r, http.StatusOK, toProgramResponse(h.service.Program(r.Context())))
}

// HandleAccount handles GET /loyalty/account.
func (h *Handler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	summary, err := h.service.Account(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusOK, toAccountResponse(summary))
}

// HandleHistory handles GET /loyalty/history.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	filter, page, limit, err := parseHistoryFilter(query.New(r))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	result, err := h.service.History(r.Context(), userID, filter)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	out := make([]TransactionResponse, len(result.Items))
	for i, tx := range result.Items {
		out[i] = toTransactionResponse(tx)
	}
	httputil.WriteList(w, r, out, len(out), httputil.NewPagination(page, limit, result.Total))
}

// HandleRewards handles GET /loyalty/rewards.
func (h *Handler) HandleRewards(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireUser(w, r); !ok {
		return
	}
	p := query.New(r)
	page := p.Pagination(models.DefaultRewardsLimit, query.MaxPageLimit)
	if err := p.Err(); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	result, err := h.service.Rewards(r.Context(), page.Offset(), page.Limit)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	out := make([]RewardResponse, len(result.Items))
	for i, reward := range result.Items {
		out[i] = toRewardResponse(reward)
	}
	httputil.WriteList(w, r, out, len(out), httputil.NewPagination(page.Page, page.Limit, result.Total))
}

// HandleRedeem handles POST /loyalty/rewards/redeem.
func (h *Handler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RedeemRequest](w, r, h.logger)
	if !ok {
		return
	}
	redemption, err := h.service.Redeem(r.Context(), userID, req.rewardID)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusOK, RedemptionResponse{
		ID:          redemption.ID.String(),
		RewardID:    redemption.RewardID.String(),
		RewardName:  redemption.RewardName,
		PointsSpent: redemption.PointsSpent,
		Balance:     redemption.Balance,
		CreatedAt:   redemption.CreatedAt,
	})
}

// HandleAdjust handles POST /loyalty/points/adjust.
func (h *Handler) HandleAdjust(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[AdjustPointsRequest](w, r, h.logger)
	if !ok {
		return
	}
	tx, err := h.service.Adjust(r.Context(), req.userID, req.Points, req.Reason)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusOK, toTransactionResponse(*tx))
}

// HandleCreateReward handles POST /loyalty/rewards.
func (h *Handler) HandleCreateReward(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreateRewardRequest](w, r, h.logger)
	if !ok {
		return
	}
	reward, err := h.service.CreateReward(r.Context(), req.ToModel())
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusCreated, toRewardResponse(*reward))
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		httputil.WriteError(w, r, h.logger, dErrors.New(dErrors.CodeUnauthorized, "Authentication required"))
		return id.UserID{}, false
	}
	return userID, true
}
