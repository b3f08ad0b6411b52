package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"storefront/internal/notification/models"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/platform/query"
	"storefront/pkg/platform/validation"
	"storefront/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	List(ctx context.Context, filter models.ListFilter) (*models.NotificationPage, error)
	Create(ctx context.Context, in models.CreateNotification) (*models.Notification, error)
	MarkRead(ctx context.Context, userID id.UserID, notificationID id.ObjectID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID id.UserID) (int, error)
	SendEmail(ctx context.Context, email models.Email) (*models.Email, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the routes a signed-in user calls for their own inbox.
func (h *Handler) Register(r chi.Router) {
	r.Get("/notifications", h.HandleList)
	r.Patch("/notifications/read-all", h.HandleMarkAllRead)
	r.Patch("/notifications/{id}/read", h.HandleMarkRead)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/notifications", h.HandleCreate)
	r.Post("/email/send", h.HandleSendEmail)
}

// HandleList handles GET /notifications.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.user(w, r)
	if !ok {
		return
	}
	p := query.New(r)
	page := p.Pagination(models.DefaultListLimit, query.MaxPageLimit)
	unreadOnly := p.BoolDefault("unreadOnly", "Unread only", false)
	if err := p.Err(); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	result, err := h.service.List(r.Context(), models.ListFilter{
		UserID:     ident.ID,
		UnreadOnly: unreadOnly,
		Offset:     page.Offset(),
		Limit:      page.Limit,
	})
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	out := make([]NotificationResponse, len(result.Items))
	for i, n := range result.Items {
		out[i] = toNotificationResponse(n)
	}
	httputil.WriteList(w, r, out, len(out), httputil.NewPagination(page.Page, page.Limit, result.Total))
}

// HandleMarkRead handles PATCH /notifications/{id}/read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.user(w, r)
	if !ok {
		return
	}
	raw := chi.URLParam(r, "id")
	var v validation.Violations
	if !v.ObjectID("id", raw, "notification ID") {
		httputil.WriteError(w, r, h.logger, v.Err())
		return
	}
	n, err := h.service.MarkRead(r.Context(), ident.ID, id.ObjectID(strings.ToLower(raw)))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusOK, toNotificationResponse(n))
}

// HandleMarkAllRead handles PATCH /notifications/read-all.
func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.user(w, r)
	if !ok {
		return
	}
	updated, err := h.service.MarkAllRead(r.Context(), ident.ID)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusOK, MarkAllReadResponse{Updated: updated})
}

// HandleCreate handles POST /notifications.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreateNotificationRequest](w, r, h.logger)
	if !ok {
		return
	}
	n, err := h.service.Create(r.Context(), req.ToModel())
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusCreated, toNotificationResponse(n))
}

// HandleSendEmail handles POST /email/send. Delivery is asynchronous.
func (h *Handler) HandleSendEmail(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[SendEmailRequest](w, r, h.logger)
	if !ok {
		return
	}
	email, err := h.service.SendEmail(r.Context(), req.ToModel())
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteSuccess(w, r, http.StatusAccepted, EmailQueuedResponse{
		ID:         email.ID.String(),
		Status:     "queued",
		Recipients: len(email.To),
		QueuedAt:   email.QueuedAt,
	})
}

func (h *Handler) user(w http.ResponseWriter, r *http.Request) (requestcontext.Identity, bool) {
	ident, ok := requestcontext.User(r.Context())
	if !ok {
		httputil.WriteError(w, r, h.logger, dErrors.New(dErrors.CodeUnauthorized, "Authentication required"))
	}
	return ident, ok
}
