// Package service stores user notifications, publishes them for delivery and
// queues outbound email.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storefront/internal/notification/models"
	"storefront/internal/notification/publisher"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/requestcontext"
)

// ReadRetention is how long read notifications are kept before the purge job
// removes them.
const ReadRetention = 30 * 24 * time.Hour

type Store interface {
	Create(ctx context.Context, n *models.Notification) error
	FindByID(ctx context.Context, notificationID id.ObjectID) (*models.Notification, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Notification, int, error)
	MarkRead(ctx context.Context, notificationID id.ObjectID, at time.Time) error
	MarkAllRead(ctx context.Context, userID id.UserID, at time.Time) (int, error)
	PurgeRead(ctx context.Context, before time.Time) (int, error)
}

type Topics struct {
	Notifications string
	Emails        string
}

type Service struct {
	store     Store
	publisher publisher.Publisher
	topics    Topics
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, pub publisher.Publisher, topics Topics, opts ...Option) *Service {
	s := &Service{store: store, publisher: pub, topics: topics, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, filter models.ListFilter) (*models.NotificationPage, error) {
	items, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return &models.NotificationPage{Items: items, Total: total}, nil
}

// Create stores the notification and publishes it. The stored row is the
// record of truth, so a publish failure is logged rather than returned.
func (s *Service) Create(ctx context.Context, in models.CreateNotification) (*models.Notification, error) {
	now := requestcontext.Now(ctx)
	n := &models.Notification{
		ID:        id.NewObjectIDAt(now),
		UserID:    in.UserID,
		Type:      in.Type,
		Title:     in.Title,
		Message:   in.Message,
		CreatedAt: now,
	}
	if err := s.store.Create(ctx, n); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store notification")
	}
	if err := s.publish(ctx, s.topics.Notifications, n.UserID.String(), models.NewEvent(n)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish notification",
			"request_id", requestcontext.RequestID(ctx),
			"notification_id", n.ID.String(),
			"error", err,
		)
	}
	s.logger.InfoContext(ctx, "notification created",
		"request_id", requestcontext.RequestID(ctx),
		"notification_id", n.ID.String(),
		"user_id", n.UserID.String(),
		"type", string(n.Type),
	)
	return n, nil
}

// Notify sends an order notification. It lets the order service notify
// customers without depending on this package's types.
func (s *Service) Notify(ctx context.Context, userID id.UserID, title, message string) error {
	_, err := s.Create(ctx, models.CreateNotification{
		UserID:  userID,
		Type:    models.TypeOrder,
		Title:   title,
		Message: message,
	})
	return err
}

// MarkRead marks one of the user's notifications read. Notifications owned by
// someone else are reported as not found.
func (s *Service) MarkRead(ctx context.Context, userID id.UserID, notificationID id.ObjectID) (*models.Notification, error) {
	n, err := s.store.FindByID(ctx, notificationID)
	if errors.Is(err, sentinel.ErrNotFound) || (err == nil && n.UserID != userID) {
		return nil, dErrors.New(dErrors.CodeNotFound, "Notification not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load notification")
	}
	if n.Read {
		return n, nil
	}
	now := requestcontext.Now(ctx)
	if err := s.store.MarkRead(ctx, notificationID, now); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notification read")
	}
	n.Read = true
	n.ReadAt = &now
	return n, nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID id.UserID) (int, error) {
	updated, err := s.store.MarkAllRead(ctx, userID, requestcontext.Now(ctx))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notifications read")
	}
	return updated, nil
}

// SendEmail queues the email on the email topic. Nothing is stored, so a
// publish failure fails the request.
func (s *Service) SendEmail(ctx context.Context, email models.Email) (*models.Email, error) {
	now := requestcontext.Now(ctx)
	email.ID = id.NewObjectIDAt(now)
	email.QueuedAt = now
	if err := s.publish(ctx, s.topics.Emails, email.ID.String(), email); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to queue email")
	}
	s.logger.InfoContext(ctx, "email queued",
		"request_id", requestcontext.RequestID(ctx),
		"email_id", email.ID.String(),
		"recipients", len(email.To),
		"template", email.Template,
	)
	return &email, nil
}

// PurgeRead deletes notifications read more than olderThan ago.
func (s *Service) PurgeRead(ctx context.Context, olderThan time.Duration) (int, error) {
	purged, err := s.store.PurgeRead(ctx, requestcontext.Now(ctx).Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("purge read notifications: %w", err)
	}
	s.logger.InfoContext(ctx, "read notifications purged", "count", purged)
	return purged, nil
}

func (s *Service) publish(ctx context.Context, topic, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", topic, err)
	}
	return s.publisher.Publish(ctx, publisher.Message{Topic: topic, Key: key, Value: value})
}
