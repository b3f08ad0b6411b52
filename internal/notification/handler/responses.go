package handler

import (
	"time"

	"storefront/internal/notification/models"
)

type NotificationResponse struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}

type EmailQueuedResponse struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	Recipients int       `json:"recipients"`
	QueuedAt   time.Time `json:"queuedAt"`
}

func toNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID.String(),
		UserID:    n.UserID.String(),
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
	}
}
