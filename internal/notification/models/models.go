// Package models holds user notifications and the outbound email request.
package models

import (
	"time"

	id "storefront/pkg/domain"
)

const (
	MaxTitleLength     = 120
	MaxMessageLength   = 2000
	MaxSubjectLength   = 200
	MaxEmailRecipients = 50
	DefaultListLimit   = 20
)

type Type string

const (
	TypeOrder     Type = "order"
	TypePromotion Type = "promotion"
	TypeSystem    Type = "system"
	TypeLoyalty   Type = "loyalty"
)

var Types = []string{string(TypeOrder), string(TypePromotion), string(TypeSystem), string(TypeLoyalty)}

type Notification struct {
	ID        id.ObjectID
	UserID    id.UserID
	Type      Type
	Title     string
	Message   string
	Read      bool
	CreatedAt time.Time
	ReadAt    *time.Time
}

type CreateNotification struct {
	UserID  id.UserID
	Type    Type
	Title   string
	Message string
}

type ListFilter struct {
	UserID     id.UserID
	UnreadOnly bool
	Offset     int
	Limit      int
}

func (f ListFilter) Matches(n *Notification) bool {
	return n.UserID == f.UserID && (!f.UnreadOnly || !n.Read)
}

type NotificationPage struct {
	Items []*Notification
	Total int
}

// Email is handed to the mail worker through the email topic. Template
// rendering happens downstream.
type Email struct {
	ID       id.ObjectID    `json:"id"`
	To       []string       `json:"to"`
	Subject  string         `json:"subject"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data,omitempty"`
	QueuedAt time.Time      `json:"queuedAt"`
}

// Event is the notification payload published to the notification topic.
type Event struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewEvent(n *Notification) Event {
	return Event{
		ID:        n.ID.String(),
		UserID:    n.UserID.String(),
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	}
}
