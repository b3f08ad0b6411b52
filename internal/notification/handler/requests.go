package handler

import (
	"fmt"
	"strings"

	"storefront/internal/notification/models"
	id "storefront/pkg/domain"
	pstrings "storefront/pkg/platform/strings"
	"storefront/pkg/platform/validation"
)

type CreateNotificationRequest struct {
	UserID  string `json:"userId"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (r *CreateNotificationRequest) Normalize() {
	r.UserID = strings.ToLower(strings.TrimSpace(r.UserID))
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	r.Title = strings.TrimSpace(r.Title)
	r.Message = strings.TrimSpace(r.Message)
}

// Validate checks the request. Order: Size -> Required -> Syntax -> Semantic.
func (r *CreateNotificationRequest) Validate() error {
	var v validation.Violations

	v.MaxLength("title", r.Title, models.MaxTitleLength, "Title")
	v.MaxLength("message", r.Message, models.MaxMessageLength, "Message")

	hasUser := v.Required("userId", r.UserID, "User ID is required")
	hasType := v.Required("type", r.Type, "Type is required")
	v.Required("title", r.Title, "Title is required")
	v.Required("message", r.Message, "Message is required")

	if hasUser {
		v.UUID("userId", r.UserID, "user ID")
	}
	if hasType {
		v.OneOf("type", r.Type, models.Types, "Type")
	}
	return v.Err()
}

func (r *CreateNotificationRequest) ToModel() models.CreateNotification {
	userID, _ := id.ParseUserID(r.UserID)
	return models.CreateNotification{
		UserID:  userID,
		Type:    models.Type(r.Type),
		Title:   r.Title,
		Message: r.Message,
	}
}

type SendEmailRequest struct {
	To       []string       `json:"to"`
	Subject  string         `json:"subject"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

// Normalize lowercases and dedupes recipients.
func (r *SendEmailRequest) Normalize() {
	r.To = pstrings.DedupeAndTrimLower(r.To)
	r.Subject = strings.TrimSpace(r.Subject)
	r.Template = strings.TrimSpace(r.Template)
}

// Validate checks the request. Order: Size -> Required -> Syntax -> Semantic.
func (r *SendEmailRequest) Validate() error {
	var v validation.Violations

	if len(r.To) > models.MaxEmailRecipients {
		v.Addf("to", "At most %d recipients are allowed", models.MaxEmailRecipients)
	}
	v.MaxLength("subject", r.Subject, models.MaxSubjectLength, "Subject")

	if len(r.To) == 0 {
		v.Add("to", "At least one recipient is required")
	}
	v.Required("subject", r.Subject, "Subject is required")
	v.Required("template", r.Template, "Template is required")

	for i, addr := range r.To {
		v.Email(fmt.Sprintf("to[%d]", i), addr)
	}
	return v.Err()
}

func (r *SendEmailRequest) ToModel() models.Email {
	return models.Email{
		To:       r.To,
		Subject:  r.Subject,
		Template: r.Template,
		Data:     r.Data,
	}
}
