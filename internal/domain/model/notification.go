package model

import (
	"time"

	"github.com/google/uuid"

	"wathaci-webhooks/internal/domain"
)

const NotificationTypePayment = "payment"

// Notification is an append-only, user-facing message.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Reference string    `json:"reference"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func NewPaymentNotification(userID, title, message, reference string) (*Notification, error) {
	if userID == "" || title == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      NotificationTypePayment,
		Title:     title,
		Message:   message,
		Reference: reference,
		CreatedAt: time.Now().UTC(),
	}, nil
}
