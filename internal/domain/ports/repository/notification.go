package repository

import (
	"context"

	"wathaci-webhooks/internal/domain/model"
)

// -----------------------------
// Notifications
// -----------------------------

type NotificationRepository interface {
	// Save appends a notification. Rows are never updated by this service.
	Save(ctx context.Context, tx Tx, n *model.Notification) error
}
