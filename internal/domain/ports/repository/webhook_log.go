package repository

import (
	"context"

	"wathaci-webhooks/internal/domain/model"
)

// WebhookLogFilter narrows audit log listings. Zero values mean "any".
type WebhookLogFilter struct {
	Status model.WebhookLogStatus
	Limit  int
}

type WebhookLogRepository interface {
	// Save appends an audit record; records are immutable once written.
	Save(ctx context.Context, tx Tx, l *model.WebhookLog) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.WebhookLog, error)
	List(ctx context.Context, tx Tx, f WebhookLogFilter) ([]*model.WebhookLog, error)
}
