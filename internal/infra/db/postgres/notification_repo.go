package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"wathaci-webhooks/internal/domain/model"
	"wathaci-webhooks/internal/domain/ports/repository"
)

var _ repository.NotificationRepository = (*notificationRepo)(nil)

type notificationRepo struct{ pool *pgxpool.Pool }

func NewNotificationRepo(pool *pgxpool.Pool) *notificationRepo {
	return &notificationRepo{pool: pool}
}

func (r *notificationRepo) Save(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	const q = `
INSERT INTO notifications (id, user_id, type, title, message, reference, read, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	_, err := execSQL(ctx, r.pool, tx, q, n.ID, n.UserID, n.Type, n.Title, n.Message, nullIfEmpty(n.Reference), n.Read, n.CreatedAt)
	return err
}
