package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"wathaci-webhooks/internal/domain/model"
	"wathaci-webhooks/internal/domain/ports/repository"
)

var _ repository.WebhookLogRepository = (*webhookLogRepo)(nil)

// PayloadSealer encrypts stored payloads; the log id is bound as additional data.
type PayloadSealer interface {
	Seal(plaintext, additional []byte) ([]byte, error)
	Open(sealed, additional []byte) ([]byte, error)
}

type webhookLogRepo struct {
	pool   *pgxpool.Pool
	sealer PayloadSealer
}

// NewWebhookLogRepo stores payloads in clear text when sealer is nil.
func NewWebhookLogRepo(pool *pgxpool.Pool, sealer PayloadSealer) *webhookLogRepo {
	return &webhookLogRepo{pool: pool, sealer: sealer}
}

const webhookLogColumns = `id, source, event, reference, payload, payload_encrypted, http_status, status, error, verified, created_at`

func (r *webhookLogRepo) Save(ctx context.Context, tx repository.Tx, l *model.WebhookLog) error {
	payload, encrypted := l.Payload, false
	if payload == nil {
		payload = []byte{}
	}
	if r.sealer != nil {
		sealed, err := r.sealer.Seal(payload, []byte(l.ID))
		if err != nil {
			return fmt.Errorf("seal payload: %w", err)
		}
		payload, encrypted = sealed, true
	}

	const q = `
INSERT INTO webhook_logs (` + webhookLogColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`
	_, err := execSQL(ctx, r.pool, tx, q,
		l.ID, l.Source, l.Event, nullIfEmpty(l.Reference), payload, encrypted,
		l.HTTPStatus, string(l.Status), l.Error, l.Verified, l.CreatedAt)
	return err
}

func (r *webhookLogRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.WebhookLog, error) {
	const q = `SELECT ` + webhookLogColumns + ` FROM webhook_logs WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return r.scan(row)
}

func (r *webhookLogRepo) List(ctx context.Context, tx repository.Tx, f repository.WebhookLogFilter) ([]*model.WebhookLog, error) {
	const q = `SELECT ` + webhookLogColumns + ` FROM webhook_logs
 WHERE ($1 = '' OR status = $1)
 ORDER BY id DESC
 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, string(f.Status), f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.WebhookLog
	for rows.Next() {
		l, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapExecErr(err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *webhookLogRepo) scan(row rowScanner) (*model.WebhookLog, error) {
	l := &model.WebhookLog{}
	var (
		reference *string
		status    string
		encrypted bool
	)
	if err := row.Scan(&l.ID, &l.Source, &l.Event, &reference, &l.Payload, &encrypted,
		&l.HTTPStatus, &status, &l.Error, &l.Verified, &l.CreatedAt); err != nil {
		return nil, mapScanErr(err)
	}
	l.Status = model.WebhookLogStatus(status)
	if reference != nil {
		l.Reference = *reference
	}
	if encrypted {
		if r.sealer == nil {
			return nil, fmt.Errorf("webhook log %s: payload is encrypted but no key is configured", l.ID)
		}
		pt, err := r.sealer.Open(l.Payload, []byte(l.ID))
		if err != nil {
			return nil, fmt.Errorf("webhook log %s: %w", l.ID, err)
		}
		l.Payload = pt
	}
	return l, nil
}
