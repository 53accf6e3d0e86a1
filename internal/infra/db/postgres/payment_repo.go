package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"wathaci-webhooks/internal/domain/model"
	"wathaci-webhooks/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

// UpdateByReference is a pure overwrite, except paid_at which keeps its stored value
// when the delivery carries none. The IS DISTINCT FROM guard turns a duplicate
// delivery into a zero-row update, which callers read as "unchanged".
func (r *paymentRepo) UpdateByReference(ctx context.Context, tx repository.Tx, u repository.PaymentLedgerUpdate) (bool, error) {
	const q = `
UPDATE payments
   SET status = $2,
       gateway_transaction_id = $3,
       gateway_response = $4,
       paid_at = COALESCE($5::timestamptz, paid_at),
       updated_at = NOW()
 WHERE reference = $1
   AND (status, gateway_transaction_id, gateway_response, paid_at)
       IS DISTINCT FROM ($2::text, $3::text, $4::text, COALESCE($5::timestamptz, paid_at));`

	tag, err := execSQL(ctx, r.pool, tx, q,
		u.Reference, string(u.Status), nullIfEmpty(u.GatewayTransactionID), nullIfEmpty(u.GatewayResponse), u.PaidAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *paymentRepo) FindByReference(ctx context.Context, tx repository.Tx, reference string) (*model.Payment, error) {
	const q = `
SELECT id, user_id, reference, amount, currency, status, gateway_transaction_id, gateway_response, paid_at, created_at, updated_at
  FROM payments WHERE reference = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, reference)
	if err != nil {
		return nil, err
	}
	p := &model.Payment{}
	if err := row.Scan(&p.ID, &p.UserID, &p.Reference, &p.Amount, &p.Currency, &p.Status,
		&p.GatewayTransactionID, &p.GatewayResponse, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapScanErr(err)
	}
	return p, nil
}

func (r *paymentRepo) CountPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM payments WHERE status = 'pending' AND created_at < $1;`
	row, err := pickRow(ctx, r.pool, tx, q, olderThan)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, mapScanErr(err)
	}
	return n, nil
}

var _ repository.TransactionRepository = (*transactionRepo)(nil)

type transactionRepo struct{ pool *pgxpool.Pool }

func NewTransactionRepo(pool *pgxpool.Pool) *transactionRepo {
	return &transactionRepo{pool: pool}
}

func (r *transactionRepo) UpdateStatusByReference(ctx context.Context, tx repository.Tx, reference string, status model.PaymentStatus) error {
	const q = `
UPDATE transactions SET status = $2, updated_at = NOW()
 WHERE reference = $1 AND status IS DISTINCT FROM $2::text;`
	_, err := execSQL(ctx, r.pool, tx, q, reference, string(status))
	return err
}
