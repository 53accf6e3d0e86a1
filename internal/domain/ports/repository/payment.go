package repository

import (
	"context"
	"time"

	"wathaci-webhooks/internal/domain/model"
)

// -----------------------------
// Payments
// -----------------------------

// PaymentLedgerUpdate is the set of fields a gateway event may overwrite.
type PaymentLedgerUpdate struct {
	Reference            string
	Status               model.PaymentStatus
	GatewayTransactionID string
	GatewayResponse      string
	PaidAt               *time.Time
}

type PaymentRepository interface {
	// UpdateByReference overwrites ledger fields of the payment with the given reference.
	// It reports false when no row matched or the row already carried identical data.
	UpdateByReference(ctx context.Context, tx Tx, u PaymentLedgerUpdate) (bool, error)
	FindByReference(ctx context.Context, tx Tx, reference string) (*model.Payment, error)
	CountPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time) (int, error)
}

// -----------------------------
// Transactions
// -----------------------------

type TransactionRepository interface {
	UpdateStatusByReference(ctx context.Context, tx Tx, reference string, status model.PaymentStatus) error
}
