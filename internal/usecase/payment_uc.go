// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"wathaci-webhooks/internal/domain/model"
	"wathaci-webhooks/internal/domain/ports/repository"
	"wathaci-webhooks/internal/infra/logging"
	"wathaci-webhooks/internal/infra/metrics"
)

// Compile-time check
var _ LedgerUseCase = (*ledgerUC)(nil)

type LedgerUseCase interface {
	// RecordPayment overwrites the ledger row for ev.Reference. applied is false when no
	// row matched or the row already held the same data; neither case is an error.
	RecordPayment(ctx context.Context, ev *model.WebhookEvent) (applied bool, err error)
}

type ledgerUC struct {
	payments repository.PaymentRepository
	log      *zerolog.Logger
}

func NewLedgerUseCase(payments repository.PaymentRepository, logger *zerolog.Logger) *ledgerUC {
	return &ledgerUC{payments: payments, log: logger}
}

func (u *ledgerUC) RecordPayment(ctx context.Context, ev *model.WebhookEvent) (bool, error) {
	defer logging.TraceDuration(u.log, "LedgerUC.RecordPayment")()

	applied, err := u.payments.UpdateByReference(ctx, repository.NoTX, repository.PaymentLedgerUpdate{
		Reference:            ev.Reference,
		Status:               ev.Status,
		GatewayTransactionID: ev.GatewayID,
		GatewayResponse:      ev.GatewayResponse,
		PaidAt:               ev.PaidAt,
	})
	metrics.IncReconcile("ledger", err)
	if err != nil {
		logging.With(ctx, u.log).Error().Err(err).
			Str("status", string(ev.Status)).
			Msg("ledger update failed")
		return false, fmt.Errorf("ledger update %s: %w", ev.Reference, err)
	}

	l := logging.With(ctx, u.log)
	if !applied {
		l.Info().Str("status", string(ev.Status)).Msg("ledger unchanged: no matching payment or duplicate delivery")
		return false, nil
	}

	metrics.IncPayment(string(ev.Status))
	if ev.Status.Succeeded() && ev.AmountMinor > 0 {
		metrics.AddPaymentRevenue(ev.Currency, ev.AmountMinor)
	}
	l.Info().Str("status", string(ev.Status)).Msg("ledger updated")
	return true, nil
}
