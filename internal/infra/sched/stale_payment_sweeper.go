package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"wathaci-webhooks/internal/domain/ports/repository"
	"wathaci-webhooks/internal/infra/metrics"
	"wathaci-webhooks/internal/infra/redis"
)

const staleSweepLockKey = "lock:sched:stale-pending"

// StalePaymentSweeper reports payments still pending long after initialisation,
// usually a webhook Lenco never delivered. It only counts; the ledger is left alone.
type StalePaymentSweeper struct {
	payments   repository.PaymentRepository
	locker     redis.Locker
	staleAfter time.Duration
	log        *zerolog.Logger
	now        func() time.Time
}

// NewStalePaymentSweeper accepts a nil locker for single-replica deployments.
func NewStalePaymentSweeper(payments repository.PaymentRepository, locker redis.Locker, staleAfter time.Duration, logger *zerolog.Logger) *StalePaymentSweeper {
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}
	return &StalePaymentSweeper{payments: payments, locker: locker, staleAfter: staleAfter, log: logger, now: time.Now}
}

// Sweep is a Job.
func (w *StalePaymentSweeper) Sweep(ctx context.Context) error {
	if w.locker != nil {
		token, err := w.locker.TryLock(ctx, staleSweepLockKey, w.staleAfter)
		if errors.Is(err, redis.ErrLockHeld) {
			w.log.Debug().Msg("stale sweep skipped: another replica holds the lock")
			return nil
		}
		if err != nil {
			return err
		}
		defer func() {
			if err := w.locker.Unlock(context.WithoutCancel(ctx), staleSweepLockKey, token); err != nil {
				w.log.Warn().Err(err).Msg("release stale sweep lock failed")
			}
		}()
	}

	cutoff := w.now().Add(-w.staleAfter)
	n, err := w.payments.CountPendingOlderThan(ctx, repository.NoTX, cutoff)
	if err != nil {
		return err
	}
	metrics.SetStalePending(n)
	if n > 0 {
		w.log.Warn().Int("count", n).Time("cutoff", cutoff).Msg("payments pending past the webhook window")
	}
	return nil
}
