package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"wathaci-webhooks/internal/domain/model"
	"wathaci-webhooks/internal/domain/ports/repository"
	"wathaci-webhooks/internal/infra/logging"
	"wathaci-webhooks/internal/infra/metrics"
)

var _ ReconcileUseCase = (*reconcileUC)(nil)

// ReconcileUseCase fans a payment outcome out to the records that depend on it.
type ReconcileUseCase interface {
	// Reconcile updates the subscription or booking ev paid for. Every write is
	// attempted independently; the returned error joins the failures for logging only.
	Reconcile(ctx context.Context, ev *model.WebhookEvent) error
}

type reconcileUC struct {
	subs     repository.SubscriptionRepository
	bookings repository.BookingRepository
	txs      repository.TransactionRepository
	log      *zerolog.Logger
}

func NewReconcileUseCase(
	subs repository.SubscriptionRepository,
	bookings repository.BookingRepository,
	txs repository.TransactionRepository,
	logger *zerolog.Logger,
) *reconcileUC {
	return &reconcileUC{subs: subs, bookings: bookings, txs: txs, log: logger}
}

func (u *reconcileUC) Reconcile(ctx context.Context, ev *model.WebhookEvent) error {
	defer logging.TraceDuration(u.log, "ReconcileUC.Reconcile")()

	switch ev.Purpose.Kind {
	case model.PurposeSubscription:
		return u.reconcileSubscription(ctx, ev)
	case model.PurposeBooking:
		return u.guard(ctx, "booking", func(ctx context.Context) error {
			status, payStatus := model.BookingStateFor(ev.Status)
			return u.bookings.UpdatePaymentState(ctx, repository.NoTX, ev.Purpose.ID, status, payStatus)
		})
	default:
		logging.With(ctx, u.log).Debug().Msg("standalone payment: nothing to reconcile")
		return nil
	}
}

// reconcileSubscription updates the subscription and its transaction row concurrently.
// A plain Group, not WithContext: one branch failing must not cancel the other.
// Wait reports only the first error, so each branch's error is also kept for the join.
func (u *reconcileUC) reconcileSubscription(ctx context.Context, ev *model.WebhookEvent) error {
	var subErr, txErr error
	var g errgroup.Group
	g.Go(func() error {
		subErr = u.guard(ctx, "subscription", func(ctx context.Context) error {
			status, payStatus := model.SubscriptionStateFor(ev.Status)
			return u.subs.UpdatePaymentState(ctx, repository.NoTX, ev.Purpose.ID, status, payStatus)
		})
		return subErr
	})
	g.Go(func() error {
		txErr = u.guard(ctx, "transaction", func(ctx context.Context) error {
			return u.txs.UpdateStatusByReference(ctx, repository.NoTX, ev.Reference, model.TransactionStatusFor(ev.Status))
		})
		return txErr
	})
	if err := g.Wait(); err != nil {
		return errors.Join(subErr, txErr)
	}
	return nil
}

// guard runs one branch, turning a panic into an error so siblings keep running.
func (u *reconcileUC) guard(ctx context.Context, branch string, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%s branch panicked: %v", branch, rec)
		}
		metrics.IncReconcile(branch, err)
		if err != nil {
			logging.With(ctx, u.log).Error().Err(err).Str("branch", branch).Msg("reconcile branch failed")
			err = fmt.Errorf("reconcile %s: %w", branch, err)
		}
	}()
	return fn(ctx)
}
