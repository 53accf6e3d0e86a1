package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"wathaci-webhooks/internal/domain/model"
	"wathaci-webhooks/internal/domain/ports/repository"
)

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct{ pool *pgxpool.Pool }

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

func (r *subscriptionRepo) UpdatePaymentState(ctx context.Context, tx repository.Tx, id string, status model.SubscriptionStatus, paymentStatus model.BillingStatus) error {
	const q = `
UPDATE user_subscriptions SET status = $2, payment_status = $3, updated_at = NOW()
 WHERE id = $1 AND (status, payment_status) IS DISTINCT FROM ($2::text, $3::text);`
	_, err := execSQL(ctx, r.pool, tx, q, id, string(status), string(paymentStatus))
	return err
}

func (r *subscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	const q = `SELECT id, user_id, status, payment_status, updated_at FROM user_subscriptions WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	s := &model.Subscription{}
	if err := row.Scan(&s.ID, &s.UserID, &s.Status, &s.PaymentStatus, &s.UpdatedAt); err != nil {
		return nil, mapScanErr(err)
	}
	return s, nil
}

var _ repository.BookingRepository = (*bookingRepo)(nil)

type bookingRepo struct{ pool *pgxpool.Pool }

func NewBookingRepo(pool *pgxpool.Pool) *bookingRepo {
	return &bookingRepo{pool: pool}
}

func (r *bookingRepo) UpdatePaymentState(ctx context.Context, tx repository.Tx, id string, status model.BookingStatus, paymentStatus model.BillingStatus) error {
	const q = `
UPDATE service_bookings SET status = $2, payment_status = $3, updated_at = NOW()
 WHERE id = $1 AND (status, payment_status) IS DISTINCT FROM ($2::text, $3::text);`
	_, err := execSQL(ctx, r.pool, tx, q, id, string(status), string(paymentStatus))
	return err
}

func (r *bookingRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ServiceBooking, error) {
	const q = `SELECT id, user_id, status, payment_status, updated_at FROM service_bookings WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	b := &model.ServiceBooking{}
	if err := row.Scan(&b.ID, &b.UserID, &b.Status, &b.PaymentStatus, &b.UpdatedAt); err != nil {
		return nil, mapScanErr(err)
	}
	return b, nil
}
