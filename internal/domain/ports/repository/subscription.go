package repository

import (
	"context"

	"wathaci-webhooks/internal/domain/model"
)

// SubscriptionRepository is the port for user subscriptions.
type SubscriptionRepository interface {
	UpdatePaymentState(ctx context.Context, tx Tx, id string, status model.SubscriptionStatus, paymentStatus model.BillingStatus) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
}

// BookingRepository is the port for service bookings.
type BookingRepository interface {
	UpdatePaymentState(ctx context.Context, tx Tx, id string, status model.BookingStatus, paymentStatus model.BillingStatus) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.ServiceBooking, error)
}
