package model

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// BillingStatus is the payment_status column shared by subscriptions and bookings.
type BillingStatus string

const (
	BillingStatusPending BillingStatus = "pending"
	BillingStatusPaid    BillingStatus = "paid"
	BillingStatusFailed  BillingStatus = "failed"
)

// Subscription is a user's plan subscription. Many payments may reference one
// subscription over its renewal lifetime.
type Subscription struct {
	ID            string
	UserID        string
	Status        SubscriptionStatus
	PaymentStatus BillingStatus
	UpdatedAt     time.Time
}

// SubscriptionStateFor returns the subscription state a payment outcome implies.
func SubscriptionStateFor(s PaymentStatus) (SubscriptionStatus, BillingStatus) {
	if s.Succeeded() {
		return SubscriptionStatusActive, BillingStatusPaid
	}
	return SubscriptionStatusCancelled, BillingStatusFailed
}

// TransactionStatusFor mirrors the payment outcome onto the transaction history.
func TransactionStatusFor(s PaymentStatus) PaymentStatus {
	if s.Succeeded() {
		return PaymentStatusCompleted
	}
	return PaymentStatusFailed
}
