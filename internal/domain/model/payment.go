package model

import (
	"strings"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // awaiting gateway outcome
	PaymentStatusCompleted PaymentStatus = "completed" // gateway reported success
	PaymentStatusFailed    PaymentStatus = "failed"    // gateway failure or unknown status
	PaymentStatusCancelled PaymentStatus = "cancelled" // cancelled or abandoned by the payer
)

// gatewayStatuses maps raw Lenco status strings onto internal statuses.
// Anything missing from the table is treated as a failure.
var gatewayStatuses = map[string]PaymentStatus{
	"success":   PaymentStatusCompleted,
	"failed":    PaymentStatusFailed,
	"pending":   PaymentStatusPending,
	"cancelled": PaymentStatusCancelled,
	"abandoned": PaymentStatusCancelled,
}

// NormalizeGatewayStatus converts a vendor status to the internal enum (fail-closed).
func NormalizeGatewayStatus(raw string) PaymentStatus {
	if s, ok := gatewayStatuses[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return PaymentStatusFailed
}

func (s PaymentStatus) Succeeded() bool { return s == PaymentStatusCompleted }

// Payment is one payment attempt as stored in the ledger. Rows are created when the
// payment is initialised elsewhere; the webhook pipeline only updates them.
type Payment struct {
	ID                   string
	UserID               *string
	Reference            string // Lenco reference, unique per attempt
	Amount               int64  // minor units (ngwee for ZMW)
	Currency             string
	Status               PaymentStatus
	GatewayTransactionID *string
	GatewayResponse      *string
	PaidAt               *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Transaction mirrors a payment in the user-facing transaction history.
type Transaction struct {
	ID        string
	Reference string
	Status    PaymentStatus
	UpdatedAt time.Time
}
