package model

import "time"

// Lenco event types the pipeline knows about. Other values are accepted and
// processed with generic notification wording.
const (
	EventPaymentSuccess   = "payment.success"
	EventPaymentFailed    = "payment.failed"
	EventPaymentPending   = "payment.pending"
	EventPaymentCancelled = "payment.cancelled"
)

// WebhookMetadata holds the routing keys Lenco echoes back from payment initialisation.
type WebhookMetadata struct {
	UserID         string
	SubscriptionID string
	ServiceID      string
	Extra          map[string]string
}

type PurposeKind string

const (
	PurposeStandalone   PurposeKind = "standalone"
	PurposeSubscription PurposeKind = "subscription"
	PurposeBooking      PurposeKind = "booking"
)

// PaymentPurpose says what a payment paid for. It is derived once from metadata so
// downstream code never re-inspects raw keys.
type PaymentPurpose struct {
	Kind PurposeKind
	ID   string
}

// PurposeOf picks the purpose from metadata. A subscription id wins over a service id.
func PurposeOf(md WebhookMetadata) PaymentPurpose {
	switch {
	case md.SubscriptionID != "":
		return PaymentPurpose{Kind: PurposeSubscription, ID: md.SubscriptionID}
	case md.ServiceID != "":
		return PaymentPurpose{Kind: PurposeBooking, ID: md.ServiceID}
	default:
		return PaymentPurpose{Kind: PurposeStandalone}
	}
}

// WebhookEvent is the normalised form of one inbound delivery.
type WebhookEvent struct {
	EventType       string
	Reference       string
	GatewayID       string
	AmountMinor     int64
	Currency        string
	RawStatus       string
	Status          PaymentStatus
	GatewayResponse string
	PaidAt          *time.Time
	Metadata        WebhookMetadata
	Purpose         PaymentPurpose
	CreatedAt       *time.Time
}

type WebhookLogStatus string

const (
	WebhookLogProcessed WebhookLogStatus = "processed"
	WebhookLogRejected  WebhookLogStatus = "rejected"
	WebhookLogFailed    WebhookLogStatus = "failed"
)

// WebhookLog is the immutable audit trail of one inbound attempt.
type WebhookLog struct {
	ID         string // ULID
	Source     string
	Event      string
	Reference  string
	Payload    []byte
	HTTPStatus int
	Status     WebhookLogStatus
	Error      *string
	Verified   bool // signature check passed
	CreatedAt  time.Time
}

// Replayable reports whether the stored payload may be fed back through the pipeline.
func (l *WebhookLog) Replayable() bool {
	return l.Verified && l.Status != WebhookLogRejected
}
