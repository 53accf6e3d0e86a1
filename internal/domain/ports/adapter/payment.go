package adapter

import (
	"wathaci-webhooks/internal/domain/model"
)

// WebhookVerifier authenticates a raw webhook body against the gateway signature header.
// Implementations must be constant-time and must never panic.
type WebhookVerifier interface {
	Verify(signature string, body []byte) bool
}

// WebhookDecoder turns a verified raw body into a normalised event.
// It returns domain.ErrMalformedPayload (wrapped) on invalid input and has no side effects.
type WebhookDecoder interface {
	Decode(body []byte) (*model.WebhookEvent, error)
}
