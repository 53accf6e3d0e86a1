package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrAlreadyExists   = errors.New("entity already exists")

	// Persistence errors
	ErrOperationFailed    = errors.New("database operation failed")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Webhook pipeline errors
	ErrAuthentication   = errors.New("webhook authentication failed")
	ErrMissingSignature = errors.New("webhook signature missing")
	ErrMalformedPayload = errors.New("malformed webhook payload")
	ErrPayloadTooLarge  = errors.New("webhook payload too large")
	ErrUnexpected       = errors.New("unexpected webhook processing failure")
	ErrReplayNotAllowed = errors.New("webhook log cannot be replayed")
)
