package adapter

import "context"

const RealtimeEventPaymentUpdate = "payment_update"

// RealtimePublisher pushes a JSON-encodable payload to a per-user channel.
// Delivery is best-effort; callers log and ignore errors.
type RealtimePublisher interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

// UserChannel is the channel name a user's clients subscribe to.
func UserChannel(userID string) string { return "user:" + userID }
