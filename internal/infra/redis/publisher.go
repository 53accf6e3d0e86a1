package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"wathaci-webhooks/internal/domain/ports/adapter"
)

var _ adapter.RealtimePublisher = (*Publisher)(nil)

// realtimeMessage is what subscribers of user:{id} receive.
type realtimeMessage struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Publisher pushes realtime events over Redis pub/sub.
type Publisher struct {
	client *Client
}

func NewPublisher(c *Client) *Publisher {
	return &Publisher{client: c}
}

func (p *Publisher) Publish(ctx context.Context, channel, event string, payload any) error {
	msg, err := encodeRealtime(event, payload)
	if err != nil {
		return err
	}
	if err := p.client.cli.Publish(ctx, channel, msg).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

func encodeRealtime(event string, payload any) ([]byte, error) {
	b, err := json.Marshal(realtimeMessage{Event: event, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode realtime %s: %w", event, err)
	}
	return b, nil
}
