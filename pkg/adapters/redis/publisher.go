package redis

import (
	"context"
	"encoding/json"
	"fmt"

	backend "github.com/redis/go-redis/v9"
)

// Publisher sends Envelopes to a channel.
type Publisher struct {
	client  *backend.Client
	channel string
}

// NewPublisher creates a publisher. An empty channel means DefaultChannel.
func NewPublisher(client *backend.Client, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{client: client, channel: channel}
}

// Publish sends one event and returns the number of subscribers that got it.
func (p *Publisher) Publish(ctx context.Context, env Envelope) (int64, error) {
	if env.Event == "" {
		return 0, fmt.Errorf("event name required")
	}
	b, err := json.Marshal(env)
	if err != nil {
		return 0, err
	}
	n, err := p.client.Publish(ctx, p.channel, b).Result()
	if err != nil {
		return 0, fmt.Errorf("redis publish %s: %w", p.channel, err)
	}
	return n, nil
}
