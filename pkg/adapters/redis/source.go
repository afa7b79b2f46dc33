// Package redis carries push events over Redis pub/sub.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "weft:events"

// Envelope is the message format on the channel.
type Envelope struct {
	ID    string `json:"id,omitempty"`
	Event string `json:"event"`
	Data  string `json:"data"`
}

// Source implements ports.EventSource using a Redis subscription.
type Source struct {
	client       *backend.Client
	channel      string
	defaultEvent string
	logger       *slog.Logger
}

var _ ports.EventSource = (*Source)(nil)

type Option func(*Source)

// WithChannel sets the pub/sub channel.
func WithChannel(channel string) Option {
	return func(s *Source) {
		s.channel = channel
	}
}

// WithDefaultEvent names messages that are not an Envelope.
func WithDefaultEvent(name string) Option {
	return func(s *Source) {
		s.defaultEvent = name
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// New creates a source connected to the given address.
func New(address, password string, db int, opts ...Option) *Source {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a source from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Source {
	s := &Source{
		client:       client,
		channel:      DefaultChannel,
		defaultEvent: domain.EventCompileLine,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe confirms the subscription before returning, so an unreachable
// server is reported here. The channel closes when ctx is done.
func (s *Source) Subscribe(ctx context.Context) (<-chan domain.PushEvent, error) {
	ps := s.client.Subscribe(ctx, s.channel)
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", s.channel, err)
	}
	s.logger.Info("redis subscribed", "channel", s.channel)

	msgs := ps.Channel()
	out := make(chan domain.PushEvent)
	go func() {
		defer close(out)
		defer ps.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				ev := s.decode(msg.Payload)
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// decode accepts an Envelope; anything else is treated as raw data.
func (s *Source) decode(payload string) domain.PushEvent {
	ev := domain.PushEvent{Received: time.Now()}
	var env Envelope
	if err := json.Unmarshal([]byte(payload), &env); err == nil && env.Event != "" {
		ev.ID = env.ID
		ev.Name = env.Event
		ev.Data = env.Data
		return ev
	}
	ev.Name = s.defaultEvent
	ev.Data = payload
	return ev
}

// Close closes the underlying client.
func (s *Source) Close() error {
	return s.client.Close()
}
