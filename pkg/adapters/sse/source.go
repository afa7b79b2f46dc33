// Package sse implements ports.EventSource over a text/event-stream endpoint.
package sse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/cenkalti/backoff/v4"
)

// Source streams push events from an SSE endpoint, reconnecting with
// exponential backoff when the stream drops.
type Source struct {
	url        string
	client     *http.Client
	logger     *slog.Logger
	header     http.Header
	buffer     int
	newBackOff func() backoff.BackOff
}

var _ ports.EventSource = (*Source)(nil)

// Option configures a Source.
type Option func(*Source)

// WithHTTPClient sets the client used for the stream. It must not have a
// response timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) {
		s.client = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// WithHeader adds a header to every connection attempt.
func WithHeader(key, value string) Option {
	return func(s *Source) {
		s.header.Add(key, value)
	}
}

// WithBuffer sets the size of the event channel.
func WithBuffer(n int) Option {
	return func(s *Source) {
		s.buffer = n
	}
}

// WithBackOff sets the reconnect policy. The factory is called once per
// Subscribe. Returning backoff.Stop from NextBackOff ends the stream.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(s *Source) {
		s.newBackOff = f
	}
}

// NewSource creates a source for the given stream URL.
func NewSource(rawURL string, opts ...Option) (*Source, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid stream url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid stream url %q: scheme must be http or https", rawURL)
	}

	s := &Source{
		url:    u.String(),
		client: &http.Client{},
		logger: logging.NewNop(),
		header: make(http.Header),
		buffer: 16,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Subscribe starts streaming. The channel is closed when ctx is done or the
// backoff policy gives up.
func (s *Source) Subscribe(ctx context.Context) (<-chan domain.PushEvent, error) {
	out := make(chan domain.PushEvent, s.buffer)
	go s.loop(ctx, out)
	return out, nil
}

func (s *Source) loop(ctx context.Context, out chan<- domain.PushEvent) {
	defer close(out)

	b := backoff.WithContext(s.newBackOff(), ctx)
	var lastID string
	for {
		connected, retry, err := s.stream(ctx, out, &lastID)
		if ctx.Err() != nil {
			return
		}
		if connected {
			b.Reset()
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			s.logger.Error("sse stream abandoned", "url", s.url, "error", err)
			return
		}
		if retry > wait {
			wait = retry
		}
		s.logger.Warn("sse stream dropped, reconnecting", "url", s.url, "error", err, "wait", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// stream runs one connection. connected reports whether the server accepted it.
func (s *Source) stream(ctx context.Context, out chan<- domain.PushEvent, lastID *string) (connected bool, retry time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return false, 0, err
	}
	for k, vs := range s.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if *lastID != "" {
		req.Header.Set("Last-Event-ID", *lastID)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	s.logger.Info("sse stream connected", "url", s.url)

	dec := NewDecoder(resp.Body)
	for {
		ev, err := dec.Next()
		*lastID = dec.LastID()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return true, dec.Retry(), err
		}
		s.logger.Debug("sse event", "event", ev.Name, "id", ev.ID)
		select {
		case out <- ev:
		case <-ctx.Done():
			return true, 0, ctx.Err()
		}
	}
}
