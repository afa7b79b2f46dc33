package weft

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/client"
	"github.com/aretw0/weft/pkg/dispatch"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/relay"
	"github.com/aretw0/weft/pkg/selection"
)

// Session is the high-level entry point: one backend, one node set and one
// selection slot.
type Session struct {
	client    *client.Client
	tracker   *selection.Tracker
	nodes     *selection.Registry
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	endpoints client.Endpoints

	dispatchOpts []dispatch.Option
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithEndpoints overrides backend routes. Empty fields keep their defaults.
func WithEndpoints(e client.Endpoints) Option {
	return func(s *Session) {
		s.endpoints = e
	}
}

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.dispatchOpts = append(s.dispatchOpts, dispatch.WithTimeout(d))
	}
}

// WithHTTPClient sets the client used for backend calls.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) {
		s.dispatchOpts = append(s.dispatchOpts, dispatch.WithHTTPClient(c))
	}
}

// WithDispatchOptions passes raw options to the dispatcher.
func WithDispatchOptions(opts ...dispatch.Option) Option {
	return func(s *Session) {
		s.dispatchOpts = append(s.dispatchOpts, opts...)
	}
}

// New creates a Session talking to the backend at baseURL.
func New(baseURL string, opts ...Option) (*Session, error) {
	s := &Session{
		logger: logging.NewNop(),
		nodes:  selection.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}

	dopts := append([]dispatch.Option{
		dispatch.WithLogger(s.logger),
		dispatch.WithHooks(s.hooks),
	}, s.dispatchOpts...)
	d, err := dispatch.New(baseURL, dopts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	s.client = client.New(d, s.endpoints)
	s.tracker = selection.NewTracker(selection.WithHooks(s.hooks))
	return s, nil
}

func (s *Session) Client() *client.Client {
	return s.client
}

func (s *Session) Selection() *selection.Tracker {
	return s.tracker
}

func (s *Session) Nodes() *selection.Registry {
	return s.nodes
}

// Register adds a node. Replacing the selected node clears the selection.
func (s *Session) Register(n *domain.Node) error {
	if n != nil {
		if old, err := s.nodes.Lookup(n.ID()); err == nil && old != n {
			s.tracker.Deselect(old)
		}
	}
	return s.nodes.Register(n)
}

// Remove drops a node, clearing the selection if it was selected.
func (s *Session) Remove(id string) error {
	n, err := s.nodes.Remove(id)
	if err != nil {
		return err
	}
	s.tracker.Deselect(n)
	return nil
}

// Select marks the node with the given id as the selected one.
func (s *Session) Select(id string) (*domain.Node, error) {
	n, err := s.nodes.Lookup(id)
	if err != nil {
		return nil, err
	}
	s.tracker.Select(n)
	s.logger.Debug("node selected", "id", id)
	return n, nil
}

// Selected returns the selected node, if any.
func (s *Session) Selected() (*domain.Node, bool) {
	n, ok := s.tracker.Current().(*domain.Node)
	return n, ok && n != nil
}

func (s *Session) ClearSelection() {
	s.tracker.Clear()
}

// ProcessSelected sends the selected node to the processing endpoint.
func (s *Session) ProcessSelected(ctx context.Context) (*domain.ProcessResult, error) {
	n, ok := s.Selected()
	if !ok {
		return nil, domain.ErrNoSelection
	}
	return s.client.ProcessNode(ctx, n)
}

// NewRelay wires a push relay to this session's client, logger and hooks.
// Later options win.
func (s *Session) NewRelay(source ports.EventSource, presenter ports.Presenter, opts ...relay.Option) *relay.Relay {
	base := []relay.Option{relay.WithLogger(s.logger), relay.WithHooks(s.hooks)}
	return relay.New(source, s.client, presenter, append(base, opts...)...)
}

// Close clears the selection.
func (s *Session) Close() error {
	s.tracker.Clear()
	return nil
}
