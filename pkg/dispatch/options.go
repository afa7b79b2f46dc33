package dispatch

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/weft/pkg/domain"
)

// DefaultTimeout bounds a single dispatch when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes int64 = 8 << 20

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) {
		d.http = c
	}
}

// WithTimeout sets the per-dispatch deadline. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithHooks registers dispatch lifecycle hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(d *Dispatcher) {
		d.hooks = hooks
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(d *Dispatcher) {
		d.headers.Set(key, value)
	}
}

// WithMaxBodyBytes caps the response body size.
func WithMaxBodyBytes(n int64) Option {
	return func(d *Dispatcher) {
		d.maxBody = n
	}
}
