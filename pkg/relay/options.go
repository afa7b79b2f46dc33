package relay

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/weft/pkg/domain"
)

// Policy decides how concurrent responses are presented.
type Policy string

const (
	PolicyAll    Policy = "all"
	PolicyLatest Policy = "latest"
	PolicySerial Policy = "serial"
)

// ParsePolicy validates a policy name. Empty means PolicyAll.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyAll:
		return PolicyAll, nil
	case PolicyLatest, PolicySerial:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown relay policy %q (all, latest, serial)", s)
}

// Option configures a Relay.
type Option func(*Relay)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// WithHooks registers push/render hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Relay) {
		r.hooks = hooks
	}
}

// WithPolicy sets the ordering policy.
func WithPolicy(p Policy) Option {
	return func(r *Relay) {
		r.policy = p
	}
}

// WithEventName changes the push event that triggers a dispatch.
func WithEventName(name string) Option {
	return func(r *Relay) {
		r.eventName = name
	}
}
