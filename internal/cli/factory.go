// Package cli builds weft components from configuration and runs the
// long-lived commands.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/config"
	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/aretw0/weft/pkg/adapters/sse"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

// NewLogger creates the application logger from cfg.
func NewLogger(cfg *config.Config) *slog.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.New(level, logging.Format(cfg.Log.Format))
}

// NewSession creates a Session for cfg.
func NewSession(cfg *config.Config, logger *slog.Logger, hooks domain.LifecycleHooks) (*weft.Session, error) {
	s, err := weft.New(cfg.BaseURL,
		weft.WithLogger(logger),
		weft.WithLifecycleHooks(hooks),
		weft.WithEndpoints(cfg.Endpoints),
		weft.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing session: %w", err)
	}
	return s, nil
}

// NewSource creates the push source selected by cfg.Push.Transport.
// The returned func releases its connections.
func NewSource(cfg *config.Config, logger *slog.Logger) (ports.EventSource, func() error, error) {
	switch cfg.Push.Transport {
	case config.TransportRedis:
		src := redis.New(cfg.Push.RedisAddr, "", 0,
			redis.WithChannel(cfg.Push.Channel),
			redis.WithDefaultEvent(cfg.Push.Event),
			redis.WithLogger(logger),
		)
		return src, src.Close, nil
	case config.TransportSSE, "":
		src, err := sse.NewSource(cfg.PushURL(), sse.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return src, func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown push transport %q", cfg.Push.Transport)
}
