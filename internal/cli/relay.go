package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/aretw0/weft"
	httpadapter "github.com/aretw0/weft/internal/adapters/http"
	"github.com/aretw0/weft/internal/config"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/observability"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/relay"
	"golang.org/x/sync/errgroup"
)

// RelayOptions configures RunRelay.
type RelayOptions struct {
	Config    *config.Config
	Logger    *slog.Logger
	Presenter ports.Presenter

	// Source overrides the transport chosen by Config.
	Source ports.EventSource
	// OnListen is called with the admin server address once it is bound.
	OnListen func(net.Addr)
}

// RunRelay follows push events until ctx is done or the source ends. When
// Config.Admin.Addr is set the admin API, metrics and SSE hub are served
// alongside.
func RunRelay(ctx context.Context, opts RelayOptions) error {
	cfg, logger := opts.Config, opts.Logger
	parent := ctx

	policy, err := relay.ParsePolicy(cfg.Relay.Policy)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	hooks := metrics.Hooks()
	if logger.Enabled(ctx, slog.LevelDebug) {
		hooks = domain.ChainHooks(hooks, observability.LogHooks(logger))
	}

	session, err := NewSession(cfg, logger, hooks)
	if err != nil {
		return err
	}
	defer session.Close()

	source := opts.Source
	if source == nil {
		src, closeSource, err := NewSource(cfg, logger)
		if err != nil {
			return err
		}
		defer closeSource()
		source = src
	}

	r := session.NewRelay(source, opts.Presenter,
		relay.WithPolicy(policy),
		relay.WithEventName(cfg.Push.Event),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// The relay ending, for whatever reason, stops the admin server too.
		defer cancel()
		return r.Run(gctx)
	})

	if cfg.Admin.Addr != "" {
		ln, err := net.Listen("tcp", cfg.Admin.Addr)
		if err != nil {
			cancel()
			g.Wait()
			return fmt.Errorf("admin listen: %w", err)
		}
		if opts.OnListen != nil {
			opts.OnListen(ln.Addr())
		}
		handler := httpadapter.NewHandler(session,
			httpadapter.WithHub(httpadapter.NewHub(logger)),
			httpadapter.WithMetrics(metrics.Handler()),
			httpadapter.WithLogger(logger),
			httpadapter.WithVersion(weft.Version),
		)
		g.Go(func() error {
			return Serve(gctx, ln, handler, logger)
		})
	}

	err = g.Wait()
	st := r.Stats()
	logger.Info("relay finished",
		"reason", stopReason(parent),
		"received", st.Received,
		"rendered", st.Rendered,
		"discarded", st.Discarded,
		"failed", st.Failed,
	)
	return err
}
