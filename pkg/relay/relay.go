package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/client"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

// Compiler is the part of the client the relay needs.
type Compiler interface {
	CompileLine(ctx context.Context, code string) (*domain.CompileResult, error)
}

// Stats counts what the relay has done so far.
type Stats struct {
	Received  uint64
	Rendered  uint64
	Discarded uint64
	Failed    uint64
}

// Relay forwards push events to the compile-line endpoint.
type Relay struct {
	source    ports.EventSource
	compiler  Compiler
	presenter ports.Presenter
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	policy    Policy
	eventName string

	seq atomic.Uint64
	wg  sync.WaitGroup

	// renderMu serializes presenter calls and guards lastShown.
	renderMu  sync.Mutex
	lastShown uint64

	received  atomic.Uint64
	rendered  atomic.Uint64
	discarded atomic.Uint64
	failed    atomic.Uint64
}

// New creates a Relay.
func New(source ports.EventSource, compiler Compiler, presenter ports.Presenter, opts ...Option) *Relay {
	r := &Relay{
		source:    source,
		compiler:  compiler,
		presenter: presenter,
		logger:    logging.NewNop(),
		policy:    PolicyAll,
		eventName: domain.EventCompileLine,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run consumes events until ctx is done or the source closes.
// It waits for in-flight dispatches before returning.
func (r *Relay) Run(ctx context.Context) error {
	events, err := r.source.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer r.wg.Wait()

	r.logger.Info("relay listening", "event", r.eventName, "policy", r.policy)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("relay stopping", "reason", ctx.Err())
			return nil
		case ev, ok := <-events:
			if !ok {
				r.logger.Info("relay source closed")
				return nil
			}
			if ev.Name != r.eventName {
				r.logger.Debug("ignoring push event", "event", ev.Name)
				continue
			}
			r.accept(ctx, ev)
		}
	}
}

func (r *Relay) accept(ctx context.Context, ev domain.PushEvent) {
	re := &domain.RelayEvent{Seq: r.seq.Add(1), Event: ev}
	r.received.Add(1)
	if r.hooks.OnPush != nil {
		r.hooks.OnPush(ctx, re)
	}

	if r.policy == PolicySerial {
		r.handle(ctx, re)
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.handle(ctx, re)
	}()
}

func (r *Relay) handle(ctx context.Context, re *domain.RelayEvent) {
	res, err := r.compiler.CompileLine(ctx, re.Event.Code())
	out := domain.Output{Source: r.eventName}
	if res != nil {
		out.Text = res.Output
	}

	r.renderMu.Lock()
	defer r.renderMu.Unlock()

	if r.policy == PolicyLatest && re.Seq < r.lastShown {
		re.Kind = domain.RenderDiscarded
		re.Err = err
		r.discarded.Add(1)
		r.logger.Debug("discarding stale response", "seq", re.Seq, "shown", r.lastShown)
		if r.hooks.OnDiscard != nil {
			r.hooks.OnDiscard(ctx, re)
		}
		return
	}

	kind, perr := client.Surface(ctx, r.presenter, r.logger, out, err)
	re.Kind = kind
	re.Err = err
	if perr != nil {
		r.logger.Error("presenter failed", "seq", re.Seq, "error", perr)
	}

	if kind == domain.RenderLogged {
		r.failed.Add(1)
	} else {
		r.rendered.Add(1)
		if re.Seq > r.lastShown {
			r.lastShown = re.Seq
		}
	}
	if r.hooks.OnRender != nil {
		r.hooks.OnRender(ctx, re)
	}
}

// Stats returns a snapshot of the relay counters.
func (r *Relay) Stats() Stats {
	return Stats{
		Received:  r.received.Load(),
		Rendered:  r.rendered.Load(),
		Discarded: r.discarded.Load(),
		Failed:    r.failed.Load(),
	}
}
