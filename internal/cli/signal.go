package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
)

// SignalError is the cancellation cause of a context stopped by a signal.
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return "received " + e.Signal.String()
}

// NotifyContext returns a copy of parent that is cancelled when one of sigs
// arrives, SIGINT and SIGTERM when none are given. Unlike signal.NotifyContext
// the signal is kept as the context cause, see SignalOf. Calling stop
// releases the handler.
func NotifyContext(parent context.Context, sigs ...os.Signal) (ctx context.Context, stop context.CancelFunc) {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	ctx, cancel := context.WithCancelCause(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			cancel(&SignalError{Signal: sig})
		case <-ctx.Done():
		}
	}()

	return ctx, func() { cancel(context.Canceled) }
}

// SignalOf returns the signal that cancelled ctx, or nil.
func SignalOf(ctx context.Context) os.Signal {
	var se *SignalError
	if errors.As(context.Cause(ctx), &se) {
		return se.Signal
	}
	return nil
}

// stopReason describes why a long-running command ended.
func stopReason(ctx context.Context) string {
	if sig := SignalOf(ctx); sig != nil {
		return "signal " + sig.String()
	}
	if ctx.Err() != nil {
		return context.Cause(ctx).Error()
	}
	return "source closed"
}
