package domain

import (
	"context"
	"time"
)

// EventCompileLine is the push event that carries a line of source code.
const EventCompileLine = "compile-line"

// PushEvent is a server-initiated notification.
type PushEvent struct {
	ID       string    `json:"id,omitempty"`
	Name     string    `json:"event"`
	Data     string    `json:"data"`
	Received time.Time `json:"-"`
}

// Code returns the source code carried by the event. Transports deliver the
// code itself as Data, so it is passed on verbatim.
func (e PushEvent) Code() string {
	return e.Data
}

// DispatchEvent describes one request/response cycle.
type DispatchEvent struct {
	RequestID string
	Endpoint  string
	Started   time.Time
	Duration  time.Duration
	Status    int
	Err       error
}

// Outcome returns "ok" or the error kind, for labelling.
func (e *DispatchEvent) Outcome() string {
	if e.Err == nil {
		return "ok"
	}
	if k := KindOf(e.Err); k != "" {
		return string(k)
	}
	return "error"
}

// RenderKind tells which presentation path a relayed response took.
type RenderKind string

const (
	RenderOutput    RenderKind = "output"
	RenderError     RenderKind = "error"
	RenderLogged    RenderKind = "logged"
	RenderDiscarded RenderKind = "discarded"
)

// RelayEvent describes a push event moving through the relay.
type RelayEvent struct {
	Seq   uint64
	Event PushEvent
	Kind  RenderKind
	Err   error
}

// SelectEvent describes a selection change.
type SelectEvent struct {
	PreviousID string
	CurrentID  string
}

// LifecycleHooks defines callbacks for observability. Nil fields are skipped.
type LifecycleHooks struct {
	OnDispatch     func(context.Context, *DispatchEvent)
	OnDispatchDone func(context.Context, *DispatchEvent)
	OnPush         func(context.Context, *RelayEvent)
	OnRender       func(context.Context, *RelayEvent)
	OnDiscard      func(context.Context, *RelayEvent)
	OnSelect       func(context.Context, *SelectEvent)
}

// ChainHooks merges several hook sets; callbacks run in argument order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range hooks {
		out.OnDispatch = chain(out.OnDispatch, h.OnDispatch)
		out.OnDispatchDone = chain(out.OnDispatchDone, h.OnDispatchDone)
		out.OnPush = chain(out.OnPush, h.OnPush)
		out.OnRender = chain(out.OnRender, h.OnRender)
		out.OnDiscard = chain(out.OnDiscard, h.OnDiscard)
		out.OnSelect = chain(out.OnSelect, h.OnSelect)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
