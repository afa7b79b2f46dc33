package selection

import (
	"context"
	"sync"

	"github.com/aretw0/weft/pkg/domain"
)

// Tracker owns the single selected-element slot.
type Tracker struct {
	mu      sync.Mutex
	current domain.Element
	class   string
	hooks   domain.LifecycleHooks
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClass overrides the marker applied to the selected element.
func WithClass(class string) Option {
	return func(t *Tracker) {
		t.class = class
	}
}

// WithHooks registers observability hooks; only OnSelect is used.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Tracker) {
		t.hooks = hooks
	}
}

// NewTracker creates an empty tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{class: domain.ClassSelected}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Select unmarks the previous element, marks el and records it as current.
// Selecting the current element again re-applies the marker.
// A nil element clears the selection.
func (t *Tracker) Select(el domain.Element) {
	if el == nil {
		t.Clear()
		return
	}

	t.mu.Lock()
	prev := t.current
	if prev != nil {
		prev.RemoveClass(t.class)
	}
	el.AddClass(t.class)
	t.current = el
	t.mu.Unlock()

	t.notify(prev, el)
}

// Current returns the selected element, or nil.
func (t *Tracker) Current() domain.Element {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Clear unmarks the selected element and empties the slot.
func (t *Tracker) Clear() {
	t.mu.Lock()
	prev := t.current
	if prev != nil {
		prev.RemoveClass(t.class)
	}
	t.current = nil
	t.mu.Unlock()

	if prev != nil {
		t.notify(prev, nil)
	}
}

// Deselect clears the selection only if el is the selected element.
func (t *Tracker) Deselect(el domain.Element) bool {
	t.mu.Lock()
	if t.current == nil || el == nil || t.current.ID() != el.ID() {
		t.mu.Unlock()
		return false
	}
	prev := t.current
	prev.RemoveClass(t.class)
	t.current = nil
	t.mu.Unlock()

	t.notify(prev, nil)
	return true
}

func (t *Tracker) notify(prev, cur domain.Element) {
	if t.hooks.OnSelect == nil {
		return
	}
	ev := &domain.SelectEvent{}
	if prev != nil {
		ev.PreviousID = prev.ID()
	}
	if cur != nil {
		ev.CurrentID = cur.ID()
	}
	t.hooks.OnSelect(context.Background(), ev)
}
