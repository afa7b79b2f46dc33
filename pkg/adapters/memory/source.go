package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

// ErrSourceClosed is returned by Emit after Close.
var ErrSourceClosed = errors.New("source closed")

// Source implements ports.EventSource over an in-process channel.
// Safe for concurrent use; supports a single subscriber.
type Source struct {
	mu      sync.Mutex
	ch      chan domain.PushEvent
	done    chan struct{}
	closed  bool
	sending sync.WaitGroup
	once    sync.Once
}

var _ ports.EventSource = (*Source)(nil)

// NewSource creates a source buffering up to size events.
func NewSource(size int) *Source {
	return &Source{
		ch:   make(chan domain.PushEvent, size),
		done: make(chan struct{}),
	}
}

// Subscribe returns the event channel. It is closed by Close or when ctx is done.
func (s *Source) Subscribe(ctx context.Context) (<-chan domain.PushEvent, error) {
	out := make(chan domain.PushEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-s.ch:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Emit queues an event. It blocks while the buffer is full; a Close during
// the wait makes it return ErrSourceClosed.
func (s *Source) Emit(ev domain.PushEvent) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSourceClosed
	}
	s.sending.Add(1)
	s.mu.Unlock()
	defer s.sending.Done()

	if ev.Received.IsZero() {
		ev.Received = time.Now()
	}
	select {
	case s.ch <- ev:
		return nil
	case <-s.done:
		return ErrSourceClosed
	}
}

// Close ends the stream after queued events are delivered. Pending Emit
// calls are released.
func (s *Source) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	s.mu.Unlock()

	s.once.Do(func() {
		s.sending.Wait()
		close(s.ch)
	})
}
