package http

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/domain"
)

// Hub fans push events out to connected SSE clients.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan domain.PushEvent]struct{}
	logger      *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Hub{
		subscribers: make(map[chan domain.PushEvent]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a client. The returned func unregisters it.
func (h *Hub) Subscribe() (<-chan domain.PushEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan domain.PushEvent, 10)
	h.subscribers[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
	}
}

// Broadcast sends ev to every subscriber and reports how many received it.
func (h *Hub) Broadcast(ev domain.PushEvent) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ch := range h.subscribers {
		select {
		case ch <- ev:
			delivered++
		default:
			// Drop message if channel is full (slow client)
			h.logger.Warn("sse client buffer full, dropping event", "event", ev.Name)
		}
	}
	return delivered
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// writeEvent writes one text/event-stream frame. Line breaks in ID and Name
// are dropped; every line of Data becomes its own data field.
func writeEvent(w io.Writer, ev domain.PushEvent) error {
	var b strings.Builder
	if id := singleLine(ev.ID); id != "" {
		fmt.Fprintf(&b, "id: %s\n", id)
	}
	if name := singleLine(ev.Name); name != "" {
		fmt.Fprintf(&b, "event: %s\n", name)
	}
	for _, line := range strings.Split(lineBreaks.Replace(ev.Data), "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func singleLine(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}
