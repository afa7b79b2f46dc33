package sse_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/weft/pkg/adapters/sse"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastBackOff() backoff.BackOff {
	return backoff.NewConstantBackOff(10 * time.Millisecond)
}

func next(t *testing.T, ch <-chan domain.PushEvent) domain.PushEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed early")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return domain.PushEvent{}
}

func TestSource_Streams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
		fmt.Fprintf(w, "event: compile-line\ndata: print(1)\n\n")
		flusher.Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	src, err := sse.NewSource(srv.URL, sse.WithHeader("Authorization", "secret"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := src.Subscribe(ctx)
	require.NoError(t, err)

	assert.Equal(t, "ping", next(t, ch).Name)
	ev := next(t, ch)
	assert.Equal(t, domain.EventCompileLine, ev.Name)
	assert.Equal(t, "print(1)", ev.Code())

	cancel()
	assert.Eventually(t, func() bool {
		_, ok := <-ch
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSource_ReconnectsWithLastEventID(t *testing.T) {
	var (
		mu      sync.Mutex
		conns   int
		resumed string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		conns++
		n := conns
		if n == 2 {
			resumed = r.Header.Get("Last-Event-ID")
		}
		mu.Unlock()

		w.Header().Set("Content-Type", "text/event-stream")
		if n == 1 {
			// Drop the connection after one event.
			fmt.Fprintf(w, "id: 1\nevent: compile-line\ndata: first\n\n")
			return
		}
		fmt.Fprintf(w, "id: 2\nevent: compile-line\ndata: second\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	src, err := sse.NewSource(srv.URL, sse.WithBackOff(fastBackOff))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := src.Subscribe(ctx)
	require.NoError(t, err)

	assert.Equal(t, "first", next(t, ch).Data)
	ev := next(t, ch)
	assert.Equal(t, "second", ev.Data)
	assert.Equal(t, "2", ev.ID)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "1", resumed)
}

func TestSource_GivesUp(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src, err := sse.NewSource(srv.URL, sse.WithBackOff(func() backoff.BackOff {
		return backoff.WithMaxRetries(fastBackOff(), 2)
	}))
	require.NoError(t, err)

	ch, err := src.Subscribe(context.Background())
	require.NoError(t, err)

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("source did not give up")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, calls)
}

func TestNewSource_RejectsBadURL(t *testing.T) {
	_, err := sse.NewSource("ftp://example.com/events")
	assert.Error(t, err)

	_, err = sse.NewSource("://")
	assert.Error(t, err)
}
