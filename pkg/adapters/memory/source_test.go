package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_DeliversThenCloses(t *testing.T) {
	src := memory.NewSource(4)
	require.NoError(t, src.Emit(domain.PushEvent{Name: domain.EventCompileLine, Data: "a"}))
	require.NoError(t, src.Emit(domain.PushEvent{Name: domain.EventCompileLine, Data: "b"}))
	src.Close()

	events, err := src.Subscribe(context.Background())
	require.NoError(t, err)

	var got []string
	for ev := range events {
		assert.False(t, ev.Received.IsZero())
		got = append(got, ev.Data)
	}
	assert.Equal(t, []string{"a", "b"}, got)
	assert.ErrorIs(t, src.Emit(domain.PushEvent{}), memory.ErrSourceClosed)
}

func TestSource_StopsOnContext(t *testing.T) {
	src := memory.NewSource(1)
	ctx, cancel := context.WithCancel(context.Background())

	events, err := src.Subscribe(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestSource_CloseReleasesBlockedEmit(t *testing.T) {
	src := memory.NewSource(1)
	require.NoError(t, src.Emit(domain.PushEvent{Name: domain.EventCompileLine, Data: "a"}))

	emitted := make(chan error, 1)
	go func() {
		emitted <- src.Emit(domain.PushEvent{Name: domain.EventCompileLine, Data: "b"})
	}()

	closed := make(chan struct{})
	go func() {
		src.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked behind a pending Emit")
	}
	select {
	case err := <-emitted:
		assert.ErrorIs(t, err, memory.ErrSourceClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Emit not released by Close")
	}

	events, err := src.Subscribe(context.Background())
	require.NoError(t, err)
	var got []string
	for ev := range events {
		got = append(got, ev.Data)
	}
	assert.Equal(t, []string{"a"}, got)
}

func TestPresenter_Records(t *testing.T) {
	p := memory.NewPresenter()
	ctx := context.Background()

	require.NoError(t, p.ShowOutput(ctx, domain.Output{Source: "compile-line", Text: "1"}))
	require.NoError(t, p.ShowError(ctx, "bad syntax"))

	assert.Equal(t, []domain.Output{{Source: "compile-line", Text: "1"}}, p.Outputs())
	assert.Equal(t, []string{"bad syntax"}, p.Errors())
	assert.Equal(t, 2, p.Count())
}
