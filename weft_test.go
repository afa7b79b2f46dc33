package weft_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch r.URL.Path {
		case "/process_node":
			json.NewEncoder(w).Encode(map[string]any{"result": body["id"]})
		case "/compile-line":
			if body["code"] == "" {
				io.WriteString(w, `{"error": "empty line"}`)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"output": "ran " + body["code"].(string)})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSession_SelectAndProcess(t *testing.T) {
	srv := newBackend(t)

	var selects []domain.SelectEvent
	s, err := weft.New(srv.URL, weft.WithLifecycleHooks(domain.LifecycleHooks{
		OnSelect: func(ctx context.Context, e *domain.SelectEvent) { selects = append(selects, *e) },
	}))
	require.NoError(t, err)

	a := domain.NewNode("a", domain.NodeTypeML, nil)
	b := domain.NewNode("b", domain.NodeTypeHTML, nil)
	require.NoError(t, s.Register(a))
	require.NoError(t, s.Register(b))

	_, err = s.ProcessSelected(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoSelection)

	_, err = s.Select("a")
	require.NoError(t, err)
	_, err = s.Select("b")
	require.NoError(t, err)

	assert.False(t, a.HasClass(domain.ClassSelected))
	assert.True(t, b.HasClass(domain.ClassSelected))

	res, err := s.ProcessSelected(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", res.Result)

	_, err = s.Select("missing")
	assert.ErrorIs(t, err, domain.ErrUnknownElement)
	cur, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "b", cur.ID(), "failed lookup keeps the selection")

	require.NoError(t, s.Close())
	_, ok = s.Selected()
	assert.False(t, ok)
	assert.False(t, b.HasClass(domain.ClassSelected))

	assert.Equal(t, []domain.SelectEvent{
		{CurrentID: "a"},
		{PreviousID: "a", CurrentID: "b"},
		{PreviousID: "b"},
	}, selects)
}

func TestSession_RemoveAndReplaceClearSelection(t *testing.T) {
	s, err := weft.New("http://127.0.0.1:1")
	require.NoError(t, err)

	a := domain.NewNode("a", domain.NodeTypeML, nil)
	require.NoError(t, s.Register(a))
	_, err = s.Select("a")
	require.NoError(t, err)

	replacement := domain.NewNode("a", domain.NodeTypeHTML, nil)
	require.NoError(t, s.Register(replacement))
	_, ok := s.Selected()
	assert.False(t, ok)
	assert.False(t, a.HasClass(domain.ClassSelected))

	_, err = s.Select("a")
	require.NoError(t, err)
	require.NoError(t, s.Remove("a"))
	_, ok = s.Selected()
	assert.False(t, ok)

	assert.ErrorIs(t, s.Remove("a"), domain.ErrUnknownElement)
}

func TestSession_Relay(t *testing.T) {
	srv := newBackend(t)
	s, err := weft.New(srv.URL, weft.WithTimeout(time.Second))
	require.NoError(t, err)

	src := memory.NewSource(4)
	p := memory.NewPresenter()
	r := s.NewRelay(src, p)

	require.NoError(t, src.Emit(domain.PushEvent{Name: domain.EventCompileLine, Data: "x"}))
	src.Close()
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, []domain.Output{{Source: domain.EventCompileLine, Text: "ran x"}}, p.Outputs())
}

func TestSession_ApplicationError(t *testing.T) {
	srv := newBackend(t)
	s, err := weft.New(srv.URL)
	require.NoError(t, err)

	_, err = s.Client().CompileLine(context.Background(), "")
	var de *domain.DispatchError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.KindApplication, de.Kind)
	assert.Equal(t, "empty line", de.Message)
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := weft.New("not a url")
	assert.Error(t, err)
}
