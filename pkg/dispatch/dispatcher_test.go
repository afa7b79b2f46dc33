package dispatch_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/weft/pkg/dispatch"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stub replies with a fixed status and body and records what it received.
type stub struct {
	status  int
	body    string
	delay   time.Duration
	calls   atomic.Int32
	lastReq atomic.Pointer[http.Request]
	payload atomic.Value
}

func (s *stub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.calls.Add(1)
	s.lastReq.Store(r.Clone(context.Background()))
	data, _ := io.ReadAll(r.Body)
	s.payload.Store(string(data))
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-r.Context().Done():
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.status)
	io.WriteString(w, s.body)
}

func newStub(t *testing.T, status int, body string) (*stub, *httptest.Server) {
	t.Helper()
	s := &stub{status: status, body: body}
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return s, srv
}

func TestDispatch_Success(t *testing.T) {
	s, srv := newStub(t, http.StatusOK, `{"result": "ok"}`)
	d, err := dispatch.New(srv.URL)
	require.NoError(t, err)

	resp, err := d.Dispatch(context.Background(), "/process_node", map[string]any{"type": "ML"})
	require.NoError(t, err)

	assert.Equal(t, "ok", resp.Fields()["result"])
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.NotEmpty(t, resp.RequestID)
	assert.EqualValues(t, 1, s.calls.Load())

	req := s.lastReq.Load()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/process_node", req.URL.Path)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, resp.RequestID, req.Header.Get("X-Request-ID"))
	assert.JSONEq(t, `{"type":"ML"}`, s.payload.Load().(string))
}

func TestDispatch_ApplicationError(t *testing.T) {
	_, srv := newStub(t, http.StatusOK, `{"error": "bad syntax"}`)
	d, err := dispatch.New(srv.URL)
	require.NoError(t, err)

	resp, err := d.Dispatch(context.Background(), "/compile-line", map[string]string{"code": "x ="})
	assert.Nil(t, resp)
	require.ErrorIs(t, err, domain.ErrApplication)

	msg, ok := domain.ApplicationMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "bad syntax", msg)
}

func TestDispatch_ErrorFieldShapes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		wantMsg string
	}{
		{"EmptyString", `{"error": "", "output": "1"}`, false, ""},
		{"Null", `{"error": null, "output": "1"}`, false, ""},
		{"False", `{"error": false, "result": 1}`, false, ""},
		{"Object", `{"error": {"message": "line 3"}}`, true, "line 3"},
		{"True", `{"error": true}`, true, "error"},
		{"Zero", `{"error": 0, "output": "42"}`, false, ""},
		{"Number", `{"error": 7}`, true, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := newStub(t, http.StatusOK, tt.body)
			d, err := dispatch.New(srv.URL)
			require.NoError(t, err)

			_, err = d.Dispatch(context.Background(), "/x", nil)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			msg, ok := domain.ApplicationMessage(err)
			assert.True(t, ok)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestDispatch_NonJSONBody(t *testing.T) {
	_, srv := newStub(t, http.StatusOK, `<html>oops</html>`)
	d, err := dispatch.New(srv.URL)
	require.NoError(t, err)

	_, err = d.Dispatch(context.Background(), "/process_node", map[string]any{})
	assert.ErrorIs(t, err, domain.ErrDecode)
}

func TestDispatch_BodyOverLimit(t *testing.T) {
	_, srv := newStub(t, http.StatusOK, `{"output": "0123456789"}`)
	d, err := dispatch.New(srv.URL, dispatch.WithMaxBodyBytes(8))
	require.NoError(t, err)

	_, err = d.Dispatch(context.Background(), "/compile-line", nil)
	require.ErrorIs(t, err, domain.ErrDecode)
	assert.Contains(t, err.Error(), "exceeds 8 bytes")

	// A body of exactly the limit is read whole.
	_, srv = newStub(t, http.StatusOK, `{"a":12}`)
	d, err = dispatch.New(srv.URL, dispatch.WithMaxBodyBytes(8))
	require.NoError(t, err)
	resp, err := d.Dispatch(context.Background(), "/x", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 12, resp.Fields()["a"])
}

func TestDispatch_Status(t *testing.T) {
	_, srv := newStub(t, http.StatusInternalServerError, `{"error": "compiler crashed"}`)
	d, err := dispatch.New(srv.URL)
	require.NoError(t, err)

	_, err = d.Dispatch(context.Background(), "/compile-line", map[string]string{"code": "x"})
	require.ErrorIs(t, err, domain.ErrStatus)
	assert.NotErrorIs(t, err, domain.ErrApplication)

	var de *domain.DispatchError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, http.StatusInternalServerError, de.Status)
	assert.Equal(t, "compiler crashed", de.Message)
}

func TestDispatch_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	d, err := dispatch.New("http://" + addr)
	require.NoError(t, err)

	_, err = d.Dispatch(context.Background(), "/process_node", map[string]any{})
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestDispatch_Timeout(t *testing.T) {
	s, srv := newStub(t, http.StatusOK, `{"result": "late"}`)
	s.delay = time.Second

	d, err := dispatch.New(srv.URL, dispatch.WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	_, err = d.Dispatch(context.Background(), "/process_node", map[string]any{})
	require.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestDispatch_Cancellation(t *testing.T) {
	s, srv := newStub(t, http.StatusOK, `{"result": "late"}`)
	s.delay = time.Second

	d, err := dispatch.New(srv.URL, dispatch.WithTimeout(0))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, err = d.Dispatch(ctx, "/process_node", map[string]any{})
	require.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDispatch_EncodeError(t *testing.T) {
	s, srv := newStub(t, http.StatusOK, `{}`)
	d, err := dispatch.New(srv.URL)
	require.NoError(t, err)

	_, err = d.Dispatch(context.Background(), "/execute", map[string]any{"data": make(chan int)})
	assert.ErrorIs(t, err, domain.ErrEncode)
	assert.EqualValues(t, 0, s.calls.Load(), "nothing should be sent")
}

func TestDispatch_AbsoluteEndpoint(t *testing.T) {
	_, srv := newStub(t, http.StatusOK, `{"status": "done", "rows": [1, 2]}`)
	d, err := dispatch.New("")
	require.NoError(t, err)

	resp, err := d.Dispatch(context.Background(), srv.URL+"/execute", map[string]any{"data": []int{1}})
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Fields()["status"])

	_, err = d.Dispatch(context.Background(), "/execute", nil)
	assert.ErrorIs(t, err, domain.ErrTransport, "relative endpoint without base url")
}

func TestDispatch_NonObjectBody(t *testing.T) {
	_, srv := newStub(t, http.StatusOK, `[1, 2, 3]`)
	d, err := dispatch.New(srv.URL)
	require.NoError(t, err)

	resp, err := d.Dispatch(context.Background(), "/execute", nil)
	require.NoError(t, err)
	assert.Nil(t, resp.Fields())
	assert.Equal(t, []any{1.0, 2.0, 3.0}, resp.Body)
}

func TestDispatch_HooksAndHeaders(t *testing.T) {
	s, srv := newStub(t, http.StatusOK, `{"result": 1}`)

	var started, done []*domain.DispatchEvent
	hooks := domain.LifecycleHooks{
		OnDispatch:     func(ctx context.Context, e *domain.DispatchEvent) { started = append(started, e) },
		OnDispatchDone: func(ctx context.Context, e *domain.DispatchEvent) { done = append(done, e) },
	}
	d, err := dispatch.New(srv.URL, dispatch.WithHooks(hooks), dispatch.WithHeader("Authorization", "Bearer t"))
	require.NoError(t, err)

	_, err = d.Dispatch(context.Background(), "/process_node", nil)
	require.NoError(t, err)

	require.Len(t, started, 1)
	require.Len(t, done, 1)
	assert.Equal(t, "ok", done[0].Outcome())
	assert.Equal(t, http.StatusOK, done[0].Status)
	assert.Equal(t, "Bearer t", s.lastReq.Load().Header.Get("Authorization"))
}

func TestNew_InvalidBase(t *testing.T) {
	_, err := dispatch.New("localhost:8080")
	assert.Error(t, err)
	_, err = dispatch.New("://")
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	d, err := dispatch.New("http://backend.local:5000/api/")
	require.NoError(t, err)

	got, err := d.Resolve("compile-line")
	require.NoError(t, err)
	assert.Equal(t, "http://backend.local:5000/compile-line", got)

	got, err = d.Resolve("https://exec.example.com/execute")
	require.NoError(t, err)
	assert.Equal(t, "https://exec.example.com/execute", got)
}

// Payloads are sent verbatim: no schema is enforced.
func TestDispatch_PayloadVerbatim(t *testing.T) {
	s, srv := newStub(t, http.StatusOK, `{"result": null}`)
	d, err := dispatch.New(srv.URL)
	require.NoError(t, err)

	payload := json.RawMessage(`{"anything":[true,{"nested":1}]}`)
	_, err = d.Dispatch(context.Background(), "/process_node", payload)
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), s.payload.Load().(string))
}
