package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/google/uuid"
)

// Dispatcher sends JSON payloads to backend endpoints.
type Dispatcher struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	maxBody int64
	headers http.Header
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
}

var _ ports.Dispatcher = (*Dispatcher)(nil)

// New creates a Dispatcher. baseURL may be empty if every endpoint is absolute.
func New(baseURL string, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		http:    &http.Client{},
		timeout: DefaultTimeout,
		maxBody: DefaultMaxBodyBytes,
		headers: make(http.Header),
		logger:  logging.NewNop(),
	}
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
		}
		d.base = u
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Resolve turns an endpoint into an absolute URL.
func (d *Dispatcher) Resolve(endpoint string) (string, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	if d.base == nil {
		return "", fmt.Errorf("endpoint %q is relative and no base url is configured", endpoint)
	}
	if !strings.HasPrefix(ref.Path, "/") {
		ref.Path = "/" + ref.Path
	}
	return d.base.ResolveReference(ref).String(), nil
}

// Dispatch POSTs payload as JSON to endpoint and decodes the JSON reply.
// An "error" field in a 2xx body is reported as an application error on every endpoint.
func (d *Dispatcher) Dispatch(ctx context.Context, endpoint string, payload any) (*domain.Response, error) {
	ev := &domain.DispatchEvent{
		RequestID: uuid.NewString(),
		Endpoint:  endpoint,
		Started:   time.Now(),
	}
	if d.hooks.OnDispatch != nil {
		d.hooks.OnDispatch(ctx, ev)
	}

	resp, err := d.do(ctx, ev.RequestID, endpoint, payload)

	ev.Duration = time.Since(ev.Started)
	ev.Err = err
	if resp != nil {
		ev.Status = resp.Status
	} else {
		var de *domain.DispatchError
		if errors.As(err, &de) {
			ev.Status = de.Status
		}
	}
	if d.hooks.OnDispatchDone != nil {
		d.hooks.OnDispatchDone(ctx, ev)
	}

	log := d.logger.With("endpoint", endpoint, "request_id", ev.RequestID, "duration", ev.Duration)
	if err != nil {
		log.Debug("dispatch failed", "kind", domain.KindOf(err), "error", err)
		return nil, err
	}
	log.Debug("dispatch completed", "status", resp.Status)
	return resp, nil
}

func (d *Dispatcher) do(ctx context.Context, requestID, endpoint string, payload any) (*domain.Response, error) {
	fail := func(kind domain.ErrorKind, status int, err error) error {
		return &domain.DispatchError{Kind: kind, Endpoint: endpoint, Status: status, Err: err}
	}

	target, err := d.Resolve(endpoint)
	if err != nil {
		return nil, fail(domain.KindTransport, 0, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fail(domain.KindEncode, 0, err)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, fail(domain.KindTransport, 0, err)
	}
	for k, vs := range d.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	res, err := d.http.Do(req)
	if err != nil {
		return nil, fail(domain.KindTransport, 0, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, d.maxBody+1))
	if err != nil {
		return nil, fail(domain.KindTransport, res.StatusCode, fmt.Errorf("read body: %w", err))
	}
	tooLarge := int64(len(raw)) > d.maxBody
	if tooLarge {
		raw = raw[:d.maxBody]
	}

	var decoded any
	var decodeErr error
	if tooLarge {
		decodeErr = fmt.Errorf("response body exceeds %d bytes", d.maxBody)
	} else {
		decodeErr = json.Unmarshal(raw, &decoded)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		de := &domain.DispatchError{Kind: domain.KindStatus, Endpoint: endpoint, Status: res.StatusCode}
		if decodeErr == nil {
			if msg, ok := errorField(decoded); ok {
				de.Message = msg
				de.Err = errors.New(msg)
			}
		}
		return nil, de
	}

	if decodeErr != nil {
		return nil, fail(domain.KindDecode, res.StatusCode, decodeErr)
	}

	if msg, ok := errorField(decoded); ok {
		return nil, &domain.DispatchError{
			Kind:     domain.KindApplication,
			Endpoint: endpoint,
			Status:   res.StatusCode,
			Message:  msg,
		}
	}

	return &domain.Response{
		Endpoint:  endpoint,
		Status:    res.StatusCode,
		RequestID: requestID,
		Body:      decoded,
		Raw:       raw,
	}, nil
}

// errorField reports a set "error" member of a JSON object. null, "", false
// and 0 count as unset. Strings are used verbatim; objects with a "message"
// member use that.
func errorField(body any) (string, bool) {
	obj, ok := body.(map[string]any)
	if !ok {
		return "", false
	}
	v, ok := obj["error"]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return "", false
		}
		return t, true
	case bool:
		if !t {
			return "", false
		}
		return "error", true
	case float64:
		if t == 0 {
			return "", false
		}
	case map[string]any:
		if m, ok := t["message"].(string); ok && m != "" {
			return m, true
		}
	}
	return domain.FormatValue(v), true
}
