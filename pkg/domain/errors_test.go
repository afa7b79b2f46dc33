package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestDispatchError_Is(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"Encode", &DispatchError{Kind: KindEncode, Endpoint: "/x"}, ErrEncode},
		{"Transport", &DispatchError{Kind: KindTransport, Endpoint: "/x", Err: context.DeadlineExceeded}, ErrTransport},
		{"Status", &DispatchError{Kind: KindStatus, Endpoint: "/x", Status: 502}, ErrStatus},
		{"Decode", &DispatchError{Kind: KindDecode, Endpoint: "/x"}, ErrDecode},
		{"Application", &DispatchError{Kind: KindApplication, Endpoint: "/x", Message: "bad syntax"}, ErrApplication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
			}
			wrapped := fmt.Errorf("call site: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("wrapped error lost its kind")
			}
		})
	}
}

func TestDispatchError_WrapsCause(t *testing.T) {
	err := &DispatchError{Kind: KindTransport, Endpoint: "/compile-line", Err: context.DeadlineExceeded}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("expected cause to be reachable")
	}
	if errors.Is(err, ErrApplication) {
		t.Fatal("transport error must not match application sentinel")
	}
}

func TestApplicationMessage(t *testing.T) {
	msg, ok := ApplicationMessage(fmt.Errorf("wrap: %w", &DispatchError{Kind: KindApplication, Message: "bad syntax"}))
	if !ok || msg != "bad syntax" {
		t.Errorf("got (%q, %v), want (\"bad syntax\", true)", msg, ok)
	}

	if _, ok := ApplicationMessage(&DispatchError{Kind: KindTransport}); ok {
		t.Error("transport error reported as application error")
	}
	if _, ok := ApplicationMessage(errors.New("plain")); ok {
		t.Error("plain error reported as application error")
	}
}

func TestDispatchError_Message(t *testing.T) {
	tests := []struct {
		err  *DispatchError
		want string
	}{
		{&DispatchError{Kind: KindApplication, Endpoint: "/compile-line", Message: "bad syntax"}, "/compile-line: application: bad syntax"},
		{&DispatchError{Kind: KindStatus, Endpoint: "/execute", Status: 500}, "/execute: status (status 500)"},
		{&DispatchError{Kind: KindDecode, Endpoint: "/process_node", Err: errors.New("eof")}, "/process_node: decode: eof"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
