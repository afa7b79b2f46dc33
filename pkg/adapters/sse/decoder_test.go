package sse_test

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/weft/pkg/adapters/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	id, name, data string
}

func decodeAll(t *testing.T, stream string) ([]frame, *sse.Decoder) {
	t.Helper()
	dec := sse.NewDecoder(strings.NewReader(stream))
	var got []frame
	for {
		ev, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return got, dec
		}
		require.NoError(t, err)
		got = append(got, frame{ev.ID, ev.Name, ev.Data})
	}
}

func TestDecoder(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   []frame
	}{
		{
			name:   "ping then default event",
			stream: "event: ping\ndata: connected\n\ndata: hello\n\n",
			want:   []frame{{"", "ping", "connected"}, {"", "message", "hello"}},
		},
		{
			name:   "multi-line data",
			stream: "event: compile-line\ndata: {\"code\":\ndata: \"x = 1\"}\n\n",
			want:   []frame{{"", "compile-line", "{\"code\":\n\"x = 1\"}"}},
		},
		{
			name:   "comments and crlf",
			stream: ": keepalive\r\nevent: compile-line\r\ndata: print(1)\r\n\r\n",
			want:   []frame{{"", "compile-line", "print(1)"}},
		},
		{
			name:   "id carries over",
			stream: "id: 7\ndata: a\n\ndata: b\n\n",
			want:   []frame{{"7", "message", "a"}, {"7", "message", "b"}},
		},
		{
			name:   "no space after colon",
			stream: "event:compile-line\ndata:x\n\n",
			want:   []frame{{"", "compile-line", "x"}},
		},
		{
			name:   "frame without data is skipped",
			stream: "event: ping\n\ndata: after\n\n",
			want:   []frame{{"", "message", "after"}},
		},
		{
			name:   "unterminated frame dropped",
			stream: "data: one\n\ndata: two",
			want:   []frame{{"", "message", "one"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := decodeAll(t, tt.stream)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecoder_Retry(t *testing.T) {
	_, dec := decodeAll(t, "retry: 250\ndata: x\n\nretry: soon\n\n")
	assert.Equal(t, 250*time.Millisecond, dec.Retry())
}
