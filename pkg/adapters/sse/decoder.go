package sse

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/weft/pkg/domain"
)

// DefaultEventName is used for frames without an "event:" field.
const DefaultEventName = "message"

// Decoder reads text/event-stream frames.
type Decoder struct {
	r      *bufio.Reader
	lastID string
	retry  time.Duration
}

// NewDecoder wraps r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// LastID is the most recent "id:" value seen, carried across frames.
func (d *Decoder) LastID() string {
	return d.lastID
}

// Retry is the last reconnection delay announced by the server, or zero.
func (d *Decoder) Retry() time.Duration {
	return d.retry
}

// Next returns the next dispatched event. Frames without data are skipped.
// It returns io.EOF when the stream ends; a trailing frame with no blank
// line after it is dropped.
func (d *Decoder) Next() (domain.PushEvent, error) {
	var (
		name string
		data strings.Builder
		has  bool
	)
	for {
		line, err := d.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return domain.PushEvent{}, err
		}
		eof := err == io.EOF
		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			if has {
				if name == "" {
					name = DefaultEventName
				}
				return domain.PushEvent{
					ID:       d.lastID,
					Name:     name,
					Data:     strings.TrimSuffix(data.String(), "\n"),
					Received: time.Now(),
				}, nil
			}
			name = ""
			if eof {
				return domain.PushEvent{}, io.EOF
			}
			continue
		}
		if eof {
			return domain.PushEvent{}, io.EOF
		}

		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			name = value
		case "data":
			data.WriteString(value)
			data.WriteByte('\n')
			has = true
		case "id":
			if !strings.ContainsRune(value, 0) {
				d.lastID = value
			}
		case "retry":
			if ms, err := strconv.ParseUint(value, 10, 32); err == nil {
				d.retry = time.Duration(ms) * time.Millisecond
			}
		}
	}
}
