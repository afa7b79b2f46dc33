package ports

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
)

// EventSource delivers server-pushed events.
// The returned channel is closed when ctx is done or the source gives up.
type EventSource interface {
	Subscribe(ctx context.Context) (<-chan domain.PushEvent, error)
}
