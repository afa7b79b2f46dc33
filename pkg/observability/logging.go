package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/weft/pkg/domain"
)

// LogHooks writes one structured record per lifecycle event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatchDone: func(ctx context.Context, e *domain.DispatchEvent) {
			logger.InfoContext(ctx, "dispatch",
				"request_id", e.RequestID,
				"endpoint", e.Endpoint,
				"status", e.Status,
				"outcome", e.Outcome(),
				"duration", e.Duration,
			)
		},
		OnPush: func(ctx context.Context, e *domain.RelayEvent) {
			logger.DebugContext(ctx, "push", "seq", e.Seq, "event", e.Event.Name, "id", e.Event.ID)
		},
		OnRender: func(ctx context.Context, e *domain.RelayEvent) {
			logger.DebugContext(ctx, "render", "seq", e.Seq, "kind", e.Kind)
		},
		OnDiscard: func(ctx context.Context, e *domain.RelayEvent) {
			logger.InfoContext(ctx, "discard", "seq", e.Seq)
		},
		OnSelect: func(ctx context.Context, e *domain.SelectEvent) {
			logger.InfoContext(ctx, "select", "previous", e.PreviousID, "current", e.CurrentID)
		},
	}
}
