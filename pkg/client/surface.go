package client

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

// Surface routes one call-site outcome. It is the single error-surfacing
// contract shared by every call site:
//
//   - err == nil: the presenter shows out.
//   - application error: the presenter shows the backend's message.
//   - anything else (transport, status, decode, encode): logged as a diagnostic,
//     the presenter is not touched.
//
// It returns the presentation kind and any presenter error.
func Surface(ctx context.Context, p ports.Presenter, logger *slog.Logger, out domain.Output, err error) (domain.RenderKind, error) {
	if err == nil {
		return domain.RenderOutput, p.ShowOutput(ctx, out)
	}

	if msg, ok := domain.ApplicationMessage(err); ok {
		return domain.RenderError, p.ShowError(ctx, msg)
	}

	level := slog.LevelError
	if errors.Is(err, context.Canceled) {
		level = slog.LevelDebug
	}
	logger.Log(ctx, level, "call failed", "source", out.Source, "kind", domain.KindOf(err), "error", err)
	return domain.RenderLogged, nil
}
