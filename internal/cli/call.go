package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/weft/pkg/client"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

// Present surfaces the outcome of a one-shot call and returns the error that
// should fail the command, if any.
func Present(ctx context.Context, p ports.Presenter, logger *slog.Logger, out domain.Output, err error) error {
	if _, perr := client.Surface(ctx, p, logger, out, err); perr != nil {
		return perr
	}
	return err
}
