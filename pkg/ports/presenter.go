package ports

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
)

// Presenter shows dispatch outcomes to the user.
// Exactly one of the two methods is called per presented outcome.
type Presenter interface {
	ShowOutput(ctx context.Context, out domain.Output) error
	ShowError(ctx context.Context, message string) error
}
