package ports

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
)

// Dispatcher performs exactly one request/response cycle per call.
// Failures are returned as *domain.DispatchError.
type Dispatcher interface {
	Dispatch(ctx context.Context, endpoint string, payload any) (*domain.Response, error)
}
