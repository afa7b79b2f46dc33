package memory

import (
	"context"
	"sync"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

// Presenter records what would have been shown.
// Safe for concurrent use.
type Presenter struct {
	mu      sync.Mutex
	outputs []domain.Output
	errors  []string
}

var _ ports.Presenter = (*Presenter)(nil)

func NewPresenter() *Presenter {
	return &Presenter{}
}

func (p *Presenter) ShowOutput(ctx context.Context, out domain.Output) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outputs = append(p.outputs, out)
	return nil
}

func (p *Presenter) ShowError(ctx context.Context, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors = append(p.errors, message)
	return nil
}

// Outputs returns a copy of the recorded outputs.
func (p *Presenter) Outputs() []domain.Output {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Output(nil), p.outputs...)
}

// Errors returns a copy of the recorded error messages.
func (p *Presenter) Errors() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.errors...)
}

// Count returns the total number of presented outcomes.
func (p *Presenter) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.outputs) + len(p.errors)
}
