package selection

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/weft/pkg/domain"
)

// Registry holds the nodes of a UI session, keyed by id.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]*domain.Node
}

func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]*domain.Node)}
}

// Register adds or replaces a node.
func (r *Registry) Register(n *domain.Node) error {
	if n == nil || n.ID() == "" {
		return fmt.Errorf("register node: id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[n.ID()] = n
	return nil
}

// Lookup returns the node with the given id or domain.ErrUnknownElement.
func (r *Registry) Lookup(id string) (*domain.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownElement, id)
	}
	return n, nil
}

// Remove deletes a node and returns it.
func (r *Registry) Remove(id string) (*domain.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownElement, id)
	}
	delete(r.nodes, id)
	return n, nil
}

// List returns registered nodes ordered by id.
func (r *Registry) List() []*domain.Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
