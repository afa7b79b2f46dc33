package domain

import (
	"encoding/json"
	"sort"
	"sync"
)

// Node types understood by the processing backend.
const (
	NodeTypeML   = "ML"
	NodeTypeHTML = "HTML"
)

// ClassSelected is the marker applied to the active element.
const ClassSelected = "selected"

// Element is anything that can carry visual state markers.
type Element interface {
	ID() string
	AddClass(name string)
	RemoveClass(name string)
	HasClass(name string) bool
}

// Node is a UI node element. Its JSON form is the /process_node payload.
type Node struct {
	NodeID     string         `json:"id" yaml:"id" mapstructure:"id"`
	Type       string         `json:"type" yaml:"type" mapstructure:"type"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`

	mu      sync.RWMutex
	classes map[string]int
}

// NewNode creates a node with the given id and type.
func NewNode(id, nodeType string, params map[string]any) *Node {
	return &Node{NodeID: id, Type: nodeType, Parameters: params}
}

func (n *Node) ID() string { return n.NodeID }

// AddClass applies a marker. Re-applying an existing marker keeps a single
// marker but is still counted as an application.
func (n *Node) AddClass(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.classes == nil {
		n.classes = make(map[string]int)
	}
	n.classes[name]++
}

func (n *Node) RemoveClass(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.classes, name)
}

func (n *Node) HasClass(name string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.classes[name] > 0
}

// Applications reports how many times a marker was applied since it was last removed.
func (n *Node) Applications(name string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.classes[name]
}

// Classes returns the markers currently carried, sorted.
func (n *Node) Classes() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]string, 0, len(n.classes))
	for c := range n.classes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON sends the node verbatim; visual markers never leave the client.
func (n *Node) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID         string         `json:"id"`
		Type       string         `json:"type"`
		Parameters map[string]any `json:"parameters,omitempty"`
	}
	return json.Marshal(wire{ID: n.NodeID, Type: n.Type, Parameters: n.Parameters})
}
