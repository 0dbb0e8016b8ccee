package dag

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNodeNotFound is returned when an edge or query names an unknown node.
	ErrNodeNotFound = errors.New("node not found")
	// ErrSelfReference is returned for an edge from a node to itself.
	ErrSelfReference = errors.New("self-referential edge not allowed")
)

// CycleError reports a dependency cycle. Path starts and ends with the same
// node, e.g. [a b a].
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected: %s", strings.Join(e.Path, " -> "))
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{id: id}
	g.order = append(g.order, id)
}

// Has reports whether the node exists.
func (g *Graph) Has(id string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`. Duplicate edges
// are ignored.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("%w: %s -> %s", ErrSelfReference, fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source %w: %s", ErrNodeNotFound, fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination %w: %s", ErrNodeNotFound, toID)
	}

	for _, d := range toNode.deps {
		if d == fromNode {
			return nil
		}
	}
	toNode.deps = append(toNode.deps, fromNode)
	fromNode.dependents = append(fromNode.dependents, toNode)

	return nil
}

// Dependencies returns the IDs the given node depends on, in edge order.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return ids(n.deps), nil
}

// Dependents returns the IDs that depend on the given node, in edge order.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return ids(n.dependents), nil
}

// DetectCycles checks the graph for any cycles. It returns a *CycleError
// naming every participant of the first cycle found.
func (g *Graph) DetectCycles() error {
	_, err := g.TopologicalOrder()
	return err
}

// TopologicalOrder returns node IDs so that every node appears after all
// of its dependencies. Ties keep insertion order.
func (g *Graph) TopologicalOrder() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// permanent: nodes fully visited and known not to be part of a cycle.
	// stack: nodes on the current recursion path, in visiting order.
	permanent := make(map[string]bool, len(g.nodes))
	onStack := make(map[string]int, len(g.nodes))
	var stack []string
	order := make([]string, 0, len(g.nodes))

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil
		}
		if i, ok := onStack[n.id]; ok {
			path := append([]string{}, stack[i:]...)
			return &CycleError{Path: append(path, n.id)}
		}

		onStack[n.id] = len(stack)
		stack = append(stack, n.id)

		for _, dep := range n.deps {
			if err := visit(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, n.id)
		permanent[n.id] = true
		order = append(order, n.id)
		return nil
	}

	for _, id := range g.order {
		if err := visit(g.nodes[id]); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func ids(nodes []*node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.id
	}
	return out
}
