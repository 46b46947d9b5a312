package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCyclicDependency is matched by every *CyclicDependencyError.
var ErrCyclicDependency = errors.New("circular dependency detected in workflows")

// CyclicDependencyError lists the workflows that could not be placed.
type CyclicDependencyError struct {
	Remaining []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCyclicDependency, strings.Join(e.Remaining, ", "))
}

func (e *CyclicDependencyError) Unwrap() error {
	return ErrCyclicDependency
}

// Order peels the graph in rounds: each round takes, in discovery order, every
// remaining workflow whose in-set dependencies are all placed. Dependencies outside
// the graph are treated as already satisfied. A round that places nothing means a
// cycle, reported without any partial order.
func Order(g *Graph) ([]string, error) {
	remaining := make(map[string]bool, len(g.IDs))
	for _, id := range g.IDs {
		remaining[id] = true
	}

	order := make([]string, 0, len(g.IDs))

	for len(remaining) > 0 {
		var ready []string

		for _, id := range g.IDs {
			if remaining[id] && satisfied(g.Edges[id], remaining) {
				ready = append(ready, id)
			}
		}

		if len(ready) == 0 {
			return nil, &CyclicDependencyError{Remaining: pending(g.IDs, remaining)}
		}

		for _, id := range ready {
			delete(remaining, id)
		}

		order = append(order, ready...)
	}

	return order, nil
}

func satisfied(deps []string, remaining map[string]bool) bool {
	for _, dep := range deps {
		if remaining[dep] {
			return false
		}
	}

	return true
}

func pending(ids []string, remaining map[string]bool) []string {
	out := make([]string, 0, len(remaining))

	for _, id := range ids {
		if remaining[id] {
			out = append(out, id)
		}
	}

	return out
}
