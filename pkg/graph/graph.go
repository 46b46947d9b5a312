// Package graph derives sub-workflow dependencies between workflows and orders
// their creation so every callee exists before its callers.
package graph

import (
	"github.com/dukex/n8nmigrate/pkg/models"
)

// Graph maps a workflow id to the ids it invokes. IDs keeps discovery order, which
// is the tie-breaker for ordering.
type Graph struct {
	IDs   []string
	Edges map[string][]string
}

// Build scans every node of every workflow for sub-workflow invocations. Later
// duplicates of an id keep the first discovery position.
func Build(workflows []*models.Workflow) *Graph {
	g := &Graph{
		IDs:   make([]string, 0, len(workflows)),
		Edges: make(map[string][]string, len(workflows)),
	}

	for _, wf := range workflows {
		if wf == nil {
			continue
		}

		if _, seen := g.Edges[wf.ID]; !seen {
			g.IDs = append(g.IDs, wf.ID)
		}

		g.Edges[wf.ID] = Dependencies(wf)
	}

	return g
}

// Dependencies lists, in node order and without repeats, the workflow ids wf invokes.
func Dependencies(wf *models.Workflow) []string {
	deps := []string{}
	seen := map[string]bool{}

	for _, node := range wf.Nodes {
		if node == nil {
			continue
		}

		id, ok := node.WorkflowReference()
		if !ok || seen[id] {
			continue
		}

		seen[id] = true
		deps = append(deps, id)
	}

	return deps
}

// contains reports whether id is part of the migrated set.
func (g *Graph) contains(id string) bool {
	_, ok := g.Edges[id]

	return ok
}

// External lists dependencies that point outside the migrated set, in discovery order.
func (g *Graph) External() []string {
	var out []string

	seen := map[string]bool{}

	for _, id := range g.IDs {
		for _, dep := range g.Edges[id] {
			if g.contains(dep) || seen[dep] {
				continue
			}

			seen[dep] = true
			out = append(out, dep)
		}
	}

	return out
}
