// Package graph holds the project type hierarchy as a directed graph from
// each type to its direct supertypes.
package graph

import (
	"errors"
	"sort"

	dgraph "github.com/dominikbraun/graph"
)

// Hierarchy is an inheritance graph keyed by qualified type name. Edges run
// from subtype to supertype. It is not safe for concurrent mutation; reads
// after construction are safe.
type Hierarchy struct {
	g dgraph.Graph[string, string]
}

// New creates an empty hierarchy.
func New() *Hierarchy {
	return &Hierarchy{g: dgraph.New(dgraph.StringHash, dgraph.Directed(), dgraph.PreventCycles())}
}

// AddType registers a type. Registering a type twice is a no-op.
func (h *Hierarchy) AddType(name string) {
	_ = h.g.AddVertex(name)
}

// AddEdge records that sub directly extends or implements super. Both are
// registered if needed. Edges that would close a cycle are dropped and
// reported as false.
func (h *Hierarchy) AddEdge(sub, super string) bool {
	if sub == super {
		return false
	}
	h.AddType(sub)
	h.AddType(super)
	err := h.g.AddEdge(sub, super)
	return err == nil || errors.Is(err, dgraph.ErrEdgeAlreadyExists)
}

// Supertypes returns the transitive supertypes of name, nearest first.
func (h *Hierarchy) Supertypes(name string) []string {
	adj, err := h.g.AdjacencyMap()
	if err != nil {
		return nil
	}
	return walk(adj, name, 0)
}

// Subtypes returns the transitive subtypes of name, nearest first, at most
// limit when limit > 0.
func (h *Hierarchy) Subtypes(name string, limit int) []string {
	pred, err := h.g.PredecessorMap()
	if err != nil {
		return nil
	}
	return walk(pred, name, limit)
}

// IsStrictSubtype reports whether sub reaches super and is not super.
func (h *Hierarchy) IsStrictSubtype(sub, super string) bool {
	if sub == super {
		return false
	}
	if _, err := h.g.Vertex(sub); err != nil {
		return false
	}
	if _, err := h.g.Vertex(super); err != nil {
		return false
	}
	_, err := dgraph.ShortestPath(h.g, sub, super)
	return err == nil
}

// Len returns the number of registered types.
func (h *Hierarchy) Len() int {
	n, err := h.g.Order()
	if err != nil {
		return 0
	}
	return n
}

// walk runs a breadth-first search from start over m, visiting neighbours
// in sorted order so results are deterministic.
func walk(m map[string]map[string]dgraph.Edge[string], start string, limit int) []string {
	if _, ok := m[start]; !ok {
		return nil
	}
	var out []string
	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range sortedKeys(m[cur]) {
			if visited[next] {
				continue
			}
			visited[next] = true
			out = append(out, next)
			if limit > 0 && len(out) >= limit {
				return out
			}
			queue = append(queue, next)
		}
	}
	return out
}

func sortedKeys(m map[string]dgraph.Edge[string]) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
