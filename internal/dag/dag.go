// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package dag implements the topological sort used to turn a resolved
// edge map into an initialization order: a depth-first walk with the
// classic white/gray/black coloring, so that a gray node revisited mid-walk
// is reported as a dependency cycle rather than looping forever.
package dag

import "github.com/coredeps/capgraph/internal/diag"

type color uint8

const (
	white color = iota
	gray
	black
)

// Graph is a directed graph over string vertex identifiers. An edge
// added with AddEdge(from, to) means "from depends on to": in the
// resulting topological order, to is guaranteed to precede from.
//
// Sibling edges are visited in the order they were added, which is how
// the resolver's catalog-insertion-order tie-breaking rule propagates
// into the final initialization order.
type Graph struct {
	children map[string][]string
	known    map[string]bool
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		children: make(map[string][]string),
		known:    make(map[string]bool),
	}
}

// AddNode registers a vertex even if it has no outgoing edges, so that
// isolated nodes still participate in a walk that starts from them.
func (g *Graph) AddNode(id string) {
	g.known[id] = true
}

// AddEdge records that id depends on dependsOn. Both vertices are
// implicitly registered if not already known.
func (g *Graph) AddEdge(id, dependsOn string) {
	g.known[id] = true
	g.known[dependsOn] = true
	g.children[id] = append(g.children[id], dependsOn)
}

// TopologicalOrder performs a depth-first walk starting at root and
// returns every vertex reachable from it, ordered so that for every edge
// u -> v recorded with AddEdge, v appears before u. root itself is last.
//
// If the walk revisits a vertex it hasn't finished processing yet, that's
// a cycle, and TopologicalOrder returns a *diag.CycleDetected describing
// the path.
func (g *Graph) TopologicalOrder(root string) ([]string, error) {
	colors := make(map[string]color, len(g.known))
	var stack []string
	var out []string

	var visit func(string) error
	visit = func(n string) error {
		colors[n] = gray
		stack = append(stack, n)
		for _, c := range g.children[n] {
			switch colors[c] {
			case white:
				if err := visit(c); err != nil {
					return err
				}
			case gray:
				idx := indexOf(stack, c)
				path := append(append([]string(nil), stack[idx:]...), c)
				return &diag.CycleDetected{Path: path}
			case black:
				// Already fully processed via another path; nothing to do.
			}
		}
		colors[n] = black
		stack = stack[:len(stack)-1]
		out = append(out, n)
		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}
	return out, nil
}

func indexOf(haystack []string, needle string) int {
	for i, v := range haystack {
		if v == needle {
			return i
		}
	}
	return -1
}
