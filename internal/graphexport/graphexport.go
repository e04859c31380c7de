// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package graphexport flattens a resolved catalog and edge map into a
// rendering-agnostic payload that an exporter (such as the graphviz
// package) can turn into a concrete diagram format, without needing to
// know anything about the catalog or link packages itself.
package graphexport

import (
	"cmp"
	"slices"

	"github.com/coredeps/capgraph/internal/catalog"
	"github.com/coredeps/capgraph/internal/collections"
	"github.com/coredeps/capgraph/internal/link"
)

// Node is one resource, flattened to the fields an exporter cares about.
type Node struct {
	Name     string
	Scope    string
	HasScope bool
	Attrs    map[string]any
}

// Edge is one resolved dependency: resource From provides the capability
// that resource To requires. Rule is the canonical form of the
// requirement rule that produced the edge, modifier included (a
// requirement written "database" appears as "database!"); MatchName is the instance name the match resolved
// to, after any remap rule was applied.
type Edge struct {
	From      string
	To        string
	Rule      string
	MatchName string
}

// Cluster groups resources that share a scope, so an exporter can draw
// them as a subgraph.
type Cluster struct {
	Name    string
	Members []string
}

// Payload is everything an exporter needs to render a resolved graph.
type Payload struct {
	Nodes    []Node
	Edges    []Edge
	Clusters []Cluster
}

// Build flattens cat and the edge map a resolver produced into a
// Payload. The synthetic build-context root, if present in edgeMap,
// is included as a node only if the catalog itself doesn't already
// have an entry of that name; callers that don't want the synthetic
// root in their diagram should filter it out of edgeMap first.
func Build(cat *catalog.Catalog, edgeMap map[string][]link.EdgeLink) Payload {
	var payload Payload

	clusterMembers := make(map[string]collections.Set[string])
	seen := make(map[string]bool)

	for resource := range cat.Iter() {
		seen[resource.Name] = true
		payload.Nodes = append(payload.Nodes, Node{
			Name:     resource.Name,
			Scope:    resource.Scope,
			HasScope: resource.HasScope,
			Attrs:    catalog.CloneAttrs(resource),
		})
		if resource.HasScope {
			members, ok := clusterMembers[resource.Scope]
			if !ok {
				members = collections.NewSet[string]()
				clusterMembers[resource.Scope] = members
			}
			members.Add(resource.Name)
		}
	}

	for name := range edgeMap {
		if seen[name] {
			continue
		}
		// Not a catalog resource: the synthetic root.
		payload.Nodes = append(payload.Nodes, Node{Name: name})
	}

	for requirer, edges := range edgeMap {
		for _, e := range edges {
			payload.Edges = append(payload.Edges, Edge{
				From:      e.Provider.Owner,
				To:        requirer,
				Rule:      e.Requirement.String(),
				MatchName: e.MatchName,
			})
		}
	}

	clusterNames := make([]string, 0, len(clusterMembers))
	for name := range clusterMembers {
		clusterNames = append(clusterNames, name)
	}
	slices.Sort(clusterNames)
	for _, name := range clusterNames {
		members := clusterMembers[name].Sorted(func(a, b string) bool { return a < b })
		payload.Clusters = append(payload.Clusters, Cluster{Name: name, Members: members})
	}

	slices.SortFunc(payload.Nodes, func(a, b Node) int { return cmp.Compare(a.Name, b.Name) })
	slices.SortFunc(payload.Edges, func(a, b Edge) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		if c := cmp.Compare(a.To, b.To); c != 0 {
			return c
		}
		// Parallel edges between the same pair of resources are ordered
		// by the rule that produced them.
		return cmp.Compare(a.Rule, b.Rule)
	})

	return payload
}
