// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package graphviz

import (
	"bufio"
	"cmp"
	"io"
	"slices"

	"github.com/coredeps/capgraph/internal/graphexport"
)

// Graph wraps a [graphexport.Payload] with the presentation attributes
// to apply when rendering it as a Graphviz digraph.
type Graph struct {
	Payload graphexport.Payload

	Attrs            Attributes
	DefaultNodeAttrs Attributes
	DefaultEdgeAttrs Attributes

	DefaultEdgeDirectionIn  EdgeAttachmentDirection
	DefaultEdgeDirectionOut EdgeAttachmentDirection

	// NodeAttrs, if set, derives per-node attributes in addition to
	// DefaultNodeAttrs. Unset means every node gets only the label
	// attribute from defaultNodeAttrs.
	NodeAttrs NodeAttrsFunc
}

// WriteDirectedGraph generates a Graphviz-language representation of g
// on w.
//
// If this function returns an error then an unspecified amount of
// partial data might already have been written to w before returning it.
func WriteDirectedGraph(g *Graph, w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString("digraph {\n"); err != nil {
		return err
	}
	if err := writePrefixedAttrs(bw, "  ", g.Attrs); err != nil {
		return err
	}
	if err := writeDefaultAttrBlock(bw, "node", g.DefaultNodeAttrs); err != nil {
		return err
	}
	if err := writeDefaultAttrBlock(bw, "edge", g.DefaultEdgeAttrs); err != nil {
		return err
	}

	nodeAttrs := g.NodeAttrs
	if nodeAttrs == nil {
		nodeAttrs = defaultNodeAttrs
	}

	clustered := make(map[string]bool)
	for _, cluster := range g.Payload.Clusters {
		if err := writeCluster(bw, cluster, g.Payload.Nodes, nodeAttrs); err != nil {
			return err
		}
		for _, m := range cluster.Members {
			clustered[m] = true
		}
	}

	unclustered := make([]graphexport.Node, 0, len(g.Payload.Nodes))
	for _, n := range g.Payload.Nodes {
		if !clustered[n.Name] {
			unclustered = append(unclustered, n)
		}
	}
	slices.SortFunc(unclustered, func(a, b graphexport.Node) int { return cmp.Compare(a.Name, b.Name) })
	for _, n := range unclustered {
		if err := writeNode(bw, "  ", n, nodeAttrs); err != nil {
			return err
		}
	}

	edges := append([]graphexport.Edge(nil), g.Payload.Edges...)
	slices.SortFunc(edges, func(a, b graphexport.Edge) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		if c := cmp.Compare(a.To, b.To); c != 0 {
			return c
		}
		return cmp.Compare(a.Rule, b.Rule)
	})
	for _, e := range edges {
		if err := writeEdge(bw, "  ", e, g.DefaultEdgeDirectionOut, g.DefaultEdgeDirectionIn); err != nil {
			return err
		}
	}

	if _, err := bw.WriteString("}\n"); err != nil {
		return err
	}
	return bw.Flush()
}

func writePrefixedAttrs(bw *bufio.Writer, prefix string, attrs Attributes) error {
	if len(attrs) == 0 {
		return nil
	}
	names := attrNames(attrs)
	for _, name := range names {
		if _, err := bw.WriteString(prefix); err != nil {
			return err
		}
		if err := writeGraphvizAttr(name, attrs[name], bw); err != nil {
			return err
		}
		if _, err := bw.WriteString(";\n"); err != nil {
			return err
		}
	}
	return nil
}

func writeDefaultAttrBlock(bw *bufio.Writer, keyword string, attrs Attributes) error {
	if len(attrs) == 0 {
		return nil
	}
	if _, err := bw.WriteString("  " + keyword + " ["); err != nil {
		return err
	}
	if err := writeGraphvizAttrList(attrs, bw); err != nil {
		return err
	}
	_, err := bw.WriteString("];\n")
	return err
}

func writeCluster(bw *bufio.Writer, cluster graphexport.Cluster, nodes []graphexport.Node, nodeAttrs NodeAttrsFunc) error {
	if _, err := bw.WriteString("  subgraph " + quoteForGraphviz("cluster_"+cluster.Name) + " {\n"); err != nil {
		return err
	}
	if _, err := bw.WriteString("    label=" + quoteForGraphviz(cluster.Name) + ";\n"); err != nil {
		return err
	}
	byName := make(map[string]graphexport.Node, len(nodes))
	for _, n := range nodes {
		byName[n.Name] = n
	}
	members := append([]string(nil), cluster.Members...)
	slices.Sort(members)
	for _, name := range members {
		if err := writeNode(bw, "    ", byName[name], nodeAttrs); err != nil {
			return err
		}
	}
	_, err := bw.WriteString("  }\n")
	return err
}

func writeNode(bw *bufio.Writer, prefix string, n graphexport.Node, nodeAttrs NodeAttrsFunc) error {
	if _, err := bw.WriteString(prefix); err != nil {
		return err
	}
	if _, err := bw.WriteString(quoteForGraphviz(n.Name)); err != nil {
		return err
	}
	attrs := nodeAttrs(n)
	if len(attrs) != 0 {
		if _, err := bw.WriteString(" ["); err != nil {
			return err
		}
		if err := writeGraphvizAttrList(attrs, bw); err != nil {
			return err
		}
		if _, err := bw.WriteString("]"); err != nil {
			return err
		}
	}
	_, err := bw.WriteString(";\n")
	return err
}

func writeEdge(bw *bufio.Writer, prefix string, e graphexport.Edge, out, in EdgeAttachmentDirection) error {
	if _, err := bw.WriteString(prefix); err != nil {
		return err
	}
	if _, err := bw.WriteString(quoteForGraphviz(e.From)); err != nil {
		return err
	}
	if _, err := bw.WriteString(string(out)); err != nil {
		return err
	}
	if _, err := bw.WriteString(" -> "); err != nil {
		return err
	}
	if _, err := bw.WriteString(quoteForGraphviz(e.To)); err != nil {
		return err
	}
	if _, err := bw.WriteString(string(in)); err != nil {
		return err
	}
	if e.MatchName != "" {
		attrs := Attributes{"label": Val(e.MatchName)}
		if _, err := bw.WriteString(" ["); err != nil {
			return err
		}
		if err := writeGraphvizAttrList(attrs, bw); err != nil {
			return err
		}
		if _, err := bw.WriteString("]"); err != nil {
			return err
		}
	}
	_, err := bw.WriteString(";\n")
	return err
}

func attrNames(a Attributes) []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
