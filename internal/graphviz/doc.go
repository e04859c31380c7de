// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package graphviz renders a [graphexport.Payload] as a Graphviz-language
// "digraph", so a resolved dependency graph can be visualized with any
// standard Graphviz tool.
//
// [WriteDirectedGraph] takes a [Graph], which wraps a payload together
// with whatever presentation attributes the caller wants applied at the
// graph, default-node, and default-edge level. Resources that carry a
// scope are emitted as Graphviz clusters.
package graphviz
