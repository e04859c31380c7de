// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package graphviz

import "github.com/coredeps/capgraph/internal/graphexport"

// NodeAttrsFunc derives the Graphviz attributes for one exported node.
// A nil NodeAttrsFunc on a Graph falls back to labeling each node with
// its resource name (see defaultNodeAttrs).
type NodeAttrsFunc func(n graphexport.Node) Attributes

// defaultNodeAttrs labels each node with its resource name so a reader
// doesn't need to inspect the node ID convention to know what a box
// represents.
func defaultNodeAttrs(n graphexport.Node) Attributes {
	return Attributes{"label": Val(n.Name)}
}
