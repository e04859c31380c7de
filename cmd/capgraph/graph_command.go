// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/coredeps/capgraph/internal/catalogfile"
	"github.com/coredeps/capgraph/internal/graphexport"
	"github.com/coredeps/capgraph/internal/graphviz"
	"github.com/coredeps/capgraph/internal/resolve"
)

// GraphCommand loads a catalog file, resolves it, and emits the
// resulting graph in the DOT language.
type GraphCommand struct {
	Ui cli.Ui
}

func (c *GraphCommand) Help() string {
	helpText := `
Usage: capgraph graph [options] -file=catalog.yaml

  Resolves the dependency graph implied by the requested feature set and
  prints it in the DOT language, suitable for piping into "dot" or any
  other Graphviz-compatible renderer.

Options:

  -file=catalog.yaml  Path to the catalog definition (required).

  -feature=name       A feature to resolve. May be given more than once.
                       Defaults to the catalog file's own "features" list.
`
	return strings.TrimSpace(helpText)
}

func (c *GraphCommand) Run(args []string) int {
	var filePath string
	var features stringSliceFlag

	flags := defaultFlagSet("graph")
	flags.StringVar(&filePath, "file", "", "path to the catalog definition")
	flags.Var(&features, "feature", "a feature to resolve")
	flags.Usage = func() { c.Ui.Error(c.Help()) }
	if err := flags.Parse(args); err != nil {
		c.Ui.Error(fmt.Sprintf("Error parsing command-line flags: %s\n", err.Error()))
		return 1
	}

	if filePath == "" {
		c.Ui.Error("-file is required")
		return 1
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error reading catalog file: %s", err))
		return 1
	}
	cf, err := catalogfile.Parse(data)
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}
	cat, err := cf.Catalog()
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}

	wantFeatures := []string(features)
	if len(wantFeatures) == 0 {
		wantFeatures = cf.Features
	}

	r := resolve.New(cat, wantFeatures, resolve.WithRemapRules(cf.Remap))
	if _, err := r.Resolve(); err != nil {
		c.Ui.Error(describeResolveError(err))
		return 1
	}

	payload := graphexport.Build(cat, r.EdgeMap())
	g := &graphviz.Graph{
		Payload:          payload,
		DefaultNodeAttrs: graphviz.Attributes{"shape": graphviz.Val("rectangle")},
	}

	var buf strings.Builder
	if err := graphviz.WriteDirectedGraph(g, &buf); err != nil {
		c.Ui.Error(fmt.Sprintf("Error rendering graph: %s", err))
		return 1
	}
	c.Ui.Output(buf.String())
	return 0
}

func (c *GraphCommand) Synopsis() string {
	return "Render a resolved dependency graph in the DOT language"
}
