// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/coredeps/capgraph/internal/catalogfile"
	"github.com/coredeps/capgraph/internal/diag"
	"github.com/coredeps/capgraph/internal/logging"
	"github.com/coredeps/capgraph/internal/resolve"
)

// ResolveCommand loads a catalog file and prints the dependency-first
// initialization order for a requested feature set.
type ResolveCommand struct {
	Ui cli.Ui
}

func (c *ResolveCommand) Help() string {
	helpText := `
Usage: capgraph resolve [options] -file=catalog.yaml

  Resolves the dependency graph implied by the requested feature set
  against the resources declared in the given catalog file, and prints
  the dependency-first initialization order, one resource per line.

Options:

  -file=catalog.yaml  Path to the catalog definition (required).

  -feature=name       A feature to resolve. May be given more than once.
                       Defaults to the catalog file's own "features" list.

  -remap=kind=inst    Override which instance of kind is chosen whenever
                       a requirement for that kind is matched. May be
                       given more than once. Merged over the catalog
                       file's own "remap" rules.

  -debug              Log every match decision to stderr.
`
	return strings.TrimSpace(helpText)
}

func (c *ResolveCommand) Run(args []string) int {
	var filePath string
	var features stringSliceFlag
	var remaps stringSliceFlag
	var debug bool

	flags := defaultFlagSet("resolve")
	flags.StringVar(&filePath, "file", "", "path to the catalog definition")
	flags.Var(&features, "feature", "a feature to resolve")
	flags.Var(&remaps, "remap", "kind=instance override")
	flags.BoolVar(&debug, "debug", false, "log every match decision")
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

	remapRules, err := parseRemapRules(remaps)
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}
	if remapRules == nil {
		remapRules = cf.Remap
	} else {
		for kind, instance := range cf.Remap {
			if _, overridden := remapRules[kind]; !overridden {
				remapRules[kind] = instance
			}
		}
	}

	opts := []resolve.Option{resolve.WithRemapRules(remapRules)}
	if debug {
		logger := logging.HCLogger().Named("resolve")
		if !logger.IsDebug() {
			// The observer only logs at debug level, and the base logger
			// is off unless CAPGRAPH_LOG says otherwise.
			logger.SetLevel(hclog.Debug)
		}
		opts = append(opts, resolve.WithDebug(resolve.NewLogObserver(logger)))
	}

	r := resolve.New(cat, wantFeatures, opts...)
	order, err := r.Resolve()
	if err != nil {
		c.Ui.Error(describeResolveError(err))
		return 1
	}

	for _, name := range order {
		c.Ui.Output(name)
	}
	return 0
}

func (c *ResolveCommand) Synopsis() string {
	return "Resolve a feature set against a catalog and print the init order"
}

// describeResolveError renders the typed diagnostics produced by the
// resolver as a human-readable message, falling back to err.Error() for
// anything it doesn't specifically recognize.
func describeResolveError(err error) string {
	var unsatisfied *diag.UnsatisfiedRequirement
	if errors.As(err, &unsatisfied) {
		return fmt.Sprintf("%s requires %s (needs at least %d, found %d candidates)",
			unsatisfied.Resource, unsatisfied.Rule, unsatisfied.CardinalityMin, len(unsatisfied.Candidates))
	}
	var ambiguous *diag.AmbiguousRequirement
	if errors.As(err, &ambiguous) {
		return fmt.Sprintf("%s requires %s but found %d candidates, which is more than %s allows",
			ambiguous.Resource, ambiguous.Rule, len(ambiguous.Candidates), ambiguous.CardinalityName)
	}
	var cycle *diag.CycleDetected
	if errors.As(err, &cycle) {
		return fmt.Sprintf("dependency cycle: %s", strings.Join(cycle.Path, " -> "))
	}
	return err.Error()
}
