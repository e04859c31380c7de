// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"github.com/mitchellh/cli"
)

// commands is the mapping of all the available capgraph commands.
func commands(ui cli.Ui) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"resolve": func() (cli.Command, error) {
			return &ResolveCommand{Ui: ui}, nil
		},
		"graph": func() (cli.Command, error) {
			return &GraphCommand{Ui: ui}, nil
		},
		"version": func() (cli.Command, error) {
			return &VersionCommand{Ui: ui, Version: version}, nil
		},
	}
}
