// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"

	"github.com/mitchellh/cli"
)

// VersionCommand prints the capgraph build version.
type VersionCommand struct {
	Ui      cli.Ui
	Version string
}

func (c *VersionCommand) Help() string {
	return "Usage: capgraph version\n\n  Displays the version of capgraph."
}

func (c *VersionCommand) Run(_ []string) int {
	c.Ui.Output(fmt.Sprintf("capgraph v%s", c.Version))
	return 0
}

func (c *VersionCommand) Synopsis() string {
	return "Show the current capgraph version"
}
