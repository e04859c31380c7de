// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"
)

// version is overridden at build time with -ldflags.
var version = "dev"

func main() {
	os.Exit(realMain())
}

func realMain() int {
	ui := &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	cliRunner := &cli.CLI{
		Name:       "capgraph",
		Args:       os.Args[1:],
		Commands:   commands(ui),
		HelpWriter: os.Stdout,
	}

	exitCode, err := cliRunner.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %s\n", err.Error())
		return 1
	}
	return exitCode
}
