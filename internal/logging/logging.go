// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package logging provides the single hclog.Logger instance the rest of
// the module logs through, with its level configured from the
// CAPGRAPH_LOG environment variable.
package logging

import (
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// EnvLog is the environment variable that controls the base logger's
// level. An empty or unset value disables logging entirely.
const EnvLog = "CAPGRAPH_LOG"

var baseLogger = sync.OnceValue(func() hclog.Logger {
	level := hclog.LevelFromString(os.Getenv(EnvLog))
	if level == hclog.NoLevel {
		level = hclog.Off
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:            "capgraph",
		Level:           level,
		IncludeLocation: level <= hclog.Debug && level != hclog.Off,
	})
})

// HCLogger returns the module-wide base logger. Callers should derive a
// named sub-logger from it with Named rather than logging through it
// directly, so log lines can be attributed to the component that
// emitted them.
func HCLogger() hclog.Logger {
	return baseLogger()
}
