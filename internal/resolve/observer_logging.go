// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"github.com/hashicorp/go-hclog"

	"github.com/coredeps/capgraph/internal/link"
)

// NewLogObserver returns an Observer that reports every match decision
// to log at debug level, in the style of the rest of the module's
// component loggers: one structured line per event, named fields rather
// than an interpolated message.
func NewLogObserver(log hclog.Logger) Observer {
	return ObserverFunc(func(level int, resource string, requirement, effective link.RequirementLink, candidates, chosen []link.ProviderLink) {
		if !log.IsDebug() {
			return
		}
		log.Debug("matched requirement",
			"depth", level,
			"resource", resource,
			"rule", requirement.String(),
			"effective_rule", effective.String(),
			"candidates", len(candidates),
			"chosen", ownerNames(chosen),
		)
	})
}

func ownerNames(providers []link.ProviderLink) []string {
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Owner
	}
	return names
}
