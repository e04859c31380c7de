// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package rule implements the textual and structured rule grammar that
// provider and requirement links are written in:
//
//	rule := kind ('.' instance)? mod?
//	kind := ident
//	instance := ident
//	ident := [A-Za-z0-9_-]+
//	mod := '!' | '?' | '+' | '*'
package rule

import (
	"regexp"
	"strings"

	"github.com/coredeps/capgraph/internal/diag"
	"github.com/coredeps/capgraph/internal/link"
)

var identPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

const modChars = "!?+*"

// split breaks a rule string into its three grammar components. It does
// not interpret the modifier differently for providers versus
// requirements; that's left to the caller.
func split(input string) (kind, instance string, hasInstance bool, mod byte, hasMod bool, err error) {
	rest := input
	if n := len(rest); n > 0 && strings.IndexByte(modChars, rest[n-1]) >= 0 {
		mod = rest[n-1]
		hasMod = true
		rest = rest[:n-1]
	}

	if rest == "" {
		return "", "", false, 0, false, &diag.MalformedRule{Input: input, Reason: "empty kind"}
	}
	if strings.Count(rest, ".") > 1 {
		return "", "", false, 0, false, &diag.MalformedRule{Input: input, Reason: "at most one '.' separator is allowed"}
	}

	parts := strings.SplitN(rest, ".", 2)
	kind = parts[0]
	if kind == "" {
		return "", "", false, 0, false, &diag.MalformedRule{Input: input, Reason: "empty kind"}
	}
	if !identPattern.MatchString(kind) {
		return "", "", false, 0, false, &diag.MalformedRule{Input: input, Reason: "kind contains characters outside [A-Za-z0-9_-]"}
	}

	if len(parts) == 2 {
		instance = parts[1]
		if instance == "" {
			return "", "", false, 0, false, &diag.MalformedRule{Input: input, Reason: "empty instance"}
		}
		if !identPattern.MatchString(instance) {
			return "", "", false, 0, false, &diag.MalformedRule{Input: input, Reason: "instance contains characters outside [A-Za-z0-9_-]"}
		}
		hasInstance = true
	}

	return kind, instance, hasInstance, mod, hasMod, nil
}

// ParseProvider parses a provider rule string into a ProviderLink
// template (its Owner is left unset; the catalog fills it in when the
// rule is attached to a resource). A trailing cardinality modifier is
// accepted but discarded, since providers carry no cardinality of their
// own; this lets a rule string copied from a requires list into a
// provides list normalize silently instead of failing the catalog load.
func ParseProvider(input string) (link.ProviderLink, error) {
	kind, instance, hasInstance, _, _, err := split(input)
	if err != nil {
		return link.ProviderLink{}, err
	}
	return link.ProviderLink{Kind: kind, Instance: instance, HasInstance: hasInstance}, nil
}

// ParseRequirement parses a requirement rule string into a
// RequirementLink template. If the string carries no trailing modifier,
// the cardinality defaults to "one" (!).
func ParseRequirement(input string) (link.RequirementLink, error) {
	kind, instance, hasInstance, mod, hasMod, err := split(input)
	if err != nil {
		return link.RequirementLink{}, err
	}
	card := link.CardinalityOne
	if hasMod {
		// split() only ever sets mod to a byte drawn from modChars, so
		// this lookup cannot fail.
		card, _ = link.CardinalityByMod(mod)
	}
	return link.RequirementLink{Kind: kind, Instance: instance, HasInstance: hasInstance, Mod: card}, nil
}

// FormatProvider renders the canonical textual form of a provider link,
// satisfying the round-trip property format(parse(s)) == canonical(s).
func FormatProvider(p link.ProviderLink) string {
	return p.String()
}

// FormatRequirement renders the canonical textual form of a requirement
// link, including its modifier.
func FormatRequirement(r link.RequirementLink) string {
	return r.String()
}
