// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package rule_test

import (
	"errors"
	"testing"

	"github.com/coredeps/capgraph/internal/diag"
	"github.com/coredeps/capgraph/internal/link"
	"github.com/coredeps/capgraph/internal/rule"
)

func TestParseProvider(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected link.ProviderLink
	}{
		{"kind only", "database", link.ProviderLink{Kind: "database"}},
		{"kind and instance", "database.main", link.ProviderLink{Kind: "database", Instance: "main", HasInstance: true}},
		{"modifier is discarded", "database.main!", link.ProviderLink{Kind: "database", Instance: "main", HasInstance: true}},
		{"hyphen and underscore idents", "my-kind.my_instance", link.ProviderLink{Kind: "my-kind", Instance: "my_instance", HasInstance: true}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := rule.ParseProvider(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tc.expected {
				t.Fatalf("wrong result\ngot:  %#v\nwant: %#v", got, tc.expected)
			}
		})
	}
}

func TestParseProvider_malformed(t *testing.T) {
	testCases := []string{
		"",
		".",
		"a.b.c",
		"kind.",
		".instance",
		"bad kind",
	}

	for _, input := range testCases {
		t.Run(input, func(t *testing.T) {
			_, err := rule.ParseProvider(input)
			var malformed *diag.MalformedRule
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedRule for %q, got %v", input, err)
			}
		})
	}
}

func TestParseRequirement(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected link.RequirementLink
	}{
		{"default modifier", "database.main", link.RequirementLink{Kind: "database", Instance: "main", HasInstance: true, Mod: link.CardinalityOne}},
		{"explicit one", "database.main!", link.RequirementLink{Kind: "database", Instance: "main", HasInstance: true, Mod: link.CardinalityOne}},
		{"optional", "cache.redis?", link.RequirementLink{Kind: "cache", Instance: "redis", HasInstance: true, Mod: link.CardinalityZeroOrOne}},
		{"one or many, no instance", "worker+", link.RequirementLink{Kind: "worker", Mod: link.CardinalityOneOrMany}},
		{"zero or many", "plugin*", link.RequirementLink{Kind: "plugin", Mod: link.CardinalityZeroOrMany}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := rule.ParseRequirement(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tc.expected {
				t.Fatalf("wrong result\ngot:  %#v\nwant: %#v", got, tc.expected)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	// The canonical form always spells out the modifier, so a bare rule
	// canonicalizes with a trailing '!'.
	testCases := []struct {
		input     string
		canonical string
	}{
		{"database", "database!"},
		{"database.main", "database.main!"},
		{"database.main!", "database.main!"},
		{"cache.redis?", "cache.redis?"},
		{"worker+", "worker+"},
		{"plugin*", "plugin*"},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			parsed, err := rule.ParseRequirement(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got := rule.FormatRequirement(parsed); got != tc.canonical {
				t.Fatalf("format(parse(%q)) = %q, want %q", tc.input, got, tc.canonical)
			}
			reparsed, err := rule.ParseRequirement(tc.canonical)
			if err != nil {
				t.Fatalf("unexpected error reparsing: %s", err)
			}
			if reparsed != parsed {
				t.Fatalf("parse(format(link)) != link\ngot:  %#v\nwant: %#v", reparsed, parsed)
			}
		})
	}
}

func TestParseRequirementAny_structured(t *testing.T) {
	got, err := rule.ParseRequirementAny(map[string]any{
		"kind":     "database",
		"instance": "main",
		"mod":      "one_or_many",
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := link.RequirementLink{Kind: "database", Instance: "main", HasInstance: true, Mod: link.CardinalityOneOrMany}
	if got != want {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestParseProviderAny_string(t *testing.T) {
	got, err := rule.ParseProviderAny("database.main")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := link.ProviderLink{Kind: "database", Instance: "main", HasInstance: true}
	if got != want {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}
