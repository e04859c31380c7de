// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package diag defines the fatal error taxonomy produced by the rule
// parser, catalog, and resolver. Every error kind here is a distinct Go
// type so that callers can use errors.As to recover the structured fields
// they need for diagnostics, rather than parsing message strings.
package diag

import (
	"fmt"
	"strings"
)

// MalformedRule is returned when a rule string fails the grammar described
// in the rule package, or when a structured rule mapping carries an invalid
// kind, instance, or modifier.
type MalformedRule struct {
	Input  string
	Reason string
}

func (e *MalformedRule) Error() string {
	return fmt.Sprintf("malformed rule %q: %s", e.Input, e.Reason)
}

// DuplicateResource is returned by AddResource when a resource with the
// same name already exists in the catalog and force replacement was not
// requested.
type DuplicateResource struct {
	Name string
}

func (e *DuplicateResource) Error() string {
	return fmt.Sprintf("resource %q already exists in catalog", e.Name)
}

// UnknownResource is returned by GetResource when no resource with the
// given name is present in the catalog. It is recoverable by the caller.
type UnknownResource struct {
	Name string
}

func (e *UnknownResource) Error() string {
	return fmt.Sprintf("no resource named %q in catalog", e.Name)
}

// Candidate describes one provider considered (and rejected or accepted)
// during requirement matching, kept around purely for diagnostics.
type Candidate struct {
	OwnerResource string
	Kind          string
	Instance      string
}

func (c Candidate) String() string {
	if c.Instance == "" {
		return fmt.Sprintf("%s (from %s)", c.Kind, c.OwnerResource)
	}
	return fmt.Sprintf("%s.%s (from %s)", c.Kind, c.Instance, c.OwnerResource)
}

// UnsatisfiedRequirement is returned when a requirement's cardinality
// minimum was not met by the available providers.
type UnsatisfiedRequirement struct {
	Resource        string
	Rule            string
	EffectiveRule   string
	Candidates      []Candidate
	CardinalityName string
	CardinalityMin  int
}

func (e *UnsatisfiedRequirement) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "resource %q requires %q (effective %q, cardinality %s) but only %d of %d minimum candidates were found",
		e.Resource, e.Rule, e.EffectiveRule, e.CardinalityName, len(e.Candidates), e.CardinalityMin)
	if len(e.Candidates) > 0 {
		fmt.Fprintf(&b, "; candidates: %s", joinCandidates(e.Candidates))
	}
	return b.String()
}

// AmbiguousRequirement is returned when a requirement's cardinality
// maximum was exceeded, most commonly a "one" (!) requirement matching
// two or more providers. The candidate list exists to help the caller add
// a remap rule or rename a provider instance to disambiguate.
type AmbiguousRequirement struct {
	Resource        string
	Rule            string
	EffectiveRule   string
	Candidates      []Candidate
	CardinalityName string
	CardinalityMax  int
}

func (e *AmbiguousRequirement) Error() string {
	return fmt.Sprintf("resource %q requires %q (effective %q, cardinality %s) but %d candidates were found, more than the maximum of %d: %s",
		e.Resource, e.Rule, e.EffectiveRule, e.CardinalityName, len(e.Candidates), e.CardinalityMax, joinCandidates(e.Candidates))
}

// CycleDetected is returned by the topological sort when it encounters a
// back-edge: a node reachable from itself via the requirement graph.
type CycleDetected struct {
	Path []string
}

func (e *CycleDetected) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Path, " -> "))
}

func joinCandidates(cs []Candidate) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
