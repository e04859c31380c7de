// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package link

import "github.com/coredeps/capgraph/internal/diag"

// defaultMatchName is the match_name reported when a requirement carries
// no instance of its own and no remap rule gave it one.
const defaultMatchName = "default"

// Match is the central matching primitive described by the link algebra:
// given a requirement, the flat provider index, an optional set of remap
// rules, and the cardinality to fall back to when the requirement itself
// doesn't carry one, it returns the effective instance name used for
// matching and the list of providers that satisfy the requirement.
//
// Match is public so that a Matcher strategy override (see the resolve
// package) can delegate back to the default algorithm after applying its
// own filtering, rather than having to reimplement it.
func Match(requirement RequirementLink, index []ProviderLink, remapRules map[string]string, defaultMode Cardinality, remapRequirement bool) (matchName string, effective RequirementLink, providers []ProviderLink, err error) {
	effective = requirement
	if remapRequirement {
		if override, ok := remapRules[requirement.Kind]; ok {
			effective.Instance = override
			effective.HasInstance = true
		}
	}

	var kindMatches []ProviderLink
	for _, p := range index {
		if p.Kind == effective.Kind {
			kindMatches = append(kindMatches, p)
		}
	}

	candidates := kindMatches
	if effective.HasInstance {
		var instanceMatches []ProviderLink
		for _, p := range kindMatches {
			if p.HasInstance && p.Instance == effective.Instance {
				instanceMatches = append(instanceMatches, p)
			}
		}
		// Kind-first, instance-as-refinement: only narrow to the
		// instance-exact set if doing so doesn't throw away every
		// candidate of the right kind.
		if len(instanceMatches) > 0 {
			candidates = instanceMatches
		}
	}

	matchName = defaultMatchName
	if effective.HasInstance {
		matchName = effective.Instance
	}

	mod := requirement.Mod
	if mod.Mod == 0 {
		mod = defaultMode
	}

	if mod.TooFew(len(candidates)) {
		return matchName, effective, candidates, &diag.UnsatisfiedRequirement{
			Resource:        requirement.Owner,
			Rule:            requirement.String(),
			EffectiveRule:   effective.String(),
			Candidates:      candidateDiags(candidates),
			CardinalityName: mod.Name,
			CardinalityMin:  mod.Min,
		}
	}
	if mod.TooMany(len(candidates)) {
		return matchName, effective, candidates, &diag.AmbiguousRequirement{
			Resource:        requirement.Owner,
			Rule:            requirement.String(),
			EffectiveRule:   effective.String(),
			Candidates:      candidateDiags(candidates),
			CardinalityName: mod.Name,
			CardinalityMax:  mod.Max,
		}
	}
	return matchName, effective, candidates, nil
}

func candidateDiags(providers []ProviderLink) []diag.Candidate {
	out := make([]diag.Candidate, len(providers))
	for i, p := range providers {
		out[i] = diag.Candidate{OwnerResource: p.Owner, Kind: p.Kind, Instance: p.Instance}
	}
	return out
}
