// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package rule

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/coredeps/capgraph/internal/diag"
	"github.com/coredeps/capgraph/internal/link"
)

// structRule is the shape a rule takes when it arrives as a structured
// mapping rather than a bare string: {kind, instance?, mod?}.
type structRule struct {
	Kind     string `mapstructure:"kind"`
	Instance string `mapstructure:"instance"`
	Mod      string `mapstructure:"mod"`
}

func decodeStructRule(input string, v any) (structRule, error) {
	var out structRule
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return structRule{}, &diag.MalformedRule{Input: input, Reason: fmt.Sprintf("building rule decoder: %s", err)}
	}
	if err := dec.Decode(v); err != nil {
		return structRule{}, &diag.MalformedRule{Input: input, Reason: fmt.Sprintf("decoding structured rule: %s", err)}
	}
	return out, nil
}

func validateIdentFields(kind, instance string, hasInstance bool) error {
	if kind == "" {
		return &diag.MalformedRule{Reason: "empty kind"}
	}
	if !identPattern.MatchString(kind) {
		return &diag.MalformedRule{Input: kind, Reason: "kind contains characters outside [A-Za-z0-9_-]"}
	}
	if hasInstance {
		if instance == "" {
			return &diag.MalformedRule{Reason: "empty instance"}
		}
		if !identPattern.MatchString(instance) {
			return &diag.MalformedRule{Input: instance, Reason: "instance contains characters outside [A-Za-z0-9_-]"}
		}
	}
	return nil
}

// ParseProviderAny accepts either a rule string or a structured mapping
// ({kind, instance?}) and normalizes it to a ProviderLink, validating
// both forms identically.
func ParseProviderAny(v any) (link.ProviderLink, error) {
	switch val := v.(type) {
	case string:
		return ParseProvider(val)
	case link.ProviderLink:
		return val, nil
	default:
		sr, err := decodeStructRule(fmt.Sprintf("%v", v), v)
		if err != nil {
			return link.ProviderLink{}, err
		}
		hasInstance := sr.Instance != ""
		if err := validateIdentFields(sr.Kind, sr.Instance, hasInstance); err != nil {
			return link.ProviderLink{}, err
		}
		return link.ProviderLink{Kind: sr.Kind, Instance: sr.Instance, HasInstance: hasInstance}, nil
	}
}

// ParseRequirementAny accepts either a rule string or a structured
// mapping ({kind, instance?, mod?}) and normalizes it to a
// RequirementLink. The "mod" field of a structured mapping accepts either
// the single-character modifier or its long-form synonym (one,
// zero_or_one, one_or_many, zero_or_many).
func ParseRequirementAny(v any) (link.RequirementLink, error) {
	switch val := v.(type) {
	case string:
		return ParseRequirement(val)
	case link.RequirementLink:
		return val, nil
	default:
		sr, err := decodeStructRule(fmt.Sprintf("%v", v), v)
		if err != nil {
			return link.RequirementLink{}, err
		}
		hasInstance := sr.Instance != ""
		if err := validateIdentFields(sr.Kind, sr.Instance, hasInstance); err != nil {
			return link.RequirementLink{}, err
		}
		card := link.CardinalityOne
		if sr.Mod != "" {
			if len(sr.Mod) == 1 {
				if c, ok := link.CardinalityByMod(sr.Mod[0]); ok {
					card = c
				} else {
					return link.RequirementLink{}, &diag.MalformedRule{Input: sr.Mod, Reason: "unrecognized cardinality modifier"}
				}
			} else if c, ok := link.CardinalityByName(sr.Mod); ok {
				card = c
			} else {
				return link.RequirementLink{}, &diag.MalformedRule{Input: sr.Mod, Reason: "unrecognized cardinality name"}
			}
		}
		return link.RequirementLink{Kind: sr.Kind, Instance: sr.Instance, HasInstance: hasInstance, Mod: card}, nil
	}
}
