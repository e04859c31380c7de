// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package catalogfile loads a catalog definition from a YAML document,
// the on-disk format the capgraph CLI accepts for the resource
// definitions it resolves.
package catalogfile

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/coredeps/capgraph/internal/catalog"
	"github.com/coredeps/capgraph/internal/diag"
)

// File is the top-level shape of a catalog definition document.
type File struct {
	// Resources maps a resource name to its configuration, in the same
	// shape catalog.AddResource accepts: "provides", "requires", an
	// optional "scope", and any number of additional attribute keys.
	Resources map[string]map[string]any `mapstructure:"resources"`

	// Features is the default feature set to resolve when the CLI isn't
	// given an explicit one on the command line.
	Features []string `mapstructure:"features"`

	// Remap is the default set of kind-to-instance overrides applied
	// during matching.
	Remap map[string]string `mapstructure:"remap"`

	// resourceOrder is the order the "resources" mapping's keys appeared
	// in the source document, captured separately from Resources (a
	// plain Go map, whose iteration order is not the document's).
	// Catalog() uses it so that a catalog built from a file exhibits the
	// same insertion-order determinism as one built by calling
	// AddResource directly in a loop.
	resourceOrder []string
}

// Parse decodes a catalog definition document. YAML is decoded into a
// generic document first, then mapped onto File with mapstructure so
// that a stray top-level key (a typo'd "resource" for "resources", say)
// is caught at load time instead of silently producing an empty catalog.
func Parse(data []byte) (*File, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	var f File
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &f,
	})
	if err != nil {
		return nil, fmt.Errorf("building catalog file decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding catalog file: %w", err)
	}

	order, err := resourceOrder(data)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}
	f.resourceOrder = order

	return &f, nil
}

// resourceOrder re-walks the document as a yaml.Node tree to recover the
// key order of the top-level "resources" mapping, which a plain
// map[string]any decode discards.
func resourceOrder(data []byte) ([]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, nil
	}
	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "resources" {
			continue
		}
		val := root.Content[i+1]
		if val.Kind != yaml.MappingNode {
			return nil, nil
		}
		order := make([]string, 0, len(val.Content)/2)
		for j := 0; j+1 < len(val.Content); j += 2 {
			order = append(order, val.Content[j].Value)
		}
		return order, nil
	}
	return nil, nil
}

// Catalog builds a catalog.Catalog from the file's resource definitions,
// adding them in the order they appeared in the source document so that
// the resulting catalog's insertion-order tie-breaking is deterministic
// and reproducible across runs: the same document always yields the same
// catalog.
func (f *File) Catalog() (*catalog.Catalog, error) {
	cat := catalog.New()
	var errs []error
	seen := make(map[string]bool, len(f.Resources))
	for _, name := range f.resourceOrder {
		config, ok := f.Resources[name]
		if !ok {
			continue
		}
		seen[name] = true
		if err := cat.AddResource(name, config); err != nil {
			errs = append(errs, err)
		}
	}
	// A merge-key-constructed entry can appear in f.Resources without
	// showing up in the node walk; add any such stragglers so Catalog
	// stays total over whatever mapstructure decoded.
	for name, config := range f.Resources {
		if seen[name] {
			continue
		}
		if err := cat.AddResource(name, config); err != nil {
			errs = append(errs, err)
		}
	}
	if err := diag.Join(errs...); err != nil {
		return nil, err
	}
	return cat, nil
}
