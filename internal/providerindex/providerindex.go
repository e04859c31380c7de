// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package providerindex builds and caches the flat, ordered list of
// every provider link across a catalog: the view the resolver actually
// matches requirements against.
package providerindex

import (
	"github.com/coredeps/capgraph/internal/catalog"
	"github.com/coredeps/capgraph/internal/link"
)

// Index is a flat, catalog-insertion-ordered view of every provider
// link in a Catalog. It's rebuilt lazily: a call to Providers after the
// catalog has changed recomputes the slice, otherwise the cached copy
// is returned unchanged.
type Index struct {
	cat        *catalog.Catalog
	generation int
	cached     []link.ProviderLink
	built      bool
}

// New returns an Index over cat. The index is empty until the first call
// to Providers.
func New(cat *catalog.Catalog) *Index {
	return &Index{cat: cat}
}

// Providers returns the flat provider list, rebuilding it if the
// underlying catalog has changed since the last call.
func (idx *Index) Providers() []link.ProviderLink {
	if idx.built && idx.generation == idx.cat.Generation() {
		return idx.cached
	}
	idx.cached = Build(idx.cat)
	idx.generation = idx.cat.Generation()
	idx.built = true
	return idx.cached
}

// Build computes the flat provider list directly, with no caching:
// every resource's Provides links, concatenated in catalog insertion
// order, each list internally preserving the order its resource declared
// them in.
func Build(cat *catalog.Catalog) []link.ProviderLink {
	var out []link.ProviderLink
	for res := range cat.Iter() {
		out = append(out, res.Provides...)
	}
	return out
}
