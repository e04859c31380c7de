// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package catalog holds the named resources that participate in
// resolution: each resource carries the provider and requirement links
// parsed from its configuration, plus an opaque attribute bag the core
// never inspects.
package catalog

import (
	"iter"
	"maps"

	"github.com/coredeps/capgraph/internal/collections"
	"github.com/coredeps/capgraph/internal/diag"
	"github.com/coredeps/capgraph/internal/link"
	"github.com/coredeps/capgraph/internal/rule"
)

// Resource is a named entity that provides and/or requires typed
// capabilities, plus whatever attribute payload its configuration
// carried. The core never interprets Attrs; it exists for strategy
// overrides, exporters, and eventual instantiation to read.
type Resource struct {
	Name     string
	Scope    string
	HasScope bool
	Provides []link.ProviderLink
	Requires []link.RequirementLink
	Attrs    map[string]any
}

// reservedConfigKeys are the structured-configuration keys that become
// dedicated Resource fields rather than landing in Attrs.
var reservedConfigKeys = collections.NewSet[string]("scope", "provides", "requires")

// Options control how a resource is added to a Catalog.
type Options struct {
	Scope string
	// HasScope, when true, makes Scope authoritative even if it's the
	// empty string, overriding any "scope" key in the config map.
	HasScope bool
	Force    bool
}

// Option mutates Options; see WithScope and WithForce.
type Option func(*Options)

// WithScope overrides whatever scope (if any) the resource's own
// configuration specifies.
func WithScope(scope string) Option {
	return func(o *Options) {
		o.Scope = scope
		o.HasScope = true
	}
}

// WithForce allows AddResource to replace an existing resource of the
// same name instead of failing with DuplicateResource.
func WithForce(force bool) Option {
	return func(o *Options) {
		o.Force = force
	}
}

// Catalog is an insertion-ordered collection of resources keyed by name,
// with an optional secondary index by scope. Insertion order is used
// throughout the core as the deterministic tie-breaker for otherwise
// unordered sets of candidates.
type Catalog struct {
	order      []string
	byName     map[string]*Resource
	scopeIndex map[string]collections.Set[string]
	generation int
}

// New returns an empty Catalog.
func New() *Catalog {
	return &Catalog{
		byName:     make(map[string]*Resource),
		scopeIndex: make(map[string]collections.Set[string]),
	}
}

// Generation increases every time the catalog's resource set or contents
// change. It exists so that derived structures, such as the provider
// index, can cheaply tell whether they need to be rebuilt.
func (c *Catalog) Generation() int {
	return c.generation
}

// AddResource creates or replaces a resource. Its provides and requires
// lists are parsed into link objects and bound to the resource's name;
// a malformed rule fails the whole call, leaving the catalog unchanged.
//
// If a resource with this name already exists and Force wasn't given,
// AddResource fails with DuplicateResource.
func (c *Catalog) AddResource(name string, config map[string]any, opts ...Option) error {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	if _, exists := c.byName[name]; exists && !o.Force {
		return &diag.DuplicateResource{Name: name}
	}

	res, err := buildResource(name, config, o)
	if err != nil {
		return err
	}

	c.insert(res)
	return nil
}

// AddResources is the bulk form of AddResource. It is not atomic: each
// entry is applied independently, and failures are collected into a
// single *multierror.Error rather than aborting the remaining entries.
// Map iteration order is not deterministic -- callers that need a
// deterministic batch ordering should call AddResource directly in a
// loop instead.
func (c *Catalog) AddResources(configs map[string]map[string]any, opts ...Option) error {
	var errs []error
	for name, config := range configs {
		if err := c.AddResource(name, config, opts...); err != nil {
			errs = append(errs, err)
		}
	}
	return diag.Join(errs...)
}

func buildResource(name string, config map[string]any, o Options) (*Resource, error) {
	res := &Resource{
		Name:  name,
		Attrs: make(map[string]any, len(config)),
	}

	if o.HasScope {
		res.Scope = o.Scope
		res.HasScope = true
	} else if raw, ok := config["scope"]; ok {
		if s, ok := raw.(string); ok && s != "" {
			res.Scope = s
			res.HasScope = true
		}
	}

	if raw, ok := config["provides"]; ok {
		items, err := asList(raw)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			p, err := rule.ParseProviderAny(item)
			if err != nil {
				return nil, err
			}
			p.Owner = name
			res.Provides = appendProvider(res.Provides, p)
		}
	}

	if raw, ok := config["requires"]; ok {
		items, err := asList(raw)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			r, err := rule.ParseRequirementAny(item)
			if err != nil {
				return nil, err
			}
			r.Owner = name
			res.Requires = append(res.Requires, r)
		}
	}

	for k, v := range config {
		if reservedConfigKeys.Has(k) {
			continue
		}
		res.Attrs[k] = v
	}

	return res, nil
}

// appendProvider enforces that (owner, kind, instance) identifies a
// provider uniquely: adding a duplicate to the same resource is a no-op
// rather than a second entry.
func appendProvider(existing []link.ProviderLink, p link.ProviderLink) []link.ProviderLink {
	for _, e := range existing {
		if e.Identity() == p.Identity() {
			return existing
		}
	}
	return append(existing, p)
}

func asList(raw any) ([]any, error) {
	switch v := raw.(type) {
	case []any:
		return v, nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		return nil, &diag.MalformedRule{Reason: "provides/requires must be a list of rules"}
	}
}

func (c *Catalog) insert(res *Resource) {
	if old, exists := c.byName[res.Name]; exists {
		if old.HasScope {
			c.removeFromScope(old.Scope, res.Name)
		}
	} else {
		c.order = append(c.order, res.Name)
	}
	c.byName[res.Name] = res
	if res.HasScope {
		c.addToScope(res.Scope, res.Name)
	}
	c.generation++
}

func (c *Catalog) addToScope(scope, name string) {
	set, ok := c.scopeIndex[scope]
	if !ok {
		set = collections.NewSet[string]()
		c.scopeIndex[scope] = set
	}
	set.Add(name)
}

func (c *Catalog) removeFromScope(scope, name string) {
	if set, ok := c.scopeIndex[scope]; ok {
		set.Remove(name)
		if set.Len() == 0 {
			// Drop the now-empty set rather than letting a scope that's
			// had every member force-replaced away linger in the index
			// forever.
			delete(c.scopeIndex, scope)
		}
	}
}

// GetResource returns the named resource, or UnknownResource if no such
// resource has been added.
func (c *Catalog) GetResource(name string) (*Resource, error) {
	res, ok := c.byName[name]
	if !ok {
		return nil, &diag.UnknownResource{Name: name}
	}
	return res, nil
}

// GetResources returns every resource in insertion order, or, when scope
// is non-empty, only those resources belonging to that scope.
func (c *Catalog) GetResources(scope string) []*Resource {
	if scope == "" {
		out := make([]*Resource, 0, len(c.order))
		for _, name := range c.order {
			out = append(out, c.byName[name])
		}
		return out
	}

	members := c.scopeIndex[scope]
	out := make([]*Resource, 0, len(members))
	for _, name := range c.order {
		if members.Has(name) {
			out = append(out, c.byName[name])
		}
	}
	return out
}

// Iter returns an ordered iterator over every resource in the catalog,
// in insertion order.
func (c *Catalog) Iter() iter.Seq[*Resource] {
	return func(yield func(*Resource) bool) {
		for _, name := range c.order {
			if !yield(c.byName[name]) {
				return
			}
		}
	}
}

// Names returns a copy of the catalog's insertion-ordered name list.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// CloneAttrs returns a shallow copy of a resource's attribute bag, useful
// to exporters that want to annotate a node without risking a mutation
// leaking back into the catalog.
func CloneAttrs(res *Resource) map[string]any {
	return maps.Clone(res.Attrs)
}
