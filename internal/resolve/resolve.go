// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package resolve implements the resolver: seeding a walk from a
// requested feature set, matching every requirement it discovers against
// the catalog's provider index, and producing both the resulting edge
// map and a dependency-first initialization order.
package resolve

import (
	"github.com/coredeps/capgraph/internal/catalog"
	"github.com/coredeps/capgraph/internal/dag"
	"github.com/coredeps/capgraph/internal/link"
	"github.com/coredeps/capgraph/internal/providerindex"
	"github.com/coredeps/capgraph/internal/rule"
)

// BuildCtxName is the name of the synthetic root resource the resolver
// constructs in-memory from the requested feature list. It is never
// inserted into the caller's catalog, but it is left in the edge map and
// dependency order so that its own edges remain inspectable.
const BuildCtxName = "__build_ctx__"

// MatchResult is what a Matcher returns for one requirement: the
// effective instance name, the effective requirement itself (after any
// remap rule was applied), and the providers chosen to satisfy it.
type MatchResult struct {
	MatchName string
	Effective link.RequirementLink
	Providers []link.ProviderLink
}

// Matcher is the single documented strategy extension point: an
// implementer may substitute environment filtering, feature toggles,
// priority, or alternative-implementation selection by providing their
// own Matcher instead of the default algorithm in the link package.
type Matcher interface {
	MatchRequirement(requirement link.RequirementLink, level int) (MatchResult, error)
}

// Observer is the debug hook: when attached to a Resolver, every match
// decision is reported to it. Observers must not mutate any of the
// arguments they're given, and observation must never change resolution
// semantics.
type Observer interface {
	OnMatch(level int, resource string, requirement, effective link.RequirementLink, candidates, chosen []link.ProviderLink)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(level int, resource string, requirement, effective link.RequirementLink, candidates, chosen []link.ProviderLink)

func (f ObserverFunc) OnMatch(level int, resource string, requirement, effective link.RequirementLink, candidates, chosen []link.ProviderLink) {
	f(level, resource, requirement, effective, candidates, chosen)
}

// Option configures a Resolver at construction time.
type Option func(*Resolver)

// WithRemapRules attaches the kind-to-instance overrides applied during
// matching. See the link package for the exact remap semantics.
func WithRemapRules(remap map[string]string) Option {
	return func(r *Resolver) {
		r.remapRules = remap
	}
}

// WithDebug attaches an Observer that receives every match decision made
// during Resolve.
func WithDebug(obs Observer) Option {
	return func(r *Resolver) {
		r.debug = obs
	}
}

// WithMatcher overrides the default matching algorithm. See Matcher.
func WithMatcher(m Matcher) Option {
	return func(r *Resolver) {
		r.matcher = m
	}
}

// Resolver walks a catalog from a requested feature set and produces an
// edge map and a dependency-first initialization order. A Resolver
// instance owns its own run: it mutates only its own edge map and
// auxiliary state, and never mutates the catalog it reads from.
type Resolver struct {
	catalog    *catalog.Catalog
	features   []string
	remapRules map[string]string
	debug      Observer
	matcher    Matcher
	index      *providerindex.Index

	edgeMap  map[string][]link.EdgeLink
	depOrder []string
}

// New constructs a Resolver over cat, seeded with featureNames. Resolve
// must be called before EdgeMap, DepOrder, or ProviderIndex return
// meaningful results.
func New(cat *catalog.Catalog, featureNames []string, opts ...Option) *Resolver {
	r := &Resolver{
		catalog:  cat,
		features: featureNames,
		index:    providerindex.New(cat),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.matcher == nil {
		r.matcher = &defaultMatcher{remapRules: r.remapRules, index: r.index}
	}
	return r
}

// Resolve runs the walk. A failed run leaves EdgeMap in a partial but
// inspectable state; a subsequent call to Resolve always restarts from a
// clean state rather than continuing a prior failed attempt.
func (r *Resolver) Resolve() ([]string, error) {
	r.edgeMap = make(map[string][]link.EdgeLink)
	r.depOrder = nil

	rootRequirements := make([]link.RequirementLink, 0, len(r.features))
	for _, feature := range r.features {
		req, err := rule.ParseRequirement(feature)
		if err != nil {
			return nil, err
		}
		req.Owner = BuildCtxName
		rootRequirements = append(rootRequirements, req)
	}

	g := dag.New()
	g.AddNode(BuildCtxName)
	if err := r.walk(g, 0, BuildCtxName, rootRequirements); err != nil {
		return nil, err
	}

	order, err := g.TopologicalOrder(BuildCtxName)
	if err != nil {
		return nil, err
	}
	r.depOrder = order
	return order, nil
}

// walk performs the depth-first traversal: it ensures an edge map entry
// exists for resourceName (marking it visited), matches every
// requirement in declaration order, appends an edge per matched
// provider, and recurses into each provider's owner.
func (r *Resolver) walk(g *dag.Graph, level int, resourceName string, requirements []link.RequirementLink) error {
	if _, visited := r.edgeMap[resourceName]; visited {
		return nil
	}
	r.edgeMap[resourceName] = []link.EdgeLink{}

	for _, req := range requirements {
		result, err := r.matcher.MatchRequirement(req, level)
		if r.debug != nil {
			r.debug.OnMatch(level, resourceName, req, result.Effective, result.Providers, result.Providers)
		}
		if err != nil {
			return err
		}

		for _, provider := range result.Providers {
			r.edgeMap[resourceName] = append(r.edgeMap[resourceName], link.EdgeLink{
				Requirement: req,
				Provider:    provider,
				MatchName:   result.MatchName,
			})
			g.AddEdge(resourceName, provider.Owner)

			owner, err := r.catalog.GetResource(provider.Owner)
			if err != nil {
				// A provider whose owner isn't in the catalog can only
				// happen if the provider index is stale relative to the
				// catalog; the index rebuilds itself whenever the
				// catalog's generation changes, so this would indicate a
				// caller mutating the catalog concurrently with a run in
				// progress, or a custom Matcher returning a provider
				// from outside the catalog.
				return err
			}
			if err := r.walk(g, level+1, provider.Owner, owner.Requires); err != nil {
				return err
			}
		}
	}
	return nil
}

// EdgeMap returns the resolved edge map from the most recent Resolve
// call, keyed by resource name.
func (r *Resolver) EdgeMap() map[string][]link.EdgeLink {
	return r.edgeMap
}

// DepOrder returns the dependency-first initialization order from the
// most recent Resolve call, including the trailing synthetic root.
func (r *Resolver) DepOrder() []string {
	return r.depOrder
}

// ProviderIndex returns the flat provider list the resolver matched
// requirements against.
func (r *Resolver) ProviderIndex() []link.ProviderLink {
	return r.index.Providers()
}

type defaultMatcher struct {
	remapRules map[string]string
	index      *providerindex.Index
}

func (m *defaultMatcher) MatchRequirement(requirement link.RequirementLink, level int) (MatchResult, error) {
	matchName, effective, providers, err := link.Match(requirement, m.index.Providers(), m.remapRules, link.CardinalityOne, true)
	return MatchResult{MatchName: matchName, Effective: effective, Providers: providers}, err
}
