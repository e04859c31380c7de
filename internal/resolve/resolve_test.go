// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package resolve_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/coredeps/capgraph/internal/catalog"
	"github.com/coredeps/capgraph/internal/diag"
	"github.com/coredeps/capgraph/internal/link"
	"github.com/coredeps/capgraph/internal/resolve"
)

func addResource(t *testing.T, cat *catalog.Catalog, name string, config map[string]any) {
	t.Helper()
	if err := cat.AddResource(name, config); err != nil {
		t.Fatalf("unexpected error adding %q: %s", name, err)
	}
}

// Scenario 1: linear chain.
func TestResolve_linearChain(t *testing.T) {
	cat := catalog.New()
	addResource(t, cat, "database", map[string]any{"provides": []any{"database.main"}})
	addResource(t, cat, "application", map[string]any{
		"requires": []any{"database.main"},
		"provides": []any{"app.web"},
	})
	addResource(t, cat, "proxy", map[string]any{"requires": []any{"app.web"}})

	r := resolve.New(cat, []string{"app.web"})
	order, err := r.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := []string{"database", "application", resolve.BuildCtxName}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("got %v, want %v", order, want)
	}
}

func TestResolve_unsatisfiedWhenFeatureIsNotAProvidedCapability(t *testing.T) {
	cat := catalog.New()
	addResource(t, cat, "database", map[string]any{"provides": []any{"database.main"}})
	addResource(t, cat, "application", map[string]any{
		"requires": []any{"database.main"},
		"provides": []any{"app.web"},
	})
	addResource(t, cat, "proxy", map[string]any{"requires": []any{"app.web"}})

	r := resolve.New(cat, []string{"proxy"})
	_, err := r.Resolve()
	var unsatisfied *diag.UnsatisfiedRequirement
	if !errors.As(err, &unsatisfied) {
		t.Fatalf("expected UnsatisfiedRequirement, got %v", err)
	}
}

// Scenario 2: optional absent.
func TestResolve_optionalAbsent(t *testing.T) {
	cat := catalog.New()
	addResource(t, cat, "db", map[string]any{"provides": []any{"database.main"}})
	addResource(t, cat, "app", map[string]any{
		"requires": []any{"database.main", "cache.redis?"},
		"provides": []any{"app.web"},
	})

	r := resolve.New(cat, []string{"app.web"})
	order, err := r.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := []string{"db", "app", resolve.BuildCtxName}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	if got := len(r.EdgeMap()["app"]); got != 1 {
		t.Fatalf("expected exactly one edge for app, got %d", got)
	}
	if r.EdgeMap()["app"][0].Provider.Owner != "db" {
		t.Fatalf("expected app's one edge to point at db, got %#v", r.EdgeMap()["app"][0])
	}
}

// Scenario 3: ambiguous without remap.
func TestResolve_ambiguousWithoutRemap(t *testing.T) {
	cat := catalog.New()
	addResource(t, cat, "pg", map[string]any{"provides": []any{"database.main"}})
	addResource(t, cat, "mysql", map[string]any{"provides": []any{"database.main"}})
	addResource(t, cat, "app", map[string]any{
		"requires": []any{"database"},
		"provides": []any{"app.web"},
	})

	r := resolve.New(cat, []string{"app.web"})
	_, err := r.Resolve()
	var ambiguous *diag.AmbiguousRequirement
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected AmbiguousRequirement, got %v", err)
	}
	if len(ambiguous.Candidates) != 2 {
		t.Fatalf("expected two candidates, got %v", ambiguous.Candidates)
	}
}

// Scenario 4: remap disambiguates.
func TestResolve_remapDisambiguates(t *testing.T) {
	cat := catalog.New()
	addResource(t, cat, "pg", map[string]any{"provides": []any{"database.primary"}})
	addResource(t, cat, "mysql", map[string]any{"provides": []any{"database.secondary"}})
	addResource(t, cat, "app", map[string]any{
		"requires": []any{"database"},
		"provides": []any{"app.web"},
	})

	r := resolve.New(cat, []string{"app.web"}, resolve.WithRemapRules(map[string]string{"database": "primary"}))
	order, err := r.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := []string{"pg", "app", resolve.BuildCtxName}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("got %v, want %v (mysql must be unreachable)", order, want)
	}
}

// Scenario 5: '+' cardinality.
func TestResolve_oneOrManyCardinality(t *testing.T) {
	cat := catalog.New()
	addResource(t, cat, "w1", map[string]any{"provides": []any{"worker.a"}})
	addResource(t, cat, "w2", map[string]any{"provides": []any{"worker.b"}})
	addResource(t, cat, "sched", map[string]any{
		"requires": []any{"worker+"},
		"provides": []any{"sched.main"},
	})

	r := resolve.New(cat, []string{"sched.main"})
	order, err := r.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := []string{"w1", "w2", "sched", resolve.BuildCtxName}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	if got := len(r.EdgeMap()["sched"]); got != 2 {
		t.Fatalf("expected two edges for sched, got %d", got)
	}
}

// Scenario 6: cycle.
func TestResolve_cycle(t *testing.T) {
	cat := catalog.New()
	addResource(t, cat, "a", map[string]any{"provides": []any{"cap.a"}, "requires": []any{"cap.b"}})
	addResource(t, cat, "b", map[string]any{"provides": []any{"cap.b"}, "requires": []any{"cap.a"}})

	r := resolve.New(cat, []string{"cap.a"})
	_, err := r.Resolve()
	var cycle *diag.CycleDetected
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CycleDetected, got %v", err)
	}
	hasA, hasB := false, false
	for _, n := range cycle.Path {
		if n == "a" {
			hasA = true
		}
		if n == "b" {
			hasB = true
		}
	}
	if !hasA || !hasB {
		t.Fatalf("expected cycle path to contain a and b, got %v", cycle.Path)
	}
}

func TestResolve_selfProvidedCapabilityIsACycle(t *testing.T) {
	cat := catalog.New()
	addResource(t, cat, "weird", map[string]any{"provides": []any{"x.y"}, "requires": []any{"x.y"}})

	r := resolve.New(cat, []string{"x.y"})
	_, err := r.Resolve()
	var cycle *diag.CycleDetected
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CycleDetected, got %v", err)
	}
}

func TestResolve_zeroFeatures(t *testing.T) {
	cat := catalog.New()
	addResource(t, cat, "unreachable", map[string]any{"provides": []any{"x.y"}})

	r := resolve.New(cat, nil)
	order, err := r.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !reflect.DeepEqual(order, []string{resolve.BuildCtxName}) {
		t.Fatalf("expected only the synthetic root, got %v", order)
	}
	if len(r.EdgeMap()) != 1 {
		t.Fatalf("expected edge map to contain only the root, got %v", r.EdgeMap())
	}
}

func TestResolve_deterministicAcrossRuns(t *testing.T) {
	build := func() *resolve.Resolver {
		cat := catalog.New()
		addResource(t, cat, "w1", map[string]any{"provides": []any{"worker.a"}})
		addResource(t, cat, "w2", map[string]any{"provides": []any{"worker.b"}})
		addResource(t, cat, "sched", map[string]any{
			"requires": []any{"worker+", "database"},
			"provides": []any{"sched.main"},
		})
		addResource(t, cat, "pg", map[string]any{"provides": []any{"database.primary"}})
		return resolve.New(cat, []string{"sched.main"},
			resolve.WithRemapRules(map[string]string{"database": "primary"}))
	}

	first := build()
	firstOrder, err := first.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	for i := 0; i < 3; i++ {
		r := build()
		order, err := r.Resolve()
		if err != nil {
			t.Fatalf("unexpected error on run %d: %s", i, err)
		}
		if !reflect.DeepEqual(order, firstOrder) {
			t.Fatalf("run %d produced a different order: %v vs %v", i, order, firstOrder)
		}
		if !reflect.DeepEqual(r.EdgeMap(), first.EdgeMap()) {
			t.Fatalf("run %d produced a different edge map:\n%#v\nvs\n%#v", i, r.EdgeMap(), first.EdgeMap())
		}
	}
}

func TestResolve_debugObserverSeesEveryMatch(t *testing.T) {
	cat := catalog.New()
	addResource(t, cat, "db", map[string]any{"provides": []any{"database.main"}})
	addResource(t, cat, "app", map[string]any{
		"requires": []any{"database.main"},
		"provides": []any{"app.web"},
	})

	var seenResources []string
	obs := resolve.ObserverFunc(func(level int, resource string, requirement, effective link.RequirementLink, candidates, chosen []link.ProviderLink) {
		seenResources = append(seenResources, resource)
	})

	r := resolve.New(cat, []string{"app.web"}, resolve.WithDebug(obs))
	_, err := r.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := []string{resolve.BuildCtxName, "app"}
	if !reflect.DeepEqual(seenResources, want) {
		t.Fatalf("got %v, want %v", seenResources, want)
	}
}
