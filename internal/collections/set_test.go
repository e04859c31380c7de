// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package collections_test

import (
	"testing"

	"github.com/coredeps/capgraph/internal/collections"
)

type hasTestCase struct {
	name             string
	set              collections.Set[string]
	testValueResults map[string]bool
}

func TestSet_NewSet(t *testing.T) {
	testCases := []struct {
		name        string
		constructed collections.Set[int]
		expected    collections.Set[int]
	}{
		{
			name:        "empty",
			constructed: collections.NewSet[int](),
			expected:    collections.Set[int]{},
		}, {
			name:        "items",
			constructed: collections.NewSet[int](1, 54, 284),
			expected:    collections.Set[int]{1: {}, 54: {}, 284: {}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if len(tc.constructed) != len(tc.expected) {
				t.Fatal("Set length mismatch")
			}

			for k := range tc.expected {
				if _, ok := tc.constructed[k]; !ok {
					t.Fatalf("Expected to find key %v in constructed set", k)
				}
			}
		})
	}
}

func TestSet_has(t *testing.T) {
	testCases := []hasTestCase{
		{
			name: "string",
			set: collections.Set[string]{
				"a": {},
				"b": {},
				"c": {},
			},
			testValueResults: map[string]bool{
				"a": true,
				"b": true,
				"c": true,
				"d": false,
				"e": false,
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			for value, has := range testCase.testValueResults {
				t.Run(value, func(t *testing.T) {
					if has {
						if !testCase.set.Has(value) {
							t.Fatalf("Set does not have expected value of %s", value)
						}
					} else {
						if testCase.set.Has(value) {
							t.Fatalf("Set has unexpected value of %s", value)
						}
					}
				})
			}
		})
	}
}

func TestSet_string(t *testing.T) {
	testSet := collections.Set[string]{
		"a": {},
		"b": {},
		"c": {},
	}

	if str := testSet.String(); str != "a, b, c" {
		t.Fatalf("Incorrect string concatenation: %s", str)
	}
}

func TestSet_addAndRemove(t *testing.T) {
	s := collections.NewSet[string]()
	s.Add("x")
	s.Add("y")
	if !s.Has("x") || !s.Has("y") {
		t.Fatalf("expected both x and y to be members, got %v", s)
	}
	if s.Len() != 2 {
		t.Fatalf("expected length 2, got %d", s.Len())
	}

	s.Remove("x")
	if s.Has("x") {
		t.Fatalf("expected x to be removed")
	}
	if s.Len() != 1 {
		t.Fatalf("expected length 1 after removal, got %d", s.Len())
	}

	// Removing something never added is a no-op.
	s.Remove("z")
	if s.Len() != 1 {
		t.Fatalf("expected removing an absent member to be a no-op, got length %d", s.Len())
	}
}

func TestSet_sorted(t *testing.T) {
	s := collections.NewSet[int](3, 1, 2)
	got := s.Sorted(func(a, b int) bool { return a < b })
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
