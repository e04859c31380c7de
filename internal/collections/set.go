// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package collections

import (
	"fmt"
	"strings"

	"slices"
)

// Set is a container that can hold each item only once and has a fast lookup time.
//
// You can define a new set like this:
//
//	var validKeyLengths = collections.Set[int]{
//	    16: {},
//	    24: {},
//	    32: {},
//	}
//
// You can also use the constructor to create a new set
//
//	var validKeyLengths = collections.NewSet[int](16,24,32)
type Set[T comparable] map[T]struct{}

// Constructs a new set given the members of type T
func NewSet[T comparable](members ...T) Set[T] {
	set := Set[T]{}
	for _, member := range members {
		set[member] = struct{}{}
	}
	return set
}

// Has returns true if the item exists in the Set
func (s Set[T]) Has(value T) bool {
	_, ok := s[value]
	return ok
}

// Add inserts value into the set. It is a no-op if value is already a
// member.
func (s Set[T]) Add(value T) {
	s[value] = struct{}{}
}

// Remove deletes value from the set. It is a no-op if value was never a
// member.
func (s Set[T]) Remove(value T) {
	delete(s, value)
}

// Len returns the number of members in the set.
func (s Set[T]) Len() int {
	return len(s)
}

// Sorted returns the set's members ordered by the given comparison.
// Unlike String, it returns the typed values themselves rather than
// their string representation, so callers that need to iterate a set
// deterministically don't have to round-trip through fmt.
func (s Set[T]) Sorted(less func(a, b T) bool) []T {
	out := make([]T, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.SortStableFunc(out, func(a, b T) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		default:
			return 0
		}
	})
	return out
}

// String creates a comma-separated list of all values in the set.
func (s Set[T]) String() string {
	parts := make([]string, len(s))
	i := 0
	for v := range s {
		parts[i] = fmt.Sprintf("%v", v)
		i++
	}

	slices.SortStableFunc(parts, func(a, b string) int {
		if a < b {
			return -1
		} else if b > a {
			return 1
		} else {
			return 0
		}
	})
	return strings.Join(parts, ", ")
}
