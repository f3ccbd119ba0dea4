package set

import (
	"cmp"
	"slices"
)

// Set formalizes set semantics for a map of comparable values.
type Set[T comparable] map[T]struct{}

// New creates a new [Set] from the given values.
// The returned [Set] will have no values if none are given.
func New[T comparable](vals ...T) Set[T] {
	s := Set[T]{}
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// FromKeys will create a new [Set] from the keys of the given map, if any are present.
func FromKeys[T comparable, E any](vals map[T]E) Set[T] {
	s := make(Set[T], len(vals))
	for v := range vals {
		s[v] = struct{}{}
	}
	return s
}

func (s Set[T]) Slice() []T {
	if len(s) == 0 {
		return nil
	}
	vals := make([]T, 0, len(s))
	for val := range s {
		vals = append(vals, val)
	}
	return vals
}

func (s Set[T]) Add(val T, others ...T) Set[T] {
	if s == nil {
		s = Set[T]{}
	}
	s[val] = struct{}{}
	for _, v := range others {
		s[v] = struct{}{}
	}
	return s
}

func (s Set[T]) Has(val T) bool {
	_, ok := s[val]
	return ok
}

// Sorted returns the values of an ordered [Set] in ascending order.
func Sorted[T cmp.Ordered](s Set[T]) []T {
	vals := s.Slice()
	slices.Sort(vals)
	return vals
}
