package typeutil

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// Set is a small map-based set. The zero value is an empty set ready to use.
type Set[T constraints.Ordered] struct {
	data map[T]struct{}
}

// NewSet creates a set that contains the given values.
func NewSet[T constraints.Ordered](values ...T) *Set[T] {
	s := new(Set[T])
	for _, v := range values {
		s.Add(v)
	}
	return s
}

func (s *Set[T]) Add(value T) {
	if s.data == nil {
		s.data = map[T]struct{}{}
	}
	s.data[value] = struct{}{}
}

func (s *Set[T]) Contains(value T) bool {
	if s == nil {
		return false
	}
	_, ok := s.data[value]
	return ok
}

func (s *Set[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.data)
}

// ToList returns the values in ascending order.
func (s *Set[T]) ToList() []T {
	if s.Len() == 0 {
		return nil
	}

	list := make([]T, 0, len(s.data))
	for v := range s.data {
		list = append(list, v)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}
