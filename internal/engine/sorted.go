package engine

import (
	"slices"
	"sort"
)

// sortedSlice keeps its items ordered by less as they are inserted. Items
// with equal keys keep their insertion order.
type sortedSlice[T any] struct {
	items []T
	less  func(a, b T) bool
}

func newSortedSlice[T any](less func(a, b T) bool) *sortedSlice[T] {
	return &sortedSlice[T]{less: less}
}

// Insert places v after every item that does not sort after it.
func (s *sortedSlice[T]) Insert(v T) {
	i := sort.Search(len(s.items), func(i int) bool {
		return s.less(v, s.items[i])
	})
	s.items = slices.Insert(s.items, i, v)
}

func (s *sortedSlice[T]) Len() int { return len(s.items) }

// Items returns the ordered contents. The slice must not be modified.
func (s *sortedSlice[T]) Items() []T { return s.items }
