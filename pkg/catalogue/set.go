package catalogue

import "iter"

// Set is a uid-keyed collection preserving server response order.
type Set[T any] struct {
	order []string
	items map[string]T
}

// DatasetSet and CollectionSet are the two registry-owned entity maps.
type (
	DatasetSet    = Set[*Dataset]
	CollectionSet = Set[*Collection]
)

// NewSet returns an empty ordered set.
func NewSet[T any]() *Set[T] {
	return &Set[T]{items: make(map[string]T)}
}

// Add inserts the item under uid. Re-adding an existing uid replaces
// the item but keeps its original position.
func (s *Set[T]) Add(uid string, item T) {
	if _, ok := s.items[uid]; !ok {
		s.order = append(s.order, uid)
	}
	s.items[uid] = item
}

// Get returns the item stored under uid.
func (s *Set[T]) Get(uid string) (T, bool) {
	if s == nil {
		var zero T
		return zero, false
	}
	item, ok := s.items[uid]
	return item, ok
}

// Len returns the number of items.
func (s *Set[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// UIDs returns the uids in insertion order.
func (s *Set[T]) UIDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// All iterates the items in insertion order.
func (s *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		if s == nil {
			return
		}
		for _, uid := range s.order {
			if !yield(s.items[uid]) {
				return
			}
		}
	}
}
