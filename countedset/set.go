package countedset

import (
	"iter"
)

type entry[K comparable, V any] struct {
	key     K
	value   V
	prev    *entry[K, V]
	next    *entry[K, V]
	removed bool
}

// Set is a keyed collection with an incrementally maintained cardinality.
// Entries are iterated in insertion order. Overwriting an existing key keeps its position.
//
// The zero value is an empty set ready to use.
// A nil *Set behaves as an empty set for all read operations.
type Set[K comparable, V any] struct {
	m    map[K]*entry[K, V]
	head *entry[K, V]
	tail *entry[K, V]
	size int
}

// New creates an empty Set.
func New[K comparable, V any]() *Set[K, V] {
	return &Set[K, V]{m: map[K]*entry[K, V]{}}
}

// Set inserts the value for the key, or overwrites the value if the key is already present.
// The size is incremented only when the key was absent.
func (s *Set[K, V]) Set(key K, value V) {
	if e, ok := s.m[key]; ok {
		e.value = value
		return
	}
	if s.m == nil {
		s.m = map[K]*entry[K, V]{}
	}

	e := &entry[K, V]{key: key, value: value, prev: s.tail}
	if s.tail == nil {
		s.head = e
	} else {
		s.tail.next = e
	}
	s.tail = e
	s.m[key] = e
	s.size++
}

// Delete removes the key if present. It is a no-op otherwise.
func (s *Set[K, V]) Delete(key K) {
	e, ok := s.m[key]
	if !ok {
		return
	}
	delete(s.m, key)
	s.size--

	if e.prev == nil {
		s.head = e.next
	} else {
		e.prev.next = e.next
	}
	if e.next == nil {
		s.tail = e.prev
	} else {
		e.next.prev = e.prev
	}
	// e.next is left intact so that an iterator positioned on e can still advance.
	e.removed = true
	e.prev = nil
}

// Has reports whether the key is a member of the set.
func (s *Set[K, V]) Has(key K) bool {
	if s == nil {
		return false
	}
	_, ok := s.m[key]
	return ok
}

// Get returns the value stored for the key.
func (s *Set[K, V]) Get(key K) (V, bool) {
	if s == nil {
		var zero V
		return zero, false
	}
	if e, ok := s.m[key]; ok {
		return e.value, true
	}
	var zero V
	return zero, false
}

// Len returns the number of members in O(1).
func (s *Set[K, V]) Len() int {
	if s == nil {
		return 0
	}
	return s.size
}

// First returns the earliest inserted member that is still present.
func (s *Set[K, V]) First() (K, V, bool) {
	if s == nil || s.head == nil {
		var (
			k K
			v V
		)
		return k, v, false
	}
	return s.head.key, s.head.value, true
}

// All returns an iterator over the members in insertion order.
// Deleting members while iterating is allowed.
func (s *Set[K, V]) All() iter.Seq2[K, V] {
	return iter.Seq2[K, V](func(yield func(K, V) bool) {
		if s == nil {
			return
		}
		for e := s.head; e != nil; e = e.next {
			if e.removed {
				continue
			}
			if !yield(e.key, e.value) {
				return
			}
		}
	})
}

// Keys returns an iterator over the member keys in insertion order.
func (s *Set[K, V]) Keys() iter.Seq[K] {
	return iter.Seq[K](func(yield func(K) bool) {
		for k := range s.All() {
			if !yield(k) {
				return
			}
		}
	})
}

// Clone returns a shallow copy of the set that preserves the iteration order.
func (s *Set[K, V]) Clone() *Set[K, V] {
	c := New[K, V]()
	for k, v := range s.All() {
		c.Set(k, v)
	}
	return c
}
