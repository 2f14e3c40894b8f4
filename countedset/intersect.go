package countedset

import (
	"cmp"
	"slices"
)

// Intersect returns the members that are present in every given set.
// Nil sets are dropped before intersecting. If fewer than two sets remain, it returns nil even
// when the remaining set is not empty: an intersection needs at least two constraints.
//
// The sets are visited in ascending order of size, starting from the smallest one, and the
// intersection stops as soon as the running result becomes empty.
// It returns nil when the intersection is empty. The values are taken from the smallest set.
// The returned set never aliases any of the given sets.
func Intersect[K comparable, V any](sets ...*Set[K, V]) *Set[K, V] {
	sets = slices.DeleteFunc(slices.Clone(sets), func(s *Set[K, V]) bool {
		return s == nil
	})
	if len(sets) < 2 {
		return nil
	}

	slices.SortStableFunc(sets, func(a, b *Set[K, V]) int {
		return cmp.Compare(a.Len(), b.Len())
	})

	acc := sets[0]
	for _, s := range sets[1:] {
		acc = intersect2(acc, s)
		if acc == nil {
			return nil
		}
	}
	return acc
}

func intersect2[K comparable, V any](smaller, larger *Set[K, V]) *Set[K, V] {
	var ret *Set[K, V]
	for k, v := range smaller.All() {
		if larger.Has(k) {
			if ret == nil {
				ret = New[K, V]()
			}
			ret.Set(k, v)
		}
	}
	return ret
}
