package iterutil

import (
	"iter"
)

// Map yields f(v) for each v of seq, such as the record stored under each primary key of a bucket.
func Map[V, R any](seq iter.Seq[V], f func(V) R) iter.Seq[R] {
	return func(yield func(R) bool) {
		for v := range seq {
			if !yield(f(v)) {
				return
			}
		}
	}
}

// Filter returns a new iterator that yields only the values for which the function returns true.
// The order of the output is the same as the input.
func Filter[V any](seq iter.Seq[V], f func(V) bool) iter.Seq[V] {
	return func(yield func(V) bool) {
		for v := range seq {
			if f(v) && !yield(v) {
				return
			}
		}
	}
}
