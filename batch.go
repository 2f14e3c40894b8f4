package indexedstore

import "github.com/karupanerura/indexed-store/internal/panicutil"

// batch applies f to each item in order and stops at the first panic.
// Items applied before the panic are kept.
func batch[T any](op string, items []T, f func(T)) error {
	if i, err := panicutil.Each(items, f); err != nil {
		return &BatchError{Op: op, Index: i, Err: err}
	}
	return nil
}
