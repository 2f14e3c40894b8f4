package panicutil

import (
	"github.com/sourcegraph/conc/panics"
)

// Each calls f for every item in order and stops at the first call that panics.
// It returns the position of that item together with the recovered panic as *panics.ErrRecovered.
// If every call returns normally, it returns -1 and nil.
// Calls made before the panicking one are not undone.
func Each[T any](items []T, f func(T)) (int, error) {
	for i, item := range items {
		if r := try(func() { f(item) }); r != nil {
			return i, r.AsError()
		}
	}
	return -1, nil
}

func try(f func()) *panics.Recovered {
	var pc panics.Catcher
	pc.Try(f)
	return pc.Recovered()
}
