// Package countedset provides a keyed membership set with an exact, incrementally maintained
// size and deterministic insertion-ordered iteration.
//
// It is the bucket type of the secondary indices in indexedstore: each bucket holds the primary
// keys of the records that share one index value, and Intersect combines buckets for
// multi-attribute queries.
//
// Basic Usage:
//
//	s := countedset.New[int, struct{}]()
//	s.Set(1, struct{}{})
//	s.Set(1, struct{}{}) // overwrite, size stays 1
//	s.Delete(2)          // absent, no-op
//	s.Len()              // 1
//
// Intersection:
//
//	both := countedset.Intersect(levelTwo, kindFire)
//	// both is nil when fewer than two sets are given or nothing is shared.
package countedset
