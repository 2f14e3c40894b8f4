package indexedstore

import (
	"slices"

	"github.com/karupanerura/indexed-store/internal/iterutil"
)

// ArrayStore is an indexed store optimized for reading every record.
// It keeps the records in insertion order, so GetAll costs nothing,
// while Remove and Alter pay a linear scan of the sequence.
type ArrayStore[PK KeyConstraint, R RecordConstraint] struct {
	core[PK, R]

	seq []*R
}

var _ Store[int, struct{}] = (*ArrayStore[int, struct{}])(nil)

// NewArrayStore creates an ArrayStore holding the records in the given order.
// The arguments are the same as NewMapStore.
func NewArrayStore[PK KeyConstraint, R RecordConstraint](records []*R, primaryKey string, indexKeys []string, opts ...Option) *ArrayStore[PK, R] {
	s := &ArrayStore[PK, R]{
		core: newCore[PK, R](primaryKey, indexKeys, opts),
		seq:  make([]*R, 0, len(records)),
	}
	for _, r := range records {
		s.Add(r)
	}
	return s
}

// GetAll returns every stored record in insertion order.
// The returned slice is owned by the store and must not be modified.
// Later mutations never rewrite it, so it stays safe to range over while removing records.
func (s *ArrayStore[PK, R]) GetAll() []*R {
	return s.seq
}

// GetAllWhere returns the records for which f returns true, in insertion order.
func (s *ArrayStore[PK, R]) GetAllWhere(f func(*R) bool) []*R {
	return slices.Collect(iterutil.Filter(slices.Values(s.seq), f))
}

// Add appends the record and files it into every index.
// If a record with the same primary key is stored, the misuse is reported and the record replaces it through Alter.
// The buckets then follow the new record in both modes.
func (s *ArrayStore[PK, R]) Add(r *R) *R {
	pk := s.primaryKeyOf(r)
	if _, ok := s.object[pk]; ok {
		s.report("add", pk, ErrDuplicatePrimaryKey)
		s.Alter(r)
		s.resync(pk, r)
		return r
	}

	s.insert(pk, r)
	s.seq = append(s.seq, r)
	return r
}

// Remove deletes the record with the primary key, splices it out of the sequence and returns it.
func (s *ArrayStore[PK, R]) Remove(pk PK) (*R, bool) {
	r, ok := s.delete(pk)
	if !ok {
		s.report("remove", pk, ErrPrimaryKeyNotFound)
		return nil, false
	}
	if i := slices.Index(s.seq, r); i >= 0 {
		// copy on write: a slice handed out by GetAll keeps its contents
		s.seq = slices.Concat(s.seq[:i:i], s.seq[i+1:])
	}
	return r, true
}

// Alter removes the stored record having the same primary key, appends the record and returns the removed one.
// If no such record is stored, the misuse is reported and the record is added instead.
//
// In mutable mode the buckets are left as they are.
func (s *ArrayStore[PK, R]) Alter(r *R) (*R, bool) {
	pk := s.primaryKeyOf(r)
	old, ok := s.object[pk]
	if !ok {
		s.report("alter", pk, ErrPrimaryKeyNotFound)
		s.Add(r)
		return nil, false
	}

	if !s.immutable {
		s.indexFrozen = true
		defer func() { s.indexFrozen = false }()
	}
	s.Remove(pk)
	s.Add(r)
	return old, true
}

// AddMany adds the records in order.
// A panic on a record stops the batch and is returned as *BatchError; earlier records stay added.
func (s *ArrayStore[PK, R]) AddMany(records ...*R) error {
	return batch("add many", records, func(r *R) { s.Add(r) })
}

// RemoveMany removes the records with the primary keys in order.
func (s *ArrayStore[PK, R]) RemoveMany(pks ...PK) error {
	return batch("remove many", pks, func(pk PK) { s.Remove(pk) })
}

// AlterMany alters the records in order.
func (s *ArrayStore[PK, R]) AlterMany(records ...*R) error {
	return batch("alter many", records, func(r *R) { s.Alter(r) })
}
