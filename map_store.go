package indexedstore

import (
	"maps"
	"slices"

	"github.com/karupanerura/indexed-store/internal/iterutil"
)

// MapStore is an indexed store optimized for replacing records.
// GetAll builds its result from the primary map on the first call after a mutation and caches it.
type MapStore[PK KeyConstraint, R RecordConstraint] struct {
	core[PK, R]

	snapshot []*R
	dirty    bool
}

var _ Store[int, struct{}] = (*MapStore[int, struct{}])(nil)

// NewMapStore creates a MapStore holding the records.
//
// primaryKey names the field whose value identifies a record; its type must be exactly PK.
// indexKeys name the fields to build secondary equality indices over; their types must be comparable.
// It panics when a field is missing, unexported, or of an unsuitable type.
func NewMapStore[PK KeyConstraint, R RecordConstraint](records []*R, primaryKey string, indexKeys []string, opts ...Option) *MapStore[PK, R] {
	s := &MapStore[PK, R]{
		core:  newCore[PK, R](primaryKey, indexKeys, opts),
		dirty: true,
	}
	for _, r := range records {
		s.Add(r)
	}
	return s
}

// GetAll returns every stored record in no particular order.
// The returned slice is shared until the next mutation and must not be modified.
func (s *MapStore[PK, R]) GetAll() []*R {
	if s.dirty {
		s.snapshot = slices.Collect(maps.Values(s.object))
		s.dirty = false
	}
	return s.snapshot
}

// GetAllWhere returns the records for which f returns true, in no particular order.
func (s *MapStore[PK, R]) GetAllWhere(f func(*R) bool) []*R {
	return slices.Collect(iterutil.Filter(maps.Values(s.object), f))
}

// Add inserts the record and files it into every index.
// If a record with the same primary key is stored, the misuse is reported and the record replaces it through Alter.
// The buckets then follow the new record in both modes.
func (s *MapStore[PK, R]) Add(r *R) *R {
	pk := s.primaryKeyOf(r)
	if _, ok := s.object[pk]; ok {
		s.report("add", pk, ErrDuplicatePrimaryKey)
		s.Alter(r)
		s.resync(pk, r)
		return r
	}

	s.insert(pk, r)
	s.dirty = true
	return r
}

// Remove deletes the record with the primary key and returns it.
func (s *MapStore[PK, R]) Remove(pk PK) (*R, bool) {
	r, ok := s.delete(pk)
	if !ok {
		s.report("remove", pk, ErrPrimaryKeyNotFound)
		return nil, false
	}
	s.dirty = true
	return r, true
}

// Alter replaces the stored record having the same primary key and returns the replaced one.
// If no such record is stored, the misuse is reported and the record is added instead.
//
// In immutable mode the record is removed and re-added, moving it to the buckets of its new values.
// In mutable mode the stored pointer is swapped and the buckets are left as they are.
func (s *MapStore[PK, R]) Alter(r *R) (*R, bool) {
	pk := s.primaryKeyOf(r)
	old, ok := s.object[pk]
	if !ok {
		s.report("alter", pk, ErrPrimaryKeyNotFound)
		s.Add(r)
		return nil, false
	}

	if s.immutable && len(s.ordered) != 0 {
		s.delete(pk)
		s.insert(pk, r)
	} else {
		s.object[pk] = r
	}
	s.dirty = true
	return old, true
}

// AddMany adds the records in order.
// A panic on a record stops the batch and is returned as *BatchError; earlier records stay added.
func (s *MapStore[PK, R]) AddMany(records ...*R) error {
	return batch("add many", records, func(r *R) { s.Add(r) })
}

// RemoveMany removes the records with the primary keys in order.
func (s *MapStore[PK, R]) RemoveMany(pks ...PK) error {
	return batch("remove many", pks, func(pk PK) { s.Remove(pk) })
}

// AlterMany alters the records in order.
func (s *MapStore[PK, R]) AlterMany(records ...*R) error {
	return batch("alter many", records, func(r *R) { s.Alter(r) })
}
