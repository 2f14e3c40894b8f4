package indexedstore

import (
	"iter"

	"github.com/karupanerura/indexed-store/countedset"
)

// KeyConstraint is an interface for primary key constraints.
type KeyConstraint interface {
	comparable
}

// RecordConstraint is an interface for record constraints.
// Records are struct types; stores hold pointers to them.
type RecordConstraint interface {
	any
}

// Bucket is the set of primary keys sharing one index value.
type Bucket[PK KeyConstraint] = countedset.Set[PK, struct{}]

// IndexPair is one (index key, index value) constraint of an intersection query.
type IndexPair struct {
	// Key is the name of a declared index-key field.
	Key string

	// Value is the value the field must hold.
	Value any
}

// Pair returns an IndexPair.
func Pair(key string, value any) IndexPair {
	return IndexPair{Key: key, Value: value}
}

// Store is the contract shared by MapStore and ArrayStore.
// Implementations are not safe for concurrent use.
type Store[PK KeyConstraint, R RecordConstraint] interface {
	// Get retrieves a record by its primary key.
	Get(PK) (*R, bool)

	// GetAll returns every stored record.
	// The returned slice is owned by the store and must not be modified.
	GetAll() []*R

	// GetAllWhere returns the records for which the predicate returns true.
	GetAllWhere(func(*R) bool) []*R

	// All returns an iterator over the primary map.
	All() iter.Seq2[PK, *R]

	// Len returns the number of stored records.
	Len() int

	// FindOneByIndex returns the first record in the bucket of the given index value.
	// It returns false if the index key is not declared or the bucket is empty.
	FindOneByIndex(key string, value any) (*R, bool)

	// FindAllByIndex returns the records in the bucket of the given index value.
	FindAllByIndex(key string, value any) []*R

	// IndexBucket returns the raw bucket of the given index value, or nil if there is none.
	// The returned bucket is owned by the store and must not be modified.
	IndexBucket(key string, value any) *Bucket[PK]

	// IsIndexEmpty reports whether no record holds the given index value.
	IsIndexEmpty(key string, value any) bool

	// FindOneByIndexIntersection returns the first record matching every pair.
	// It returns false when fewer than two pairs resolve to an existing bucket.
	FindOneByIndexIntersection(pairs ...IndexPair) (*R, bool)

	// FindAllByIndexIntersection returns the records matching every pair.
	// It returns nil when fewer than two pairs resolve to an existing bucket.
	FindAllByIndexIntersection(pairs ...IndexPair) []*R

	// IndexIntersection returns the primary keys matching every pair, or nil.
	IndexIntersection(pairs ...IndexPair) *Bucket[PK]

	// IsIntersectionEmpty reports whether IndexIntersection has no members.
	IsIntersectionEmpty(pairs ...IndexPair) bool

	// Add inserts a record. A record whose primary key is already stored is reported
	// with ErrDuplicatePrimaryKey and replaces the stored one through Alter.
	Add(*R) *R

	// Remove deletes the record with the primary key and returns it.
	// An absent key is reported with ErrPrimaryKeyNotFound.
	Remove(PK) (*R, bool)

	// Alter replaces the stored record that has the same primary key and returns the previous one.
	// An absent key is reported with ErrPrimaryKeyNotFound and the record is added instead.
	Alter(*R) (*R, bool)

	// AlterInPlace copies the fields of the given record onto the stored record,
	// keeping the stored pointer.
	AlterInPlace(*R) (*R, bool)

	// AlterSingleField overwrites one field of the stored record.
	AlterSingleField(pk PK, field string, value any) (*R, bool)

	// SetField overwrites one field of the stored record and resynchronizes its index bucket.
	SetField(pk PK, field string, value any) (*R, bool)

	// AddMany calls Add for each record in order.
	AddMany(...*R) error

	// RemoveMany calls Remove for each primary key in order.
	RemoveMany(...PK) error

	// AlterMany calls Alter for each record in order.
	AlterMany(...*R) error

	// Stats returns the current size of the primary map and the secondary indices.
	Stats() Stats
}
