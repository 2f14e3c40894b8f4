package indexedstore

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/karupanerura/indexed-store/countedset"
	"github.com/karupanerura/indexed-store/internal/iterutil"
	"github.com/karupanerura/indexed-store/internal/recordschema"
)

// index is the secondary index of one declared index-key field.
type index[PK KeyConstraint] struct {
	field   *recordschema.Field
	buckets map[any]*Bucket[PK]
}

// bucket returns the bucket for the normalized key, creating it if asked to.
// Emptied buckets are kept in the index.
func (i *index[PK]) bucket(key any, create bool) *Bucket[PK] {
	b, ok := i.buckets[key]
	if !ok && create {
		b = countedset.New[PK, struct{}]()
		i.buckets[key] = b
	}
	return b
}

// core holds the primary map and the secondary indices shared by MapStore and ArrayStore.
type core[PK KeyConstraint, R RecordConstraint] struct {
	schema  *recordschema.Schema
	pkField *recordschema.Field
	indexes map[string]*index[PK]
	ordered []*index[PK]

	object map[PK]*R

	// keys holds, per primary key, the index key each index has filed the record under.
	keys map[PK][]any

	immutable bool

	// indexFrozen suspends bucket maintenance while ArrayStore.Alter re-splices a record in mutable mode.
	indexFrozen bool

	onError func(error)
}

func newCore[PK KeyConstraint, R RecordConstraint](primaryKey string, indexKeys []string, opts []Option) core[PK, R] {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}
	if o.onError == nil {
		o.onError = func(error) {}
	}

	schema := recordschema.Of[R]()
	pkField := schema.MustField(primaryKey)
	if !recordschema.TypeIs[PK](pkField) {
		var zero PK
		panic(fmt.Sprintf("primary key field %s is %s, not %T", primaryKey, pkField.Type(), zero))
	}

	c := core[PK, R]{
		schema:    schema,
		pkField:   pkField,
		indexes:   make(map[string]*index[PK], len(indexKeys)),
		ordered:   make([]*index[PK], 0, len(indexKeys)),
		object:    map[PK]*R{},
		keys:      map[PK][]any{},
		immutable: o.immutable,
		onError:   o.onError,
	}
	for _, name := range indexKeys {
		if _, ok := c.indexes[name]; ok {
			panic(fmt.Sprintf("index key %s is declared twice", name))
		}
		field := schema.MustField(name)
		if !field.Comparable() {
			panic(fmt.Sprintf("index key %s has type %s, which is not comparable or holds an interface", name, field.Type()))
		}
		idx := &index[PK]{
			field:   field,
			buckets: map[any]*Bucket[PK]{},
		}
		c.indexes[name] = idx
		c.ordered = append(c.ordered, idx)
	}
	return c
}

func (c *core[PK, R]) primaryKeyOf(r *R) PK {
	return c.pkField.Get(r).(PK)
}

func (c *core[PK, R]) report(op string, pk PK, err error) {
	c.onError(&OperationError{Op: op, PrimaryKey: pk, Err: err})
}

// insert stores the record and files it into every index.
func (c *core[PK, R]) insert(pk PK, r *R) {
	c.object[pk] = r
	if c.indexFrozen || len(c.ordered) == 0 {
		return
	}

	keys := make([]any, len(c.ordered))
	for i, idx := range c.ordered {
		keys[i] = idx.field.KeyOf(r)
		idx.bucket(keys[i], true).Set(pk, struct{}{})
	}
	c.keys[pk] = keys
}

// delete drops the record and its index memberships.
func (c *core[PK, R]) delete(pk PK) (*R, bool) {
	r, ok := c.object[pk]
	if !ok {
		return nil, false
	}
	delete(c.object, pk)
	if c.indexFrozen {
		return r, true
	}

	if keys, ok := c.keys[pk]; ok {
		for i, idx := range c.ordered {
			if b := idx.bucket(keys[i], false); b != nil {
				b.Delete(pk)
			}
		}
		delete(c.keys, pk)
	}
	return r, true
}

// resync moves the record to the buckets matching its current field values.
// Unchanged values, NaN included, leave the buckets untouched.
func (c *core[PK, R]) resync(pk PK, r *R) {
	keys, ok := c.keys[pk]
	if !ok {
		return
	}
	for i, idx := range c.ordered {
		key := idx.field.KeyOf(r)
		if key == keys[i] {
			continue
		}
		if b := idx.bucket(keys[i], false); b != nil {
			b.Delete(pk)
		}
		idx.bucket(key, true).Set(pk, struct{}{})
		keys[i] = key
	}
}

func (c *core[PK, R]) bucket(key string, value any) *Bucket[PK] {
	idx, ok := c.indexes[key]
	if !ok {
		return nil
	}
	k, ok := idx.field.Key(value)
	if !ok {
		return nil
	}
	return idx.bucket(k, false)
}

func (c *core[PK, R]) records(pks iter.Seq[PK]) []*R {
	return slices.Collect(iterutil.Map(pks, func(pk PK) *R {
		return c.object[pk]
	}))
}

func (c *core[PK, R]) first(b *Bucket[PK]) (*R, bool) {
	pk, _, ok := b.First()
	if !ok {
		return nil, false
	}
	return c.object[pk], true
}

// Get retrieves a record by its primary key.
func (c *core[PK, R]) Get(pk PK) (*R, bool) {
	r, ok := c.object[pk]
	return r, ok
}

// All returns an iterator over the primary map. The order is unspecified.
func (c *core[PK, R]) All() iter.Seq2[PK, *R] {
	return maps.All(c.object)
}

// Len returns the number of stored records.
func (c *core[PK, R]) Len() int {
	return len(c.object)
}

// FindOneByIndex returns the earliest filed record holding the value for the index key.
func (c *core[PK, R]) FindOneByIndex(key string, value any) (*R, bool) {
	return c.first(c.bucket(key, value))
}

// FindAllByIndex returns the records holding the value for the index key, in filing order.
func (c *core[PK, R]) FindAllByIndex(key string, value any) []*R {
	b := c.bucket(key, value)
	if b == nil {
		return nil
	}
	return c.records(b.Keys())
}

// IndexBucket returns the bucket of primary keys holding the value for the index key.
// It returns nil if the key is not declared or no record has ever held the value.
func (c *core[PK, R]) IndexBucket(key string, value any) *Bucket[PK] {
	return c.bucket(key, value)
}

// IsIndexEmpty reports whether no record holds the value for the index key.
func (c *core[PK, R]) IsIndexEmpty(key string, value any) bool {
	return c.bucket(key, value).Len() == 0
}

// IndexIntersection returns the primary keys that match every pair.
// Pairs without a bucket are dropped, and if fewer than two buckets remain it returns nil,
// even when the single remaining bucket has members.
func (c *core[PK, R]) IndexIntersection(pairs ...IndexPair) *Bucket[PK] {
	buckets := make([]*Bucket[PK], 0, len(pairs))
	for _, p := range pairs {
		if b := c.bucket(p.Key, p.Value); b != nil {
			buckets = append(buckets, b)
		}
	}
	return countedset.Intersect(buckets...)
}

// IsIntersectionEmpty reports whether IndexIntersection has no members.
func (c *core[PK, R]) IsIntersectionEmpty(pairs ...IndexPair) bool {
	return c.IndexIntersection(pairs...).Len() == 0
}

// FindOneByIndexIntersection returns the first record matching every pair.
func (c *core[PK, R]) FindOneByIndexIntersection(pairs ...IndexPair) (*R, bool) {
	return c.first(c.IndexIntersection(pairs...))
}

// FindAllByIndexIntersection returns the records matching every pair.
func (c *core[PK, R]) FindAllByIndexIntersection(pairs ...IndexPair) []*R {
	b := c.IndexIntersection(pairs...)
	if b == nil {
		return nil
	}
	return c.records(b.Keys())
}

// AlterInPlace copies every exported field of r onto the stored record with the same primary
// key, writing only the values that differ, and returns the stored record.
// The stored pointer is kept, so cached snapshots stay valid.
// Index buckets are resynchronized only in mutable mode.
func (c *core[PK, R]) AlterInPlace(r *R) (*R, bool) {
	pk := c.primaryKeyOf(r)
	stored, ok := c.object[pk]
	if !ok {
		c.report("alter in place", pk, ErrPrimaryKeyNotFound)
		return nil, false
	}

	c.schema.CopyChanged(stored, r)
	if !c.immutable {
		c.resync(pk, stored)
	}
	return stored, true
}

// AlterSingleField overwrites one field of the stored record and returns it.
// Index buckets are resynchronized only in mutable mode; use SetField to always resynchronize.
func (c *core[PK, R]) AlterSingleField(pk PK, field string, value any) (*R, bool) {
	return c.writeField("alter single field", pk, field, value, !c.immutable)
}

// SetField overwrites one field of the stored record, moves the record to the bucket of the new
// value if the field is indexed, and returns the record.
//
// Go cannot observe plain assignments to a record's fields, so writes to indexed fields of a
// stored record must go through SetField to keep the indices correct.
func (c *core[PK, R]) SetField(pk PK, field string, value any) (*R, bool) {
	return c.writeField("set field", pk, field, value, true)
}

func (c *core[PK, R]) writeField(op string, pk PK, field string, value any, resync bool) (*R, bool) {
	r, ok := c.object[pk]
	if !ok {
		c.report(op, pk, ErrPrimaryKeyNotFound)
		return nil, false
	}

	f := c.schema.MustField(field)
	if f == c.pkField {
		panic(fmt.Sprintf("primary key field %s cannot be altered", field))
	}
	f.Set(r, value)
	if resync {
		c.resync(pk, r)
	}
	return r, true
}
