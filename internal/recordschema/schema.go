package recordschema

import (
	"fmt"
	"math"
	stdreflect "reflect"
	"sync"

	"github.com/goccy/go-reflect"
)

var (
	// schemaCacheMutex is a mutex for the schemaCache.
	schemaCacheMutex = sync.RWMutex{}

	// schemaCache stores compiled schemas keyed by the type id of the record pointer type.
	schemaCache = map[uintptr]*Schema{}
)

// Schema describes the exported fields of a record struct type.
type Schema struct {
	typ      stdreflect.Type
	byName   map[string]*Field
	topLevel []*Field
}

// Field is a reflected accessor for one exported field of a record struct.
type Field struct {
	name  string
	index []int
	typ   stdreflect.Type
}

// Of returns the schema for the record type R.
// R must be a struct type. Schemas are compiled once per type and shared.
func Of[R any]() *Schema {
	var zero *R
	return getOrCreateSchemaAny(zero)
}

// getOrCreateSchemaAny retrieves or compiles the schema for the pointed-to type of ptr.
func getOrCreateSchemaAny(ptr any) *Schema {
	id := reflect.TypeID(ptr)

	schemaCacheMutex.RLock()
	if s, ok := schemaCache[id]; ok {
		schemaCacheMutex.RUnlock()
		return s
	}

	schemaCacheMutex.RUnlock()
	schemaCacheMutex.Lock()
	defer schemaCacheMutex.Unlock()
	if s, ok := schemaCache[id]; ok {
		return s
	}

	s := compile(reflect.ToReflectType(reflect.TypeOf(ptr)).Elem())
	schemaCache[id] = s
	return s
}

func compile(typ stdreflect.Type) *Schema {
	if typ.Kind() != stdreflect.Struct {
		panic(fmt.Sprintf("record type must be a struct: %s", typ))
	}

	s := &Schema{
		typ:    typ,
		byName: map[string]*Field{},
	}
	for _, sf := range stdreflect.VisibleFields(typ) {
		if !sf.IsExported() || throughPointer(typ, sf.Index) {
			continue
		}
		f := &Field{name: sf.Name, index: sf.Index, typ: sf.Type}
		if prev, ok := s.byName[sf.Name]; !ok || len(prev.index) > len(sf.Index) {
			s.byName[sf.Name] = f
		}
		if len(sf.Index) == 1 {
			s.topLevel = append(s.topLevel, f)
		}
	}
	return s
}

// throughPointer reports whether reaching the field requires dereferencing an embedded pointer.
func throughPointer(typ stdreflect.Type, index []int) bool {
	for _, i := range index[:len(index)-1] {
		sf := typ.Field(i)
		if sf.Type.Kind() == stdreflect.Pointer {
			return true
		}
		typ = sf.Type
	}
	return false
}

// Type returns the record struct type.
func (s *Schema) Type() stdreflect.Type {
	return s.typ
}

// Field returns the accessor for the named field.
func (s *Schema) Field(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// MustField returns the accessor for the named field or panics.
func (s *Schema) MustField(name string) *Field {
	f, ok := s.byName[name]
	if !ok {
		panic(fmt.Sprintf("%s has no exported field %q", s.typ, name))
	}
	return f
}

// CopyChanged copies every exported top-level field of src onto dst.
// Comparable fields are written only when the value differs.
// Both arguments must be non-nil pointers to the schema's struct type.
func (s *Schema) CopyChanged(dst, src any) {
	dv := elem(dst)
	sv := elem(src)
	for _, f := range s.topLevel {
		d := dv.Field(f.index[0])
		v := sv.Field(f.index[0])
		if strictlyComparable(f.typ) && d.Interface() == v.Interface() {
			continue
		}
		d.Set(v)
	}
}

// Name returns the Go field name.
func (f *Field) Name() string {
	return f.name
}

// Type returns the Go type of the field.
func (f *Field) Type() stdreflect.Type {
	return f.typ
}

// Comparable reports whether values of the field can be used as index keys.
// Types that are or contain interfaces are rejected: their dynamic values may not be hashable.
func (f *Field) Comparable() bool {
	return strictlyComparable(f.typ)
}

// Get returns the current value of the field in the record pointed to by rec.
func (f *Field) Get(rec any) any {
	return elem(rec).FieldByIndex(f.index).Interface()
}

// Set writes value into the field of the record pointed to by rec.
// The value is converted to the field type when the conversion is lossless.
// It panics when the value cannot be stored in the field.
func (f *Field) Set(rec any, value any) {
	v, ok := f.coerce(value)
	if !ok {
		panic(fmt.Sprintf("cannot assign %T to field %s of type %s", value, f.name, f.typ))
	}
	elem(rec).FieldByIndex(f.index).Set(v)
}

// KeyOf returns the normalized index key of the field in the record pointed to by rec.
func (f *Field) KeyOf(rec any) any {
	return normalize(elem(rec).FieldByIndex(f.index))
}

// Key returns the normalized index key for a lookup value.
// It reports false when the value cannot be represented in the field type,
// in which case no record can hold it.
func (f *Field) Key(value any) (any, bool) {
	v, ok := f.coerce(value)
	if !ok {
		return nil, false
	}
	key := normalize(v)
	if key != nil && !stdreflect.TypeOf(key).Comparable() {
		return nil, false
	}
	return key, true
}

// coerce converts value to the field type when that is possible without losing information.
func (f *Field) coerce(value any) (stdreflect.Value, bool) {
	if value == nil {
		switch f.typ.Kind() {
		case stdreflect.Interface, stdreflect.Pointer, stdreflect.Map, stdreflect.Slice, stdreflect.Func, stdreflect.Chan:
			return stdreflect.Zero(f.typ), true
		default:
			return stdreflect.Value{}, false
		}
	}

	v := stdreflect.ValueOf(value)
	switch {
	case v.Type() == f.typ:
		return v, true
	case v.Type().AssignableTo(f.typ):
		nv := stdreflect.New(f.typ).Elem()
		nv.Set(v)
		return nv, true
	case v.Kind() == f.typ.Kind() && v.Type().ConvertibleTo(f.typ):
		return v.Convert(f.typ), true
	case isNumeric(v.Kind()) && isNumeric(f.typ.Kind()):
		if isInt(v.Kind()) && v.Int() < 0 && isUint(f.typ.Kind()) {
			return stdreflect.Value{}, false
		}
		if isNaN(v) {
			if f.typ.Kind() == stdreflect.Float32 || f.typ.Kind() == stdreflect.Float64 {
				return v.Convert(f.typ), true
			}
			return stdreflect.Value{}, false
		}
		c := v.Convert(f.typ)
		if isUint(v.Kind()) && isInt(c.Kind()) && c.Int() < 0 {
			return stdreflect.Value{}, false
		}
		if c.Convert(v.Type()).Equal(v) {
			return c, true
		}
		return stdreflect.Value{}, false
	default:
		return stdreflect.Value{}, false
	}
}

// nanKey is the index key for every NaN value of a float type,
// since NaN never equals itself and would otherwise open a new bucket per record.
type nanKey struct {
	typ stdreflect.Type
}

func normalize(v stdreflect.Value) any {
	if v.Kind() == stdreflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if isNaN(v) {
		return nanKey{typ: v.Type()}
	}
	return v.Interface()
}

// TypeIs reports whether the field has exactly the type T.
func TypeIs[T any](f *Field) bool {
	return f.typ == stdreflect.TypeFor[T]()
}

func elem(rec any) stdreflect.Value {
	v := stdreflect.ValueOf(rec)
	if v.Kind() != stdreflect.Pointer || v.IsNil() {
		panic(fmt.Sprintf("record must be a non-nil pointer to a struct, got %T", rec))
	}
	return v.Elem()
}

func isNaN(v stdreflect.Value) bool {
	return v.CanFloat() && math.IsNaN(v.Float())
}

// strictlyComparable reports whether == on values of typ can never panic.
func strictlyComparable(typ stdreflect.Type) bool {
	switch typ.Kind() {
	case stdreflect.Interface:
		return false
	case stdreflect.Array:
		return strictlyComparable(typ.Elem())
	case stdreflect.Struct:
		for i := range typ.NumField() {
			if !strictlyComparable(typ.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return typ.Comparable()
	}
}

func isInt(k stdreflect.Kind) bool {
	switch k {
	case stdreflect.Int, stdreflect.Int8, stdreflect.Int16, stdreflect.Int32, stdreflect.Int64:
		return true
	}
	return false
}

func isUint(k stdreflect.Kind) bool {
	switch k {
	case stdreflect.Uint, stdreflect.Uint8, stdreflect.Uint16, stdreflect.Uint32, stdreflect.Uint64, stdreflect.Uintptr:
		return true
	}
	return false
}

func isNumeric(k stdreflect.Kind) bool {
	return isInt(k) || isUint(k) || k == stdreflect.Float32 || k == stdreflect.Float64
}
