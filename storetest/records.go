package storetest

import (
	"github.com/google/uuid"
	indexedstore "github.com/karupanerura/indexed-store"
)

// Level is a named integer type, so lookups by untyped integers exercise value coercion.
type Level int

// Unit is the record type used by most test cases.
type Unit struct {
	ID    int
	Level Level
	Kind  string
	Score float64
	Note  string
}

// Session is a record type with an array-typed primary key.
type Session struct {
	ID   uuid.UUID
	User string
	Room int
}

// Constructor builds a store. NewMapStore and NewArrayStore fit it once wrapped.
type Constructor[PK indexedstore.KeyConstraint, R indexedstore.RecordConstraint] func(records []*R, primaryKey string, indexKeys []string, opts ...indexedstore.Option) indexedstore.Store[PK, R]

// MapStore returns a Constructor of MapStore.
func MapStore[PK indexedstore.KeyConstraint, R indexedstore.RecordConstraint]() Constructor[PK, R] {
	return func(records []*R, primaryKey string, indexKeys []string, opts ...indexedstore.Option) indexedstore.Store[PK, R] {
		return indexedstore.NewMapStore[PK](records, primaryKey, indexKeys, opts...)
	}
}

// ArrayStore returns a Constructor of ArrayStore.
func ArrayStore[PK indexedstore.KeyConstraint, R indexedstore.RecordConstraint]() Constructor[PK, R] {
	return func(records []*R, primaryKey string, indexKeys []string, opts ...indexedstore.Option) indexedstore.Store[PK, R] {
		return indexedstore.NewArrayStore[PK](records, primaryKey, indexKeys, opts...)
	}
}

// ErrorRecorder collects the errors reported by a store.
type ErrorRecorder struct {
	Errors []error
}

// Option returns the store option that reports to the recorder.
func (r *ErrorRecorder) Option() indexedstore.Option {
	return indexedstore.WithErrorHandler(func(err error) {
		r.Errors = append(r.Errors, err)
	})
}
