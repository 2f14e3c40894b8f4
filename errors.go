package indexedstore

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicatePrimaryKey = errors.New("record with the same primary key already exists")
	ErrPrimaryKeyNotFound  = errors.New("record with the primary key does not exist")
)

// OperationError describes a misuse of the store that was recovered from.
// It is passed to the error handler and never returned from the store's operations.
type OperationError struct {
	// Op is the name of the operation, such as "add" or "remove".
	Op string

	// PrimaryKey is the primary key the operation targeted.
	PrimaryKey any

	// Err is ErrDuplicatePrimaryKey or ErrPrimaryKeyNotFound.
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s %v: %v", e.Op, e.PrimaryKey, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// BatchError is returned by AddMany, RemoveMany and AlterMany when an element panics.
// The elements before Index have been applied; the rest have not.
type BatchError struct {
	// Op is the name of the batch operation.
	Op string

	// Index is the position of the element that panicked.
	Index int

	// Err is the recovered panic as *panics.ErrRecovered.
	Err error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s: element #%d: %v", e.Op, e.Index, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
