package index

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResult is returned by boundary queries (First, Last, SingleValue)
	// when there is nothing to return.
	ErrEmptyResult = errors.New("empty result")

	// ErrTypeMismatch is returned when two values of incomparable kinds are
	// compared, or a cell value does not fit its column's type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnsupportedType is returned when a Go value has no ordering usable by
	// the index.
	ErrUnsupportedType = errors.New("unsupported value type")

	// ErrNotIndexed is returned when an operation refers to an entity that is
	// not in the KeyTreeMap.
	ErrNotIndexed = errors.New("entity not indexed")

	// ErrNotUpdatable is returned by UpdateKey for keys whose definition was
	// not declared Updatable.
	ErrNotUpdatable = errors.New("key definition is not updatable")

	// ErrDuplicateDefinition is returned when an entity reports more than one
	// key for the same definition.
	ErrDuplicateDefinition = errors.New("duplicate key definition")
)

// TypeMismatchError describes a comparison between incomparable kinds.
type TypeMismatchError struct {
	Want Kind
	Got  Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: cannot compare %s with %s", e.Want, e.Got)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }
