package dtanalysis

import (
	"errors"
	"fmt"
)

var (
	// ErrCoordinateOutOfRange is returned when a row or column index does
	// not exist in the table or the cache.
	ErrCoordinateOutOfRange = errors.New("coordinate out of range")

	// ErrColumnMismatch is returned when a table snapshot's columns do not
	// line up with the columns the cache was built from.
	ErrColumnMismatch = errors.New("column mismatch")

	// ErrSessionClosed is returned by a closed session.
	ErrSessionClosed = errors.New("session closed")

	// ErrNotOpen is returned by a session that has not been opened.
	ErrNotOpen = errors.New("session not open")

	// ErrInvalidSubscription is returned when subscribing without a query.
	ErrInvalidSubscription = errors.New("invalid subscription")
)

// CellError reports a cell whose content could not be indexed.
type CellError struct {
	Coordinate Coordinate
	Column     string
	Err        error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("cell %s (%s): %v", e.Coordinate, e.Column, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }
