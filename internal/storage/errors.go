// ABOUTME: Storage error types.
// ABOUTME: WriteError marks a fatal store failure; ErrNotFound a missing key.
package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no row has the requested natural key.
var ErrNotFound = errors.New("not found")

// WriteError reports that the store could not be written. It is fatal for an
// ingestion run; files committed before it remain valid.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
