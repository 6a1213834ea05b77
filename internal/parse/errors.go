// ABOUTME: ParseError reports a structurally invalid source file.
// ABOUTME: Names the file, the data row, and the column that failed.
package parse

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrMissingValue is returned when a required cell is empty.
	ErrMissingValue = errors.New("missing required value")
	// ErrDuplicateKey is returned when a natural key repeats inside one file.
	ErrDuplicateKey = errors.New("duplicate natural key")
)

// ParseError rejects a whole source file. Row is the 1-based data row;
// row 0 is the header line.
type ParseError struct {
	File   string
	Row    int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	where := "header"
	if e.Row > 0 {
		where = fmt.Sprintf("row %d", e.Row)
	}
	if e.Column != "" {
		where += fmt.Sprintf(", column %q", e.Column)
	}
	return fmt.Sprintf("parse %s: %s: %v", e.File, where, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
