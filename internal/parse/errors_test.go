// ABOUTME: Tests for ParseError formatting and unwrapping.
// ABOUTME: Header-level and row-level errors name file, row, and column.
package parse

import (
	"errors"
	"testing"
)

func TestParseErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *ParseError
		want string
	}{
		{
			name: "header",
			err:  &ParseError{File: "a.csv", Column: "date", Err: ErrMissingColumn},
			want: `parse a.csv: header, column "date": missing required column`,
		},
		{
			name: "row",
			err:  &ParseError{File: "a.csv", Row: 3, Column: "Calories", Err: errors.New("bad")},
			want: `parse a.csv: row 3, column "Calories": bad`,
		},
		{
			name: "row without column",
			err:  &ParseError{File: "a.csv", Row: 7, Err: errors.New("wrong number of fields")},
			want: `parse a.csv: row 7: wrong number of fields`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseErrorUnwrap(t *testing.T) {
	var err error = &ParseError{File: "a.csv", Row: 2, Err: ErrDuplicateKey}
	if !errors.Is(err, ErrDuplicateKey) {
		t.Error("expected errors.Is to match ErrDuplicateKey")
	}
}
