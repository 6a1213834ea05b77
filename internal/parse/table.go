// ABOUTME: CSV header indexing and typed cell access shared by all parsers.
// ABOUTME: Empty cells are absent; non-empty cells that do not parse are errors.
package parse

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/harperreed/runlog/internal/validation"
)

// header maps column names to positions. When an export repeats a column
// name the last occurrence wins.
type header struct {
	file string
	idx  map[string]int
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr
}

func readHeader(cr *csv.Reader, file string, required ...string) (*header, error) {
	cols, err := cr.Read()
	if err == io.EOF {
		return nil, &ParseError{File: file, Err: errors.New("empty file")}
	}
	if err != nil {
		return nil, &ParseError{File: file, Err: err}
	}

	h := &header{file: file, idx: make(map[string]int, len(cols))}
	for i, c := range cols {
		if i == 0 {
			c = strings.TrimPrefix(c, "\ufeff")
		}
		h.idx[strings.TrimSpace(c)] = i
	}

	for _, name := range required {
		if !h.has(name) {
			return nil, &ParseError{File: file, Column: name, Err: ErrMissingColumn}
		}
	}
	return h, nil
}

func (h *header) has(name string) bool {
	_, ok := h.idx[name]
	return ok
}

// first returns the first of names present in the header.
func (h *header) first(names ...string) (string, bool) {
	for _, n := range names {
		if h.has(n) {
			return n, true
		}
	}
	return "", false
}

// row is one data record bound to its header.
type row struct {
	h   *header
	n   int
	rec []string
}

func (h *header) row(n int, rec []string) row {
	return row{h: h, n: n, rec: rec}
}

func (r row) fail(col string, err error) *ParseError {
	return &ParseError{File: r.h.file, Row: r.n, Column: col, Err: err}
}

// notMeasured is what the device export writes for a metric it has no sensor for.
const notMeasured = "--"

// str returns the trimmed cell and whether it holds a value.
func (r row) str(col string) (string, bool) {
	i, ok := r.h.idx[col]
	if !ok || i >= len(r.rec) {
		return "", false
	}
	v := strings.TrimSpace(r.rec[i])
	if v == notMeasured {
		return "", false
	}
	return v, v != ""
}

func (r row) required(col string) (string, error) {
	v, ok := r.str(col)
	if !ok {
		return "", r.fail(col, ErrMissingValue)
	}
	return v, nil
}

func (r row) optString(col string) *string {
	v, ok := r.str(col)
	if !ok {
		return nil
	}
	return &v
}

func (r row) number(col string) (*float64, error) {
	v, ok := r.str(col)
	if !ok {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, r.fail(col, fmt.Errorf("invalid number %q", v))
	}
	return &f, nil
}

// integer accepts integral values written as floats ("142.0"), truncating
// toward zero as the exports do.
func (r row) integer(col string) (*int, error) {
	f, err := r.number(col)
	if err != nil || f == nil {
		return nil, err
	}
	n := int(*f)
	return &n, nil
}

// checker collects the first typed-cell error so field lists stay flat.
type checker struct {
	err error
}

func (c *checker) number(r row, col string) *float64 {
	if c.err != nil {
		return nil
	}
	v, err := r.number(col)
	if err != nil {
		c.err = err
	}
	return v
}

func (c *checker) integer(r row, col string) *int {
	if c.err != nil {
		return nil
	}
	v, err := r.integer(col)
	if err != nil {
		c.err = err
	}
	return v
}

// validate runs struct rules and maps the first failing field back to its column.
func validate(r row, rec any, columns map[string]string) error {
	err := validation.Struct(rec)
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		col := columns[verrs[0].Field]
		if col == "" {
			col = verrs[0].Field
		}
		return r.fail(col, verrs)
	}
	return r.fail("", err)
}

// Collect drains seq. On the first error it returns no records, so a
// file is accepted or rejected as a whole.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// readFile opens path and drains the parser built over it.
func readFile[T any](path string, parser func(io.Reader, string) iter.Seq2[T, error]) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{File: path, Err: err}
	}
	defer f.Close()
	return Collect(parser(f, path))
}
