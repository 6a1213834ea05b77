// ABOUTME: Read-only table dumps and flat-file export formats.
// ABOUTME: Supports CSV, JSON, NDJSON, YAML, XLSX, and Markdown output.
package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Format is an export file format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatNDJSON   Format = "ndjson"
	FormatYAML     Format = "yaml"
	FormatXLSX     Format = "xlsx"
	FormatMarkdown Format = "markdown"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatCSV, FormatJSON, FormatNDJSON, FormatYAML, FormatXLSX, FormatMarkdown}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	if f == "md" {
		f = FormatMarkdown
	}
	if !slices.Contains(Formats, f) {
		return "", fmt.Errorf("unknown format %q", s)
	}
	return f, nil
}

// Ext returns the file extension for f.
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return ".md"
	}
	return "." + string(f)
}

var tableOrder = map[string]string{
	TableRuns:    "date, id",
	TableSleep:   "date",
	ViewRunSleep: "date, id",
}

// Table is a full dump of one table or view.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Record is one row with its column names, encoded with keys in column order.
type Record struct {
	Columns []string
	Values  []any
}

// Records returns the table rows as records.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = Record{Columns: t.Columns, Values: r}
	}
	return out
}

// With returns a copy of r with an extra field appended.
func (r Record) With(col string, v any) Record {
	return Record{
		Columns: append(slices.Clip(r.Columns), col),
		Values:  append(slices.Clip(r.Values), v),
	}
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.Values[i])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for i, c := range r.Columns {
		var v yaml.Node
		if err := v.Encode(r.Values[i]); err != nil {
			return nil, fmt.Errorf("column %s: %w", c, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: c}, &v)
	}
	return node, nil
}

// Dump reads every row of a table or view.
func (d *DB) Dump(ctx context.Context, table string) (*Table, error) {
	order, ok := tableOrder[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}

	rows, err := d.db.QueryContext(ctx, "SELECT * FROM "+table+" ORDER BY "+order)
	if err != nil {
		return nil, fmt.Errorf("dump %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("dump %s: %w", table, err)
	}

	t := &Table{Name: table, Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("dump %s: %w", table, err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		t.Rows = append(t.Rows, vals)
	}
	return t, rows.Err()
}

// WriteTable encodes t to w in format f.
func WriteTable(w io.Writer, t *Table, f Format) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, t)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t.Records())
	case FormatNDJSON:
		return WriteNDJSON(w, t.Records())
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(t.Records()); err != nil {
			return err
		}
		return enc.Close()
	case FormatXLSX:
		return writeXLSX(w, t)
	case FormatMarkdown:
		return writeMarkdown(w, t)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// WriteNDJSON writes one JSON object per line.
func WriteNDJSON(w io.Writer, recs []Record) error {
	enc := json.NewEncoder(w)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// cell renders a value for text formats. NULL is the empty string.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func writeCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	rec := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, v := range r {
			rec[i] = cell(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeMarkdown(w io.Writer, t *Table) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", t.Name))
	sb.WriteString("| " + strings.Join(t.Columns, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat("---|", len(t.Columns)) + "\n")
	for _, r := range t.Rows {
		vals := make([]string, len(r))
		for i, v := range r {
			vals[i] = strings.ReplaceAll(cell(v), "|", `\|`)
		}
		sb.WriteString("| " + strings.Join(vals, " | ") + " |\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeXLSX(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Name
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range t.Rows {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := r
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	_, err := f.WriteTo(w)
	return err
}

// ExportedFile describes one written export file.
type ExportedFile struct {
	Table string
	Path  string
	Rows  int
}

// ExportTables writes each named table to dir as <table><ext>. Empty tables
// are skipped.
func ExportTables(ctx context.Context, d Repository, dir string, f Format, tables []string) ([]ExportedFile, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	var out []ExportedFile
	for _, name := range tables {
		t, err := d.Dump(ctx, name)
		if err != nil {
			return out, err
		}
		if len(t.Rows) == 0 {
			continue
		}

		path := filepath.Join(dir, name+f.Ext())
		if err := writeFile(path, t, f); err != nil {
			return out, fmt.Errorf("export %s: %w", name, err)
		}
		out = append(out, ExportedFile{Table: name, Path: path, Rows: len(t.Rows)})
	}
	return out, nil
}

func writeFile(path string, t *Table, f Format) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteTable(file, t, f)
}
