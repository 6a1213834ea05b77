// ABOUTME: Per-run ingestion report with per-file outcomes and match counts.
// ABOUTME: Rejected files carry their ParseError; the run itself keeps going.
package ingest

import "errors"

// SourceKind names the export a file came from.
type SourceKind string

const (
	SourceActivity SourceKind = "activity"
	SourceRecovery SourceKind = "recovery"
	SourceDevice   SourceKind = "device"
)

// FileResult is the outcome for one source file.
type FileResult struct {
	Path   string
	Source SourceKind

	// Parsed is the number of records read from the file.
	Parsed int
	// Skipped counts records filtered out by activity type.
	Skipped int
	// Written is the number of rows upserted from the file.
	Written int

	// Err is the ParseError that rejected the file, nil when accepted.
	Err error
}

// Rejected reports whether the file was rejected as a whole.
func (f FileResult) Rejected() bool {
	return f.Err != nil
}

// Report summarizes one ingestion run.
type Report struct {
	RunID string
	Dir   string
	Files []FileResult

	// Matched counts activities that received a device-metrics record.
	Matched int
	// UnmatchedDevice counts device records with no activity within tolerance.
	UnmatchedDevice int
}

// Rejected returns the files that failed to parse.
func (r *Report) Rejected() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Rejected() {
			out = append(out, f)
		}
	}
	return out
}

// Totals returns parsed, written, and rejected-file counts for a source.
func (r *Report) Totals(kind SourceKind) (parsed, written, rejected int) {
	for _, f := range r.Files {
		if f.Source != kind {
			continue
		}
		parsed += f.Parsed
		written += f.Written
		if f.Rejected() {
			rejected++
		}
	}
	return parsed, written, rejected
}

// Err returns an error joining every rejected file's ParseError, or nil.
func (r *Report) Err() error {
	var errs []error
	for _, f := range r.Rejected() {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}
