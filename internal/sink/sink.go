// ABOUTME: Pushes store tables to external collectors, one batch per table.
// ABOUTME: Read-only consumer of the store; a failed table does not stop the others.
package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/runlog/internal/storage"
)

// SourceType tags every pushed event.
const SourceType = "running_data"

// Sink delivers one table's records to an external system.
type Sink interface {
	Send(ctx context.Context, table string, recs []storage.Record) error
	Close() error
}

// Result is the outcome of pushing one table.
type Result struct {
	Table   string
	Events  int
	Skipped bool
	Err     error
}

// Push dumps each table from repo and sends it through s. Empty tables are
// skipped. The returned error joins every per-table failure.
func Push(ctx context.Context, repo storage.Repository, s Sink, tables []string) ([]Result, error) {
	var (
		results []Result
		errs    []error
	)
	for _, name := range tables {
		t, err := repo.Dump(ctx, name)
		if err != nil {
			return results, err
		}

		res := Result{Table: name, Events: len(t.Rows)}
		if len(t.Rows) == 0 {
			res.Skipped = true
		} else if err := s.Send(ctx, name, t.Records()); err != nil {
			res.Err = fmt.Errorf("push %s: %w", name, err)
			errs = append(errs, res.Err)
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}
