// ABOUTME: Store-to-store snapshot of runs and sleep.
// ABOUTME: Copies through the upsert path so a snapshot can be refreshed in place.

package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/harperreed/runlog/internal/models"
)

// SnapshotSummary holds counts of copied rows.
type SnapshotSummary struct {
	Runs  int
	Sleep int
}

// Snapshot copies every run and sleep row from src to dst. Rows already in
// dst with the same key are replaced, so repeating a snapshot is safe.
func Snapshot(ctx context.Context, src Repository, dst Writer) (*SnapshotSummary, error) {
	summary := &SnapshotSummary{}

	views, err := src.ListRuns(ctx, RunFilter{})
	if err != nil {
		return nil, fmt.Errorf("list source runs: %w", err)
	}
	runs := make([]*models.Activity, len(views))
	for i, v := range views {
		runs[i] = &v.Activity
	}
	if summary.Runs, err = dst.UpsertRuns(ctx, runs); err != nil {
		return nil, fmt.Errorf("copy runs: %w", err)
	}

	sleep, err := src.ListSleep(ctx)
	if err != nil {
		return nil, fmt.Errorf("list source sleep: %w", err)
	}
	if summary.Sleep, err = dst.UpsertSleep(ctx, sleep); err != nil {
		return nil, fmt.Errorf("copy sleep: %w", err)
	}

	return summary, nil
}

// SnapshotFile copies src into the store at path, creating it if needed.
func SnapshotFile(ctx context.Context, src Repository, path string) (*SnapshotSummary, error) {
	if p, ok := src.(interface{ Path() string }); ok && samePath(p.Path(), path) {
		return nil, fmt.Errorf("snapshot destination is the source store: %s", path)
	}

	dst, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	return Snapshot(ctx, src, dst)
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}
