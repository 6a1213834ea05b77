// ABOUTME: Tests for store-to-store snapshots.
// ABOUTME: Checks copied counts, repeatability, and self-copy rejection.
package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSnapshotFile(t *testing.T) {
	src := seedExportDB(t)
	ctx := context.Background()
	dstPath := filepath.Join(t.TempDir(), "copy.db")

	for pass := range 2 {
		summary, err := SnapshotFile(ctx, src, dstPath)
		if err != nil {
			t.Fatalf("pass %d: SnapshotFile failed: %v", pass, err)
		}
		if summary.Runs != 2 || summary.Sleep != 1 {
			t.Errorf("pass %d: unexpected summary %+v", pass, summary)
		}
	}

	dst, err := Open(dstPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer dst.Close()

	for _, name := range Tables {
		want, err := src.Dump(ctx, name)
		if err != nil {
			t.Fatalf("Dump src %s failed: %v", name, err)
		}
		got, err := dst.Dump(ctx, name)
		if err != nil {
			t.Fatalf("Dump dst %s failed: %v", name, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s differs after snapshot", name)
		}
	}
}

func TestSnapshotFileRejectsSource(t *testing.T) {
	src := setupTestDB(t)

	if _, err := SnapshotFile(context.Background(), src, src.Path()); err == nil {
		t.Error("expected error when snapshotting a store onto itself")
	}
}
