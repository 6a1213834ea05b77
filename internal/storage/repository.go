// ABOUTME: Repository interface for run and sleep storage.
// ABOUTME: Defines the contract shared by the pipeline, CLI, sinks, and MCP server.
package storage

import (
	"context"

	"github.com/harperreed/runlog/internal/models"
)

// Writer is the upsert side used by ingestion.
type Writer interface {
	UpsertRuns(ctx context.Context, runs []*models.Activity) (int, error)
	UpsertSleep(ctx context.Context, recs []*models.Recovery) (int, error)
}

// Repository defines the storage interface for runlog data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	Writer

	GetRun(ctx context.Context, id int64) (*models.Activity, error)
	ListRuns(ctx context.Context, f RunFilter) ([]*models.RunWithRecovery, error)
	GetSleep(ctx context.Context, date string) (*models.Recovery, error)
	ListSleep(ctx context.Context) ([]*models.Recovery, error)
	Summary(ctx context.Context) (*models.Summary, error)

	// Dump reads a whole table or view for export.
	Dump(ctx context.Context, table string) (*Table, error)

	Close() error
}

var _ Repository = (*DB)(nil)
