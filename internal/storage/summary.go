// ABOUTME: Store-wide aggregates for the summary command and MCP resource.
// ABOUTME: Counts runs, sleep coverage, device matches, and fueling totals.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harperreed/runlog/internal/models"
	"github.com/harperreed/runlog/internal/units"
)

// Summary aggregates the current store contents.
func (d *DB) Summary(ctx context.Context) (*models.Summary, error) {
	var (
		s           models.Summary
		first, last sql.NullString
	)

	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MIN(date), MAX(date),
			COALESCE(SUM(distance_km), 0),
			COALESCE(SUM(device_distance_km IS NOT NULL), 0),
			COALESCE(SUM(gels_estimated IS NOT NULL), 0),
			COALESCE(SUM(gels_estimated), 0),
			COALESCE(SUM(carbs_g), 0)
		FROM runs
	`).Scan(&s.Runs, &first, &last, &s.TotalKm, &s.RunsWithDevice, &s.LongRuns, &s.TotalGels, &s.TotalCarbsG)
	if err != nil {
		return nil, fmt.Errorf("summarize runs: %w", err)
	}
	s.FirstDate, s.LastDate = first.String, last.String
	s.TotalMiles = units.KmToMiles(s.TotalKm)

	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sleep").Scan(&s.SleepDays); err != nil {
		return nil, fmt.Errorf("summarize sleep: %w", err)
	}
	if err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM run_with_sleep WHERE sleep_date IS NOT NULL").Scan(&s.RunsWithSleep); err != nil {
		return nil, fmt.Errorf("summarize joins: %w", err)
	}
	return &s, nil
}
