// ABOUTME: Sleep upserts and reads for SQLite storage.
// ABOUTME: One row per calendar date; re-ingesting a date replaces the row.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/runlog/internal/models"
)

var upsertSleepSQL = upsertSQL(TableSleep, "date", sleepColumns)

// UpsertSleep inserts or fully replaces recovery records by date. All rows
// are committed together or not at all.
func (d *DB) UpsertSleep(ctx context.Context, recs []*models.Recovery) (int, error) {
	err := d.inTx(ctx, "upsert sleep", upsertSleepSQL, func(stmt *sql.Stmt) error {
		for _, r := range recs {
			_, err := stmt.ExecContext(ctx,
				r.Date,
				nullable(r.SleepScore),
				nullable(r.ReadinessScore),
				nullable(r.HRV),
				nullable(r.RestingHR),
				nullable(r.DeepSleepMin),
				nullable(r.REMSleepMin),
				nullable(r.TotalSleepMin),
			)
			if err != nil {
				return fmt.Errorf("sleep %s: %w", r.Date, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

// GetSleep retrieves the recovery record for date (YYYY-MM-DD).
func (d *DB) GetSleep(ctx context.Context, date string) (*models.Recovery, error) {
	query := "SELECT " + strings.Join(sleepColumns, ", ") + " FROM sleep WHERE date = ?"

	var ss sleepScan
	if err := d.db.QueryRowContext(ctx, query, date).Scan(ss.dest()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sleep %s: %w", date, ErrNotFound)
		}
		return nil, fmt.Errorf("get sleep: %w", err)
	}
	return ss.recovery(), nil
}

// ListSleep returns every recovery record, oldest first.
func (d *DB) ListSleep(ctx context.Context) ([]*models.Recovery, error) {
	query := "SELECT " + strings.Join(sleepColumns, ", ") + " FROM sleep ORDER BY date"

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sleep: %w", err)
	}
	defer rows.Close()

	var out []*models.Recovery
	for rows.Next() {
		var ss sleepScan
		if err := rows.Scan(ss.dest()...); err != nil {
			return nil, fmt.Errorf("scan sleep: %w", err)
		}
		out = append(out, ss.recovery())
	}
	return out, rows.Err()
}

// sleepScan holds scan targets in sleepColumns order. When scanning the
// view, date is the joined sleep_date and may be NULL.
type sleepScan struct {
	date                      sql.NullString
	score, readiness, hrv, hr sql.Null[int]
	deep, rem, total          sql.Null[int]
}

func (s *sleepScan) dest() []any {
	return []any{
		&s.date, &s.score, &s.readiness, &s.hrv, &s.hr,
		&s.deep, &s.rem, &s.total,
	}
}

// recovery returns nil when no sleep row was joined.
func (s *sleepScan) recovery() *models.Recovery {
	if !s.date.Valid {
		return nil
	}
	return &models.Recovery{
		Date:           s.date.String,
		SleepScore:     ptrOf(s.score),
		ReadinessScore: ptrOf(s.readiness),
		HRV:            ptrOf(s.hrv),
		RestingHR:      ptrOf(s.hr),
		DeepSleepMin:   ptrOf(s.deep),
		REMSleepMin:    ptrOf(s.rem),
		TotalSleepMin:  ptrOf(s.total),
	}
}
