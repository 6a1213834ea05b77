// ABOUTME: Run upserts and reads for SQLite storage.
// ABOUTME: Writes derived activities with merged device columns in one transaction.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/runlog/internal/models"
)

// RunFilter narrows ListRuns. Zero values mean no filter.
type RunFilter struct {
	// Since keeps runs on or after this date (YYYY-MM-DD).
	Since string
	Limit int
}

var upsertRunSQL = upsertSQL(TableRuns, "id", runColumns)

// UpsertRuns inserts or fully replaces runs by ID. All rows are committed
// together or not at all.
func (d *DB) UpsertRuns(ctx context.Context, runs []*models.Activity) (int, error) {
	err := d.inTx(ctx, "upsert runs", upsertRunSQL, func(stmt *sql.Stmt) error {
		for _, a := range runs {
			if _, err := stmt.ExecContext(ctx, runArgs(a)...); err != nil {
				return fmt.Errorf("run %d: %w", a.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(runs), nil
}

// inTx prepares query inside a transaction, runs fn, and commits. Any
// failure rolls back and is reported as a WriteError.
func (d *DB) inTx(ctx context.Context, op, query string, fn func(*sql.Stmt) error) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return &WriteError{Op: op, Err: fmt.Errorf("begin: %w", err)}
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return &WriteError{Op: op, Err: fmt.Errorf("prepare: %w", err)}
	}
	defer stmt.Close()

	if err = fn(stmt); err != nil {
		return &WriteError{Op: op, Err: err}
	}
	if err = tx.Commit(); err != nil {
		return &WriteError{Op: op, Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func runArgs(a *models.Activity) []any {
	dm := a.Device
	if dm == nil {
		dm = &models.DeviceMetrics{}
	}
	args := []any{
		a.ID, a.Date, a.StartedAt.Format(time.RFC3339), a.Name, a.ActivityType,
		nullable(a.DistanceKm), nullable(a.DurationSec), nullable(a.ElapsedSec), nullable(a.PaceMinKm),
		nullable(a.AvgHR), nullable(a.MaxHR), nullable(a.ElevationGainM),
		nullable(a.TempC), nullable(a.Humidity), nullable(a.Weather), nullable(a.RelativeEffort),
		a.HourOfDay, a.DayOfWeek, nullable(a.Calories),
		nullable(a.GelsEstimated), nullable(a.CarbsG), nullable(a.CarbReplacementRatio),
		nullable(dm.DistanceKm), nullable(dm.AerobicTE), nullable(dm.AnaerobicTE),
		nullable(dm.TrainingLoad), nullable(dm.VO2Max),
		nullable(dm.AvgPowerW), nullable(dm.GroundContactMs),
		nullable(dm.VerticalOscillationCm), nullable(dm.StrideLengthM),
		nullable(dm.BodyBatteryDelta),
	}
	for _, z := range dm.HRZoneSec {
		args = append(args, nullable(z))
	}
	return args
}

// GetRun retrieves one run by activity ID.
func (d *DB) GetRun(ctx context.Context, id int64) (*models.Activity, error) {
	query := "SELECT " + strings.Join(runColumns, ", ") + " FROM runs WHERE id = ?"

	var rs runScan
	if err := d.db.QueryRowContext(ctx, query, id).Scan(rs.dest()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return rs.activity()
}

// ListRuns returns rows of the run_with_sleep view, newest first.
func (d *DB) ListRuns(ctx context.Context, f RunFilter) ([]*models.RunWithRecovery, error) {
	cols := append(append([]string{}, runColumns...), sleepDateName)
	cols = append(cols, sleepColumns[1:]...)

	var (
		where []string
		args  []any
	)
	if f.Since != "" {
		where = append(where, "date >= ?")
		args = append(args, f.Since)
	}

	query := "SELECT " + strings.Join(cols, ", ") + " FROM run_with_sleep"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, started_at DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*models.RunWithRecovery
	for rows.Next() {
		var (
			rs runScan
			ss sleepScan
		)
		if err := rows.Scan(append(rs.dest(), ss.dest()...)...); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		a, err := rs.activity()
		if err != nil {
			return nil, err
		}
		out = append(out, &models.RunWithRecovery{Activity: *a, Recovery: ss.recovery()})
	}
	return out, rows.Err()
}

// runScan holds scan targets for one runs row in runColumns order.
type runScan struct {
	id                                        int64
	date, startedAt, dayOfWeek                string
	name, activityType                        sql.NullString
	weather                                   sql.Null[string]
	hourOfDay                                 int
	distance, pace, elevation, temp, humidity sql.Null[float64]
	carbRatio                                 sql.Null[float64]
	duration, elapsed, avgHR, maxHR, effort   sql.Null[int]
	calories, gels, carbs                     sql.Null[int]
	devDistance, aerobic, anaerobic, load     sql.Null[float64]
	vo2, power, contact, oscillation, stride  sql.Null[float64]
	battery                                   sql.Null[int]
	zones                                     [models.HRZoneCount]sql.Null[int]
}

func (s *runScan) dest() []any {
	d := []any{
		&s.id, &s.date, &s.startedAt, &s.name, &s.activityType,
		&s.distance, &s.duration, &s.elapsed, &s.pace,
		&s.avgHR, &s.maxHR, &s.elevation,
		&s.temp, &s.humidity, &s.weather, &s.effort,
		&s.hourOfDay, &s.dayOfWeek, &s.calories,
		&s.gels, &s.carbs, &s.carbRatio,
		&s.devDistance, &s.aerobic, &s.anaerobic, &s.load, &s.vo2,
		&s.power, &s.contact, &s.oscillation, &s.stride,
		&s.battery,
	}
	for i := range s.zones {
		d = append(d, &s.zones[i])
	}
	return d
}

func ptrOf[T any](n sql.Null[T]) *T {
	if !n.Valid {
		return nil
	}
	v := n.V
	return &v
}

func (s *runScan) activity() (*models.Activity, error) {
	started, err := time.Parse(time.RFC3339, s.startedAt)
	if err != nil {
		return nil, fmt.Errorf("run %d: started_at %q: %w", s.id, s.startedAt, err)
	}

	a := &models.Activity{
		ID:                   s.id,
		Date:                 s.date,
		StartedAt:            started,
		Name:                 s.name.String,
		ActivityType:         s.activityType.String,
		DistanceKm:           ptrOf(s.distance),
		DurationSec:          ptrOf(s.duration),
		ElapsedSec:           ptrOf(s.elapsed),
		AvgHR:                ptrOf(s.avgHR),
		MaxHR:                ptrOf(s.maxHR),
		ElevationGainM:       ptrOf(s.elevation),
		TempC:                ptrOf(s.temp),
		Humidity:             ptrOf(s.humidity),
		Weather:              ptrOf(s.weather),
		RelativeEffort:       ptrOf(s.effort),
		Calories:             ptrOf(s.calories),
		PaceMinKm:            ptrOf(s.pace),
		HourOfDay:            s.hourOfDay,
		DayOfWeek:            s.dayOfWeek,
		GelsEstimated:        ptrOf(s.gels),
		CarbsG:               ptrOf(s.carbs),
		CarbReplacementRatio: ptrOf(s.carbRatio),
	}

	// A matched device record always carries a distance.
	if s.devDistance.Valid {
		dm := &models.DeviceMetrics{
			Date:                  s.date,
			DistanceKm:            ptrOf(s.devDistance),
			AerobicTE:             ptrOf(s.aerobic),
			AnaerobicTE:           ptrOf(s.anaerobic),
			TrainingLoad:          ptrOf(s.load),
			VO2Max:                ptrOf(s.vo2),
			AvgPowerW:             ptrOf(s.power),
			GroundContactMs:       ptrOf(s.contact),
			VerticalOscillationCm: ptrOf(s.oscillation),
			StrideLengthM:         ptrOf(s.stride),
			BodyBatteryDelta:      ptrOf(s.battery),
		}
		for i, z := range s.zones {
			dm.HRZoneSec[i] = ptrOf(z)
		}
		a.Device = dm
	}
	return a, nil
}
