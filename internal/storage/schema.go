// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines the runs and sleep tables and the run_with_sleep view.
package storage

import "strings"

// Table and view names. Downstream dashboards query these directly, so they
// and their column names must not change.
const (
	TableRuns     = "runs"
	TableSleep    = "sleep"
	ViewRunSleep  = "run_with_sleep"
	sleepDateName = "sleep_date"
)

// Tables lists every exportable relation in dump order.
var Tables = []string{TableRuns, TableSleep, ViewRunSleep}

// runColumns is the column order of the runs table, shared by the upsert
// statement, the argument builder, and the row scanner.
var runColumns = []string{
	"id", "date", "started_at", "name", "activity_type",
	"distance_km", "duration_sec", "elapsed_sec", "pace_min_km",
	"avg_hr", "max_hr", "elevation_gain",
	"temp_c", "humidity", "weather", "relative_effort",
	"hour_of_day", "day_of_week", "calories",
	"gels_estimated", "carbs_g", "carb_replacement_ratio",
	"device_distance_km", "aerobic_te", "anaerobic_te", "training_load", "vo2max",
	"avg_power_w", "ground_contact_ms", "vertical_oscillation_cm", "stride_length_m",
	"body_battery_delta",
	"hr_zone1_sec", "hr_zone2_sec", "hr_zone3_sec", "hr_zone4_sec", "hr_zone5_sec",
}

var sleepColumns = []string{
	"date", "sleep_score", "readiness_score", "hrv", "resting_hr",
	"deep_sleep_min", "rem_sleep_min", "total_sleep_min",
}

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY,
		date TEXT NOT NULL,
		started_at TEXT NOT NULL,
		name TEXT,
		activity_type TEXT,
		distance_km REAL,
		duration_sec INTEGER,
		elapsed_sec INTEGER,
		pace_min_km REAL,
		avg_hr INTEGER,
		max_hr INTEGER,
		elevation_gain REAL,
		temp_c REAL,
		humidity REAL,
		weather TEXT,
		relative_effort INTEGER,
		hour_of_day INTEGER NOT NULL,
		day_of_week TEXT NOT NULL,
		calories INTEGER,
		gels_estimated INTEGER,
		carbs_g INTEGER,
		carb_replacement_ratio REAL,
		device_distance_km REAL,
		aerobic_te REAL,
		anaerobic_te REAL,
		training_load REAL,
		vo2max REAL,
		avg_power_w REAL,
		ground_contact_ms REAL,
		vertical_oscillation_cm REAL,
		stride_length_m REAL,
		body_battery_delta INTEGER,
		hr_zone1_sec INTEGER,
		hr_zone2_sec INTEGER,
		hr_zone3_sec INTEGER,
		hr_zone4_sec INTEGER,
		hr_zone5_sec INTEGER
	);

	CREATE TABLE IF NOT EXISTS sleep (
		date TEXT PRIMARY KEY,
		sleep_score INTEGER,
		readiness_score INTEGER,
		hrv INTEGER,
		resting_hr INTEGER,
		deep_sleep_min INTEGER,
		rem_sleep_min INTEGER,
		total_sleep_min INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_runs_date ON runs(date DESC);

	-- A session before noon is informed by the sleep recorded that morning;
	-- a session from noon on by the sleep recorded the previous morning.
	DROP VIEW IF EXISTS run_with_sleep;
	CREATE VIEW run_with_sleep AS
	SELECT r.*,
		s.date AS sleep_date,
		s.sleep_score,
		s.readiness_score,
		s.hrv,
		s.resting_hr,
		s.deep_sleep_min,
		s.rem_sleep_min,
		s.total_sleep_min
	FROM runs r
	LEFT JOIN sleep s ON s.date = CASE
		WHEN r.hour_of_day < 12 THEN r.date
		ELSE date(r.date, '-1 day')
	END;
	`

	_, err := d.db.Exec(schema)
	return err
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// upsertSQL builds an insert that replaces every non-key column on conflict.
func upsertSQL(table, key string, cols []string) string {
	sets := make([]string, 0, len(cols)-1)
	for _, c := range cols {
		if c != key {
			sets = append(sets, c+" = excluded."+c)
		}
	}
	return "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ")\n" +
		"VALUES (" + placeholders(len(cols)) + ")\n" +
		"ON CONFLICT(" + key + ") DO UPDATE SET " + strings.Join(sets, ", ")
}
