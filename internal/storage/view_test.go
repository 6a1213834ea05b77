// ABOUTME: Tests for the run_with_sleep view's noon rule.
// ABOUTME: Pins the morning and evening branches, absent sleep, and view redefinition.
package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/harperreed/runlog/internal/models"
)

func TestRunWithSleepNoonRule(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		hour      int
		sleep     []string
		wantSleep string
	}{
		{"morning joins same date", "2024-01-10", 6, []string{"2024-01-09", "2024-01-10"}, "2024-01-10"},
		{"evening joins previous date", "2024-01-10", 20, []string{"2024-01-09", "2024-01-10"}, "2024-01-09"},
		{"11am is still morning", "2024-01-10", 11, []string{"2024-01-09", "2024-01-10"}, "2024-01-10"},
		{"noon is afternoon", "2024-01-10", 12, []string{"2024-01-09", "2024-01-10"}, "2024-01-09"},
		{"evening across month boundary", "2024-03-01", 19, []string{"2024-02-29", "2024-03-01"}, "2024-02-29"},
		{"morning without same-date sleep", "2024-01-10", 6, []string{"2024-01-09"}, ""},
		{"evening without previous-date sleep", "2024-01-10", 20, []string{"2024-01-10"}, ""},
		{"no sleep at all", "2024-01-10", 20, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			ctx := context.Background()

			if _, err := db.UpsertRuns(ctx, []*models.Activity{sampleRun(1, tt.date, tt.hour)}); err != nil {
				t.Fatalf("UpsertRuns failed: %v", err)
			}
			var recs []*models.Recovery
			for i, d := range tt.sleep {
				recs = append(recs, sampleSleep(d, 60+i))
			}
			if _, err := db.UpsertSleep(ctx, recs); err != nil {
				t.Fatalf("UpsertSleep failed: %v", err)
			}

			rows, err := db.ListRuns(ctx, RunFilter{})
			if err != nil {
				t.Fatalf("ListRuns failed: %v", err)
			}
			if len(rows) != 1 {
				t.Fatalf("expected exactly one view row, got %d", len(rows))
			}

			rec := rows[0].Recovery
			if tt.wantSleep == "" {
				if rec != nil {
					t.Errorf("expected no sleep record, got %s", rec.Date)
				}
				return
			}
			if rec == nil {
				t.Fatalf("expected sleep from %s, got none", tt.wantSleep)
			}
			if rec.Date != tt.wantSleep {
				t.Errorf("joined sleep date = %s, want %s", rec.Date, tt.wantSleep)
			}
			if rec.SleepScore == nil || rec.TotalSleepMin == nil || *rec.TotalSleepMin != 420 {
				t.Errorf("sleep columns missing from view row: %+v", rec)
			}
		})
	}
}

func TestRunWithSleepReflectsLaterSleepImport(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.UpsertRuns(ctx, []*models.Activity{sampleRun(1, "2024-01-10", 7)}); err != nil {
		t.Fatalf("UpsertRuns failed: %v", err)
	}
	rows, err := db.ListRuns(ctx, RunFilter{})
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if rows[0].Recovery != nil {
		t.Fatal("expected no sleep before import")
	}

	if _, err := db.UpsertSleep(ctx, []*models.Recovery{sampleSleep("2024-01-10", 88)}); err != nil {
		t.Fatalf("UpsertSleep failed: %v", err)
	}
	rows, err = db.ListRuns(ctx, RunFilter{})
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if rows[0].Recovery == nil || *rows[0].Recovery.SleepScore != 88 {
		t.Errorf("view did not pick up new sleep row: %+v", rows[0].Recovery)
	}
}

// sameDateView joins on the run's own date regardless of hour.
const sameDateView = `
DROP VIEW run_with_sleep;
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
LEFT JOIN sleep s ON s.date = r.date;
`

func TestOpenReplacesExistingView(t *testing.T) {
	path := filepath.Join(t.TempDir(), DBFileName)
	ctx := context.Background()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := db.UpsertRuns(ctx, []*models.Activity{sampleRun(1, "2024-01-10", 20)}); err != nil {
		t.Fatalf("UpsertRuns failed: %v", err)
	}
	if _, err := db.UpsertSleep(ctx, []*models.Recovery{sampleSleep("2024-01-10", 70)}); err != nil {
		t.Fatalf("UpsertSleep failed: %v", err)
	}
	if _, err := db.db.Exec(sameDateView); err != nil {
		t.Fatalf("replace view: %v", err)
	}
	rows, err := db.ListRuns(ctx, RunFilter{})
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if rows[0].Recovery == nil {
		t.Fatal("same-date view should join the evening run to 2024-01-10")
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()

	rows, err = db.ListRuns(ctx, RunFilter{})
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if rows[0].Recovery != nil {
		t.Errorf("evening run joined sleep %s after reopen, want none", rows[0].Recovery.Date)
	}
}
