// ABOUTME: Shared test helpers for storage tests.
// ABOUTME: Provides setupTestDB and run/sleep fixtures.
package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/runlog/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), DBFileName)
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func ptr[T any](v T) *T { return &v }

// sampleRun builds a derived run starting at hour on date.
func sampleRun(id int64, date string, hour int) *models.Activity {
	day, _ := time.Parse(models.DateLayout, date)
	started := day.Add(time.Duration(hour) * time.Hour)
	return &models.Activity{
		ID:           id,
		Date:         date,
		StartedAt:    started,
		Name:         "Run",
		ActivityType: "Run",
		DistanceKm:   ptr(10.0),
		DurationSec:  ptr(3000),
		PaceMinKm:    ptr(5.0),
		AvgHR:        ptr(150),
		Weather:      ptr("Clear"),
		HourOfDay:    hour,
		DayOfWeek:    started.Weekday().String(),
		Calories:     ptr(700),
	}
}

func sampleDevice(date string) *models.DeviceMetrics {
	dm := &models.DeviceMetrics{
		Date:             date,
		DistanceKm:       ptr(10.1),
		AerobicTE:        ptr(3.2),
		VO2Max:           ptr(52.0),
		BodyBatteryDelta: ptr(-8),
	}
	dm.HRZoneSec[0] = ptr(300)
	dm.HRZoneSec[2] = ptr(1200)
	return dm
}

func sampleSleep(date string, score int) *models.Recovery {
	return &models.Recovery{
		Date:          date,
		SleepScore:    ptr(score),
		HRV:           ptr(45),
		TotalSleepMin: ptr(420),
	}
}
