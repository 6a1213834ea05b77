// ABOUTME: Activity model for a single exercise session from the activity export.
// ABOUTME: Optional measurements are pointers so "not measured" never reads as zero.
package models

import "time"

// DateLayout is the calendar-day format used for every date key in the store.
const DateLayout = "2006-01-02"

// Activity represents one exercise session.
//
// Raw fields come from the activity export; the derived block is filled in by
// the derivation engine and the Device fields by the cross-source matcher.
type Activity struct {
	ID             int64     `json:"id" validate:"required"`
	Date           string    `json:"date" validate:"required,datetime=2006-01-02"`
	StartedAt      time.Time `json:"started_at"`
	Name           string    `json:"name"`
	ActivityType   string    `json:"activity_type"`
	DistanceKm     *float64  `json:"distance_km,omitempty" validate:"omitempty,gte=0"`
	DurationSec    *int      `json:"duration_sec,omitempty" validate:"omitempty,gte=0"`
	ElapsedSec     *int      `json:"elapsed_sec,omitempty" validate:"omitempty,gte=0"`
	AvgHR          *int      `json:"avg_hr,omitempty" validate:"omitempty,gt=0,lt=300"`
	MaxHR          *int      `json:"max_hr,omitempty" validate:"omitempty,gt=0,lt=300"`
	ElevationGainM *float64  `json:"elevation_gain,omitempty" validate:"omitempty,gte=0"`
	TempC          *float64  `json:"temp_c,omitempty"`
	Humidity       *float64  `json:"humidity,omitempty" validate:"omitempty,gte=0"`
	Weather        *string   `json:"weather,omitempty"`
	RelativeEffort *int      `json:"relative_effort,omitempty" validate:"omitempty,gte=0"`
	Calories       *int      `json:"calories,omitempty" validate:"omitempty,gte=0"`

	// Derived
	PaceMinKm            *float64 `json:"pace_min_km,omitempty"`
	HourOfDay            int      `json:"hour_of_day" validate:"gte=0,lte=23"`
	DayOfWeek            string   `json:"day_of_week"`
	GelsEstimated        *int     `json:"gels_estimated,omitempty"`
	CarbsG               *int     `json:"carbs_g,omitempty"`
	CarbReplacementRatio *float64 `json:"carb_replacement_ratio,omitempty"`

	// Device holds the matched device-metrics record, nil when unmatched.
	Device *DeviceMetrics `json:"device,omitempty"`
}

// IsLongRun reports whether fueling estimates were derived for the session.
func (a *Activity) IsLongRun() bool {
	return a.GelsEstimated != nil
}
