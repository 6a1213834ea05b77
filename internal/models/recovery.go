// ABOUTME: Recovery model for one calendar day's sleep and readiness summary.
// ABOUTME: Date is the natural key; every measurement is optional.
package models

// Recovery is a single day's sleep/readiness record from the wearable export.
type Recovery struct {
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	SleepScore     *int   `json:"sleep_score,omitempty" validate:"omitempty,gte=0,lte=100"`
	ReadinessScore *int   `json:"readiness_score,omitempty" validate:"omitempty,gte=0,lte=100"`
	HRV            *int   `json:"hrv,omitempty" validate:"omitempty,gte=0"`
	RestingHR      *int   `json:"resting_hr,omitempty" validate:"omitempty,gt=0,lt=300"`
	DeepSleepMin   *int   `json:"deep_sleep_min,omitempty" validate:"omitempty,gte=0"`
	REMSleepMin    *int   `json:"rem_sleep_min,omitempty" validate:"omitempty,gte=0"`
	TotalSleepMin  *int   `json:"total_sleep_min,omitempty" validate:"omitempty,gte=0"`
}
