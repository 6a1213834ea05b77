// ABOUTME: DeviceMetrics model for richer per-session telemetry from a second device.
// ABOUTME: Has no shared key with Activity; it is attached by approximate date/distance match.
package models

import "time"

// HRZoneCount is the number of heart-rate zones carried by the device export.
const HRZoneCount = 5

// DeviceMetrics is one session from the device-metrics export.
type DeviceMetrics struct {
	Date                  string     `json:"date" validate:"required,datetime=2006-01-02"`
	StartedAt             *time.Time `json:"started_at,omitempty"`
	DistanceKm            *float64   `json:"distance_km,omitempty" validate:"omitempty,gte=0"`
	AerobicTE             *float64   `json:"aerobic_te,omitempty" validate:"omitempty,gte=0,lte=5"`
	AnaerobicTE           *float64   `json:"anaerobic_te,omitempty" validate:"omitempty,gte=0,lte=5"`
	TrainingLoad          *float64   `json:"training_load,omitempty" validate:"omitempty,gte=0"`
	VO2Max                *float64   `json:"vo2max,omitempty" validate:"omitempty,gt=0"`
	AvgPowerW             *float64   `json:"avg_power_w,omitempty" validate:"omitempty,gte=0"`
	GroundContactMs       *float64   `json:"ground_contact_ms,omitempty" validate:"omitempty,gte=0"`
	VerticalOscillationCm *float64   `json:"vertical_oscillation_cm,omitempty" validate:"omitempty,gte=0"`
	StrideLengthM         *float64   `json:"stride_length_m,omitempty" validate:"omitempty,gte=0"`
	BodyBatteryDelta      *int       `json:"body_battery_delta,omitempty"`

	// HRZoneSec holds time in zones 1..HRZoneCount, index 0 is zone 1.
	HRZoneSec [HRZoneCount]*int `json:"hr_zone_sec" validate:"dive,omitempty,gte=0"`
}
