// ABOUTME: Derivation engine filling pace, time-of-day, and fueling estimates.
// ABOUTME: Fields whose inputs are missing stay absent; derivation never fails.
package derive

import (
	"math"

	"github.com/harperreed/runlog/internal/models"
	"github.com/harperreed/runlog/internal/units"
)

const (
	// DefaultLongRunThresholdKm is nine miles.
	DefaultLongRunThresholdKm = 9 * units.KmPerMile
	// MilesPerGel is the distance covered by one estimated gel.
	MilesPerGel = 3
	// CarbsPerGelG is the carbohydrate content of one gel in grams.
	CarbsPerGelG = 30
	// KcalPerCarbG is the energy density of carbohydrate.
	KcalPerCarbG = 4

	// floorEpsilon keeps exact multiples of MilesPerGel from flooring one short
	// after the km/mile round trip.
	floorEpsilon = 1e-9
)

// Options tunes the derivation engine.
type Options struct {
	LongRunThresholdKm float64
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{LongRunThresholdKm: DefaultLongRunThresholdKm}
}

// Apply returns a copy of a with every derivable field set and dm attached.
// dm may be nil.
func Apply(a *models.Activity, dm *models.DeviceMetrics, opts Options) *models.Activity {
	out := *a
	out.Device = dm

	out.PaceMinKm = Pace(a.DurationSec, a.DistanceKm)
	out.HourOfDay = a.StartedAt.Hour()
	out.DayOfWeek = a.StartedAt.Weekday().String()

	out.GelsEstimated, out.CarbsG = nil, nil
	if gels, ok := Gels(a.DistanceKm, opts.LongRunThresholdKm); ok {
		carbs := gels * CarbsPerGelG
		out.GelsEstimated = &gels
		out.CarbsG = &carbs
	}
	out.CarbReplacementRatio = CarbReplacementRatio(out.CarbsG, a.Calories)
	return &out
}

// All derives every activity, attaching the matched device record by ID.
func All(acts []*models.Activity, matches map[int64]*models.DeviceMetrics, opts Options) []*models.Activity {
	out := make([]*models.Activity, len(acts))
	for i, a := range acts {
		out[i] = Apply(a, matches[a.ID], opts)
	}
	return out
}

// Pace returns minutes per kilometer, absent when either input is absent or
// the distance is not positive.
func Pace(durationSec *int, distanceKm *float64) *float64 {
	if durationSec == nil || distanceKm == nil || *distanceKm <= 0 {
		return nil
	}
	p := float64(*durationSec) / 60 / *distanceKm
	return &p
}

// Gels returns floor(miles / MilesPerGel) for runs at or beyond thresholdKm.
func Gels(distanceKm *float64, thresholdKm float64) (int, bool) {
	if distanceKm == nil || *distanceKm < thresholdKm {
		return 0, false
	}
	miles := units.KmToMiles(*distanceKm)
	return int(math.Floor(miles/MilesPerGel + floorEpsilon)), true
}

// CarbReplacementRatio is the share of burned calories replaced by the
// estimated carbohydrate intake.
func CarbReplacementRatio(carbsG, calories *int) *float64 {
	if carbsG == nil || calories == nil || *calories <= 0 {
		return nil
	}
	r := float64(*carbsG*KcalPerCarbG) / float64(*calories)
	return &r
}
