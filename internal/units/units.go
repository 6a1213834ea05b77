// ABOUTME: Unit normalization for distances, elevation, and clock-style durations.
// ABOUTME: The store keeps kilometers for distance and meters for elevation.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// MetersPerKm is the meter/kilometer ratio.
	MetersPerKm = 1000.0
	// KmPerMile is the international mile in kilometers.
	KmPerMile = 1.609344
	// MetersPerFoot is the international foot in meters.
	MetersPerFoot = 0.3048
)

// DistanceUnit names the unit a source column is recorded in.
type DistanceUnit string

const (
	Kilometers DistanceUnit = "km"
	Miles      DistanceUnit = "mi"
	Meters     DistanceUnit = "m"
)

// ToKm converts v, recorded in u, to kilometers.
func (u DistanceUnit) ToKm(v float64) float64 {
	switch u {
	case Miles:
		return MilesToKm(v)
	case Meters:
		return MetersToKm(v)
	default:
		return v
	}
}

// MetersToKm converts meters to kilometers.
func MetersToKm(m float64) float64 {
	return m / MetersPerKm
}

// MilesToKm converts miles to kilometers.
func MilesToKm(mi float64) float64 {
	return mi * KmPerMile
}

// KmToMiles converts kilometers to miles.
func KmToMiles(km float64) float64 {
	return km / KmPerMile
}

// FeetToMeters converts feet to meters.
func FeetToMeters(ft float64) float64 {
	return ft * MetersPerFoot
}

// ParseClock parses a duration written as seconds ("754", "754.0"),
// "mm:ss", or "h:mm:ss" and returns whole seconds.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	parts := strings.Split(s, ":")
	if len(parts) == 1 {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return int(math.Round(f)), nil
	}
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	total := 0.0
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil || f < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		// Only the leading field may exceed 59.
		if i > 0 && f >= 60 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		total = total*60 + f
	}
	return int(math.Round(total)), nil
}
