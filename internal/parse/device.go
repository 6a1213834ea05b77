// ABOUTME: Parser for the device-metrics export (Garmin Connect activities CSV).
// ABOUTME: Reads the distance unit from the header and normalizes to kilometers.
package parse

import (
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/harperreed/runlog/internal/models"
	"github.com/harperreed/runlog/internal/units"
)

// Device-metrics export columns.
const (
	ColDeviceDate          = "Date"
	ColAerobicTE           = "Aerobic TE"
	ColAnaerobicTE         = "Anaerobic TE"
	ColTrainingLoad        = "Training Load"
	ColVO2Max              = "VO2 Max"
	ColAvgPower            = "Avg Power"
	ColGroundContactTime   = "Avg Ground Contact Time"
	ColVerticalOscillation = "Avg Vertical Oscillation"
	ColStrideLength        = "Avg Stride Length"
	ColBodyBatteryDrain    = "Body Battery Drain"
)

// deviceDistanceUnits maps the accepted distance headers to their units.
var deviceDistanceUnits = map[string]units.DistanceUnit{
	"Distance (km)": units.Kilometers,
	"Distance (mi)": units.Miles,
	"Distance (m)":  units.Meters,
	"Distance":      units.Kilometers,
}

var deviceDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	models.DateLayout,
}

// ZoneColumn returns the header of the time-in-zone column for zone (1-based).
func ZoneColumn(zone int) string {
	return fmt.Sprintf("Time in Zone %d", zone)
}

var deviceColumns = map[string]string{
	"date":                    ColDeviceDate,
	"aerobic_te":              ColAerobicTE,
	"anaerobic_te":            ColAnaerobicTE,
	"training_load":           ColTrainingLoad,
	"vo2max":                  ColVO2Max,
	"avg_power_w":             ColAvgPower,
	"ground_contact_ms":       ColGroundContactTime,
	"vertical_oscillation_cm": ColVerticalOscillation,
	"stride_length_m":         ColStrideLength,
}

// DeviceMetrics lazily parses a device-metrics export.
func DeviceMetrics(r io.Reader, file string) iter.Seq2[*models.DeviceMetrics, error] {
	return func(yield func(*models.DeviceMetrics, error) bool) {
		cr := newReader(r)
		h, err := readHeader(cr, file, ColDeviceDate)
		if err != nil {
			yield(nil, err)
			return
		}

		distCol, _ := h.first("Distance (km)", "Distance (mi)", "Distance (m)", "Distance")
		distUnit := deviceDistanceUnits[distCol]

		for n := 1; ; n++ {
			rec, err := cr.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, &ParseError{File: file, Row: n, Err: err})
				return
			}

			dm, err := parseDevice(h.row(n, rec), distCol, distUnit)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(dm, nil) {
				return
			}
		}
	}
}

// DeviceMetricsFile parses the device-metrics export at path as one unit.
func DeviceMetricsFile(path string) ([]*models.DeviceMetrics, error) {
	return readFile(path, DeviceMetrics)
}

func parseDevice(r row, distCol string, distUnit units.DistanceUnit) (*models.DeviceMetrics, error) {
	raw, err := r.required(ColDeviceDate)
	if err != nil {
		return nil, err
	}

	dm := &models.DeviceMetrics{}
	parsed := false
	for _, layout := range deviceDateLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		dm.Date = t.Format(models.DateLayout)
		if layout != models.DateLayout {
			dm.StartedAt = &t
		}
		parsed = true
		break
	}
	if !parsed {
		return nil, r.fail(ColDeviceDate, fmt.Errorf("invalid date %q", raw))
	}

	var c checker
	if distCol != "" {
		if d := c.number(r, distCol); d != nil {
			km := distUnit.ToKm(*d)
			dm.DistanceKm = &km
		}
	}
	dm.AerobicTE = c.number(r, ColAerobicTE)
	dm.AnaerobicTE = c.number(r, ColAnaerobicTE)
	dm.TrainingLoad = c.number(r, ColTrainingLoad)
	dm.VO2Max = c.number(r, ColVO2Max)
	dm.AvgPowerW = c.number(r, ColAvgPower)
	dm.GroundContactMs = c.number(r, ColGroundContactTime)
	dm.VerticalOscillationCm = c.number(r, ColVerticalOscillation)
	dm.StrideLengthM = c.number(r, ColStrideLength)
	dm.BodyBatteryDelta = c.integer(r, ColBodyBatteryDrain)
	if c.err != nil {
		return nil, c.err
	}

	for z := range models.HRZoneCount {
		col := ZoneColumn(z + 1)
		v, ok := r.str(col)
		if !ok {
			continue
		}
		sec, err := units.ParseClock(v)
		if err != nil {
			return nil, r.fail(col, err)
		}
		dm.HRZoneSec[z] = &sec
	}

	if err := validate(r, dm, deviceColumns); err != nil {
		return nil, err
	}
	return dm, nil
}
