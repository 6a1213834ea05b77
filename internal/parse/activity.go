// ABOUTME: Parser for the activity export (Strava bulk export activities.csv).
// ABOUTME: Normalizes distance to kilometers and keeps row order for tie-breaks.
package parse

import (
	"fmt"
	"io"
	"iter"
	"strconv"
	"time"

	"github.com/harperreed/runlog/internal/models"
	"github.com/harperreed/runlog/internal/units"
)

// Activity export columns.
const (
	ColActivityID       = "Activity ID"
	ColActivityDate     = "Activity Date"
	ColActivityName     = "Activity Name"
	ColActivityType     = "Activity Type"
	ColDistance         = "Distance"
	ColMovingTime       = "Moving Time"
	ColElapsedTime      = "Elapsed Time"
	ColAverageHeartRate = "Average Heart Rate"
	ColMaxHeartRate     = "Max Heart Rate"
	ColElevationGain    = "Elevation Gain"
	ColElevationGainFt  = "Elevation Gain (ft)"
	ColTemperature      = "Weather Temperature"
	ColHumidity         = "Humidity"
	ColWeatherCondition = "Weather Condition"
	ColRelativeEffort   = "Relative Effort"
	ColCalories         = "Calories"
)

// ActivityDateLayout is the timestamp format of the activity export.
const ActivityDateLayout = "Jan 2, 2006, 3:04:05 PM"

// ActivityDistanceUnit is the unit of the Distance column that wins when the
// export repeats it (the detail column is in meters).
const ActivityDistanceUnit = units.Meters

var activityColumns = map[string]string{
	"id":              ColActivityID,
	"date":            ColActivityDate,
	"distance_km":     ColDistance,
	"duration_sec":    ColMovingTime,
	"elapsed_sec":     ColElapsedTime,
	"avg_hr":          ColAverageHeartRate,
	"max_hr":          ColMaxHeartRate,
	"elevation_gain":  ColElevationGain,
	"humidity":        ColHumidity,
	"relative_effort": ColRelativeEffort,
	"calories":        ColCalories,
}

// Activities lazily parses an activity export. The sequence stops after
// the first error.
func Activities(r io.Reader, file string) iter.Seq2[*models.Activity, error] {
	return func(yield func(*models.Activity, error) bool) {
		cr := newReader(r)
		h, err := readHeader(cr, file, ColActivityID, ColActivityDate)
		if err != nil {
			yield(nil, err)
			return
		}

		seen := make(map[int64]int)
		for n := 1; ; n++ {
			rec, err := cr.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, &ParseError{File: file, Row: n, Err: err})
				return
			}

			a, err := parseActivity(h.row(n, rec))
			if err == nil {
				if prev, dup := seen[a.ID]; dup {
					err = &ParseError{File: file, Row: n, Column: ColActivityID,
						Err: fmt.Errorf("%w: %d also on row %d", ErrDuplicateKey, a.ID, prev)}
				}
				seen[a.ID] = n
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(a, nil) {
				return
			}
		}
	}
}

// ActivityFile parses the activity export at path as one unit.
func ActivityFile(path string) ([]*models.Activity, error) {
	return readFile(path, Activities)
}

func parseActivity(r row) (*models.Activity, error) {
	rawID, err := r.required(ColActivityID)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, r.fail(ColActivityID, fmt.Errorf("invalid identifier %q", rawID))
	}

	rawDate, err := r.required(ColActivityDate)
	if err != nil {
		return nil, err
	}
	started, err := time.Parse(ActivityDateLayout, rawDate)
	if err != nil {
		return nil, r.fail(ColActivityDate, fmt.Errorf("invalid timestamp %q", rawDate))
	}

	var c checker
	a := &models.Activity{
		ID:             id,
		Date:           started.Format(models.DateLayout),
		StartedAt:      started,
		DurationSec:    c.integer(r, ColMovingTime),
		ElapsedSec:     c.integer(r, ColElapsedTime),
		AvgHR:          c.integer(r, ColAverageHeartRate),
		MaxHR:          c.integer(r, ColMaxHeartRate),
		ElevationGainM: c.number(r, ColElevationGain),
		TempC:          c.number(r, ColTemperature),
		Humidity:       c.number(r, ColHumidity),
		Weather:        r.optString(ColWeatherCondition),
		RelativeEffort: c.integer(r, ColRelativeEffort),
		Calories:       c.integer(r, ColCalories),
	}
	a.Name, _ = r.str(ColActivityName)
	a.ActivityType, _ = r.str(ColActivityType)

	// Imperial exports label elevation in feet; the metric column wins when both exist.
	if ft := c.number(r, ColElevationGainFt); ft != nil && a.ElevationGainM == nil {
		m := units.FeetToMeters(*ft)
		a.ElevationGainM = &m
	}
	if d := c.number(r, ColDistance); d != nil {
		km := ActivityDistanceUnit.ToKm(*d)
		a.DistanceKm = &km
	}
	if c.err != nil {
		return nil, c.err
	}

	if err := validate(r, a, activityColumns); err != nil {
		return nil, err
	}
	return a, nil
}
