// ABOUTME: Parser for the recovery export (Oura trends CSV).
// ABOUTME: Sleep-stage durations arrive in seconds and are stored as whole minutes.
package parse

import (
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/harperreed/runlog/internal/models"
)

// Recovery export columns.
const (
	ColRecoveryDate   = "date"
	ColSleepScore     = "Sleep Score"
	ColReadinessScore = "Readiness Score"
	ColAverageHRV     = "Average HRV"
	ColRestingHR      = "Average Resting Heart Rate"
	ColDeepSleep      = "Deep Sleep Duration"
	ColREMSleep       = "REM Sleep Duration"
	ColTotalSleep     = "Total Sleep Duration"
)

var recoveryColumns = map[string]string{
	"date":            ColRecoveryDate,
	"sleep_score":     ColSleepScore,
	"readiness_score": ColReadinessScore,
	"hrv":             ColAverageHRV,
	"resting_hr":      ColRestingHR,
	"deep_sleep_min":  ColDeepSleep,
	"rem_sleep_min":   ColREMSleep,
	"total_sleep_min": ColTotalSleep,
}

// Recoveries lazily parses a recovery export. A date may appear only once
// per file.
func Recoveries(r io.Reader, file string) iter.Seq2[*models.Recovery, error] {
	return func(yield func(*models.Recovery, error) bool) {
		cr := newReader(r)
		h, err := readHeader(cr, file, ColRecoveryDate)
		if err != nil {
			yield(nil, err)
			return
		}

		seen := make(map[string]int)
		for n := 1; ; n++ {
			rec, err := cr.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, &ParseError{File: file, Row: n, Err: err})
				return
			}

			rc, err := parseRecovery(h.row(n, rec))
			if err == nil {
				if prev, dup := seen[rc.Date]; dup {
					err = &ParseError{File: file, Row: n, Column: ColRecoveryDate,
						Err: fmt.Errorf("%w: %s also on row %d", ErrDuplicateKey, rc.Date, prev)}
				}
				seen[rc.Date] = n
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(rc, nil) {
				return
			}
		}
	}
}

// RecoveryFile parses the recovery export at path as one unit.
func RecoveryFile(path string) ([]*models.Recovery, error) {
	return readFile(path, Recoveries)
}

func parseRecovery(r row) (*models.Recovery, error) {
	raw, err := r.required(ColRecoveryDate)
	if err != nil {
		return nil, err
	}
	day, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return nil, r.fail(ColRecoveryDate, fmt.Errorf("invalid date %q", raw))
	}

	var c checker
	rc := &models.Recovery{
		Date:           day.Format(models.DateLayout),
		SleepScore:     c.integer(r, ColSleepScore),
		ReadinessScore: c.integer(r, ColReadinessScore),
		HRV:            c.integer(r, ColAverageHRV),
		RestingHR:      c.integer(r, ColRestingHR),
		DeepSleepMin:   minutes(c.integer(r, ColDeepSleep)),
		REMSleepMin:    minutes(c.integer(r, ColREMSleep)),
		TotalSleepMin:  minutes(c.integer(r, ColTotalSleep)),
	}
	if c.err != nil {
		return nil, c.err
	}

	if err := validate(r, rc, recoveryColumns); err != nil {
		return nil, err
	}
	return rc, nil
}

// minutes floors a seconds value to whole minutes, keeping absent as absent.
func minutes(sec *int) *int {
	if sec == nil {
		return nil
	}
	m := *sec / 60
	return &m
}
