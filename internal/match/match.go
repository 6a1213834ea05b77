// ABOUTME: Cross-source matcher attaching device-metrics records to activities.
// ABOUTME: Greedy smallest-delta assignment over candidates sharing a calendar date.
package match

import (
	"cmp"
	"math"
	"slices"

	"github.com/harperreed/runlog/internal/models"
)

// DefaultToleranceKm is the largest distance delta accepted as a match.
const DefaultToleranceKm = 1.0

// Pair is one accepted assignment.
type Pair struct {
	ActivityID int64
	Device     *models.DeviceMetrics
	DeltaKm    float64
}

// Result is the outcome of one matching pass.
type Result struct {
	// Matches maps activity ID to its device-metrics record.
	Matches map[int64]*models.DeviceMetrics
	// Pairs lists the assignments in the order they were made.
	Pairs []Pair
	// Unmatched holds device records with no date-mate within tolerance.
	Unmatched []*models.DeviceMetrics
}

type candidate struct {
	act    *models.Activity
	actIdx int
	dev    *models.DeviceMetrics
	devIdx int
	delta  float64
}

// Match assigns each device record to at most one activity on the same date.
//
// Within a date the globally smallest delta is assigned first and both sides
// leave the pool. Ties fall to the earlier activity start time, then the
// activity's input position, then the device record's input position. The
// assignment is greedy, not an optimal bipartite matching; days with more
// than two candidates can in principle end up with a larger total delta.
func Match(activities []*models.Activity, devices []*models.DeviceMetrics, toleranceKm float64) *Result {
	res := &Result{Matches: make(map[int64]*models.DeviceMetrics)}

	byDate := make(map[string][]int)
	for i, a := range activities {
		if a.DistanceKm != nil {
			byDate[a.Date] = append(byDate[a.Date], i)
		}
	}

	var cands []candidate
	for j, dm := range devices {
		if dm.DistanceKm == nil {
			continue
		}
		for _, i := range byDate[dm.Date] {
			a := activities[i]
			delta := math.Abs(*a.DistanceKm - *dm.DistanceKm)
			if delta > toleranceKm {
				continue
			}
			cands = append(cands, candidate{act: a, actIdx: i, dev: dm, devIdx: j, delta: delta})
		}
	}

	// Dates never compete for records, so one global ordering is equivalent
	// to assigning date by date.
	slices.SortStableFunc(cands, func(x, y candidate) int {
		return cmp.Or(
			cmp.Compare(x.delta, y.delta),
			x.act.StartedAt.Compare(y.act.StartedAt),
			cmp.Compare(x.actIdx, y.actIdx),
			cmp.Compare(x.devIdx, y.devIdx),
		)
	})

	usedAct := make(map[int]bool)
	usedDev := make(map[int]bool)
	for _, c := range cands {
		if usedAct[c.actIdx] || usedDev[c.devIdx] {
			continue
		}
		usedAct[c.actIdx] = true
		usedDev[c.devIdx] = true
		res.Matches[c.act.ID] = c.dev
		res.Pairs = append(res.Pairs, Pair{ActivityID: c.act.ID, Device: c.dev, DeltaKm: c.delta})
	}

	for j, dm := range devices {
		if !usedDev[j] {
			res.Unmatched = append(res.Unmatched, dm)
		}
	}
	return res
}
