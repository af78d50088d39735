package run

import (
	"sort"
	"time"
)

const hoursPerDay = 24

// AgeDays returns the age of a timestamp relative to now, in fractional days.
func AgeDays(startedAt time.Time, now time.Time) float64 {
	return now.Sub(startedAt).Hours() / hoursPerDay
}

// FilterWithinWindow retains the runs whose start time is recorded and whose
// age is at most lookbackDays (inclusive boundary). Runs without a start time
// are always excluded. Input order is preserved.
//
// A NaN lookback excludes every run: all comparisons against NaN are false.
// That is the documented soft-failure behavior for an unparseable lookback
// input, and it pushes the evaluation onto the outside-window fallback path.
func FilterWithinWindow(runs []Run, lookbackDays float64, now time.Time) []Run {
	var within []Run
	for _, r := range runs {
		if r.StartedAt == nil {
			continue
		}
		if AgeDays(*r.StartedAt, now) <= lookbackDays {
			within = append(within, r)
		}
	}
	return within
}

// SortMostRecentFirst sorts runs in descending start-time order, in place.
// Runs without a start time sort oldest. Adapters call this before handing
// runs to the evaluator so that index 0 is always the most recent run; the
// evaluator itself never re-sorts.
func SortMostRecentFirst(runs []Run) {
	sort.SliceStable(runs, func(i, j int) bool {
		a, b := runs[i].StartedAt, runs[j].StartedAt
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
}
