package eval

import "time"

// Policy holds the two knobs of a failure-window evaluation.
type Policy struct {
	// LookbackDays is the trailing window, in fractional days, within which
	// runs count as recent. NaN is a valid sentinel meaning "no run is ever
	// within the window" (see config.ParseLookbackDays).
	LookbackDays float64

	// CheckOutsideWindow controls what happens when no run falls inside the
	// window: when true, the single most recent run is inspected regardless
	// of its age; when false, the verdict is unconditionally "no failure".
	CheckOutsideWindow bool
}

// DefaultPolicy returns the default evaluation policy: a 7-day lookback with
// the outside-window fallback enabled.
func DefaultPolicy() Policy {
	return Policy{
		LookbackDays:       7,
		CheckOutsideWindow: true,
	}
}

// Result is the outcome of one failure-window evaluation.
type Result struct {
	// HasPreviousFailure is the verdict: true means persistent failure
	// detected, false means healthy or indeterminate-but-not-failing.
	HasPreviousFailure bool

	// Reason explains how the verdict was reached.
	Reason string

	TotalRuns    int
	WithinWindow int

	// UsedFallback reports that no run fell inside the window and the
	// verdict came from the most recent run's conclusion alone.
	UsedFallback bool

	Timestamp time.Time
}
