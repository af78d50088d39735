package run

import "time"

// Conclusion is the terminal outcome of a workflow run as reported by the
// provider. A run that is still in progress (or whose outcome was never
// recorded) carries ConclusionNone.
type Conclusion string

const (
	ConclusionSuccess   Conclusion = "success"
	ConclusionFailure   Conclusion = "failure"
	ConclusionCancelled Conclusion = "cancelled"
	ConclusionTimedOut  Conclusion = "timed_out"
	ConclusionSkipped   Conclusion = "skipped"
	ConclusionNone      Conclusion = ""
)

// Succeeded reports whether the run completed successfully. Every other
// conclusion, including an absent one, counts as "not a success": the health
// signal is binary and draws no distinction among failure subtypes.
func (c Conclusion) Succeeded() bool {
	return c == ConclusionSuccess
}

// Run is one historical execution of a monitored workflow.
// StartedAt is nil when the provider never recorded a start time; such runs
// can never be judged inside or outside the lookback window.
type Run struct {
	ID         int64
	StartedAt  *time.Time
	Conclusion Conclusion
	URL        string
}
