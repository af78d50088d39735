package eval

import (
	"context"
	"fmt"
	"time"

	"github.com/tbenoit3/workflow-vigil/internal/run"
)

// RunQuery identifies the workflow whose run history should be listed.
type RunQuery struct {
	Owner    string
	Repo     string
	Workflow string
	Branch   string
	PerPage  int
}

// RunProvider lists historical runs for a workflow.
//
// Contract: the returned slice is ordered most-recent-first, so index 0 is
// the single most recent run. Adapters enforce this with
// run.SortMostRecentFirst before returning; the evaluator reads position 0
// directly and never re-sorts.
type RunProvider interface {
	ListRuns(ctx context.Context, q RunQuery) ([]run.Run, error)
}

// Evaluator pairs a run provider with the failure-window decision.
type Evaluator struct {
	provider RunProvider
}

// NewEvaluator creates a new evaluator backed by the given provider.
func NewEvaluator(provider RunProvider) *Evaluator {
	return &Evaluator{provider: provider}
}

// Evaluate fetches the run history for q and decides whether the workflow is
// in a persistent-failure state. Fetching is the only fallible step; once the
// runs are in hand the decision itself cannot fail.
func (e *Evaluator) Evaluate(ctx context.Context, q RunQuery, policy Policy, now time.Time) (*Result, error) {
	runs, err := e.provider.ListRuns(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list workflow runs: %w", err)
	}

	result := Decide(runs, policy, now)
	return &result, nil
}

// Decide evaluates the failure-window decision tree over a most-recent-first
// run history. It is a pure, total function of (runs, policy, now):
//
//  1. No runs at all: no basis to declare failure.
//  2. Otherwise filter to runs whose age is within the lookback window
//     (inclusive boundary; runs without a start time never qualify).
//  3. Empty window with the fallback disabled: no failure. Empty window with
//     the fallback enabled: the verdict is the inverted conclusion of the
//     single most recent run. Only its conclusion is consulted, so a run
//     with no recorded start time still resolves the fallback.
//  4. Non-empty window: one successful run clears the verdict no matter how
//     many failures surround it; a window with no success at all is a
//     persistent failure.
func Decide(runs []run.Run, policy Policy, now time.Time) Result {
	result := Result{
		TotalRuns: len(runs),
		Timestamp: now,
	}

	if len(runs) == 0 {
		result.Reason = "no runs recorded"
		return result
	}

	within := run.FilterWithinWindow(runs, policy.LookbackDays, now)
	result.WithinWindow = len(within)

	if len(within) == 0 {
		if !policy.CheckOutsideWindow {
			result.Reason = fmt.Sprintf("no runs within %g days and outside-window check disabled", policy.LookbackDays)
			return result
		}

		result.UsedFallback = true
		latest := runs[0]
		if latest.Conclusion.Succeeded() {
			result.Reason = fmt.Sprintf("no runs within %g days; most recent run succeeded", policy.LookbackDays)
		} else {
			result.HasPreviousFailure = true
			result.Reason = fmt.Sprintf("no runs within %g days; most recent run concluded %q", policy.LookbackDays, describeConclusion(latest.Conclusion))
		}
		return result
	}

	for _, r := range within {
		if r.Conclusion.Succeeded() {
			result.Reason = fmt.Sprintf("found a successful run within %g days", policy.LookbackDays)
			return result
		}
	}

	result.HasPreviousFailure = true
	result.Reason = fmt.Sprintf("%d run(s) within %g days, none succeeded", len(within), policy.LookbackDays)
	return result
}

func describeConclusion(c run.Conclusion) string {
	if c == run.ConclusionNone {
		return "none"
	}
	return string(c)
}
