package eval

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/tbenoit3/workflow-vigil/internal/run"
)

func started(t time.Time) *time.Time {
	return &t
}

func TestDecide(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ago := func(d time.Duration) *time.Time { return started(now.Add(-d)) }
	day := 24 * time.Hour

	tests := []struct {
		name            string
		runs            []run.Run
		policy          Policy
		expectedVerdict bool
		expectFallback  bool
	}{
		{
			name:            "no runs at all",
			runs:            nil,
			policy:          DefaultPolicy(),
			expectedVerdict: false,
		},
		{
			name: "success dominates failures in window",
			runs: []run.Run{
				{StartedAt: ago(1 * day), Conclusion: run.ConclusionFailure},
				{StartedAt: ago(2 * day), Conclusion: run.ConclusionFailure},
				{StartedAt: ago(3 * day), Conclusion: run.ConclusionSuccess},
				{StartedAt: ago(4 * day), Conclusion: run.ConclusionFailure},
			},
			policy:          DefaultPolicy(),
			expectedVerdict: false,
		},
		{
			name: "all in-window runs failed",
			runs: []run.Run{
				{StartedAt: ago(1 * day), Conclusion: run.ConclusionFailure},
				{StartedAt: ago(2 * day), Conclusion: run.ConclusionCancelled},
				{StartedAt: ago(3 * day), Conclusion: run.ConclusionTimedOut},
			},
			policy:          DefaultPolicy(),
			expectedVerdict: true,
		},
		{
			name: "success at exact window boundary clears verdict",
			runs: []run.Run{
				{StartedAt: ago(1 * day), Conclusion: run.ConclusionFailure},
				{StartedAt: ago(7 * day), Conclusion: run.ConclusionSuccess},
			},
			policy:          DefaultPolicy(),
			expectedVerdict: false,
		},
		{
			name: "success just past boundary is stale",
			runs: []run.Run{
				{StartedAt: ago(1 * day), Conclusion: run.ConclusionFailure},
				{StartedAt: ago(7*day + time.Minute), Conclusion: run.ConclusionSuccess},
			},
			policy:          DefaultPolicy(),
			expectedVerdict: true,
		},
		{
			name: "fallback on stale success",
			runs: []run.Run{
				{StartedAt: ago(10 * day), Conclusion: run.ConclusionSuccess},
			},
			policy:          DefaultPolicy(),
			expectedVerdict: false,
			expectFallback:  true,
		},
		{
			name: "fallback on stale failure",
			runs: []run.Run{
				{StartedAt: ago(10 * day), Conclusion: run.ConclusionFailure},
			},
			policy:          DefaultPolicy(),
			expectedVerdict: true,
			expectFallback:  true,
		},
		{
			name: "fallback on run with absent conclusion",
			runs: []run.Run{
				{StartedAt: ago(10 * day), Conclusion: run.ConclusionNone},
			},
			policy:          DefaultPolicy(),
			expectedVerdict: true,
			expectFallback:  true,
		},
		{
			name: "fallback disabled yields no failure",
			runs: []run.Run{
				{StartedAt: ago(10 * day), Conclusion: run.ConclusionFailure},
			},
			policy:          Policy{LookbackDays: 7, CheckOutsideWindow: false},
			expectedVerdict: false,
		},
		{
			name: "fallback reads a run with no start time",
			runs: []run.Run{
				{StartedAt: nil, Conclusion: run.ConclusionFailure},
			},
			policy:          DefaultPolicy(),
			expectedVerdict: true,
			expectFallback:  true,
		},
		{
			name: "missing start time excluded from window",
			runs: []run.Run{
				{StartedAt: nil, Conclusion: run.ConclusionSuccess},
				{StartedAt: ago(1 * day), Conclusion: run.ConclusionFailure},
			},
			policy:          DefaultPolicy(),
			expectedVerdict: true,
		},
		{
			name: "NaN lookback falls through to fallback",
			runs: []run.Run{
				{StartedAt: ago(time.Minute), Conclusion: run.ConclusionFailure},
				{StartedAt: ago(2 * time.Minute), Conclusion: run.ConclusionSuccess},
			},
			policy:          Policy{LookbackDays: math.NaN(), CheckOutsideWindow: true},
			expectedVerdict: true,
			expectFallback:  true,
		},
		{
			name: "NaN lookback with fallback disabled",
			runs: []run.Run{
				{StartedAt: ago(time.Minute), Conclusion: run.ConclusionFailure},
			},
			policy:          Policy{LookbackDays: math.NaN(), CheckOutsideWindow: false},
			expectedVerdict: false,
		},
		{
			name: "sub-minute lookback window",
			runs: []run.Run{
				{StartedAt: ago(10 * time.Second), Conclusion: run.ConclusionFailure},
			},
			policy:          Policy{LookbackDays: 30.0 / 86400, CheckOutsideWindow: false},
			expectedVerdict: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Decide(tt.runs, tt.policy, now)

			if result.HasPreviousFailure != tt.expectedVerdict {
				t.Errorf("expected verdict=%v, got %v (reason: %s)",
					tt.expectedVerdict, result.HasPreviousFailure, result.Reason)
			}

			if result.UsedFallback != tt.expectFallback {
				t.Errorf("expected usedFallback=%v, got %v", tt.expectFallback, result.UsedFallback)
			}

			if result.Reason == "" {
				t.Error("expected a reason to be set")
			}

			if result.TotalRuns != len(tt.runs) {
				t.Errorf("expected totalRuns=%d, got %d", len(tt.runs), result.TotalRuns)
			}
		})
	}
}

func TestDecide_DoesNotReorderInput(t *testing.T) {
	now := time.Now()
	oldest := started(now.Add(-72 * time.Hour))
	newest := started(now.Add(-1 * time.Hour))

	// Deliberately hand the evaluator an out-of-order history: it must read
	// position 0 as "most recent" per the provider contract, not re-sort.
	runs := []run.Run{
		{ID: 1, StartedAt: oldest, Conclusion: run.ConclusionFailure},
		{ID: 2, StartedAt: newest, Conclusion: run.ConclusionSuccess},
	}

	Decide(runs, Policy{LookbackDays: 0.001, CheckOutsideWindow: true}, now)

	if runs[0].ID != 1 || runs[1].ID != 2 {
		t.Error("Decide reordered its input")
	}
}

type stubProvider struct {
	runs []run.Run
	err  error
	q    RunQuery
}

func (s *stubProvider) ListRuns(_ context.Context, q RunQuery) ([]run.Run, error) {
	s.q = q
	return s.runs, s.err
}

func TestEvaluator_Evaluate(t *testing.T) {
	now := time.Now()
	provider := &stubProvider{
		runs: []run.Run{
			{StartedAt: started(now.Add(-time.Hour)), Conclusion: run.ConclusionFailure},
		},
	}

	evaluator := NewEvaluator(provider)
	q := RunQuery{Owner: "acme", Repo: "widget", Workflow: "release.yml", Branch: "main", PerPage: 50}

	result, err := evaluator.Evaluate(context.Background(), q, DefaultPolicy(), now)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	if !result.HasPreviousFailure {
		t.Error("expected persistent failure verdict")
	}

	if provider.q != q {
		t.Errorf("expected query %+v to reach provider, got %+v", q, provider.q)
	}
}

func TestEvaluator_ProviderError(t *testing.T) {
	providerErr := errors.New("api unavailable")
	evaluator := NewEvaluator(&stubProvider{err: providerErr})

	_, err := evaluator.Evaluate(context.Background(), RunQuery{}, DefaultPolicy(), time.Now())
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if !errors.Is(err, providerErr) {
		t.Errorf("expected wrapped provider error, got %v", err)
	}
}
