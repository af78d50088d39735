package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tbenoit3/workflow-vigil/internal/eval"
	"github.com/tbenoit3/workflow-vigil/internal/run"
)

// RunFixture is the fixture file format: a recorded run history for one
// workflow.
type RunFixture struct {
	Runs []RunData `json:"runs"`
}

// RunData is a single recorded run
type RunData struct {
	ID         int64      `json:"id"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	Conclusion string     `json:"conclusion,omitempty"`
	URL        string     `json:"url,omitempty"`
}

// Adapter is a run history provider that reads from JSON fixtures instead of
// a live API. Fixtures are keyed by workflow coordinates.
type Adapter struct {
	fixtures map[string]*RunFixture
}

// NewAdapter creates a new fixture adapter
func NewAdapter() *Adapter {
	return &Adapter{
		fixtures: make(map[string]*RunFixture),
	}
}

// Key builds the fixture key for a run query.
func Key(q eval.RunQuery) string {
	return fmt.Sprintf("%s/%s/%s@%s", q.Owner, q.Repo, q.Workflow, q.Branch)
}

// LoadFixture loads a run fixture from a JSON file
func (a *Adapter) LoadFixture(key string, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read fixture: %w", err)
	}

	var fixture RunFixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return fmt.Errorf("failed to parse fixture: %w", err)
	}

	a.fixtures[key] = &fixture
	return nil
}

// SetFixture directly sets a fixture (useful for testing)
func (a *Adapter) SetFixture(key string, fixture *RunFixture) {
	a.fixtures[key] = fixture
}

// ListRuns implements the eval.RunProvider interface. Like the live adapter,
// it enforces most-recent-first ordering and honors the page size.
func (a *Adapter) ListRuns(_ context.Context, q eval.RunQuery) ([]run.Run, error) {
	fixture, exists := a.fixtures[Key(q)]
	if !exists {
		return nil, fmt.Errorf("fixture not found: %s", Key(q))
	}

	runs := make([]run.Run, 0, len(fixture.Runs))
	for _, rd := range fixture.Runs {
		runs = append(runs, run.Run{
			ID:         rd.ID,
			StartedAt:  rd.StartedAt,
			Conclusion: run.Conclusion(rd.Conclusion),
			URL:        rd.URL,
		})
	}

	run.SortMostRecentFirst(runs)

	if q.PerPage > 0 && len(runs) > q.PerPage {
		runs = runs[:q.PerPage]
	}

	return runs, nil
}
