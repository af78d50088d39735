package github

import (
	"time"

	"github.com/tbenoit3/workflow-vigil/internal/run"
)

// workflowRunsResponse is the GitHub Actions workflow-runs list payload
type workflowRunsResponse struct {
	TotalCount   int           `json:"total_count"`
	WorkflowRuns []workflowRun `json:"workflow_runs"`
}

// workflowRun is a single run row. Conclusion is null while a run is in
// progress; run_started_at is null when GitHub never recorded a start.
type workflowRun struct {
	ID           int64      `json:"id"`
	Status       string     `json:"status"`
	Conclusion   *string    `json:"conclusion"`
	RunStartedAt *time.Time `json:"run_started_at"`
	HTMLURL      string     `json:"html_url"`
}

func (wr workflowRun) toRun() run.Run {
	r := run.Run{
		ID:        wr.ID,
		StartedAt: wr.RunStartedAt,
		URL:       wr.HTMLURL,
	}
	if wr.Conclusion != nil {
		r.Conclusion = run.Conclusion(*wr.Conclusion)
	}
	return r
}
