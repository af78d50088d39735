package target

import (
	"github.com/tbenoit3/workflow-vigil/internal/eval"
)

// Target represents a parsed workflow target definition
type Target struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       Spec     `yaml:"spec"`
}

// Metadata contains target metadata
type Metadata struct {
	ID          string `yaml:"id"`
	Team        string `yaml:"team,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Spec contains the target specification
type Spec struct {
	Owner              string  `yaml:"owner"`
	Repo               string  `yaml:"repo"`
	Workflow           string  `yaml:"workflow"`
	Branch             string  `yaml:"branch,omitempty"`
	PerPage            int     `yaml:"perPage,omitempty"`
	LookbackDays       float64 `yaml:"lookbackDays,omitempty"`
	CheckOutsideWindow *bool   `yaml:"checkOutsideWindow,omitempty"`
	EvaluationInterval string  `yaml:"evaluationInterval"`
}

// Query returns the run query for this target, with defaults applied.
func (t *Target) Query() eval.RunQuery {
	q := eval.RunQuery{
		Owner:    t.Spec.Owner,
		Repo:     t.Spec.Repo,
		Workflow: t.Spec.Workflow,
		Branch:   t.Spec.Branch,
		PerPage:  t.Spec.PerPage,
	}
	if q.Branch == "" {
		q.Branch = "main"
	}
	if q.PerPage <= 0 {
		q.PerPage = 50
	}
	return q
}

// Policy returns the evaluation policy for this target, with defaults
// applied: a 7-day lookback and the outside-window fallback enabled.
func (t *Target) Policy() eval.Policy {
	p := eval.DefaultPolicy()
	if t.Spec.LookbackDays > 0 {
		p.LookbackDays = t.Spec.LookbackDays
	}
	if t.Spec.CheckOutsideWindow != nil {
		p.CheckOutsideWindow = *t.Spec.CheckOutsideWindow
	}
	return p
}

// TargetWithFile pairs a target with its source file path
type TargetWithFile struct {
	Target *Target
	File   string
}

// ValidationError represents a validation error for a specific file
type ValidationError struct {
	File    string
	Path    string
	Message string
}

// Error implements the error interface
func (e ValidationError) Error() string {
	if e.Path != "" {
		return e.File + ": " + e.Path + ": " + e.Message
	}
	return e.File + ": " + e.Message
}
