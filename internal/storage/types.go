package storage

import (
	"time"

	"github.com/tbenoit3/workflow-vigil/internal/eval"
	"github.com/tbenoit3/workflow-vigil/internal/target"
)

// AuditStorage defines the interface for persisting evaluation results
type AuditStorage interface {
	// StoreTargetDefinition persists a workflow target definition
	StoreTargetDefinition(tgt *target.Target) error

	// StoreEvaluation persists an evaluation result
	StoreEvaluation(targetID string, result *eval.Result) error

	// UpdateLatestState updates the latest state for a target
	UpdateLatestState(targetID string, result *eval.Result) error

	// QueryAudit retrieves audit records with optional filtering
	QueryAudit(filter AuditFilter) ([]AuditRecord, error)

	// GetLatestState retrieves the latest state for a target
	GetLatestState(targetID string) (*LatestState, error)

	// Close closes the storage connection
	Close() error
}

// AuditFilter defines filtering options for audit queries
type AuditFilter struct {
	TargetID string
	Owner    string
	Repo     string
	// Verdict filters on the boolean verdict; "true" or "false", empty
	// means both.
	Verdict   string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int
}

// AuditRecord represents a single audit entry
type AuditRecord struct {
	ID                 int64
	TargetID           string
	Owner              string
	Repo               string
	Workflow           string
	HasPreviousFailure bool
	Reason             string
	TotalRuns          int
	WithinWindow       int
	UsedFallback       bool
	Timestamp          time.Time
	CreatedAt          time.Time
}

// LatestState represents the most recent evaluation state for a target
type LatestState struct {
	TargetID           string
	Owner              string
	Repo               string
	Workflow           string
	HasPreviousFailure bool
	Reason             string
	TotalRuns          int
	WithinWindow       int
	UsedFallback       bool
	Timestamp          time.Time
	UpdatedAt          time.Time
}
