package api

import (
	"time"
)

// VerdictRequest represents a verdict request
type VerdictRequest struct {
	TargetID   string `json:"targetID"`
	ForceFresh bool   `json:"forceFresh,omitempty"`
}

// VerdictResponse represents a verdict response
type VerdictResponse struct {
	TargetID           string    `json:"targetID"`
	HasPreviousFailure bool      `json:"hasPreviousFailure"`
	Reason             string    `json:"reason"`
	TotalRuns          int       `json:"totalRuns"`
	WithinWindow       int       `json:"withinWindow"`
	UsedFallback       bool      `json:"usedFallback"`
	Timestamp          time.Time `json:"timestamp"`
	TTL                int       `json:"ttl"` // seconds
}

// TargetListResponse represents a list of workflow targets
type TargetListResponse struct {
	Targets []TargetSummary `json:"targets"`
}

// TargetSummary contains summary information about a target
type TargetSummary struct {
	ID       string `json:"id"`
	Owner    string `json:"owner"`
	Repo     string `json:"repo"`
	Workflow string `json:"workflow"`
	Branch   string `json:"branch"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents readiness check response
type ReadyResponse struct {
	Ready         bool     `json:"ready"`
	TargetsLoaded int      `json:"targetsLoaded"`
	Reasons       []string `json:"reasons,omitempty"`
}

// AuditRecordResponse represents a single audit entry
type AuditRecordResponse struct {
	ID                 int64     `json:"id"`
	TargetID           string    `json:"targetID"`
	Owner              string    `json:"owner"`
	Repo               string    `json:"repo"`
	Workflow           string    `json:"workflow"`
	HasPreviousFailure bool      `json:"hasPreviousFailure"`
	Reason             string    `json:"reason"`
	TotalRuns          int       `json:"totalRuns"`
	WithinWindow       int       `json:"withinWindow"`
	UsedFallback       bool      `json:"usedFallback"`
	Timestamp          time.Time `json:"timestamp"`
	CreatedAt          time.Time `json:"createdAt"`
}

// AuditResponse represents an audit query response
type AuditResponse struct {
	Records []AuditRecordResponse `json:"records"`
	Total   int                   `json:"total"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
