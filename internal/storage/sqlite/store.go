package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tbenoit3/workflow-vigil/internal/eval"
	"github.com/tbenoit3/workflow-vigil/internal/storage"
	"github.com/tbenoit3/workflow-vigil/internal/target"
)

// Store implements AuditStorage using SQLite
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite storage with the given database path
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// StoreTargetDefinition persists a workflow target definition
func (s *Store) StoreTargetDefinition(tgt *target.Target) error {
	specJSON, err := json.Marshal(tgt.Spec)
	if err != nil {
		return fmt.Errorf("failed to marshal spec: %w", err)
	}

	q := tgt.Query()

	query := `
		INSERT INTO target_definitions (id, owner, repo, workflow, branch, evaluation_interval, spec_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner = excluded.owner,
			repo = excluded.repo,
			workflow = excluded.workflow,
			branch = excluded.branch,
			evaluation_interval = excluded.evaluation_interval,
			spec_json = excluded.spec_json,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err = s.db.Exec(query,
		tgt.Metadata.ID,
		q.Owner,
		q.Repo,
		q.Workflow,
		q.Branch,
		tgt.Spec.EvaluationInterval,
		string(specJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to store target definition: %w", err)
	}

	return nil
}

// StoreEvaluation persists an evaluation result
func (s *Store) StoreEvaluation(targetID string, result *eval.Result) error {
	owner, repo, workflow, err := s.targetCoordinates(targetID)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO evaluations (
			target_id, owner, repo, workflow, has_previous_failure, reason,
			total_runs, within_window, used_fallback, timestamp
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		targetID,
		owner,
		repo,
		workflow,
		result.HasPreviousFailure,
		result.Reason,
		result.TotalRuns,
		result.WithinWindow,
		result.UsedFallback,
		result.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to store evaluation: %w", err)
	}

	return nil
}

// UpdateLatestState updates the latest state for a target
func (s *Store) UpdateLatestState(targetID string, result *eval.Result) error {
	owner, repo, workflow, err := s.targetCoordinates(targetID)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO latest_state (
			target_id, owner, repo, workflow, has_previous_failure, reason,
			total_runs, within_window, used_fallback, timestamp
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(target_id) DO UPDATE SET
			owner = excluded.owner,
			repo = excluded.repo,
			workflow = excluded.workflow,
			has_previous_failure = excluded.has_previous_failure,
			reason = excluded.reason,
			total_runs = excluded.total_runs,
			within_window = excluded.within_window,
			used_fallback = excluded.used_fallback,
			timestamp = excluded.timestamp,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err = s.db.Exec(query,
		targetID,
		owner,
		repo,
		workflow,
		result.HasPreviousFailure,
		result.Reason,
		result.TotalRuns,
		result.WithinWindow,
		result.UsedFallback,
		result.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to update latest state: %w", err)
	}

	return nil
}

// targetCoordinates looks up the stored coordinates for a target
func (s *Store) targetCoordinates(targetID string) (owner, repo, workflow string, err error) {
	err = s.db.QueryRow("SELECT owner, repo, workflow FROM target_definitions WHERE id = ?", targetID).
		Scan(&owner, &repo, &workflow)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to get target metadata: %w", err)
	}
	return owner, repo, workflow, nil
}

// QueryAudit retrieves audit records with optional filtering
func (s *Store) QueryAudit(filter storage.AuditFilter) ([]storage.AuditRecord, error) {
	query := `
		SELECT id, target_id, owner, repo, workflow, has_previous_failure, reason,
		       total_runs, within_window, used_fallback, timestamp, created_at
		FROM evaluations
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.TargetID != "" {
		query += " AND target_id = ?"
		args = append(args, filter.TargetID)
	}

	if filter.Owner != "" {
		query += " AND owner = ?"
		args = append(args, filter.Owner)
	}

	if filter.Repo != "" {
		query += " AND repo = ?"
		args = append(args, filter.Repo)
	}

	if filter.Verdict != "" {
		query += " AND has_previous_failure = ?"
		args = append(args, filter.Verdict == "true")
	}

	if filter.StartTime != nil {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartTime)
	}

	if filter.EndTime != nil {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndTime)
	}

	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	} else {
		query += " LIMIT 100" // Default limit
	}

	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	var records []storage.AuditRecord
	for rows.Next() {
		var record storage.AuditRecord

		err := rows.Scan(
			&record.ID,
			&record.TargetID,
			&record.Owner,
			&record.Repo,
			&record.Workflow,
			&record.HasPreviousFailure,
			&record.Reason,
			&record.TotalRuns,
			&record.WithinWindow,
			&record.UsedFallback,
			&record.Timestamp,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// GetLatestState retrieves the latest state for a target
func (s *Store) GetLatestState(targetID string) (*storage.LatestState, error) {
	query := `
		SELECT target_id, owner, repo, workflow, has_previous_failure, reason,
		       total_runs, within_window, used_fallback, timestamp, updated_at
		FROM latest_state
		WHERE target_id = ?
	`

	var state storage.LatestState

	err := s.db.QueryRow(query, targetID).Scan(
		&state.TargetID,
		&state.Owner,
		&state.Repo,
		&state.Workflow,
		&state.HasPreviousFailure,
		&state.Reason,
		&state.TotalRuns,
		&state.WithinWindow,
		&state.UsedFallback,
		&state.Timestamp,
		&state.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest state: %w", err)
	}

	return &state, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
