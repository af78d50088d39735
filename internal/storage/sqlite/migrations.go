package sqlite

// Schema defines the SQLite database schema
const Schema = `
-- Workflow target definitions table
CREATE TABLE IF NOT EXISTS target_definitions (
	id TEXT PRIMARY KEY,
	owner TEXT NOT NULL,
	repo TEXT NOT NULL,
	workflow TEXT NOT NULL,
	branch TEXT NOT NULL,
	evaluation_interval TEXT NOT NULL,
	spec_json TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_target_owner_repo ON target_definitions(owner, repo);

-- Evaluations audit table
CREATE TABLE IF NOT EXISTS evaluations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	target_id TEXT NOT NULL,
	owner TEXT NOT NULL,
	repo TEXT NOT NULL,
	workflow TEXT NOT NULL,
	has_previous_failure BOOLEAN NOT NULL DEFAULT 0,
	reason TEXT NOT NULL,
	total_runs INTEGER NOT NULL,
	within_window INTEGER NOT NULL,
	used_fallback BOOLEAN NOT NULL DEFAULT 0,
	timestamp TIMESTAMP NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (target_id) REFERENCES target_definitions(id)
);

CREATE INDEX IF NOT EXISTS idx_evaluations_target_id ON evaluations(target_id);
CREATE INDEX IF NOT EXISTS idx_evaluations_owner_repo ON evaluations(owner, repo);
CREATE INDEX IF NOT EXISTS idx_evaluations_verdict ON evaluations(has_previous_failure);
CREATE INDEX IF NOT EXISTS idx_evaluations_timestamp ON evaluations(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_evaluations_created_at ON evaluations(created_at DESC);

-- Latest state table (one row per target)
CREATE TABLE IF NOT EXISTS latest_state (
	target_id TEXT PRIMARY KEY,
	owner TEXT NOT NULL,
	repo TEXT NOT NULL,
	workflow TEXT NOT NULL,
	has_previous_failure BOOLEAN NOT NULL DEFAULT 0,
	reason TEXT NOT NULL,
	total_runs INTEGER NOT NULL,
	within_window INTEGER NOT NULL,
	used_fallback BOOLEAN NOT NULL DEFAULT 0,
	timestamp TIMESTAMP NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (target_id) REFERENCES target_definitions(id)
);

CREATE INDEX IF NOT EXISTS idx_latest_state_owner_repo ON latest_state(owner, repo);
`
