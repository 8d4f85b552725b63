package db

// SchemaSQL is the complete schema for fresh warden state databases.
//
// This is the SINGLE SOURCE OF TRUTH for the schema. All tests use it via
// GetSchemaSQL(), so repository code referencing a missing column fails
// immediately with "no such column" instead of drifting silently.
const SchemaSQL = `
-- Dispatch state (single row per project database)
CREATE TABLE IF NOT EXISTS dispatch_state (
	id INTEGER PRIMARY KEY CHECK(id = 1),
	enabled INTEGER NOT NULL DEFAULT 0,
	state TEXT NOT NULL CHECK(state IN ('IDLE', 'RUNNING', 'JUNCTION', 'STUCK', 'COMPLETE')) DEFAULT 'IDLE',
	iteration INTEGER NOT NULL DEFAULT 0,
	stuck_count INTEGER NOT NULL DEFAULT 0,
	session_id TEXT NOT NULL DEFAULT '',
	last_command TEXT NOT NULL DEFAULT '',
	last_junction_type TEXT NOT NULL DEFAULT '',
	last_plan_digest TEXT NOT NULL DEFAULT '',
	skip_command TEXT NOT NULL DEFAULT '',
	skip_junction_type TEXT NOT NULL DEFAULT '',
	scout TEXT NOT NULL DEFAULT '{}',
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Gear state (single row, quality-gate override inline)
CREATE TABLE IF NOT EXISTS gear_state (
	id INTEGER PRIMARY KEY CHECK(id = 1),
	current_gear TEXT NOT NULL CHECK(current_gear IN ('ACTIVE', 'PATROL', 'DREAM')) DEFAULT 'DREAM',
	entered_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	iterations INTEGER NOT NULL DEFAULT 0,
	last_transition TEXT NOT NULL DEFAULT '',
	patrol_findings_count INTEGER NOT NULL DEFAULT 0,
	dream_proposals_count INTEGER NOT NULL DEFAULT 0,
	override_mode TEXT NOT NULL DEFAULT '' CHECK(override_mode IN ('', 'full', 'check_specific')),
	override_approved_at TEXT NOT NULL DEFAULT '',
	override_session_id TEXT NOT NULL DEFAULT '',
	override_objective_hash TEXT NOT NULL DEFAULT '',
	override_checks TEXT NOT NULL DEFAULT '[]',
	override_reason TEXT NOT NULL DEFAULT '',
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Junction slot (at most one pending approval per project)
CREATE TABLE IF NOT EXISTS junction_slot (
	id INTEGER PRIMARY KEY CHECK(id = 1),
	type TEXT NOT NULL,
	reason TEXT NOT NULL,
	source TEXT NOT NULL DEFAULT '',
	from_gear TEXT NOT NULL DEFAULT '',
	to_gear TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Dismissal windows keyed by (type, reason)
CREATE TABLE IF NOT EXISTS junction_suppressions (
	type TEXT NOT NULL,
	reason TEXT NOT NULL,
	until DATETIME NOT NULL,
	PRIMARY KEY (type, reason)
);

-- Bounded action history (most recent 10 kept, oldest evicted)
CREATE TABLE IF NOT EXISTS dispatch_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	action TEXT NOT NULL,
	result TEXT NOT NULL DEFAULT '',
	recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Named counters for end-of-session reporting
CREATE TABLE IF NOT EXISTS dispatch_stats (
	key TEXT PRIMARY KEY,
	value INTEGER NOT NULL DEFAULT 0
);

-- Post-action records from the host (read by progress detection)
CREATE TABLE IF NOT EXISTS action_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL DEFAULT '',
	tool TEXT NOT NULL,
	result TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// GetSchemaSQL returns the authoritative schema. Tests must use this
// instead of hardcoding CREATE TABLE statements.
func GetSchemaSQL() string {
	return SchemaSQL
}
