// Package sqlite contains SQLite implementations of the secondary ports.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/example/warden/internal/core/dispatch"
	"github.com/example/warden/internal/core/gear"
	"github.com/example/warden/internal/ports/secondary"
)

// StateStore implements secondary.StateStore on a project-local SQLite
// database. All read-modify-write cycles run inside one IMMEDIATE
// transaction with a bounded busy timeout; SQLITE_BUSY maps to
// secondary.ErrLockBusy so callers can surface a retryable condition.
type StateStore struct {
	db       *sql.DB
	warnings []string
}

// NewStateStore creates a StateStore on the given database.
func NewStateStore(db *sql.DB) *StateStore {
	return &StateStore{db: db}
}

// Update runs fn inside an exclusive transaction. The transaction either
// commits as a unit or leaves state untouched.
func (s *StateStore) Update(ctx context.Context, fn func(tx secondary.StateTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapBusy(err)
	}

	st := &stateTx{tx: tx, store: s}
	if err := fn(st); err != nil {
		tx.Rollback()
		return mapBusy(err)
	}
	if err := tx.Commit(); err != nil {
		return mapBusy(err)
	}
	return nil
}

// mapBusy converts driver busy/locked errors into the retryable sentinel.
func mapBusy(err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		if serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked {
			return fmt.Errorf("%w: %v", secondary.ErrLockBusy, err)
		}
	}
	return err
}

// Warnings drains non-fatal load problems collected since the last call.
func (s *StateStore) Warnings() []string {
	out := s.warnings
	s.warnings = nil
	return out
}

func (s *StateStore) warnf(format string, args ...any) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

// defaultDispatchState is the record applied on first run and after
// corruption recovery: dispatch starts disabled in IDLE.
func defaultDispatchState() *secondary.DispatchStateRecord {
	return &secondary.DispatchStateRecord{
		Enabled: false,
		State:   string(dispatch.StateIdle),
		Scout:   "{}",
	}
}

func defaultGearState() *secondary.GearStateRecord {
	return &secondary.GearStateRecord{
		CurrentGear:    string(gear.GearDream),
		EnteredAt:      time.Now().UTC().Format(time.RFC3339),
		OverrideChecks: "[]",
	}
}

const dispatchStateColumns = `enabled, state, iteration, stuck_count, session_id,
	last_command, last_junction_type, last_plan_digest, skip_command, skip_junction_type,
	scout, updated_at`

func scanDispatchState(row *sql.Row) (*secondary.DispatchStateRecord, error) {
	var rec secondary.DispatchStateRecord
	err := row.Scan(
		&rec.Enabled,
		&rec.State,
		&rec.Iteration,
		&rec.StuckCount,
		&rec.SessionID,
		&rec.LastCommand,
		&rec.LastJunctionType,
		&rec.LastPlanDigest,
		&rec.SkipCommand,
		&rec.SkipJunctionType,
		&rec.Scout,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

const gearStateColumns = `current_gear, entered_at, iterations, last_transition,
	patrol_findings_count, dream_proposals_count, override_mode, override_approved_at,
	override_session_id, override_objective_hash, override_checks, override_reason, updated_at`

func scanGearState(row *sql.Row) (*secondary.GearStateRecord, error) {
	var rec secondary.GearStateRecord
	err := row.Scan(
		&rec.CurrentGear,
		&rec.EnteredAt,
		&rec.Iterations,
		&rec.LastTransition,
		&rec.PatrolFindingsCount,
		&rec.DreamProposalsCount,
		&rec.OverrideMode,
		&rec.OverrideApprovedAt,
		&rec.OverrideSessionID,
		&rec.OverrideObjectiveHash,
		&rec.OverrideChecks,
		&rec.OverrideReason,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetDispatchState is a lock-free snapshot read. Absence and corruption
// both fall back to defaults; corruption adds a warning.
func (s *StateStore) GetDispatchState(ctx context.Context) (*secondary.DispatchStateRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+dispatchStateColumns+` FROM dispatch_state WHERE id = 1`)
	rec, err := scanDispatchState(row)
	if err == sql.ErrNoRows {
		return defaultDispatchState(), nil
	}
	if err != nil {
		s.warnf("dispatch state unreadable (%v), using defaults", err)
		return defaultDispatchState(), nil
	}
	return rec, nil
}

// GetGearState is a lock-free snapshot read with the same fallback rules.
func (s *StateStore) GetGearState(ctx context.Context) (*secondary.GearStateRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gearStateColumns+` FROM gear_state WHERE id = 1`)
	rec, err := scanGearState(row)
	if err == sql.ErrNoRows {
		return defaultGearState(), nil
	}
	if err != nil {
		s.warnf("gear state unreadable (%v), using defaults", err)
		return defaultGearState(), nil
	}
	return rec, nil
}

// GetJunction is a lock-free snapshot read of the single slot.
// Returns nil when no junction is pending.
func (s *StateStore) GetJunction(ctx context.Context) (*secondary.JunctionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT type, reason, source, from_gear, to_gear, created_at FROM junction_slot WHERE id = 1`)
	return scanJunction(row)
}

func scanJunction(row *sql.Row) (*secondary.JunctionRecord, error) {
	var rec secondary.JunctionRecord
	err := row.Scan(&rec.Type, &rec.Reason, &rec.Source, &rec.FromGear, &rec.ToGear, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil // Empty slot is not an error
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListHistory returns the bounded history, oldest first.
func (s *StateStore) ListHistory(ctx context.Context) ([]*secondary.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT action, result, recorded_at FROM dispatch_history ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*secondary.HistoryRecord
	for rows.Next() {
		var rec secondary.HistoryRecord
		if err := rows.Scan(&rec.Action, &rec.Result, &rec.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// GetStats returns the named counters.
func (s *StateStore) GetStats(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM dispatch_stats`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var key string
		var value int
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		stats[key] = value
	}
	return stats, rows.Err()
}

// Ensure StateStore implements the interface.
var _ secondary.StateStore = (*StateStore)(nil)
