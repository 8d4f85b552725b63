package sqlite

import (
	"database/sql"
	"time"

	"github.com/example/warden/internal/core/dispatch"
	"github.com/example/warden/internal/ports/secondary"
)

// stateTx implements secondary.StateTx on one open transaction.
type stateTx struct {
	tx    *sql.Tx
	store *StateStore
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// DispatchState reads the record for modification. Absence and
// corruption fall back to defaults; the following save rewrites the row.
func (t *stateTx) DispatchState() (*secondary.DispatchStateRecord, error) {
	row := t.tx.QueryRow(`SELECT ` + dispatchStateColumns + ` FROM dispatch_state WHERE id = 1`)
	rec, err := scanDispatchState(row)
	if err == sql.ErrNoRows {
		return defaultDispatchState(), nil
	}
	if err != nil {
		t.store.warnf("dispatch state unreadable (%v), using defaults", err)
		return defaultDispatchState(), nil
	}
	return rec, nil
}

// SaveDispatchState writes the single dispatch-state row.
func (t *stateTx) SaveDispatchState(rec *secondary.DispatchStateRecord) error {
	rec.UpdatedAt = nowRFC3339()
	_, err := t.tx.Exec(`INSERT OR REPLACE INTO dispatch_state
		(id, enabled, state, iteration, stuck_count, session_id,
		 last_command, last_junction_type, last_plan_digest, skip_command, skip_junction_type,
		 scout, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Enabled,
		rec.State,
		rec.Iteration,
		rec.StuckCount,
		rec.SessionID,
		rec.LastCommand,
		rec.LastJunctionType,
		rec.LastPlanDigest,
		rec.SkipCommand,
		rec.SkipJunctionType,
		rec.Scout,
		rec.UpdatedAt,
	)
	return err
}

// GearState reads the record for modification with the same fallback rules.
func (t *stateTx) GearState() (*secondary.GearStateRecord, error) {
	row := t.tx.QueryRow(`SELECT ` + gearStateColumns + ` FROM gear_state WHERE id = 1`)
	rec, err := scanGearState(row)
	if err == sql.ErrNoRows {
		return defaultGearState(), nil
	}
	if err != nil {
		t.store.warnf("gear state unreadable (%v), using defaults", err)
		return defaultGearState(), nil
	}
	return rec, nil
}

// SaveGearState writes the single gear-state row.
func (t *stateTx) SaveGearState(rec *secondary.GearStateRecord) error {
	rec.UpdatedAt = nowRFC3339()
	_, err := t.tx.Exec(`INSERT OR REPLACE INTO gear_state
		(id, current_gear, entered_at, iterations, last_transition,
		 patrol_findings_count, dream_proposals_count, override_mode, override_approved_at,
		 override_session_id, override_objective_hash, override_checks, override_reason, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.CurrentGear,
		rec.EnteredAt,
		rec.Iterations,
		rec.LastTransition,
		rec.PatrolFindingsCount,
		rec.DreamProposalsCount,
		rec.OverrideMode,
		rec.OverrideApprovedAt,
		rec.OverrideSessionID,
		rec.OverrideObjectiveHash,
		rec.OverrideChecks,
		rec.OverrideReason,
		rec.UpdatedAt,
	)
	return err
}

// Junction reads the slot inside the transaction. Nil means empty.
func (t *stateTx) Junction() (*secondary.JunctionRecord, error) {
	row := t.tx.QueryRow(
		`SELECT type, reason, source, from_gear, to_gear, created_at FROM junction_slot WHERE id = 1`)
	return scanJunction(row)
}

// SetJunction writes the single slot, replacing any occupant.
func (t *stateTx) SetJunction(rec *secondary.JunctionRecord) error {
	if rec.CreatedAt == "" {
		rec.CreatedAt = nowRFC3339()
	}
	_, err := t.tx.Exec(`INSERT OR REPLACE INTO junction_slot
		(id, type, reason, source, from_gear, to_gear, created_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)`,
		rec.Type, rec.Reason, rec.Source, rec.FromGear, rec.ToGear, rec.CreatedAt)
	return err
}

// ClearJunction empties the slot. Clearing an already-empty slot is a
// no-op, not an error.
func (t *stateTx) ClearJunction() error {
	_, err := t.tx.Exec(`DELETE FROM junction_slot WHERE id = 1`)
	return err
}

// Suppression reads the dismissal window for (type, reason), nil if none.
func (t *stateTx) Suppression(junctionType, reason string) (*secondary.SuppressionRecord, error) {
	row := t.tx.QueryRow(
		`SELECT type, reason, until FROM junction_suppressions WHERE type = ? AND reason = ?`,
		junctionType, reason)

	var rec secondary.SuppressionRecord
	err := row.Scan(&rec.Type, &rec.Reason, &rec.Until)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SetSuppression records (or extends) a dismissal window.
func (t *stateTx) SetSuppression(rec *secondary.SuppressionRecord) error {
	_, err := t.tx.Exec(`INSERT OR REPLACE INTO junction_suppressions (type, reason, until)
		VALUES (?, ?, ?)`,
		rec.Type, rec.Reason, rec.Until)
	return err
}

// AppendHistory appends a record and evicts everything older than the
// most recent dispatch.HistoryLimit entries.
func (t *stateTx) AppendHistory(rec *secondary.HistoryRecord) error {
	if rec.RecordedAt == "" {
		rec.RecordedAt = nowRFC3339()
	}
	if _, err := t.tx.Exec(
		`INSERT INTO dispatch_history (action, result, recorded_at) VALUES (?, ?, ?)`,
		rec.Action, rec.Result, rec.RecordedAt); err != nil {
		return err
	}
	_, err := t.tx.Exec(`DELETE FROM dispatch_history WHERE id NOT IN
		(SELECT id FROM dispatch_history ORDER BY id DESC LIMIT ?)`, dispatch.HistoryLimit)
	return err
}

// Reset restores defaults: state rows deleted (reads fall back to
// defaults), slot/suppressions/history/stats cleared.
func (t *stateTx) Reset() error {
	for _, stmt := range []string{
		`DELETE FROM dispatch_state`,
		`DELETE FROM gear_state`,
		`DELETE FROM junction_slot`,
		`DELETE FROM junction_suppressions`,
		`DELETE FROM dispatch_history`,
		`DELETE FROM dispatch_stats`,
	} {
		if _, err := t.tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// IncrementStat bumps a named counter.
func (t *stateTx) IncrementStat(key string) error {
	_, err := t.tx.Exec(`INSERT INTO dispatch_stats (key, value) VALUES (?, 1)
		ON CONFLICT(key) DO UPDATE SET value = value + 1`, key)
	return err
}

// Ensure stateTx implements the interface.
var _ secondary.StateTx = (*stateTx)(nil)
