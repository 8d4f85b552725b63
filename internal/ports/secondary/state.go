// Package secondary defines the driven ports: interfaces the application
// core uses to reach persistence and other outbound collaborators.
package secondary

import (
	"context"
	"errors"
)

// ErrLockBusy is returned when the exclusive bounded-wait lock around the
// durable state store could not be acquired. It is a distinct, retryable
// condition: callers must surface it to the user for a retry, never treat
// it as "no junction exists" or "state unchanged". Conflating them risks
// silently dropping an approval or dismissal.
var ErrLockBusy = errors.New("state store is locked by another warden invocation")

// DispatchStateRecord is the persisted dispatch-state record for a project.
// Timestamps are RFC3339 strings.
type DispatchStateRecord struct {
	Enabled    bool
	State      string
	Iteration  int
	StuckCount int
	SessionID  string

	// Progress tracking for stuck detection and skip anti-repetition.
	LastCommand      string
	LastJunctionType string
	LastPlanDigest   string
	SkipCommand      string
	SkipJunctionType string

	// Scout holds subsystem-local findings, opaque to the core (JSON).
	Scout string

	UpdatedAt string
}

// GearStateRecord is the persisted gear-state record for a project.
// The quality-gate override is stored inline; absence is an empty mode.
type GearStateRecord struct {
	CurrentGear         string
	EnteredAt           string
	Iterations          int
	LastTransition      string
	PatrolFindingsCount int
	DreamProposalsCount int

	OverrideMode          string
	OverrideApprovedAt    string
	OverrideSessionID     string
	OverrideObjectiveHash string
	OverrideChecks        string // JSON array, ordered
	OverrideReason        string

	UpdatedAt string
}

// JunctionRecord is the persisted single junction slot.
type JunctionRecord struct {
	Type      string
	Reason    string
	Source    string
	FromGear  string
	ToGear    string
	CreatedAt string
}

// SuppressionRecord is a persisted dismissal window keyed by (type, reason).
type SuppressionRecord struct {
	Type   string
	Reason string
	Until  string
}

// HistoryRecord is one entry of the bounded dispatch history.
type HistoryRecord struct {
	Action     string
	Result     string
	RecordedAt string
}

// StateTx is the set of operations available inside one exclusive
// read-modify-write cycle. Everything performed through a StateTx commits
// or fails as a unit, which is what keeps the junction slot and the
// override free of double-approval and lost-approval races.
type StateTx interface {
	DispatchState() (*DispatchStateRecord, error)
	SaveDispatchState(rec *DispatchStateRecord) error

	GearState() (*GearStateRecord, error)
	SaveGearState(rec *GearStateRecord) error

	Junction() (*JunctionRecord, error)
	SetJunction(rec *JunctionRecord) error
	ClearJunction() error

	Suppression(junctionType, reason string) (*SuppressionRecord, error)
	SetSuppression(rec *SuppressionRecord) error

	AppendHistory(rec *HistoryRecord) error
	IncrementStat(key string) error

	// Reset restores both state records to defaults and clears the
	// junction slot, suppressions, history, and stats. Used when the
	// user stops autonomous execution.
	Reset() error
}

// StateStore persists all shared mutable supervisory state for a project.
//
// Update runs fn inside an exclusive bounded-wait lock; when the lock
// cannot be acquired it returns ErrLockBusy. The Get* methods are
// lock-free snapshot reads: they may be stale but never block, and both
// records tolerate absence (defaults) and corruption (defaults plus a
// warning, never a crash).
type StateStore interface {
	Update(ctx context.Context, fn func(tx StateTx) error) error

	GetDispatchState(ctx context.Context) (*DispatchStateRecord, error)
	GetGearState(ctx context.Context) (*GearStateRecord, error)
	GetJunction(ctx context.Context) (*JunctionRecord, error)
	ListHistory(ctx context.Context) ([]*HistoryRecord, error)
	GetStats(ctx context.Context) (map[string]int, error)

	// Warnings drains non-fatal load problems (e.g. corrupt rows replaced
	// by defaults) collected since the last call.
	Warnings() []string
}
