// Package junction contains the pure business logic for the single-slot
// human-approval mechanism. Persistence and locking live in the adapters;
// this package only defines the value types and wall-clock rules.
package junction

import "time"

// Type classifies why human input is required.
type Type string

const (
	// TypeNone means no approval is required.
	TypeNone Type = "none"
	// TypeAmbiguous marks a decision the planner cannot make alone.
	TypeAmbiguous Type = "ambiguous"
	// TypeIrreversible marks an action that cannot be undone.
	TypeIrreversible Type = "irreversible"
	// TypeModeTransition marks a proposed gear switch.
	TypeModeTransition Type = "mode_transition"
	// TypeQualityGate marks a requested quality-check bypass.
	TypeQualityGate Type = "quality_gate"
	// TypeAdvisory marks a warning contributed by an advisor.
	TypeAdvisory Type = "advisory"
)

// Known reports whether t is a junction type this core understands.
// Unknown types are handled as generic approvals rather than crashing.
func Known(t Type) bool {
	switch t {
	case TypeAmbiguous, TypeIrreversible, TypeModeTransition, TypeQualityGate, TypeAdvisory:
		return true
	}
	return false
}

// Junction is the single pending-approval slot for a project.
// At most one exists at a time; it is a slot, not a queue.
type Junction struct {
	Type      Type
	Reason    string
	Source    string // Subsystem that demanded the approval
	From      string // Gear name, mode_transition only
	To        string // Gear name, mode_transition only
	CreatedAt time.Time
}

// ClearAction is the closed set of ways a pending junction can be resolved.
type ClearAction string

const (
	// ClearApprove accepts the junction's proposal.
	ClearApprove ClearAction = "approve"
	// ClearSkip rejects the proposal without suppressing it.
	ClearSkip ClearAction = "skip"
	// ClearDismiss rejects and suppresses matching junctions for a window.
	ClearDismiss ClearAction = "dismiss"
)

// DefaultDismissMinutes is the suppression window when dismiss gives none.
const DefaultDismissMinutes = 60

// SuppressionKey identifies which future junctions a dismissal covers.
// A dismissed junction only suppresses exact (type, reason) matches.
type SuppressionKey struct {
	Type   Type
	Reason string
}

// Suppression is a recorded dismissal window. Junctions matching Key are
// auto-approved without surfacing until Until passes, after which they
// resurface exactly as before.
type Suppression struct {
	Key   SuppressionKey
	Until time.Time
}

// Active reports whether the suppression window still covers now.
// Checked by wall-clock comparison on every read; there is no persistent
// process to host a timer between invocations.
func (s Suppression) Active(now time.Time) bool {
	return now.Before(s.Until)
}

// Covers reports whether this suppression auto-approves the given junction
// at the given time.
func (s Suppression) Covers(j Junction, now time.Time) bool {
	return s.Key.Type == j.Type && s.Key.Reason == j.Reason && s.Active(now)
}
