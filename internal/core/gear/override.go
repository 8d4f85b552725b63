package gear

import "time"

// OverrideMode says how broadly a quality-gate override applies.
type OverrideMode string

const (
	// OverrideModeFull bypasses all quality checks.
	OverrideModeFull OverrideMode = "full"
	// OverrideModeCheckSpecific bypasses only the named checks.
	OverrideModeCheckSpecific OverrideMode = "check_specific"
)

// QualityGateOverride records a previously approved check bypass.
// Created only by approving a quality_gate junction. It is honorable only
// while both SessionID and ObjectiveHash match the current context; a
// mismatch means the override is ignored on read, never deleted, since
// deletion is not required for correctness and a stale row simplifies
// recovery from crashed writes.
type QualityGateOverride struct {
	Mode           OverrideMode
	ApprovedAt     time.Time
	SessionID      string
	ObjectiveHash  string
	ApprovedChecks []string // Ordered; empty when Mode is full
	Reason         string
}

// NewOverride builds the override created by approving a quality_gate
// junction. Mode derives from whether a check specifier was supplied.
func NewOverride(sessionID, objectiveHash, reason string, checks []string, now time.Time) QualityGateOverride {
	mode := OverrideModeFull
	if len(checks) > 0 {
		mode = OverrideModeCheckSpecific
	}
	return QualityGateOverride{
		Mode:           mode,
		ApprovedAt:     now,
		SessionID:      sessionID,
		ObjectiveHash:  objectiveHash,
		ApprovedChecks: checks,
		Reason:         reason,
	}
}

// Matches reports whether the override belongs to the current session and
// objective. Both must match before any check is treated as pre-approved.
func (o QualityGateOverride) Matches(sessionID, objectiveHash string) bool {
	return o.SessionID == sessionID && o.ObjectiveHash == objectiveHash
}

// Honors reports whether the named check is pre-approved in the current
// context. Full mode bypasses all checks; check_specific only the named
// ones; everything else proceeds through normal evaluation.
func (o QualityGateOverride) Honors(sessionID, objectiveHash, check string) bool {
	if !o.Matches(sessionID, objectiveHash) {
		return false
	}
	if o.Mode == OverrideModeFull {
		return true
	}
	if o.Mode != OverrideModeCheckSpecific {
		return false
	}
	for _, c := range o.ApprovedChecks {
		if c == check {
			return true
		}
	}
	return false
}
