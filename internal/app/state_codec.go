package app

import (
	"encoding/json"
	"time"

	"github.com/example/warden/internal/core/gear"
	"github.com/example/warden/internal/core/plan"
	"github.com/example/warden/internal/ports/secondary"
)

// stepsFromDoc converts plan-store records to core plan steps.
func stepsFromDoc(doc *secondary.PlanDocument) []plan.Step {
	steps := make([]plan.Step, 0, len(doc.Steps))
	for _, s := range doc.Steps {
		steps = append(steps, plan.Step{
			Description: s.Description,
			Status:      plan.StepStatus(s.Status),
		})
	}
	return steps
}

// overrideFromRecord decodes the inline override columns. Returns nil
// when no override is stored or the row is unreadable (ignored, not
// deleted).
func overrideFromRecord(rec *secondary.GearStateRecord) *gear.QualityGateOverride {
	if rec.OverrideMode == "" {
		return nil
	}
	var checks []string
	if err := json.Unmarshal([]byte(rec.OverrideChecks), &checks); err != nil {
		return nil
	}
	approvedAt, _ := time.Parse(time.RFC3339, rec.OverrideApprovedAt)
	return &gear.QualityGateOverride{
		Mode:           gear.OverrideMode(rec.OverrideMode),
		ApprovedAt:     approvedAt,
		SessionID:      rec.OverrideSessionID,
		ObjectiveHash:  rec.OverrideObjectiveHash,
		ApprovedChecks: checks,
		Reason:         rec.OverrideReason,
	}
}

// appendScoutFinding adds a subsystem-local finding to the opaque scout
// blob. An unreadable blob starts over rather than failing the step.
func appendScoutFinding(rec *secondary.DispatchStateRecord, subsystem, finding string) {
	findings := make(map[string][]string)
	if rec.Scout != "" {
		if err := json.Unmarshal([]byte(rec.Scout), &findings); err != nil {
			findings = make(map[string][]string)
		}
	}
	findings[subsystem] = append(findings[subsystem], finding)
	if data, err := json.Marshal(findings); err == nil {
		rec.Scout = string(data)
	}
}

// applyOverrideToRecord encodes an override into the gear-state columns.
func applyOverrideToRecord(rec *secondary.GearStateRecord, o gear.QualityGateOverride) {
	checks, _ := json.Marshal(o.ApprovedChecks)
	if o.ApprovedChecks == nil {
		checks = []byte("[]")
	}
	rec.OverrideMode = string(o.Mode)
	rec.OverrideApprovedAt = o.ApprovedAt.UTC().Format(time.RFC3339)
	rec.OverrideSessionID = o.SessionID
	rec.OverrideObjectiveHash = o.ObjectiveHash
	rec.OverrideChecks = string(checks)
	rec.OverrideReason = o.Reason
}
