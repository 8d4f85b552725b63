package primary

import (
	"context"

	"github.com/example/warden/internal/core/gate"
)

// ActionCheck describes a host action subject to the pre-action gate.
type ActionCheck struct {
	Tool   string
	Detail string
	Check  string // Quality-check identifier, when the action is one
}

// GateService answers the per-action gate decision and records
// post-action results for progress detection.
type GateService interface {
	// CheckAction returns approve, ask, or block with a reason. The
	// decision is conveyed in the printed report, never via exit code.
	CheckAction(ctx context.Context, req ActionCheck) (gate.Verdict, error)

	// RecordAction appends a post-action record to the session log.
	RecordAction(ctx context.Context, tool, result string) error
}
