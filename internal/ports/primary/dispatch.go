// Package primary defines the driving ports: the service interfaces the
// CLI and host hooks call into.
package primary

import (
	"context"

	"github.com/example/warden/internal/core/junction"
	"github.com/example/warden/internal/core/plan"
)

// JunctionView is the pending junction as shown to the user.
type JunctionView struct {
	Type      string
	Reason    string
	Source    string
	FromGear  string
	ToGear    string
	CreatedAt string
}

// HistoryView is one recorded action as shown to the user.
type HistoryView struct {
	Action     string
	Result     string
	RecordedAt string
}

// ActionView is one host action log entry as shown to the user.
type ActionView struct {
	Tool      string
	Result    string
	CreatedAt string
}

// DispatchReport is the complete status block emitted after every
// dispatch command. Every code path ends with one of these; the only
// variable is whether Warnings has entries.
type DispatchReport struct {
	Enabled       bool
	State         string
	Iteration     int
	MaxIterations int
	StuckCount    int
	MaxRetries    int
	SessionID     string

	Gear           string
	GearIterations int
	LastTransition string

	Objective string
	Steps     []plan.Step

	Junction *JunctionView
	Stats    map[string]int
	History  []HistoryView

	// RecentActions are the latest host actions, newest first.
	RecentActions []ActionView

	// Warnings are prepended to the report (lock-busy, corrupt state
	// recovered, advisor failures). They never replace the status block.
	Warnings []string
}

// StepReport is a DispatchReport plus the loop step's outcome.
type StepReport struct {
	DispatchReport

	Command      string
	Reason       string
	JunctionType string
	StepIndex    int

	// AutoApproved is set when a matching dismissal window auto-approved
	// a junction that would otherwise have surfaced.
	AutoApproved bool
}

// ResolveRequest carries the arguments of approve/skip/dismiss.
type ResolveRequest struct {
	Action junction.ClearAction
	// Checks is the optional check specifier for quality_gate approvals.
	Checks []string
	// SuppressMinutes is the dismissal window; 0 means the default.
	SuppressMinutes int
}

// DispatchService is the top-level supervisory loop.
type DispatchService interface {
	Status(ctx context.Context) (*DispatchReport, error)
	Enable(ctx context.Context) (*DispatchReport, error)
	Disable(ctx context.Context) (*DispatchReport, error)
	Stop(ctx context.Context) (*DispatchReport, error)
	Step(ctx context.Context) (*StepReport, error)
	Resolve(ctx context.Context, req ResolveRequest) (*DispatchReport, error)
}
