package secondary

import "context"

// ActionRequest describes a host action being checked by the gate.
type ActionRequest struct {
	Tool   string // Host tool or command about to run
	Detail string // Free-form description of the action
}

// Advisory is one (action, message) pair contributed by an advisor.
// Action is "block", "ask", or "approve"; anything else degrades to
// approve.
type Advisory struct {
	Action  string
	Message string
}

// Advisor is the capability interface for optional rule/pattern
// subsystems. Implementations are selected once at wiring time; the
// default is a no-op. Advisor failures must never prevent the core from
// producing a status report - callers log and ignore them.
type Advisor interface {
	Name() string
	Review(ctx context.Context, req ActionRequest) ([]Advisory, error)
}
