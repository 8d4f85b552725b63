package secondary

// Nudger wakes the supervised agent's terminal pane. Used when dispatch
// lands in STUCK so the agent (or its operator) notices without polling.
type Nudger interface {
	// Nudge sends message to the pane. Implementations should be safe to
	// call when no such session exists (return an error, never panic).
	Nudge(session, pane, message string) error
}
