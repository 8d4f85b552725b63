package dispatch

// CheckIterationLimit reports whether the safety cap on unattended loop
// steps has been reached. The boundary is inclusive: iteration == max is
// limited. A true result auto-disables dispatch; it is a deliberate,
// non-error safety stop, not a failure.
func CheckIterationLimit(iteration, maxIterations int) bool {
	return iteration >= maxIterations
}

// CheckStuck reports whether the no-progress streak has reached the
// retry cap. The boundary is inclusive: stuckCount == maxRetries is
// stuck. A true result transitions RUNNING -> STUCK and halts automatic
// continuation until the user intervenes.
func CheckStuck(stuckCount, maxRetries int) bool {
	return stuckCount >= maxRetries
}

// HistoryLimit is the number of recorded actions retained per project.
// Older entries are evicted first.
const HistoryLimit = 10

// Stats counter keys used for end-of-session reporting. Losing a single
// increment under a rare write race is acceptable for these.
const (
	StatAutoExecuted = "auto_executed"
	StatJunctionsHit = "junctions_hit"
	// StatApproved counts explicit user approvals; StatAutoApproved counts
	// junctions cleared by an active dismissal window without surfacing.
	StatApproved     = "approved"
	StatAutoApproved = "auto_approved"
	StatSkipped      = "skipped"
	StatDismissed    = "dismissed"
	StatStuckEvents  = "stuck_events"
)
