// Package dispatch contains the pure business logic for the autonomous
// execution loop: its states, counters, safety limits, and history.
// This is part of the Functional Core - no I/O, only pure functions.
package dispatch

import "fmt"

// State represents the dispatch loop's current condition.
type State string

const (
	// StateIdle means dispatch is not looping (disabled or safety-stopped).
	StateIdle State = "IDLE"
	// StateRunning means dispatch is actively iterating.
	StateRunning State = "RUNNING"
	// StateJunction means dispatch is waiting on a pending human approval.
	StateJunction State = "JUNCTION"
	// StateStuck means dispatch halted after a no-progress streak.
	StateStuck State = "STUCK"
	// StateComplete means every plan step finished.
	StateComplete State = "COMPLETE"
)

// GuardResult represents the outcome of a state-transition guard.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// transitions is the allowed state graph. An explicit stop reaches IDLE
// from anywhere and is handled separately in CanTransition.
var transitions = map[State]map[State]bool{
	StateIdle: {
		StateRunning: true, // start
	},
	StateRunning: {
		StateJunction: true, // junction required
		StateStuck:    true, // no-progress streak hit the threshold
		StateIdle:     true, // iteration cap: auto-disabled safety stop
		StateComplete: true, // all steps completed
	},
	StateJunction: {
		StateRunning: true, // resume after approval/skip/dismiss
	},
	StateStuck:    {},
	StateComplete: {},
}

// Valid reports whether s is a known dispatch state.
func Valid(s State) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition evaluates whether the dispatch state machine may move
// from one state to another. Anything outside the table is rejected with
// state left unchanged; the rejection reason is surfaced, never silently
// applied. An explicit stop (to IDLE) is allowed from any state.
func CanTransition(from, to State) GuardResult {
	if !Valid(from) {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("unknown dispatch state %q", from)}
	}
	if !Valid(to) {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("unknown dispatch state %q", to)}
	}
	if to == StateIdle {
		// Explicit stop is always legal.
		return GuardResult{Allowed: true}
	}
	if from == to {
		return GuardResult{Allowed: true}
	}
	if !transitions[from][to] {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("transition %s -> %s not in the allowed table", from, to),
		}
	}
	return GuardResult{Allowed: true}
}

// Looping reports whether dispatch actively continues from this state.
// IDLE and COMPLETE are the only states from which it does not.
func Looping(s State) bool {
	return s == StateRunning || s == StateJunction || s == StateStuck
}
