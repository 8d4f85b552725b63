// Package plan contains the pure business logic for reading plan state.
// This is part of the Functional Core - no I/O, only pure functions.
// The plan itself is owned by the external plan store; warden never
// mutates step status.
package plan

import "strings"

// StepStatus represents the possible states of a plan step.
type StepStatus string

const (
	StatusPending    StepStatus = "pending"
	StatusInProgress StepStatus = "in_progress"
	StatusCompleted  StepStatus = "completed"
	StatusBlocked    StepStatus = "blocked"
)

// Step is one unit of work in the external plan.
type Step struct {
	Description string
	Status      StepStatus
}

// HasObjective reports whether the objective contains any non-whitespace text.
func HasObjective(objective string) bool {
	return strings.TrimSpace(objective) != ""
}

// AllCompleted reports whether every step is completed.
// An empty plan is not considered completed.
func AllCompleted(steps []Step) bool {
	if len(steps) == 0 {
		return false
	}
	for _, s := range steps {
		if s.Status != StatusCompleted {
			return false
		}
	}
	return true
}

// AnyActive reports whether any step is pending or in progress.
func AnyActive(steps []Step) bool {
	for _, s := range steps {
		if s.Status == StatusPending || s.Status == StatusInProgress {
			return true
		}
	}
	return false
}
