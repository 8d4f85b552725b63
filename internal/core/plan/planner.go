// Package plan contains the pure business logic for reading plan state.
// This file contains the next-action planner.
package plan

import (
	"fmt"

	"github.com/example/warden/internal/core/junction"
)

// Command is the closed set of next-action commands the planner can recommend.
type Command string

const (
	// CommandPlan asks the human to author or repair the plan.
	CommandPlan Command = "plan"
	// CommandAdapt asks for intervention on blocked work.
	CommandAdapt Command = "adapt"
	// CommandStep continues or starts a single plan step.
	CommandStep Command = "step"
	// CommandComplete reports that all steps are done.
	CommandComplete Command = "complete"
)

// Recommendation is the planner's output: what to do next, why, and
// whether human approval is required first.
type Recommendation struct {
	Command      Command
	Reason       string
	JunctionType junction.Type // junction.TypeNone when no approval is needed
	StepIndex    int           // Target step for CommandStep, -1 otherwise
}

// Same reports whether two recommendations propose the same action.
// Used for anti-repetition after a skip and for stuck detection.
func (r Recommendation) Same(other Recommendation) bool {
	return r.Command == other.Command && r.JunctionType == other.JunctionType
}

// DetermineNextAction maps plan-step statuses to a recommended command.
// Pure and idempotent. Checks run in strict priority order, first match
// wins; blocked work always wins over starting new work. The ordering of
// checks 2-5 is a deliberate policy and must not change.
func DetermineNextAction(objective string, steps []Step) Recommendation {
	// 1. Nothing to work from: ask the human to plan.
	if !HasObjective(objective) || len(steps) == 0 {
		return Recommendation{
			Command:      CommandPlan,
			Reason:       "no objective or empty plan - human input needed to plan",
			JunctionType: junction.TypeAmbiguous,
			StepIndex:    -1,
		}
	}

	// 2. Blocked work wins over everything else.
	for i, s := range steps {
		if s.Status == StatusBlocked {
			return Recommendation{
				Command:      CommandAdapt,
				Reason:       fmt.Sprintf("step %d blocked: %s", i+1, s.Description),
				JunctionType: junction.TypeAmbiguous,
				StepIndex:    i,
			}
		}
	}

	// 3. Continue work already in progress.
	for i, s := range steps {
		if s.Status == StatusInProgress {
			return Recommendation{
				Command:      CommandStep,
				Reason:       fmt.Sprintf("continue step %d: %s", i+1, s.Description),
				JunctionType: junction.TypeNone,
				StepIndex:    i,
			}
		}
	}

	// 4. Everything done.
	if AllCompleted(steps) {
		return Recommendation{
			Command:      CommandComplete,
			Reason:       "all plan steps completed",
			JunctionType: junction.TypeNone,
			StepIndex:    -1,
		}
	}

	// 5. Start the earliest pending step in plan order.
	for i, s := range steps {
		if s.Status == StatusPending {
			return Recommendation{
				Command:      CommandStep,
				Reason:       fmt.Sprintf("start step %d: %s", i+1, s.Description),
				JunctionType: junction.TypeNone,
				StepIndex:    i,
			}
		}
	}

	// Unreachable with valid statuses, but degrade to asking for a plan
	// rather than inventing work.
	return Recommendation{
		Command:      CommandPlan,
		Reason:       "plan has no actionable steps",
		JunctionType: junction.TypeAmbiguous,
		StepIndex:    -1,
	}
}
