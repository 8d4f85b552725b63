package plan

import (
	"testing"

	"github.com/example/warden/internal/core/junction"
)

func steps(statuses ...StepStatus) []Step {
	out := make([]Step, len(statuses))
	for i, st := range statuses {
		out[i] = Step{Description: "step", Status: st}
	}
	return out
}

func TestDetermineNextAction(t *testing.T) {
	tests := []struct {
		name         string
		objective    string
		steps        []Step
		wantCommand  Command
		wantJunction junction.Type
		wantStep     int
	}{
		{
			name:         "no objective asks for a plan",
			objective:    "",
			steps:        steps(StatusPending),
			wantCommand:  CommandPlan,
			wantJunction: junction.TypeAmbiguous,
			wantStep:     -1,
		},
		{
			name:         "whitespace objective asks for a plan",
			objective:    "   ",
			steps:        steps(StatusPending),
			wantCommand:  CommandPlan,
			wantJunction: junction.TypeAmbiguous,
			wantStep:     -1,
		},
		{
			name:         "objective with no steps asks for a plan",
			objective:    "ship the feature",
			steps:        nil,
			wantCommand:  CommandPlan,
			wantJunction: junction.TypeAmbiguous,
			wantStep:     -1,
		},
		{
			name:         "blocked step wins over pending and in_progress",
			objective:    "ship the feature",
			steps:        steps(StatusCompleted, StatusInProgress, StatusBlocked, StatusPending),
			wantCommand:  CommandAdapt,
			wantJunction: junction.TypeAmbiguous,
			wantStep:     2,
		},
		{
			name:         "in_progress continues before starting pending",
			objective:    "ship the feature",
			steps:        steps(StatusPending, StatusInProgress),
			wantCommand:  CommandStep,
			wantJunction: junction.TypeNone,
			wantStep:     1,
		},
		{
			name:         "all completed reports complete",
			objective:    "ship the feature",
			steps:        steps(StatusCompleted, StatusCompleted),
			wantCommand:  CommandComplete,
			wantJunction: junction.TypeNone,
			wantStep:     -1,
		},
		{
			name:         "earliest pending starts in plan order",
			objective:    "ship the feature",
			steps:        steps(StatusCompleted, StatusPending, StatusPending),
			wantCommand:  CommandStep,
			wantJunction: junction.TypeNone,
			wantStep:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := DetermineNextAction(tt.objective, tt.steps)
			if rec.Command != tt.wantCommand {
				t.Errorf("Command = %q, want %q", rec.Command, tt.wantCommand)
			}
			if rec.JunctionType != tt.wantJunction {
				t.Errorf("JunctionType = %q, want %q", rec.JunctionType, tt.wantJunction)
			}
			if rec.StepIndex != tt.wantStep {
				t.Errorf("StepIndex = %d, want %d", rec.StepIndex, tt.wantStep)
			}
			if rec.Reason == "" {
				t.Error("Reason is empty, want non-empty")
			}
		})
	}
}

func TestDetermineNextAction_Idempotent(t *testing.T) {
	s := steps(StatusCompleted, StatusInProgress, StatusPending)
	first := DetermineNextAction("objective", s)
	second := DetermineNextAction("objective", s)
	if first != second {
		t.Errorf("repeated call differs: %+v vs %+v", first, second)
	}
}

func TestRecommendationSame(t *testing.T) {
	a := Recommendation{Command: CommandStep, JunctionType: junction.TypeNone, Reason: "start step 1", StepIndex: 0}
	b := Recommendation{Command: CommandStep, JunctionType: junction.TypeNone, Reason: "start step 2", StepIndex: 1}
	if !a.Same(b) {
		t.Error("Same = false for matching command and junction type, want true")
	}
	c := Recommendation{Command: CommandPlan, JunctionType: junction.TypeAmbiguous}
	if a.Same(c) {
		t.Error("Same = true for differing command, want false")
	}
}

func TestAllCompleted_EmptyPlan(t *testing.T) {
	if AllCompleted(nil) {
		t.Error("AllCompleted(nil) = true, want false")
	}
}
