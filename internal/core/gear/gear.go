// Package gear contains the pure business logic for warden's operating
// modes. This is part of the Functional Core - no I/O, only pure functions.
package gear

import (
	"time"

	"github.com/example/warden/internal/core/plan"
)

// Gear represents warden's current operating mode.
type Gear string

const (
	// GearActive means there is an objective with open plan work.
	GearActive Gear = "ACTIVE"
	// GearPatrol means the objective is done and warden scans for findings.
	GearPatrol Gear = "PATROL"
	// GearDream means there is no objective; warden may propose improvements.
	GearDream Gear = "DREAM"
)

// Per-gear limits. PATROL and DREAM are bounded so unattended operation
// cannot flood output or burn the session on speculative work.
const (
	// DreamProposalCap is the maximum improvement proposals per session.
	DreamProposalCap = 5
	// DreamMinIdle is the minimum idle time before DREAM may act.
	DreamMinIdle = 10 * time.Minute
	// PatrolFindingCap is the maximum findings surfaced per patrol pass.
	PatrolFindingCap = 3
	// PatrolLessonSampleCap caps per-lesson violation samples in findings.
	PatrolLessonSampleCap = 2
)

// DetectCurrentGear classifies the current operating mode from the
// objective and plan. Pure, deterministic, idempotent:
//   - ACTIVE when the objective is set and any step is pending or in progress
//   - PATROL when the objective is set and every step is completed
//   - DREAM when the objective is empty or only whitespace
func DetectCurrentGear(objective string, steps []plan.Step) Gear {
	if !plan.HasObjective(objective) {
		return GearDream
	}
	if plan.AnyActive(steps) {
		return GearActive
	}
	if plan.AllCompleted(steps) {
		return GearPatrol
	}
	// Objective set but plan is empty or entirely blocked: still ACTIVE,
	// the planner will demand human input for it.
	return GearActive
}

// Behavior describes what a gear is allowed to do and under which limits.
type Behavior struct {
	Gear        Gear
	Actions     []string
	ProposalCap int           // DREAM only
	FindingCap  int           // PATROL only
	SampleCap   int           // PATROL only: evidence citations per finding
	MinIdle     time.Duration // DREAM only
}

var behaviors = map[Gear]Behavior{
	GearActive: {
		Gear:    GearActive,
		Actions: []string{"execute current step"},
	},
	GearPatrol: {
		Gear:       GearPatrol,
		Actions:    []string{"scan for findings"},
		FindingCap: PatrolFindingCap,
		SampleCap:  PatrolLessonSampleCap,
	},
	GearDream: {
		Gear:        GearDream,
		Actions:     []string{"propose improvement"},
		ProposalCap: DreamProposalCap,
		MinIdle:     DreamMinIdle,
	},
}

// BehaviorFor returns the behavior descriptor for a gear.
func BehaviorFor(g Gear) Behavior {
	return behaviors[g]
}

// Valid reports whether g is one of the three known gears.
func Valid(g Gear) bool {
	_, ok := behaviors[g]
	return ok
}
