package gear

import "fmt"

// GuardResult represents the outcome of a transition guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// transitions is the complete directed graph among the three gears.
// All six edges are legal; anything else (unknown gear, self-transition)
// is rejected with state left unchanged.
var transitions = map[Gear]map[Gear]bool{
	GearActive: {
		GearPatrol: true,
		GearDream:  true,
	},
	GearPatrol: {
		GearActive: true,
		GearDream:  true,
	},
	GearDream: {
		GearActive: true,
		GearPatrol: true,
	},
}

// ValidTransitions returns the allowed destination gears from g,
// in a fixed order for stable output.
func ValidTransitions(g Gear) []Gear {
	allowed := transitions[g]
	var out []Gear
	for _, candidate := range []Gear{GearActive, GearPatrol, GearDream} {
		if allowed[candidate] {
			out = append(out, candidate)
		}
	}
	return out
}

// CanTransition evaluates whether a gear switch is allowed.
// Rejections surface a reason and must never be silently applied.
func CanTransition(from, to Gear) GuardResult {
	if !Valid(from) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown gear %q", from),
		}
	}
	if !Valid(to) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown gear %q", to),
		}
	}
	if from == to {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("already in gear %s", from),
		}
	}
	if !transitions[from][to] {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("transition %s -> %s not in the allowed table", from, to),
		}
	}
	return GuardResult{Allowed: true}
}

// TransitionID returns the identifier recorded as last_transition.
func TransitionID(from, to Gear) string {
	return fmt.Sprintf("%s->%s", from, to)
}
