// Package gate contains the pure decision logic for the per-action gate.
// Every checked action resolves to approve, ask, or block plus a reason.
package gate

// Decision is the three-valued gate outcome returned for a checked action.
type Decision string

const (
	// DecisionApprove lets the action proceed. Terminal default.
	DecisionApprove Decision = "approve"
	// DecisionAsk requires human approval before the action proceeds.
	DecisionAsk Decision = "ask"
	// DecisionBlock refuses the action outright.
	DecisionBlock Decision = "block"
)

// Verdict pairs a decision with its human-readable reason.
type Verdict struct {
	Decision Decision
	Reason   string
}

// Approve returns the terminal default verdict.
func Approve(reason string) Verdict {
	return Verdict{Decision: DecisionApprove, Reason: reason}
}

// Ask returns a verdict requiring human approval.
func Ask(reason string) Verdict {
	return Verdict{Decision: DecisionAsk, Reason: reason}
}

// Block returns a refusing verdict.
func Block(reason string) Verdict {
	return Verdict{Decision: DecisionBlock, Reason: reason}
}

// Merge folds an ordered list of verdicts into one. block and ask
// short-circuit any remaining checks; approve is the terminal default
// once all checks pass.
func Merge(verdicts []Verdict) Verdict {
	for _, v := range verdicts {
		if v.Decision == DecisionBlock || v.Decision == DecisionAsk {
			return v
		}
	}
	for _, v := range verdicts {
		if v.Reason != "" {
			return v
		}
	}
	return Approve("all checks passed")
}

// ParseDecision maps an advisor-contributed action string to a decision.
// Unknown actions degrade to approve rather than failing the gate.
func ParseDecision(action string) Decision {
	switch action {
	case "block":
		return DecisionBlock
	case "ask":
		return DecisionAsk
	default:
		return DecisionApprove
	}
}
