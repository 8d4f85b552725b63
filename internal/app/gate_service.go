package app

import (
	"context"
	"fmt"

	"github.com/example/warden/internal/core/dispatch"
	"github.com/example/warden/internal/core/gate"
	"github.com/example/warden/internal/core/plan"
	"github.com/example/warden/internal/ctxutil"
	"github.com/example/warden/internal/ports/primary"
	"github.com/example/warden/internal/ports/secondary"
)

// GateServiceImpl implements the GateService interface.
type GateServiceImpl struct {
	store   secondary.StateStore
	plans   secondary.PlanProvider
	advisor secondary.Advisor
	log     secondary.ActionLog
}

// NewGateService creates a GateService with injected dependencies.
func NewGateService(store secondary.StateStore, plans secondary.PlanProvider, advisor secondary.Advisor, log secondary.ActionLog) *GateServiceImpl {
	return &GateServiceImpl{store: store, plans: plans, advisor: advisor, log: log}
}

// CheckAction resolves a host action to approve, ask, or block. Checks
// run in order; block and ask short-circuit. The gate itself never
// errors the host: infrastructure failures return an error and the
// caller fails open.
func (s *GateServiceImpl) CheckAction(ctx context.Context, req primary.ActionCheck) (gate.Verdict, error) {
	ds, err := s.store.GetDispatchState(ctx)
	if err != nil {
		return gate.Verdict{}, fmt.Errorf("failed to load dispatch state: %w", err)
	}

	// 1. A stuck loop blocks everything until the user intervenes.
	if ds.State == string(dispatch.StateStuck) {
		return gate.Block("dispatch is STUCK, run `warden dispatch status` and intervene"), nil
	}

	// 2. A pending junction demands resolution before new actions.
	jrec, err := s.store.GetJunction(ctx)
	if err != nil {
		return gate.Verdict{}, fmt.Errorf("failed to load junction: %w", err)
	}
	if jrec != nil {
		return gate.Ask(fmt.Sprintf("pending %s junction: %s", jrec.Type, jrec.Reason)), nil
	}

	// 3. Quality checks pass only with a matching override.
	if req.Check != "" {
		v, err := s.checkQualityGate(ctx, ds, req.Check)
		if err != nil {
			return gate.Verdict{}, err
		}
		if v.Decision != gate.DecisionApprove {
			return v, nil
		}
	}

	// 4. Advisors contribute verdicts. Advisor failure is logged via the
	// warning drain and otherwise ignored.
	verdicts := s.advisoryVerdicts(ctx, req)
	return gate.Merge(verdicts), nil
}

// checkQualityGate consults the override store for the current session
// and objective.
func (s *GateServiceImpl) checkQualityGate(ctx context.Context, ds *secondary.DispatchStateRecord, check string) (gate.Verdict, error) {
	gs, err := s.store.GetGearState(ctx)
	if err != nil {
		return gate.Verdict{}, fmt.Errorf("failed to load gear state: %w", err)
	}
	override := overrideFromRecord(gs)
	if override == nil {
		return gate.Ask(fmt.Sprintf("quality check %q requires approval", check)), nil
	}

	doc, err := s.plans.Load(ctx)
	if err != nil {
		// Without a readable objective the override cannot be verified;
		// fall back to asking rather than honoring it blind.
		return gate.Ask(fmt.Sprintf("quality check %q requires approval (plan unreadable)", check)), nil
	}
	if override.Honors(ds.SessionID, plan.ObjectiveHash(doc.Objective), check) {
		return gate.Approve(fmt.Sprintf("quality check %q covered by override: %s", check, override.Reason)), nil
	}
	return gate.Ask(fmt.Sprintf("quality check %q not covered by the stored override", check)), nil
}

// advisoryVerdicts collects verdicts from the configured advisor.
func (s *GateServiceImpl) advisoryVerdicts(ctx context.Context, req primary.ActionCheck) []gate.Verdict {
	advisories, err := s.advisor.Review(ctx, secondary.ActionRequest{Tool: req.Tool, Detail: req.Detail})
	if err != nil {
		// Advisors are optional subsystems; their failure never blocks.
		return nil
	}
	verdicts := make([]gate.Verdict, 0, len(advisories))
	for _, a := range advisories {
		switch gate.ParseDecision(a.Action) {
		case gate.DecisionBlock:
			verdicts = append(verdicts, gate.Block(a.Message))
		case gate.DecisionAsk:
			verdicts = append(verdicts, gate.Ask(a.Message))
		default:
			verdicts = append(verdicts, gate.Approve(a.Message))
		}
	}
	return verdicts
}

// RecordAction appends a post-action record to the session log.
func (s *GateServiceImpl) RecordAction(ctx context.Context, tool, result string) error {
	ds, err := s.store.GetDispatchState(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dispatch state: %w", err)
	}
	sessionID := ds.SessionID
	if sessionID == "" {
		sessionID = ctxutil.SessionFromContext(ctx)
	}
	return s.log.Append(ctx, &secondary.ActionLogRecord{
		SessionID: sessionID,
		Tool:      tool,
		Result:    result,
	})
}

// Ensure GateServiceImpl implements the interface.
var _ primary.GateService = (*GateServiceImpl)(nil)
