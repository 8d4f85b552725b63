package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/warden/internal/core/dispatch"
	"github.com/example/warden/internal/core/gear"
	"github.com/example/warden/internal/core/junction"
	"github.com/example/warden/internal/core/plan"
	"github.com/example/warden/internal/ctxutil"
	"github.com/example/warden/internal/ports/primary"
	"github.com/example/warden/internal/ports/secondary"
)

// DispatchServiceImpl implements the DispatchService interface.
type DispatchServiceImpl struct {
	store         secondary.StateStore
	plans         secondary.PlanProvider
	actions       secondary.ActionLog
	maxIterations int
	maxRetries    int
	now           func() time.Time
}

// NewDispatchService creates a DispatchService with injected dependencies.
func NewDispatchService(store secondary.StateStore, plans secondary.PlanProvider, actions secondary.ActionLog, maxIterations, maxRetries int) *DispatchServiceImpl {
	return NewDispatchServiceWithClock(store, plans, actions, maxIterations, maxRetries, time.Now)
}

// NewDispatchServiceWithClock creates a DispatchService with a custom
// clock. Used by tests exercising dismissal windows.
func NewDispatchServiceWithClock(store secondary.StateStore, plans secondary.PlanProvider, actions secondary.ActionLog, maxIterations, maxRetries int, now func() time.Time) *DispatchServiceImpl {
	return &DispatchServiceImpl{
		store:         store,
		plans:         plans,
		actions:       actions,
		maxIterations: maxIterations,
		maxRetries:    maxRetries,
		now:           now,
	}
}

// loadPlan reads the external plan, degrading to an empty document with a
// warning: a broken plan store must never prevent a status report.
func (s *DispatchServiceImpl) loadPlan(ctx context.Context) (*secondary.PlanDocument, []string) {
	doc, err := s.plans.Load(ctx)
	if err != nil {
		return &secondary.PlanDocument{}, []string{fmt.Sprintf("plan store unavailable: %v", err)}
	}
	return doc, nil
}

// Status reports current state from lock-free snapshot reads.
func (s *DispatchServiceImpl) Status(ctx context.Context) (*primary.DispatchReport, error) {
	doc, warnings := s.loadPlan(ctx)
	ds, err := s.store.GetDispatchState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dispatch state: %w", err)
	}
	gs, err := s.store.GetGearState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load gear state: %w", err)
	}
	jrec, err := s.store.GetJunction(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load junction: %w", err)
	}
	return s.buildReport(ctx, ds, gs, jrec, doc, warnings), nil
}

// Enable turns autonomous dispatch on (IDLE -> RUNNING). A session ID is
// taken from the host context or minted when the host supplies none.
func (s *DispatchServiceImpl) Enable(ctx context.Context) (*primary.DispatchReport, error) {
	err := s.store.Update(ctx, func(tx secondary.StateTx) error {
		ds, err := tx.DispatchState()
		if err != nil {
			return err
		}
		ds.Enabled = true
		// STUCK and COMPLETE have no direct edge to RUNNING; an explicit
		// re-enable passes through the always-legal stop edge to IDLE first.
		ds.State = string(dispatch.StateRunning)
		if ds.SessionID == "" {
			if sid := ctxutil.SessionFromContext(ctx); sid != "" {
				ds.SessionID = sid
			} else {
				ds.SessionID = uuid.NewString()
			}
		}
		if err := tx.SaveDispatchState(ds); err != nil {
			return err
		}
		return tx.AppendHistory(&secondary.HistoryRecord{Action: "dispatch " + dispatch.CmdOn.String(), Result: "enabled"})
	})
	if err != nil {
		return nil, err
	}
	return s.Status(ctx)
}

// Disable turns dispatch off, keeping counters and history.
func (s *DispatchServiceImpl) Disable(ctx context.Context) (*primary.DispatchReport, error) {
	err := s.store.Update(ctx, func(tx secondary.StateTx) error {
		ds, err := tx.DispatchState()
		if err != nil {
			return err
		}
		ds.Enabled = false
		ds.State = string(dispatch.StateIdle)
		if err := tx.SaveDispatchState(ds); err != nil {
			return err
		}
		return tx.AppendHistory(&secondary.HistoryRecord{Action: "dispatch " + dispatch.CmdOff.String(), Result: "disabled"})
	})
	if err != nil {
		return nil, err
	}
	return s.Status(ctx)
}

// Stop disables dispatch and resets all supervisory state to defaults.
func (s *DispatchServiceImpl) Stop(ctx context.Context) (*primary.DispatchReport, error) {
	err := s.store.Update(ctx, func(tx secondary.StateTx) error {
		return tx.Reset()
	})
	if err != nil {
		return nil, err
	}
	return s.Status(ctx)
}

// Step runs one supervisory loop step.
func (s *DispatchServiceImpl) Step(ctx context.Context) (*primary.StepReport, error) {
	doc, _ := s.loadPlan(ctx)
	steps := stepsFromDoc(doc)
	digest := plan.Fingerprint(steps)
	now := s.now()

	// The iteration number is made durable before the loop body so a
	// crash mid-step never reuses it.
	var enabled bool
	err := s.store.Update(ctx, func(tx secondary.StateTx) error {
		ds, err := tx.DispatchState()
		if err != nil {
			return err
		}
		enabled = ds.Enabled
		if !ds.Enabled {
			return nil
		}
		ds.Iteration++
		return tx.SaveDispatchState(ds)
	})
	if err != nil {
		return nil, err
	}

	report := &primary.StepReport{StepIndex: -1}
	if !enabled {
		status, err := s.Status(ctx)
		if err != nil {
			return nil, err
		}
		report.DispatchReport = *status
		report.Reason = "dispatch is disabled"
		return report, nil
	}

	err = s.store.Update(ctx, func(tx secondary.StateTx) error {
		ds, err := tx.DispatchState()
		if err != nil {
			return err
		}
		gs, err := tx.GearState()
		if err != nil {
			return err
		}

		outcome, err := s.stepBody(tx, ds, gs, doc.Objective, steps, digest, now)
		if err != nil {
			return err
		}
		report.Command = outcome.command
		report.Reason = outcome.reason
		report.JunctionType = outcome.junctionType
		report.StepIndex = outcome.stepIndex
		report.AutoApproved = outcome.autoApproved
		return nil
	})
	if err != nil {
		return nil, err
	}

	status, err := s.Status(ctx)
	if err != nil {
		return nil, err
	}
	reason, jt, cmd, idx, auto := report.Reason, report.JunctionType, report.Command, report.StepIndex, report.AutoApproved
	report.DispatchReport = *status
	report.Reason, report.JunctionType, report.Command, report.StepIndex, report.AutoApproved = reason, jt, cmd, idx, auto
	return report, nil
}

// stepOutcome is what one loop step decided.
type stepOutcome struct {
	command      string
	reason       string
	junctionType string
	stepIndex    int
	autoApproved bool
}

// stepBody is the loop body proper, executed inside the exclusive
// transaction after the iteration number was committed.
func (s *DispatchServiceImpl) stepBody(tx secondary.StateTx, ds *secondary.DispatchStateRecord, gs *secondary.GearStateRecord, objective string, steps []plan.Step, digest string, now time.Time) (stepOutcome, error) {
	out := stepOutcome{stepIndex: -1}

	// Safety limit: inclusive boundary, deliberate non-error stop.
	if dispatch.CheckIterationLimit(ds.Iteration, s.maxIterations) {
		ds.Enabled = false
		if err := setDispatchState(ds, dispatch.StateIdle); err != nil {
			return out, err
		}
		if err := tx.SaveDispatchState(ds); err != nil {
			return out, err
		}
		if err := tx.AppendHistory(&secondary.HistoryRecord{
			Action: "safety limit",
			Result: fmt.Sprintf("iteration %d reached cap %d, dispatch disabled", ds.Iteration, s.maxIterations),
		}); err != nil {
			return out, err
		}
		out.reason = fmt.Sprintf("safety limit: %d iterations reached, dispatch disabled", ds.Iteration)
		return out, nil
	}

	// STUCK and COMPLETE do not loop; the user must intervene.
	if ds.State == string(dispatch.StateStuck) || ds.State == string(dispatch.StateComplete) {
		out.reason = fmt.Sprintf("dispatch is %s, waiting for user", ds.State)
		return out, tx.SaveDispatchState(ds)
	}

	// A pending junction parks the loop until it is resolved.
	pending, err := tx.Junction()
	if err != nil {
		return out, err
	}
	if pending != nil {
		if err := setDispatchState(ds, dispatch.StateJunction); err != nil {
			return out, err
		}
		out.reason = fmt.Sprintf("waiting on pending %s junction: %s", pending.Type, pending.Reason)
		out.junctionType = pending.Type
		return out, tx.SaveDispatchState(ds)
	}

	rec := plan.DetermineNextAction(objective, steps)

	// Anti-repetition: a skipped junction must not be re-proposed by the
	// very next step. One-shot markers, cleared after use.
	skipCmd, skipType := ds.SkipCommand, ds.SkipJunctionType
	ds.SkipCommand = ""
	ds.SkipJunctionType = ""
	if skipCmd != "" && skipCmd == string(rec.Command) && skipType == string(rec.JunctionType) {
		rec = plan.Recommendation{
			Command:      plan.CommandPlan,
			Reason:       fmt.Sprintf("previous recommendation (%s) was skipped, requesting replanning", skipCmd),
			JunctionType: junction.TypeNone,
			StepIndex:    -1,
		}
	}

	// Gear consistency: a mismatch between the detected and recorded
	// mode is itself a junction unless a dismissal window covers it.
	// A just-skipped gear change is held back for this one step; the
	// mismatch resurfaces on the following step if it persists.
	detected := gear.DetectCurrentGear(objective, steps)
	current := gear.Gear(gs.CurrentGear)
	if detected != current && skipType != string(junction.TypeModeTransition) {
		j := junction.Junction{
			Type:      junction.TypeModeTransition,
			Reason:    fmt.Sprintf("gear change %s -> %s", current, detected),
			Source:    "gear-classifier",
			From:      string(current),
			To:        string(detected),
			CreatedAt: now,
		}
		covered, err := suppressionCovers(tx, j, now)
		if err != nil {
			return out, err
		}
		if covered {
			if guard := gear.CanTransition(current, detected); guard.Allowed {
				applyGearTransition(gs, current, detected, now)
			}
			out.autoApproved = true
			if err := tx.IncrementStat(dispatch.StatAutoApproved); err != nil {
				return out, err
			}
		} else {
			return s.surfaceJunction(tx, ds, j, rec, out)
		}
	}

	// A recommendation that demands approval surfaces as a junction,
	// again subject to dismissal windows.
	if rec.JunctionType != junction.TypeNone {
		j := junction.Junction{
			Type:      rec.JunctionType,
			Reason:    rec.Reason,
			Source:    "planner",
			CreatedAt: now,
		}
		covered, err := suppressionCovers(tx, j, now)
		if err != nil {
			return out, err
		}
		if !covered {
			return s.surfaceJunction(tx, ds, j, rec, out)
		}
		out.autoApproved = true
		if err := tx.IncrementStat(dispatch.StatAutoApproved); err != nil {
			return out, err
		}
	}

	// Executing path: stuck tracking compares this recommendation and
	// the plan fingerprint against the previous step.
	same := ds.LastCommand == string(rec.Command) &&
		ds.LastJunctionType == string(rec.JunctionType) &&
		ds.LastPlanDigest == digest &&
		ds.LastCommand != ""
	if same {
		ds.StuckCount++
	} else {
		ds.StuckCount = 0
	}
	ds.LastCommand = string(rec.Command)
	ds.LastJunctionType = string(rec.JunctionType)
	ds.LastPlanDigest = digest

	if dispatch.CheckStuck(ds.StuckCount, s.maxRetries) {
		if err := setDispatchState(ds, dispatch.StateStuck); err != nil {
			return out, err
		}
		if err := tx.SaveDispatchState(ds); err != nil {
			return out, err
		}
		if err := tx.IncrementStat(dispatch.StatStuckEvents); err != nil {
			return out, err
		}
		if err := tx.AppendHistory(&secondary.HistoryRecord{
			Action: "stuck",
			Result: fmt.Sprintf("no progress for %d iterations", ds.StuckCount),
		}); err != nil {
			return out, err
		}
		out.command = string(rec.Command)
		out.reason = fmt.Sprintf("stuck: same recommendation for %d iterations with no plan change", ds.StuckCount)
		return out, nil
	}

	next := dispatch.StateRunning
	if rec.Command == plan.CommandComplete {
		next = dispatch.StateComplete
	}
	if err := setDispatchState(ds, next); err != nil {
		return out, err
	}

	// Per-gear side work, bounded by the gear's limits. Findings land in
	// the opaque scout blob for later review.
	gearNote := applyGearSideWork(gs, steps, now)
	if gearNote != "" {
		appendScoutFinding(ds, gs.CurrentGear, gearNote)
	}
	gs.Iterations++
	if err := tx.SaveGearState(gs); err != nil {
		return out, err
	}
	if err := tx.SaveDispatchState(ds); err != nil {
		return out, err
	}
	if err := tx.IncrementStat(dispatch.StatAutoExecuted); err != nil {
		return out, err
	}
	result := rec.Reason
	if gearNote != "" {
		result = result + "; " + gearNote
	}
	if err := tx.AppendHistory(&secondary.HistoryRecord{
		Action: string(rec.Command),
		Result: result,
	}); err != nil {
		return out, err
	}

	out.command = string(rec.Command)
	out.reason = result
	out.junctionType = string(rec.JunctionType)
	out.stepIndex = rec.StepIndex
	return out, nil
}

// surfaceJunction fills the slot, parks the loop, and resets the stuck
// counter: hitting a junction is expected behavior, not failure.
func (s *DispatchServiceImpl) surfaceJunction(tx secondary.StateTx, ds *secondary.DispatchStateRecord, j junction.Junction, rec plan.Recommendation, out stepOutcome) (stepOutcome, error) {
	created, err := setPendingJunction(tx, j)
	if err != nil {
		return out, err
	}
	if err := setDispatchState(ds, dispatch.StateJunction); err != nil {
		return out, err
	}
	ds.StuckCount = 0
	ds.LastCommand = string(rec.Command)
	ds.LastJunctionType = string(rec.JunctionType)
	if err := tx.SaveDispatchState(ds); err != nil {
		return out, err
	}
	if created {
		if err := tx.IncrementStat(dispatch.StatJunctionsHit); err != nil {
			return out, err
		}
		if err := tx.AppendHistory(&secondary.HistoryRecord{
			Action: fmt.Sprintf("junction %s", j.Type),
			Result: j.Reason,
		}); err != nil {
			return out, err
		}
	}
	out.command = string(rec.Command)
	out.reason = j.Reason
	out.junctionType = string(j.Type)
	out.stepIndex = rec.StepIndex
	return out, nil
}

// setDispatchState moves the loop through the allowed state graph. The
// loop only requests legal edges, so a rejection means the stored state
// is corrupt; it is surfaced rather than overwritten.
func setDispatchState(ds *secondary.DispatchStateRecord, to dispatch.State) error {
	guard := dispatch.CanTransition(dispatch.State(ds.State), to)
	if err := guard.Error(); err != nil {
		return fmt.Errorf("dispatch state change rejected: %w", err)
	}
	ds.State = string(to)
	return nil
}

// applyGearTransition mutates the gear record for an allowed switch.
func applyGearTransition(gs *secondary.GearStateRecord, from, to gear.Gear, now time.Time) {
	gs.CurrentGear = string(to)
	gs.EnteredAt = now.UTC().Format(time.RFC3339)
	gs.LastTransition = gear.TransitionID(from, to)
	gs.Iterations = 0
}

// applyGearSideWork advances the bounded per-gear counters and returns a
// note for the report, or "" when the gear did nothing extra.
func applyGearSideWork(gs *secondary.GearStateRecord, steps []plan.Step, now time.Time) string {
	b := gear.BehaviorFor(gear.Gear(gs.CurrentGear))
	switch b.Gear {
	case gear.GearPatrol:
		if gs.PatrolFindingsCount >= b.FindingCap {
			return ""
		}
		gs.PatrolFindingsCount++
		note := fmt.Sprintf("patrol finding %d/%d", gs.PatrolFindingsCount, b.FindingCap)
		if samples := sampleStepDescriptions(steps, b.SampleCap); samples != "" {
			note += ": " + samples
		}
		return note
	case gear.GearDream:
		entered, err := time.Parse(time.RFC3339, gs.EnteredAt)
		if err != nil || now.Sub(entered) < b.MinIdle {
			return ""
		}
		if gs.DreamProposalsCount >= b.ProposalCap {
			return ""
		}
		gs.DreamProposalsCount++
		return fmt.Sprintf("dream proposal %d/%d", gs.DreamProposalsCount, b.ProposalCap)
	}
	return ""
}

// sampleStepDescriptions cites at most n reviewed steps as evidence in a
// patrol finding.
func sampleStepDescriptions(steps []plan.Step, n int) string {
	if n > len(steps) {
		n = len(steps)
	}
	parts := make([]string, 0, n)
	for _, s := range steps[:n] {
		parts = append(parts, s.Description)
	}
	return strings.Join(parts, ", ")
}

// Ensure DispatchServiceImpl implements the interface.
var _ primary.DispatchService = (*DispatchServiceImpl)(nil)
