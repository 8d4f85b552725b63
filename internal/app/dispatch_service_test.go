package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/example/warden/internal/core/dispatch"
	"github.com/example/warden/internal/core/junction"
	"github.com/example/warden/internal/core/plan"
	"github.com/example/warden/internal/ctxutil"
	"github.com/example/warden/internal/ports/primary"
	"github.com/example/warden/internal/ports/secondary"
)

var testClock = func() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newTestDispatchService(store *mockStateStore, doc *secondary.PlanDocument) *DispatchServiceImpl {
	return NewDispatchServiceWithClock(store, &mockPlanProvider{doc: doc}, &mockActionLog{}, 10, 3, testClock)
}

func activePlan() *secondary.PlanDocument {
	return &secondary.PlanDocument{
		Objective: "ship the feature",
		Steps: []secondary.PlanStepRecord{
			{Description: "write code", Status: "in_progress"},
			{Description: "run checks", Status: "pending"},
		},
	}
}

func seedActiveGear(store *mockStateStore) {
	store.gs = store.defaultGS()
	store.gs.CurrentGear = "ACTIVE"
}

func TestEnable_MintsSessionAndRuns(t *testing.T) {
	store := newMockStateStore()
	svc := newTestDispatchService(store, activePlan())

	report, err := svc.Enable(context.Background())
	if err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if !report.Enabled {
		t.Error("Enabled = false after enable")
	}
	if report.State != "RUNNING" {
		t.Errorf("State = %q, want RUNNING", report.State)
	}
	if report.SessionID == "" {
		t.Error("SessionID not minted")
	}
}

func TestEnable_UsesContextSession(t *testing.T) {
	store := newMockStateStore()
	svc := newTestDispatchService(store, activePlan())

	ctx := ctxutil.WithSessionID(context.Background(), "host-sess")
	report, err := svc.Enable(ctx)
	if err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if report.SessionID != "host-sess" {
		t.Errorf("SessionID = %q, want host-sess", report.SessionID)
	}
}

func TestStep_DisabledDoesNotIterate(t *testing.T) {
	store := newMockStateStore()
	svc := newTestDispatchService(store, activePlan())

	report, err := svc.Step(context.Background())
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if report.Reason != "dispatch is disabled" {
		t.Errorf("Reason = %q", report.Reason)
	}
	if report.Iteration != 0 {
		t.Errorf("Iteration = %d, want 0", report.Iteration)
	}
}

func TestStep_ExecutesRecommendation(t *testing.T) {
	store := newMockStateStore()
	seedActiveGear(store)
	svc := newTestDispatchService(store, activePlan())

	if _, err := svc.Enable(context.Background()); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	report, err := svc.Step(context.Background())
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if report.Command != "step" {
		t.Errorf("Command = %q, want step", report.Command)
	}
	if report.StepIndex != 0 {
		t.Errorf("StepIndex = %d, want 0 (in_progress continues first)", report.StepIndex)
	}
	if report.State != "RUNNING" {
		t.Errorf("State = %q, want RUNNING", report.State)
	}
	if report.Iteration != 1 {
		t.Errorf("Iteration = %d, want 1", report.Iteration)
	}
	if store.stats[dispatch.StatAutoExecuted] != 1 {
		t.Errorf("auto_executed = %d, want 1", store.stats[dispatch.StatAutoExecuted])
	}
	if store.gs.Iterations != 1 {
		t.Errorf("gear iterations = %d, want 1", store.gs.Iterations)
	}
}

func TestStep_NoObjectiveSurfacesJunction(t *testing.T) {
	store := newMockStateStore()
	svc := newTestDispatchService(store, nil)

	if _, err := svc.Enable(context.Background()); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	report, err := svc.Step(context.Background())
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if report.State != "JUNCTION" {
		t.Errorf("State = %q, want JUNCTION", report.State)
	}
	if report.JunctionType != "ambiguous" {
		t.Errorf("JunctionType = %q, want ambiguous", report.JunctionType)
	}
	if report.Junction == nil {
		t.Fatal("report has no pending junction")
	}
	if store.stats[dispatch.StatJunctionsHit] != 1 {
		t.Errorf("junctions_hit = %d, want 1", store.stats[dispatch.StatJunctionsHit])
	}

	// A second step parks on the same junction without re-counting it.
	report, err = svc.Step(context.Background())
	if err != nil {
		t.Fatalf("second Step failed: %v", err)
	}
	if report.State != "JUNCTION" {
		t.Errorf("second State = %q, want JUNCTION", report.State)
	}
	if store.stats[dispatch.StatJunctionsHit] != 1 {
		t.Errorf("junctions_hit after second step = %d, want 1", store.stats[dispatch.StatJunctionsHit])
	}
}

func TestStep_GearMismatchSurfacesModeTransition(t *testing.T) {
	store := newMockStateStore()
	// Stored gear DREAM, but the plan implies ACTIVE.
	svc := newTestDispatchService(store, activePlan())

	if _, err := svc.Enable(context.Background()); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	report, err := svc.Step(context.Background())
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if report.JunctionType != "mode_transition" {
		t.Errorf("JunctionType = %q, want mode_transition", report.JunctionType)
	}
	if store.junction == nil || store.junction.FromGear != "DREAM" || store.junction.ToGear != "ACTIVE" {
		t.Errorf("junction = %+v, want DREAM -> ACTIVE", store.junction)
	}
	if store.gs != nil && store.gs.CurrentGear != "DREAM" {
		t.Errorf("gear changed to %q before approval", store.gs.CurrentGear)
	}
}

func TestStep_SuppressedGearChangeAutoApplies(t *testing.T) {
	store := newMockStateStore()
	store.suppressions[[2]string{"mode_transition", "gear change DREAM -> ACTIVE"}] = &secondary.SuppressionRecord{
		Type:   "mode_transition",
		Reason: "gear change DREAM -> ACTIVE",
		Until:  testClock().Add(time.Hour).Format(time.RFC3339),
	}
	svc := newTestDispatchService(store, activePlan())

	if _, err := svc.Enable(context.Background()); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	report, err := svc.Step(context.Background())
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if !report.AutoApproved {
		t.Error("AutoApproved = false, want true")
	}
	if store.gs.CurrentGear != "ACTIVE" {
		t.Errorf("gear = %q, want ACTIVE after auto-applied change", store.gs.CurrentGear)
	}
	if report.Command != "step" {
		t.Errorf("Command = %q, want step (loop continues)", report.Command)
	}
	if store.stats[dispatch.StatAutoApproved] != 1 {
		t.Errorf("auto_approved = %d, want 1", store.stats[dispatch.StatAutoApproved])
	}
}

func TestStep_StuckAfterNoProgress(t *testing.T) {
	store := newMockStateStore()
	seedActiveGear(store)
	svc := NewDispatchServiceWithClock(store, &mockPlanProvider{doc: activePlan()}, &mockActionLog{}, 10, 2, testClock)

	if _, err := svc.Enable(context.Background()); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}

	var report *primary.StepReport
	var err error
	for i := 0; i < 3; i++ {
		report, err = svc.Step(context.Background())
		if err != nil {
			t.Fatalf("Step %d failed: %v", i+1, err)
		}
	}
	if report.State != "STUCK" {
		t.Errorf("State = %q after repeated identical steps, want STUCK", report.State)
	}
	if store.stats[dispatch.StatStuckEvents] != 1 {
		t.Errorf("stuck_events = %d, want 1", store.stats[dispatch.StatStuckEvents])
	}

	// Once stuck, further steps wait for the user.
	report, err = svc.Step(context.Background())
	if err != nil {
		t.Fatalf("Step after stuck failed: %v", err)
	}
	if report.State != "STUCK" {
		t.Errorf("State = %q, want STUCK to persist", report.State)
	}
}

func TestStep_ProgressResetsStuckCount(t *testing.T) {
	store := newMockStateStore()
	seedActiveGear(store)
	plans := &mockPlanProvider{doc: activePlan()}
	svc := NewDispatchServiceWithClock(store, plans, &mockActionLog{}, 10, 3, testClock)

	if _, err := svc.Enable(context.Background()); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := svc.Step(context.Background()); err != nil {
			t.Fatalf("Step failed: %v", err)
		}
	}
	if store.ds.StuckCount != 1 {
		t.Fatalf("StuckCount = %d after identical steps, want 1", store.ds.StuckCount)
	}

	// The plan progresses: first step completes.
	plans.doc = &secondary.PlanDocument{
		Objective: "ship the feature",
		Steps: []secondary.PlanStepRecord{
			{Description: "write code", Status: "completed"},
			{Description: "run checks", Status: "pending"},
		},
	}
	if _, err := svc.Step(context.Background()); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if store.ds.StuckCount != 0 {
		t.Errorf("StuckCount = %d after progress, want 0", store.ds.StuckCount)
	}
}

func TestStep_IterationLimitAutoDisables(t *testing.T) {
	store := newMockStateStore()
	seedActiveGear(store)
	svc := NewDispatchServiceWithClock(store, &mockPlanProvider{doc: activePlan()}, &mockActionLog{}, 2, 5, testClock)

	if _, err := svc.Enable(context.Background()); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if _, err := svc.Step(context.Background()); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	report, err := svc.Step(context.Background())
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if report.Enabled {
		t.Error("Enabled = true after hitting the iteration cap")
	}
	if report.State != "IDLE" {
		t.Errorf("State = %q, want IDLE after safety stop", report.State)
	}
}

func TestStep_AllCompletedReachesComplete(t *testing.T) {
	store := newMockStateStore()
	store.gs = store.defaultGS()
	store.gs.CurrentGear = "PATROL"
	doc := &secondary.PlanDocument{
		Objective: "ship the feature",
		Steps:     []secondary.PlanStepRecord{{Description: "write code", Status: "completed"}},
	}
	svc := newTestDispatchService(store, doc)

	if _, err := svc.Enable(context.Background()); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	report, err := svc.Step(context.Background())
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if report.Command != "complete" {
		t.Errorf("Command = %q, want complete", report.Command)
	}
	if report.State != "COMPLETE" {
		t.Errorf("State = %q, want COMPLETE", report.State)
	}
	if store.gs.PatrolFindingsCount != 1 {
		t.Errorf("PatrolFindingsCount = %d, want 1", store.gs.PatrolFindingsCount)
	}
	if !strings.Contains(store.ds.Scout, "PATROL") {
		t.Errorf("scout blob = %q, want a PATROL finding recorded", store.ds.Scout)
	}
}

func TestStep_PatrolFindingSamplesBounded(t *testing.T) {
	store := newMockStateStore()
	store.gs = store.defaultGS()
	store.gs.CurrentGear = "PATROL"
	doc := &secondary.PlanDocument{
		Objective: "ship the feature",
		Steps: []secondary.PlanStepRecord{
			{Description: "write code", Status: "completed"},
			{Description: "run checks", Status: "completed"},
			{Description: "update docs", Status: "completed"},
		},
	}
	svc := newTestDispatchService(store, doc)

	if _, err := svc.Enable(context.Background()); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if _, err := svc.Step(context.Background()); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	// A finding cites at most the sample cap of reviewed steps.
	if !strings.Contains(store.ds.Scout, "write code") || !strings.Contains(store.ds.Scout, "run checks") {
		t.Errorf("scout blob = %q, want the first sampled steps cited", store.ds.Scout)
	}
	if strings.Contains(store.ds.Scout, "update docs") {
		t.Errorf("scout blob = %q, cites more steps than the sample cap", store.ds.Scout)
	}
}

func TestResolve_NoPendingJunction(t *testing.T) {
	store := newMockStateStore()
	svc := newTestDispatchService(store, nil)

	_, err := svc.Resolve(context.Background(), primary.ResolveRequest{Action: junction.ClearApprove})
	if err == nil {
		t.Fatal("Resolve succeeded with an empty slot")
	}
}

func TestResolve_ApproveModeTransition(t *testing.T) {
	store := newMockStateStore()
	svc := newTestDispatchService(store, activePlan())

	if _, err := svc.Enable(context.Background()); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if _, err := svc.Step(context.Background()); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if store.junction == nil {
		t.Fatal("no junction surfaced to approve")
	}

	report, err := svc.Resolve(context.Background(), primary.ResolveRequest{Action: junction.ClearApprove})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if store.junction != nil {
		t.Error("junction not cleared by approve")
	}
	if store.gs.CurrentGear != "ACTIVE" {
		t.Errorf("gear = %q after approved transition, want ACTIVE", store.gs.CurrentGear)
	}
	if store.gs.LastTransition != "DREAM->ACTIVE" {
		t.Errorf("LastTransition = %q, want DREAM->ACTIVE", store.gs.LastTransition)
	}
	if report.State != "RUNNING" {
		t.Errorf("State = %q, want RUNNING after resolve", report.State)
	}
	// An explicit approval is counted apart from dismissal auto-approvals.
	if store.stats[dispatch.StatApproved] != 1 {
		t.Errorf("approved = %d, want 1", store.stats[dispatch.StatApproved])
	}
	if store.stats[dispatch.StatAutoApproved] != 0 {
		t.Errorf("auto_approved = %d, want 0 for an explicit approval", store.stats[dispatch.StatAutoApproved])
	}
}

func TestResolve_ApproveQualityGateStoresOverride(t *testing.T) {
	store := newMockStateStore()
	seedActiveGear(store)
	doc := activePlan()
	svc := newTestDispatchService(store, doc)

	if _, err := svc.Enable(context.Background()); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	store.junction = &secondary.JunctionRecord{
		Type:   "quality_gate",
		Reason: "bypass failing lint",
		Source: "gate",
	}

	_, err := svc.Resolve(context.Background(), primary.ResolveRequest{
		Action: junction.ClearApprove,
		Checks: []string{"lint"},
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if store.gs.OverrideMode != "check_specific" {
		t.Errorf("OverrideMode = %q, want check_specific", store.gs.OverrideMode)
	}
	if store.gs.OverrideSessionID != store.ds.SessionID {
		t.Errorf("override session = %q, want %q", store.gs.OverrideSessionID, store.ds.SessionID)
	}
	if store.gs.OverrideObjectiveHash != plan.ObjectiveHash(doc.Objective) {
		t.Error("override objective hash does not match the live objective")
	}
}

func TestResolve_SkipPreventsImmediateReproposal(t *testing.T) {
	store := newMockStateStore()
	svc := newTestDispatchService(store, nil)

	if _, err := svc.Enable(context.Background()); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if _, err := svc.Step(context.Background()); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	if _, err := svc.Resolve(context.Background(), primary.ResolveRequest{Action: junction.ClearSkip}); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if store.stats[dispatch.StatSkipped] != 1 {
		t.Errorf("skipped = %d, want 1", store.stats[dispatch.StatSkipped])
	}

	// The next step must not surface the identical junction again.
	report, err := svc.Step(context.Background())
	if err != nil {
		t.Fatalf("Step after skip failed: %v", err)
	}
	if report.State == "JUNCTION" {
		t.Error("skipped recommendation re-surfaced on the very next step")
	}
	if store.ds.SkipCommand != "" || store.ds.SkipJunctionType != "" {
		t.Error("skip marker not cleared after one step")
	}
}

func TestResolve_SkipGearChangeNotReproposed(t *testing.T) {
	store := newMockStateStore()
	// Stored gear DREAM, but the plan implies ACTIVE.
	svc := newTestDispatchService(store, activePlan())

	if _, err := svc.Enable(context.Background()); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	report, err := svc.Step(context.Background())
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if report.JunctionType != "mode_transition" {
		t.Fatalf("JunctionType = %q, want mode_transition", report.JunctionType)
	}

	if _, err := svc.Resolve(context.Background(), primary.ResolveRequest{Action: junction.ClearSkip}); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// The very next step must not surface the identical gear junction.
	report, err = svc.Step(context.Background())
	if err != nil {
		t.Fatalf("Step after skip failed: %v", err)
	}
	if report.State == "JUNCTION" {
		t.Fatalf("skipped gear change re-surfaced on the very next step: %+v", store.junction)
	}
	if report.Command != "step" {
		t.Errorf("Command = %q, want step (loop continues on the plan)", report.Command)
	}
	if store.gs.CurrentGear != "DREAM" {
		t.Errorf("gear = %q, want DREAM (skip must not apply the change)", store.gs.CurrentGear)
	}

	// The mismatch is only held back once; it resurfaces afterward.
	report, err = svc.Step(context.Background())
	if err != nil {
		t.Fatalf("third Step failed: %v", err)
	}
	if report.JunctionType != "mode_transition" {
		t.Errorf("JunctionType = %q on the following step, want mode_transition to resurface", report.JunctionType)
	}
}

func TestResolve_DismissSuppressesWindow(t *testing.T) {
	store := newMockStateStore()
	svc := newTestDispatchService(store, nil)

	if _, err := svc.Enable(context.Background()); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if _, err := svc.Step(context.Background()); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	reason := store.junction.Reason

	_, err := svc.Resolve(context.Background(), primary.ResolveRequest{
		Action:          junction.ClearDismiss,
		SuppressMinutes: 30,
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	window := store.suppressions[[2]string{"ambiguous", reason}]
	if window == nil {
		t.Fatal("dismiss recorded no suppression window")
	}
	wantUntil := testClock().Add(30 * time.Minute).Format(time.RFC3339)
	if window.Until != wantUntil {
		t.Errorf("Until = %q, want %q", window.Until, wantUntil)
	}

	// While the window is active, the junction auto-approves.
	report, err := svc.Step(context.Background())
	if err != nil {
		t.Fatalf("Step after dismiss failed: %v", err)
	}
	if report.State == "JUNCTION" {
		t.Error("suppressed junction surfaced")
	}
	if !report.AutoApproved {
		t.Error("AutoApproved = false for a suppressed junction")
	}
}

func TestStop_ResetsEverything(t *testing.T) {
	store := newMockStateStore()
	svc := newTestDispatchService(store, nil)

	if _, err := svc.Enable(context.Background()); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if _, err := svc.Step(context.Background()); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	report, err := svc.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if report.Enabled {
		t.Error("Enabled = true after stop")
	}
	if report.State != "IDLE" {
		t.Errorf("State = %q, want IDLE", report.State)
	}
	if report.Iteration != 0 {
		t.Errorf("Iteration = %d, want 0", report.Iteration)
	}
	if report.Junction != nil {
		t.Error("junction survived stop")
	}
	if len(report.History) != 0 {
		t.Error("history survived stop")
	}
}

func TestStatus_PlanFailureDegradesToWarning(t *testing.T) {
	store := newMockStateStore()
	svc := NewDispatchServiceWithClock(store, &mockPlanProvider{err: errMockFailure}, &mockActionLog{}, 10, 3, testClock)

	report, err := svc.Status(context.Background())
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if len(report.Warnings) == 0 {
		t.Error("plan failure produced no warning")
	}
	if report.State != "IDLE" {
		t.Errorf("State = %q, want IDLE defaults despite plan failure", report.State)
	}
}
