package app

import (
	"context"
	"fmt"

	"github.com/example/warden/internal/core/junction"
	"github.com/example/warden/internal/ports/primary"
	"github.com/example/warden/internal/ports/secondary"
)

// recentActionLimit caps the host action entries shown in a status block.
const recentActionLimit = 5

// buildReport assembles the status block every dispatch command ends
// with. Stats and history failures degrade to warnings; the report
// itself is never withheld.
func (s *DispatchServiceImpl) buildReport(ctx context.Context, ds *secondary.DispatchStateRecord, gs *secondary.GearStateRecord, jrec *secondary.JunctionRecord, doc *secondary.PlanDocument, warnings []string) *primary.DispatchReport {
	report := &primary.DispatchReport{
		Enabled:       ds.Enabled,
		State:         ds.State,
		Iteration:     ds.Iteration,
		MaxIterations: s.maxIterations,
		StuckCount:    ds.StuckCount,
		MaxRetries:    s.maxRetries,
		SessionID:     ds.SessionID,

		Gear:           gs.CurrentGear,
		GearIterations: gs.Iterations,
		LastTransition: gs.LastTransition,

		Objective: doc.Objective,
		Steps:     stepsFromDoc(doc),
	}

	if jrec != nil {
		report.Junction = &primary.JunctionView{
			Type:      jrec.Type,
			Reason:    jrec.Reason,
			Source:    jrec.Source,
			FromGear:  jrec.FromGear,
			ToGear:    jrec.ToGear,
			CreatedAt: jrec.CreatedAt,
		}
		if !junction.Known(junction.Type(jrec.Type)) {
			warnings = append(warnings, fmt.Sprintf("pending junction has unrecognized type %q; approve clears it generically", jrec.Type))
		}
	}

	if stats, err := s.store.GetStats(ctx); err == nil {
		report.Stats = stats
	} else {
		warnings = append(warnings, "stats unavailable: "+err.Error())
	}
	if history, err := s.store.ListHistory(ctx); err == nil {
		for _, h := range history {
			report.History = append(report.History, primary.HistoryView{
				Action:     h.Action,
				Result:     h.Result,
				RecordedAt: h.RecordedAt,
			})
		}
	} else {
		warnings = append(warnings, "history unavailable: "+err.Error())
	}
	if actions, err := s.actions.Recent(ctx, recentActionLimit); err == nil {
		for _, a := range actions {
			report.RecentActions = append(report.RecentActions, primary.ActionView{
				Tool:      a.Tool,
				Result:    a.Result,
				CreatedAt: a.CreatedAt,
			})
		}
	} else {
		warnings = append(warnings, "action log unavailable: "+err.Error())
	}

	report.Warnings = append(warnings, s.store.Warnings()...)
	return report
}
