package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/warden/internal/core/dispatch"
	"github.com/example/warden/internal/core/gear"
	"github.com/example/warden/internal/core/junction"
	"github.com/example/warden/internal/core/plan"
	"github.com/example/warden/internal/ports/primary"
	"github.com/example/warden/internal/ports/secondary"
)

// Resolve clears the pending junction with approve, skip, or dismiss.
// Read-and-clear happens in one exclusive transaction so a junction can
// never be resolved twice or lost.
func (s *DispatchServiceImpl) Resolve(ctx context.Context, req primary.ResolveRequest) (*primary.DispatchReport, error) {
	doc, _ := s.loadPlan(ctx)
	now := s.now()

	err := s.store.Update(ctx, func(tx secondary.StateTx) error {
		rec, err := tx.Junction()
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("no pending junction to %s", req.Action)
		}
		j := junctionFromRecord(rec)

		ds, err := tx.DispatchState()
		if err != nil {
			return err
		}

		switch req.Action {
		case junction.ClearApprove:
			if err := s.applyApproval(tx, ds, j, req, doc.Objective, now); err != nil {
				return err
			}
			if err := tx.IncrementStat(dispatch.StatApproved); err != nil {
				return err
			}
		case junction.ClearSkip:
			// Remember the skipped pair so the very next step does not
			// re-propose it.
			ds.SkipCommand = ds.LastCommand
			ds.SkipJunctionType = string(j.Type)
			if err := tx.IncrementStat(dispatch.StatSkipped); err != nil {
				return err
			}
		case junction.ClearDismiss:
			if err := recordSuppression(tx, j, req.SuppressMinutes, now); err != nil {
				return err
			}
			if err := tx.IncrementStat(dispatch.StatDismissed); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown resolve action %q", req.Action)
		}

		if err := tx.ClearJunction(); err != nil {
			return err
		}
		if err := setDispatchState(ds, dispatch.StateRunning); err != nil {
			return err
		}
		ds.StuckCount = 0
		if err := tx.SaveDispatchState(ds); err != nil {
			return err
		}
		return tx.AppendHistory(&secondary.HistoryRecord{
			Action: fmt.Sprintf("%s %s", req.Action, j.Type),
			Result: j.Reason,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Status(ctx)
}

// applyApproval performs the type-specific effect of an approval. An
// unknown type still clears cleanly as a generic approval.
func (s *DispatchServiceImpl) applyApproval(tx secondary.StateTx, ds *secondary.DispatchStateRecord, j junction.Junction, req primary.ResolveRequest, objective string, now time.Time) error {
	switch j.Type {
	case junction.TypeModeTransition:
		gs, err := tx.GearState()
		if err != nil {
			return err
		}
		from, to := gear.Gear(j.From), gear.Gear(j.To)
		if guard := gear.CanTransition(from, to); !guard.Allowed {
			return fmt.Errorf("gear change rejected: %s", guard.Reason)
		}
		applyGearTransition(gs, from, to, now)
		return tx.SaveGearState(gs)
	case junction.TypeQualityGate:
		gs, err := tx.GearState()
		if err != nil {
			return err
		}
		o := gear.NewOverride(ds.SessionID, plan.ObjectiveHash(objective), j.Reason, req.Checks, now)
		applyOverrideToRecord(gs, o)
		return tx.SaveGearState(gs)
	}
	return nil
}
