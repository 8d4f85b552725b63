package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/warden/internal/core/gear"
	"github.com/example/warden/internal/ports/primary"
	"github.com/example/warden/internal/ports/secondary"
)

// GearServiceImpl implements the GearService interface.
type GearServiceImpl struct {
	store secondary.StateStore
	now   func() time.Time
}

// NewGearService creates a GearService with injected dependencies.
func NewGearService(store secondary.StateStore) *GearServiceImpl {
	return &GearServiceImpl{store: store, now: time.Now}
}

// SetGear applies an explicit mode change. The human request is its own
// approval, so no junction is raised; invalid transitions are rejected
// with state unchanged.
func (s *GearServiceImpl) SetGear(ctx context.Context, to gear.Gear) (*primary.GearReport, error) {
	if !gear.Valid(to) {
		return nil, fmt.Errorf("unknown gear %q", to)
	}
	err := s.store.Update(ctx, func(tx secondary.StateTx) error {
		gs, err := tx.GearState()
		if err != nil {
			return err
		}
		from := gear.Gear(gs.CurrentGear)
		if from == to {
			return nil
		}
		if guard := gear.CanTransition(from, to); !guard.Allowed {
			return fmt.Errorf("gear change rejected: %s", guard.Reason)
		}
		applyGearTransition(gs, from, to, s.now())
		if err := tx.SaveGearState(gs); err != nil {
			return err
		}
		return tx.AppendHistory(&secondary.HistoryRecord{
			Action: "gear set",
			Result: gear.TransitionID(from, to),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Status(ctx)
}

// Status reports the current gear without changing anything.
func (s *GearServiceImpl) Status(ctx context.Context) (*primary.GearReport, error) {
	gs, err := s.store.GetGearState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load gear state: %w", err)
	}
	current := gear.Gear(gs.CurrentGear)
	var next []string
	for _, t := range gear.ValidTransitions(current) {
		next = append(next, string(t))
	}
	return &primary.GearReport{
		Gear:           gs.CurrentGear,
		EnteredAt:      gs.EnteredAt,
		Iterations:     gs.Iterations,
		LastTransition: gs.LastTransition,
		ValidNext:      next,
		Warnings:       s.store.Warnings(),
	}, nil
}

// Ensure GearServiceImpl implements the interface.
var _ primary.GearService = (*GearServiceImpl)(nil)
