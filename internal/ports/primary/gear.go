package primary

import (
	"context"

	coregear "github.com/example/warden/internal/core/gear"
)

// GearReport describes the gear state after an explicit mode change.
type GearReport struct {
	Gear           string
	EnteredAt      string
	Iterations     int
	LastTransition string
	ValidNext      []string
	Warnings       []string
}

// GearService handles explicit mode setters from the host. An explicit
// human request is its own approval, so no junction is raised; invalid
// transitions are still rejected with state unchanged.
type GearService interface {
	SetGear(ctx context.Context, to coregear.Gear) (*GearReport, error)
	Status(ctx context.Context) (*GearReport, error)
}
