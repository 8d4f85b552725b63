// Package advisor contains implementations of the secondary.Advisor
// capability interface. The no-op advisor is the default selected at
// wiring time when no rules file exists.
package advisor

import (
	"context"

	"github.com/example/warden/internal/ports/secondary"
)

// Noop is an advisor that never contributes advisories.
type Noop struct{}

// NewNoop creates the no-op advisor.
func NewNoop() *Noop {
	return &Noop{}
}

// Name identifies the advisor in warnings and reports.
func (*Noop) Name() string {
	return "noop"
}

// Review contributes nothing.
func (*Noop) Review(ctx context.Context, req secondary.ActionRequest) ([]secondary.Advisory, error) {
	return nil, nil
}

// Ensure Noop implements the interface.
var _ secondary.Advisor = (*Noop)(nil)
