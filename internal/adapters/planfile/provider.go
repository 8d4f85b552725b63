// Package planfile reads the externally owned plan document from the
// project's state directory. Warden never writes it.
package planfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/warden/internal/config"
	"github.com/example/warden/internal/ports/secondary"
)

// FileName is the plan document name inside the state directory.
const FileName = "plan.json"

// Provider implements secondary.PlanProvider on a JSON file.
type Provider struct {
	path string
}

// NewProvider creates a Provider for a project directory.
func NewProvider(projectDir string) *Provider {
	return &Provider{path: filepath.Join(config.StateDir(projectDir), FileName)}
}

// Load reads the plan document. A missing file yields an empty document
// so the planner can demand human input; a malformed file is an error
// the caller degrades on.
func (p *Provider) Load(ctx context.Context) (*secondary.PlanDocument, error) {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return &secondary.PlanDocument{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}

	var doc secondary.PlanDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	return &doc, nil
}

// Ensure Provider implements the interface.
var _ secondary.PlanProvider = (*Provider)(nil)
