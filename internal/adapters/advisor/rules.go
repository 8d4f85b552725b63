package advisor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/warden/internal/config"
	"github.com/example/warden/internal/ports/secondary"
)

// RulesFileName is the advisory rules file inside the state directory.
const RulesFileName = "rules.yaml"

// Rule is one pattern-based advisory. Match is a case-insensitive
// substring tested against the action's tool and detail.
type Rule struct {
	Match   string `yaml:"match"`
	Action  string `yaml:"action"` // block | ask | approve
	Message string `yaml:"message"`
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// RulesAdvisor contributes advisories from a user-authored rules file.
type RulesAdvisor struct {
	rules []Rule
}

// LoadRulesAdvisor reads .warden/rules.yaml for a project. A missing
// file returns (nil, nil) so the caller can fall back to the no-op
// advisor.
func LoadRulesAdvisor(projectDir string) (*RulesAdvisor, error) {
	path := filepath.Join(config.StateDir(projectDir), RulesFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	return &RulesAdvisor{rules: file.Rules}, nil
}

// Name identifies the advisor in warnings and reports.
func (*RulesAdvisor) Name() string {
	return "rules"
}

// Review returns every rule whose pattern matches the action.
func (a *RulesAdvisor) Review(ctx context.Context, req secondary.ActionRequest) ([]secondary.Advisory, error) {
	subject := strings.ToLower(req.Tool + " " + req.Detail)

	var out []secondary.Advisory
	for _, rule := range a.rules {
		if rule.Match == "" {
			continue
		}
		if strings.Contains(subject, strings.ToLower(rule.Match)) {
			out = append(out, secondary.Advisory{
				Action:  rule.Action,
				Message: rule.Message,
			})
		}
	}
	return out, nil
}

// Ensure RulesAdvisor implements the interface.
var _ secondary.Advisor = (*RulesAdvisor)(nil)
