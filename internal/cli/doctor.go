package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/example/warden/internal/adapters/planfile"
	"github.com/example/warden/internal/config"
	"github.com/example/warden/internal/db"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the warden environment",
		Long: `Environment health check for warden.

Validates:
- .warden/ state directory and database
- Config file readability
- Plan file readability
- tmux availability (needed only for nudge)

Examples:
  warden doctor              # Run full health check
  warden doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			results := []CheckResult{
				checkStateDir(cwd),
				checkDatabase(cwd),
				checkConfig(cwd),
				checkPlanFile(cwd),
				checkTmux(),
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				for _, r := range results {
					if r.Status == "✓" {
						fmt.Printf("  %s %s\n", r.Status, r.Name)
					} else {
						fmt.Printf("  %s %s: %s\n", r.Status, r.Name, r.Details)
					}
				}
			}

			if hasErrors {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&quiet, "quiet", false, "exit code only")
	return cmd
}

func checkStateDir(cwd string) CheckResult {
	dir := config.StateDir(cwd)
	info, err := os.Stat(dir)
	if err != nil {
		return CheckResult{Name: "state directory", Status: "✗", Details: dir + " missing, run `warden init`"}
	}
	if !info.IsDir() {
		return CheckResult{Name: "state directory", Status: "✗", Details: dir + " is not a directory"}
	}
	return CheckResult{Name: "state directory", Status: "✓"}
}

func checkDatabase(cwd string) CheckResult {
	database, err := db.Open(cwd)
	if err != nil {
		return CheckResult{Name: "database", Status: "✗", Details: err.Error()}
	}
	defer database.Close()
	if err := database.Ping(); err != nil {
		return CheckResult{Name: "database", Status: "✗", Details: err.Error()}
	}
	return CheckResult{Name: "database", Status: "✓"}
}

func checkConfig(cwd string) CheckResult {
	if _, err := config.LoadConfig(cwd); err != nil {
		return CheckResult{Name: "config", Status: "✗", Details: err.Error()}
	}
	return CheckResult{Name: "config", Status: "✓"}
}

func checkPlanFile(cwd string) CheckResult {
	provider := planfile.NewProvider(cwd)
	doc, err := provider.Load(NewContext())
	if err != nil {
		return CheckResult{Name: "plan file", Status: "✗", Details: err.Error()}
	}
	if doc.Objective == "" && len(doc.Steps) == 0 {
		return CheckResult{Name: "plan file", Status: "⚠", Details: "no plan yet, dispatch will ask for one"}
	}
	return CheckResult{Name: "plan file", Status: "✓"}
}

func checkTmux() CheckResult {
	if _, err := exec.LookPath("tmux"); err != nil {
		return CheckResult{Name: "tmux", Status: "⚠", Details: "tmux not on PATH, nudge disabled"}
	}
	return CheckResult{Name: "tmux", Status: "✓"}
}
