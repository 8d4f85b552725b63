package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	coregear "github.com/example/warden/internal/core/gear"
	"github.com/example/warden/internal/ports/primary"
	"github.com/example/warden/internal/wire"
)

// GearCmd returns the gear command - explicit mode control
func GearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gear",
		Short: "Inspect or set the operating gear",
		Long: `Inspect or set the operating gear (ACTIVE, PATROL, DREAM).

An explicit gear change is its own approval and raises no junction.
Invalid transitions are rejected with state unchanged.

Examples:
  warden gear            # Show current gear
  warden gear set DREAM  # Switch to DREAM`,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := wire.GearService().Status(NewContext())
			if err != nil {
				return err
			}
			renderGearReport(report)
			return nil
		},
	}

	cmd.AddCommand(gearSetCmd())
	return cmd
}

func gearSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <gear>",
		Short: "Switch to a gear",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			to := coregear.Gear(strings.ToUpper(args[0]))
			report, err := wire.GearService().SetGear(NewContext(), to)
			if err != nil {
				return fmt.Errorf("gear set failed: %w", err)
			}
			renderGearReport(report)
			return nil
		},
	}
}

func renderGearReport(r *primary.GearReport) {
	for _, w := range r.Warnings {
		fmt.Println(color.New(color.FgYellow).Sprintf("⚠ %s", w))
	}
	fmt.Printf("Gear: %s\n", color.New(color.FgHiMagenta).Sprint(r.Gear))
	if r.EnteredAt != "" {
		fmt.Printf("  Entered:    %s\n", r.EnteredAt)
	}
	fmt.Printf("  Iterations: %d\n", r.Iterations)
	if r.LastTransition != "" {
		fmt.Printf("  Last:       %s\n", r.LastTransition)
	}
	if len(r.ValidNext) > 0 {
		fmt.Printf("  Valid next: %s\n", strings.Join(r.ValidNext, ", "))
	}
}
