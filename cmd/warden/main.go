package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/warden/internal/cli"
	"github.com/example/warden/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "warden",
		Short:   "warden - supervisory control loop for a coding agent",
		Version: version.String(),
		Long: `warden supervises a semi-autonomous coding agent session.
It reads the agent's external plan, recommends the next action, pauses at
junctions that need human approval, and gates risky actions.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cli.DetectAndStoreSession()
		},
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.DispatchCmd())
	rootCmd.AddCommand(cli.GearCmd())
	rootCmd.AddCommand(cli.HookCmd())
	rootCmd.AddCommand(cli.NudgeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
