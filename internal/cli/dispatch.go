package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/warden/internal/core/dispatch"
	"github.com/example/warden/internal/core/junction"
	"github.com/example/warden/internal/ports/primary"
	"github.com/example/warden/internal/ports/secondary"
	"github.com/example/warden/internal/wire"
)

// DispatchCmd returns the dispatch command - the supervisory loop surface
func DispatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Control the autonomous dispatch loop",
		Long: `Control the supervisory dispatch loop.

The loop reads the external plan, recommends the next action, and pauses
at junctions that need human approval.

Examples:
  warden dispatch status     # Show loop state, gear, plan, and history
  warden dispatch on         # Enable autonomous stepping
  warden dispatch step       # Run one loop step
  warden dispatch approve    # Approve the pending junction`,
	}

	cmd.AddCommand(dispatchStatusCmd())
	cmd.AddCommand(dispatchOnCmd())
	cmd.AddCommand(dispatchOffCmd())
	cmd.AddCommand(dispatchStopCmd())
	cmd.AddCommand(dispatchStepCmd())
	cmd.AddCommand(dispatchApproveCmd())
	cmd.AddCommand(dispatchSkipCmd())
	cmd.AddCommand(dispatchDismissCmd())

	return cmd
}

// dispatchArgs carries the resolve flags into runDispatchCommand.
type dispatchArgs struct {
	checks  []string
	minutes int
}

// runDispatchCommand routes a cobra token through the closed Command set
// and executes it. The switch is exhaustive; an unparseable token is an
// error, never a silent fallthrough.
func runDispatchCommand(token string, args dispatchArgs) error {
	c, err := dispatch.ParseCommand(token)
	if err != nil {
		return err
	}

	switch c {
	case dispatch.CmdStatus:
		return runReport(func() (*primary.DispatchReport, error) {
			return wire.DispatchService().Status(NewContext())
		})
	case dispatch.CmdOn:
		return runReport(func() (*primary.DispatchReport, error) {
			return wire.DispatchService().Enable(NewContext())
		})
	case dispatch.CmdOff:
		return runReport(func() (*primary.DispatchReport, error) {
			return wire.DispatchService().Disable(NewContext())
		})
	case dispatch.CmdStop:
		return runReport(func() (*primary.DispatchReport, error) {
			return wire.DispatchService().Stop(NewContext())
		})
	case dispatch.CmdStep:
		report, err := wire.DispatchService().Step(NewContext())
		if err != nil {
			return reportBusy(err)
		}
		renderStepReport(report)
		return nil
	case dispatch.CmdApprove:
		return runReport(func() (*primary.DispatchReport, error) {
			return wire.DispatchService().Resolve(NewContext(), primary.ResolveRequest{
				Action: junction.ClearApprove,
				Checks: args.checks,
			})
		})
	case dispatch.CmdSkip:
		return runReport(func() (*primary.DispatchReport, error) {
			return wire.DispatchService().Resolve(NewContext(), primary.ResolveRequest{
				Action: junction.ClearSkip,
			})
		})
	case dispatch.CmdDismiss:
		return runReport(func() (*primary.DispatchReport, error) {
			return wire.DispatchService().Resolve(NewContext(), primary.ResolveRequest{
				Action:          junction.ClearDismiss,
				SuppressMinutes: args.minutes,
			})
		})
	}
	return fmt.Errorf("unhandled dispatch command %q", c)
}

// runReport executes a report-returning service call and renders it.
// A busy lock is reported as a retryable condition, not a failure.
func runReport(fn func() (*primary.DispatchReport, error)) error {
	report, err := fn()
	if err != nil {
		return reportBusy(err)
	}
	renderDispatchReport(report)
	return nil
}

// reportBusy turns the retryable lock condition into a user hint; every
// other error propagates.
func reportBusy(err error) error {
	if errors.Is(err, secondary.ErrLockBusy) {
		fmt.Println(color.New(color.FgYellow).Sprint("⚠ state is locked by another warden process, retry shortly"))
		return nil
	}
	return err
}

func dispatchStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show dispatch loop state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatchCommand(cmd.Name(), dispatchArgs{})
		},
	}
}

func dispatchOnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "on",
		Short: "Enable autonomous dispatch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatchCommand(cmd.Name(), dispatchArgs{})
		},
	}
}

func dispatchOffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "off",
		Short: "Disable autonomous dispatch, keeping state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatchCommand(cmd.Name(), dispatchArgs{})
		},
	}
}

func dispatchStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Disable dispatch and reset all supervisory state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatchCommand(cmd.Name(), dispatchArgs{})
		},
	}
}

func dispatchStepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "step",
		Short: "Run one supervisory loop step",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatchCommand(cmd.Name(), dispatchArgs{})
		},
	}
}

func dispatchApproveCmd() *cobra.Command {
	var checks []string

	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Approve the pending junction",
		Long: `Approve the pending junction and resume the loop.

For quality_gate junctions, --check narrows the approval to specific
checks; with no --check the override covers the whole gate.

Examples:
  warden dispatch approve
  warden dispatch approve --check lint --check unit-tests`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatchCommand(cmd.Name(), dispatchArgs{checks: checks})
		},
	}
	cmd.Flags().StringArrayVar(&checks, "check", nil, "approve a specific quality check (repeatable)")
	return cmd
}

func dispatchSkipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skip",
		Short: "Reject the pending junction's proposal",
		Long:  "Reject the proposal. The loop resumes and will not re-propose the same action on its very next step.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatchCommand(cmd.Name(), dispatchArgs{})
		},
	}
}

func dispatchDismissCmd() *cobra.Command {
	var minutes int

	cmd := &cobra.Command{
		Use:   "dismiss",
		Short: "Reject and suppress matching junctions for a window",
		Long: `Reject the pending junction and suppress junctions with the same
type and reason. While the window is active, matching junctions are
auto-approved instead of pausing the loop.

Examples:
  warden dispatch dismiss              # Default 60 minute window
  warden dispatch dismiss --for 15     # 15 minute window`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatchCommand(cmd.Name(), dispatchArgs{minutes: minutes})
		},
	}
	cmd.Flags().IntVar(&minutes, "for", 0, "suppression window in minutes (default 60)")
	return cmd
}
