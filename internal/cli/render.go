package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/warden/internal/core/dispatch"
	"github.com/example/warden/internal/core/plan"
	"github.com/example/warden/internal/ports/primary"
)

// stateColor maps dispatch states to the color they print in.
func stateColor(state string) *color.Color {
	switch state {
	case "RUNNING":
		return color.New(color.FgGreen)
	case "JUNCTION":
		return color.New(color.FgYellow)
	case "STUCK":
		return color.New(color.FgRed)
	case "COMPLETE":
		return color.New(color.FgHiBlue)
	default:
		return color.New(color.FgWhite)
	}
}

func stepMarker(status plan.StepStatus) string {
	switch status {
	case plan.StatusCompleted:
		return color.New(color.FgGreen).Sprint("✓")
	case plan.StatusInProgress:
		return color.New(color.FgCyan).Sprint("→")
	case plan.StatusBlocked:
		return color.New(color.FgRed).Sprint("✗")
	default:
		return "·"
	}
}

// renderDispatchReport prints the full status block. Warnings come
// first so they are never scrolled away by the table.
func renderDispatchReport(r *primary.DispatchReport) {
	for _, w := range r.Warnings {
		fmt.Println(color.New(color.FgYellow).Sprintf("⚠ %s", w))
	}
	if len(r.Warnings) > 0 {
		fmt.Println()
	}

	enabled := "off"
	if r.Enabled {
		enabled = "on"
	}
	fmt.Printf("Dispatch: %s  State: %s  Gear: %s\n",
		enabled,
		stateColor(r.State).Sprint(r.State),
		color.New(color.FgHiMagenta).Sprint(r.Gear))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Iteration:\t%d/%d\n", r.Iteration, r.MaxIterations)
	fmt.Fprintf(w, "  Stuck count:\t%d/%d\n", r.StuckCount, r.MaxRetries)
	if r.SessionID != "" {
		fmt.Fprintf(w, "  Session:\t%s\n", r.SessionID)
	}
	if r.LastTransition != "" {
		fmt.Fprintf(w, "  Last gear change:\t%s\n", r.LastTransition)
	}
	w.Flush()

	if r.Objective != "" {
		fmt.Printf("\nObjective: %s\n", r.Objective)
	}
	for i, s := range r.Steps {
		fmt.Printf("  %s %d. %s\n", stepMarker(s.Status), i+1, s.Description)
	}

	if r.Junction != nil {
		fmt.Println()
		fmt.Println(color.New(color.FgYellow).Sprintf("Pending junction [%s]: %s", r.Junction.Type, r.Junction.Reason))
		fmt.Println("  Resolve with `warden dispatch approve|skip|dismiss`")
	}

	if len(r.History) > 0 {
		fmt.Println("\nHistory:")
		hw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, h := range r.History {
			fmt.Fprintf(hw, "  %s\t%s\t%s\n", h.RecordedAt, h.Action, h.Result)
		}
		hw.Flush()
	}

	if len(r.RecentActions) > 0 {
		fmt.Println("\nRecent host actions:")
		aw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, a := range r.RecentActions {
			fmt.Fprintf(aw, "  %s\t%s\t%s\n", a.CreatedAt, a.Tool, a.Result)
		}
		aw.Flush()
	}

	if len(r.Stats) > 0 {
		var parts []string
		for _, key := range statOrder {
			if v, ok := r.Stats[key]; ok {
				parts = append(parts, fmt.Sprintf("%s=%d", key, v))
			}
		}
		if len(parts) > 0 {
			fmt.Printf("\nStats: %s\n", strings.Join(parts, "  "))
		}
	}
}

// statOrder fixes the display order of the counters.
var statOrder = []string{
	"auto_executed",
	"junctions_hit",
	"approved",
	"auto_approved",
	"skipped",
	"dismissed",
	"stuck_events",
}

// renderStepReport prints the step outcome line, then the status block.
func renderStepReport(r *primary.StepReport) {
	if r.Command != "" {
		line := fmt.Sprintf("Next action: %s", color.New(color.FgHiBlue).Sprint(r.Command))
		if r.StepIndex >= 0 {
			line += fmt.Sprintf(" (step %d)", r.StepIndex+1)
		}
		if r.AutoApproved {
			line += color.New(color.FgYellow).Sprint(" [auto-approved]")
		}
		fmt.Println(line)
	}
	if r.Reason != "" {
		fmt.Printf("  %s\n", r.Reason)
	}
	fmt.Println()
	renderDispatchReport(&r.DispatchReport)
	if !dispatch.Looping(dispatch.State(r.State)) {
		fmt.Println("\nDispatch loop is finished.")
	}
}
