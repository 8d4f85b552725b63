package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/warden/internal/core/gate"
	"github.com/example/warden/internal/ctxutil"
	"github.com/example/warden/internal/ports/primary"
	"github.com/example/warden/internal/wire"
)

// HookCmd returns the hook command - parent for host agent hook handlers
func HookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook <event>",
		Short: "Handle host agent hook events",
		Long: `Process host agent hook events.

This command is called by the host's hooks and reads event data from
stdin. The verdict is conveyed in the printed JSON, never via exit code;
any infrastructure failure fails open with an approve.

Available events:
  Gate    - Pre-action check, prints {"decision","reason"}
  Record  - Post-action record for progress detection

Example:
  echo '{"tool":"edit","detail":"main.go"}' | warden hook Gate`,
	}

	cmd.AddCommand(hookGateCmd())
	cmd.AddCommand(hookRecordCmd())

	return cmd
}

// GateHookEvent represents the JSON payload from the pre-action hook
type GateHookEvent struct {
	SessionID string `json:"session_id"`
	Tool      string `json:"tool"`
	Detail    string `json:"detail"`
	Check     string `json:"check,omitempty"`
}

// GateHookResponse represents the JSON verdict printed for the host
type GateHookResponse struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

// RecordHookEvent represents the JSON payload from the post-action hook
type RecordHookEvent struct {
	SessionID string `json:"session_id"`
	Tool      string `json:"tool"`
	Result    string `json:"result"`
}

func hookGateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "Gate",
		Short: "Handle the pre-action gate event",
		Long:  "Reads the action from stdin and prints approve, ask, or block.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHookGate()
		},
	}
}

func runHookGate() error {
	// Fail-open default: a broken hook must never paralyze the host.
	verdict := gate.Approve("gate unavailable, failing open")

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return printVerdict(verdict)
	}

	var event GateHookEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return printVerdict(verdict)
	}

	// The event's session ID wins over the environment; the host knows
	// which session acted.
	ctx := NewContext()
	if event.SessionID != "" {
		ctx = ctxutil.WithSessionID(ctx, event.SessionID)
	}
	v, err := wire.GateService().CheckAction(ctx, primary.ActionCheck{
		Tool:   event.Tool,
		Detail: event.Detail,
		Check:  event.Check,
	})
	if err != nil {
		return printVerdict(verdict) //nolint:nilerr // intentional fail-open design
	}
	return printVerdict(v)
}

func printVerdict(v gate.Verdict) error {
	out, err := json.Marshal(GateHookResponse{
		Decision: string(v.Decision),
		Reason:   v.Reason,
	})
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func hookRecordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "Record",
		Short: "Handle the post-action record event",
		Long:  "Reads the action result from stdin and appends it to the session log.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHookRecord()
		},
	}
}

func runHookRecord() error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil //nolint:nilerr // intentional fail-open design
	}

	var event RecordHookEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil //nolint:nilerr // intentional fail-open design
	}
	if event.Tool == "" {
		return nil
	}

	ctx := NewContext()
	if event.SessionID != "" {
		ctx = ctxutil.WithSessionID(ctx, event.SessionID)
	}
	if err := wire.GateService().RecordAction(ctx, event.Tool, event.Result); err != nil {
		// Recording is best effort.
		fmt.Fprintf(os.Stderr, "warning: action not recorded: %v\n", err)
	}
	return nil
}
