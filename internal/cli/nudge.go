package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/warden/internal/config"
	"github.com/example/warden/internal/tmux"
)

// NudgeCmd returns the nudge command
func NudgeCmd() *cobra.Command {
	var session string
	var pane string

	cmd := &cobra.Command{
		Use:   "nudge <message>",
		Short: "Send a real-time message to the supervised agent",
		Long: `Send a message directly to the supervised agent's session via tmux
injection. The message arrives as if the user typed it.

The target session and pane come from .warden/config.json unless
overridden by flags.

Examples:
  warden nudge "Junction pending - run warden dispatch status"
  warden nudge --session work --pane 1 "Tests are failing"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := args[0]

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
			cfg, err := config.LoadConfig(cwd)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if session == "" {
				session = cfg.TmuxSession
			}
			if pane == "" {
				pane = cfg.TmuxPane
			}
			if session == "" {
				return fmt.Errorf("no tmux session configured; set tmux_session in .warden/config.json or pass --session")
			}

			nudger, err := tmux.NewNudger()
			if err != nil {
				return fmt.Errorf("tmux unavailable: %w", err)
			}
			if err := nudger.Nudge(session, pane, message); err != nil {
				return fmt.Errorf("failed to nudge %s: %w", session, err)
			}

			fmt.Printf("✓ Message sent to %s\n", session)
			return nil
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "tmux session name (overrides config)")
	cmd.Flags().StringVar(&pane, "pane", "", "tmux pane (overrides config)")
	return cmd
}
