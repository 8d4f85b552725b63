// Package tmux wakes the supervised agent's pane. Session discovery goes
// through gotmux; key sending shells out to tmux directly, which keeps
// the message path identical to typing into the pane.
package tmux

import (
	"fmt"
	"os/exec"

	"github.com/GianlucaP106/gotmux/gotmux"

	"github.com/example/warden/internal/ports/secondary"
)

// Nudger implements secondary.Nudger on a local tmux server.
type Nudger struct {
	tmux *gotmux.Tmux
}

// NewNudger connects to the default tmux server.
func NewNudger() (*Nudger, error) {
	t, err := gotmux.DefaultTmux()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tmux: %w", err)
	}
	return &Nudger{tmux: t}, nil
}

// Nudge sends message (plus Enter) to the target pane of session.
// An empty pane targets the session's active pane.
func (n *Nudger) Nudge(session, pane, message string) error {
	if session == "" {
		return fmt.Errorf("no tmux session configured")
	}
	if !n.sessionExists(session) {
		return fmt.Errorf("tmux session %s not found", session)
	}

	target := session
	if pane != "" {
		target = fmt.Sprintf("%s:%s", session, pane)
	}

	cmd := exec.Command("tmux", "send-keys", "-t", target, message, "C-m")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to send keys to %s: %w", target, err)
	}
	return nil
}

func (n *Nudger) sessionExists(name string) bool {
	sessions, err := n.tmux.ListSessions()
	if err != nil {
		return false
	}
	for _, s := range sessions {
		if s.Name == name {
			return true
		}
	}
	return false
}

// Ensure Nudger implements the interface.
var _ secondary.Nudger = (*Nudger)(nil)
