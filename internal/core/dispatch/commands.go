package dispatch

import "fmt"

// Command is the closed set of dispatch control commands accepted from the
// host. Handlers switch exhaustively on this type, so adding a command is
// a compile-visible change rather than a string-matching fallthrough.
type Command int

const (
	// CmdStatus reports state without mutating it.
	CmdStatus Command = iota
	// CmdOn enables autonomous dispatch.
	CmdOn
	// CmdOff disables dispatch, keeping counters.
	CmdOff
	// CmdStop disables dispatch and resets state to defaults.
	CmdStop
	// CmdStep runs one loop step.
	CmdStep
	// CmdApprove resolves the pending junction by accepting it.
	CmdApprove
	// CmdSkip resolves the pending junction without acting on it.
	CmdSkip
	// CmdDismiss resolves the pending junction and suppresses repeats.
	CmdDismiss
)

// ParseCommand maps a host command token to a Command.
func ParseCommand(token string) (Command, error) {
	switch token {
	case "status":
		return CmdStatus, nil
	case "on":
		return CmdOn, nil
	case "off":
		return CmdOff, nil
	case "stop":
		return CmdStop, nil
	case "step":
		return CmdStep, nil
	case "approve":
		return CmdApprove, nil
	case "skip":
		return CmdSkip, nil
	case "dismiss":
		return CmdDismiss, nil
	}
	return 0, fmt.Errorf("unknown dispatch command %q", token)
}

// String returns the host-facing token for the command.
func (c Command) String() string {
	switch c {
	case CmdStatus:
		return "status"
	case CmdOn:
		return "on"
	case CmdOff:
		return "off"
	case CmdStop:
		return "stop"
	case CmdStep:
		return "step"
	case CmdApprove:
		return "approve"
	case CmdSkip:
		return "skip"
	case CmdDismiss:
		return "dismiss"
	}
	return fmt.Sprintf("Command(%d)", int(c))
}
