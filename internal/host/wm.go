package host

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return out, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// WMCommands are the command lines used to talk to a window manager. An
// empty Query means the direction is tracked locally from toggles.
type WMCommands struct {
	Query  []string
	Toggle []string
}

// DefaultWMCommands returns the built-in commands for the supported window
// managers.
func DefaultWMCommands(wm string) WMCommands {
	switch wm {
	case "glazewm":
		return WMCommands{
			Query:  []string{"glazewm", "query", "tiling-direction"},
			Toggle: []string{"glazewm", "command", "toggle-tiling-direction"},
		}
	case "komorebi":
		return WMCommands{
			Toggle: []string{"komorebic", "flip-layout", "horizontal-and-vertical"},
		}
	case "i3":
		return WMCommands{Toggle: []string{"i3-msg", "split", "toggle"}}
	case "sway":
		return WMCommands{Toggle: []string{"swaymsg", "split", "toggle"}}
	default:
		return WMCommands{}
	}
}

// ExecWM drives a window manager through its command-line client.
type ExecWM struct {
	name     string
	commands WMCommands
	run      Runner

	mu    sync.Mutex
	local Direction
}

// NewExecWM creates an adapter for wm. A nil run uses ExecRunner.
func NewExecWM(wm string, commands WMCommands, run Runner) *ExecWM {
	if run == nil {
		run = ExecRunner
	}
	return &ExecWM{name: wm, commands: commands, run: run, local: Horizontal}
}

// State returns the current tiling direction.
func (w *ExecWM) State(ctx context.Context) (WMState, error) {
	if len(w.commands.Query) == 0 {
		w.mu.Lock()
		defer w.mu.Unlock()
		return WMState{Available: true, Name: w.name, Direction: w.local}, nil
	}

	out, err := w.run(ctx, w.commands.Query[0], w.commands.Query[1:]...)
	if err != nil {
		return WMState{}, err
	}
	dir, err := parseDirection(out)
	if err != nil {
		return WMState{}, err
	}
	return WMState{Available: true, Name: w.name, Direction: dir}, nil
}

// ToggleDirection flips the tiling direction.
func (w *ExecWM) ToggleDirection(ctx context.Context) error {
	if len(w.commands.Toggle) == 0 {
		return ErrUnsupported
	}
	if _, err := w.run(ctx, w.commands.Toggle[0], w.commands.Toggle[1:]...); err != nil {
		return err
	}

	w.mu.Lock()
	w.local = w.local.Toggle()
	w.mu.Unlock()
	return nil
}

// parseDirection accepts either a bare word or a JSON document with a
// tilingDirection field anywhere under "data".
func parseDirection(out []byte) (Direction, error) {
	text := strings.ToLower(strings.TrimSpace(string(out)))
	switch Direction(text) {
	case Horizontal, Vertical:
		return Direction(text), nil
	}

	var payload struct {
		Data struct {
			TilingDirection string `json:"tilingDirection"`
		} `json:"data"`
		TilingDirection string `json:"tilingDirection"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		return "", fmt.Errorf("unrecognised direction output %q", text)
	}

	value := payload.Data.TilingDirection
	if value == "" {
		value = payload.TilingDirection
	}
	switch dir := Direction(strings.ToLower(value)); dir {
	case Horizontal, Vertical:
		return dir, nil
	}
	return "", fmt.Errorf("unrecognised direction %q", value)
}
