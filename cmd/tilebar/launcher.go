package main

import (
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/tilebar/internal/tui/bar"
)

// execLauncher runs another surface of this binary in the bar's terminal,
// suspending the bar until it exits.
func execLauncher(flags *rootFlags) bar.Launcher {
	return func(args ...string) tea.Cmd {
		surface := strings.Join(args, " ")
		exe, err := os.Executable()
		if err != nil {
			return func() tea.Msg {
				return bar.SurfaceClosedMsg{Surface: surface, Err: err}
			}
		}

		full := append(flags.forward(), args...)
		return tea.ExecProcess(exec.Command(exe, full...), func(err error) tea.Msg {
			return bar.SurfaceClosedMsg{Surface: surface, Err: err}
		})
	}
}
