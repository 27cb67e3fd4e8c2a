package editor

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/tilebar/internal/layout"
)

// externalChangeMsg carries a layout written by another process.
type externalChangeMsg struct {
	Layout layout.Layout
}

type changesClosedMsg struct{}

func waitForChange(ch <-chan layout.Layout) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		l, ok := <-ch
		if !ok {
			return changesClosedMsg{}
		}
		return externalChangeMsg{Layout: l}
	}
}
