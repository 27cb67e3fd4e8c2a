package bar

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/tilebar/internal/theme"
)

func noticeStyle(p theme.Palette) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.Resolve(theme.Red, theme.Red)).PaddingLeft(1)
}

func helpStyle(p theme.Palette) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.Muted).PaddingLeft(1)
}
