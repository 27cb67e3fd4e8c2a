package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/tilebar/internal/theme"
)

// View renders the column list, the open column's widgets and the options
// field.
func (m Model) View() string {
	l := m.editor.Layout()

	left := m.paneStyle(m.focus == focusColumns).Render(m.columns.View())

	var right string
	if open := m.editor.OpenIndex(); open >= 0 {
		parts := []string{m.components.View()}
		parts = append(parts, m.optionsView())
		right = m.paneStyle(m.focus != focusColumns).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	} else {
		right = m.paneStyle(false).Render(m.muted().Render("Press enter to open a column."))
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")
	b.WriteString(m.muted().Render(fmt.Sprintf("margins: top %dpx · x %dpx · %d columns", l.TopMargin, l.XMargin, len(l.Columns))))

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.errorStyle().Render(m.notice))
	}

	b.WriteString("\n")
	var km help.KeyMap = columnHelp{}
	switch m.focus {
	case focusComponents:
		km = componentHelp{}
	case focusOptions:
		km = optionsHelp{}
	}
	if m.showHelp {
		b.WriteString(m.help.FullHelpView(km.FullHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(km.ShortHelp()))
	}
	return b.String()
}

func (m Model) optionsView() string {
	label := "Options (JSON)"
	d, hasDraft := m.currentDraft()
	if hasDraft {
		label += " " + m.errorStyle().Render("✗ "+d.err)
	}

	body := m.options.View()
	if m.focus != focusOptions {
		text := d.text
		if !hasDraft {
			if item, ok := m.components.SelectedItem().(componentItem); ok {
				text = item.Description()
			}
		}
		body = m.muted().Render(text)
	}
	return lipgloss.JoinVertical(lipgloss.Left, label, body)
}

func (m Model) paneStyle(active bool) lipgloss.Style {
	border := m.palette.Surface
	if active {
		border = m.palette.Resolve(theme.Lavender, theme.Blue)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

func (m Model) muted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(m.palette.Muted)
}

func (m Model) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(m.palette.Resolve(theme.Red, theme.Red))
}
