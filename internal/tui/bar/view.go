package bar

import (
	"strings"

	"github.com/alexisbeaulieu97/tilebar/internal/widget"
)

// View renders the bar, followed by a notice or the help line when there
// is one.
func (m Model) View() string {
	env := m.env()

	rendered := make([][]string, len(m.layout.Columns))
	for i, col := range m.layout.Columns {
		rendered[i] = make([]string, len(col.Components))
		for j, c := range col.Components {
			rendered[i][j] = widget.Render(c, env)
		}
	}

	var b strings.Builder
	b.WriteString(Compose(m.layout, rendered, m.width, m.svc.Palette))

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle(m.svc.Palette).Render(m.notice))
	}
	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(helpStyle(m.svc.Palette).Render(m.help.FullHelpView(keys.FullHelp())))
	}
	return b.String()
}
