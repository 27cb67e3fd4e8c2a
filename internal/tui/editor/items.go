package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/alexisbeaulieu97/tilebar/internal/layout"
)

type columnItem struct {
	index  int
	column layout.Column
}

func (i columnItem) Title() string {
	return fmt.Sprintf("Column %d", i.index+1)
}

func (i columnItem) Description() string {
	return fmt.Sprintf("%s · width %s · %s · %d widgets",
		i.column.Align, i.column.Width, cornerLabel(i.column.Rounded), len(i.column.Components))
}

func (i columnItem) FilterValue() string { return i.Title() }

type componentItem struct {
	component layout.Component
}

func (i componentItem) Title() string {
	return string(i.component.Type)
}

func (i componentItem) Description() string {
	if len(i.component.Options) == 0 {
		return "defaults"
	}
	compact := strings.Join(strings.Fields(layout.FormatOptions(i.component.Options)), " ")
	return compact
}

func (i componentItem) FilterValue() string { return i.Title() }

func cornerLabel(c layout.Corners) string {
	switch c {
	case layout.NoCorners:
		return "square"
	case layout.AllCorners:
		return "rounded"
	default:
		return strings.Join(c.Names(), ",")
	}
}

// nextCorners cycles square → all → left → right → square.
func nextCorners(c layout.Corners) layout.Corners {
	left := layout.TopLeft | layout.BottomLeft
	right := layout.TopRight | layout.BottomRight
	switch c {
	case layout.NoCorners:
		return layout.AllCorners
	case layout.AllCorners:
		return left
	case left:
		return right
	default:
		return layout.NoCorners
	}
}

// nextWidth cycles auto → 1 → 2 → 3 → auto.
func nextWidth(w layout.Width) layout.Width {
	switch {
	case w.Auto:
		return layout.FlexWidth(1)
	case w.Fraction() < 2:
		return layout.FlexWidth(2)
	case w.Fraction() < 3:
		return layout.FlexWidth(3)
	default:
		return layout.AutoWidth()
	}
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

func columnItems(l layout.Layout) []list.Item {
	items := make([]list.Item, len(l.Columns))
	for i, col := range l.Columns {
		items[i] = columnItem{index: i, column: col}
	}
	return items
}

func componentItems(l layout.Layout, col int) []list.Item {
	if col < 0 || col >= len(l.Columns) {
		return nil
	}
	comps := l.Columns[col].Components
	items := make([]list.Item, len(comps))
	for i, c := range comps {
		items[i] = componentItem{component: c}
	}
	return items
}
