package bar

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/alexisbeaulieu97/tilebar/internal/layout"
	"github.com/alexisbeaulieu97/tilebar/internal/theme"
)

func TestColumnWidths(t *testing.T) {
	cols := []layout.Column{
		{Width: layout.AutoWidth()},
		{},
		{Width: layout.FlexWidth(2)},
	}

	widths := columnWidths(cols, []int{6, 3, 3}, 100)
	assert.Equal(t, []int{10, 30, 60}, widths)

	uneven := columnWidths([]layout.Column{{}, {}, {}}, []int{0, 0, 0}, 10)
	assert.Equal(t, []int{3, 3, 4}, uneven)
	assert.Equal(t, 10, uneven[0]+uneven[1]+uneven[2])

	unsized := columnWidths(cols, []int{6, 3, 3}, 0)
	assert.Equal(t, []int{10, 7, 7}, unsized)
}

func TestColumnWidthsAutoOverflow(t *testing.T) {
	cols := []layout.Column{{Width: layout.AutoWidth()}, {}}
	assert.Equal(t, []int{24, 0}, columnWidths(cols, []int{20, 5}, 10))
}

func TestColumnBorder(t *testing.T) {
	border := columnBorder(layout.TopLeft | layout.BottomRight)
	assert.Equal(t, "╭", border.TopLeft)
	assert.Equal(t, "╯", border.BottomRight)
	assert.Equal(t, lipgloss.NormalBorder().TopRight, border.TopRight)
	assert.Equal(t, lipgloss.NormalBorder().BottomLeft, border.BottomLeft)
}

func TestCells(t *testing.T) {
	assert.Equal(t, 0, cells(0, cellWidthPx))
	assert.Equal(t, 1, cells(8, cellWidthPx))
	assert.Equal(t, 2, cells(9, cellWidthPx))
	assert.Equal(t, 1, cells(8, cellHeightPx))
}

func TestCompose(t *testing.T) {
	l := layout.Layout{
		Columns: []layout.Column{
			{Align: layout.AlignLeft, Rounded: layout.AllCorners},
			{Align: layout.AlignRight, Width: layout.AutoWidth()},
		},
	}
	out := Compose(l, [][]string{{"alpha", "", "beta"}, {"gamma"}}, 40, theme.ForFlavor(theme.FlavorMocha))

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, out, "alpha  beta")
	assert.Contains(t, out, "gamma")
	assert.True(t, strings.HasPrefix(lines[0], "╭"))
	assert.Equal(t, 40, lipgloss.Width(out))
}

func TestComposeMargins(t *testing.T) {
	l := layout.Layout{
		TopMargin: 16,
		XMargin:   16,
		Columns:   []layout.Column{{Width: layout.AutoWidth()}},
	}
	out := Compose(l, [][]string{{"x"}}, 0, theme.ForFlavor(theme.FlavorMocha))

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 4)
	assert.Empty(t, strings.TrimSpace(lines[0]))
	assert.True(t, strings.HasPrefix(lines[1], "  ┌"))
}
