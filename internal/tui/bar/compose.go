package bar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/tilebar/internal/layout"
	"github.com/alexisbeaulieu97/tilebar/internal/theme"
)

// Layout margins are stored in pixels; a terminal cell is roughly 8x16.
const (
	cellWidthPx  = 8
	cellHeightPx = 16
)

// chrome is the border and padding around a column's content.
const chrome = 4

const componentGap = "  "

// Compose lays out the rendered components of each column into a single
// framed row. width is the terminal width; zero sizes every column to its
// content.
func Compose(l layout.Layout, rendered [][]string, width int, palette theme.Palette) string {
	xMargin := cells(l.XMargin, cellWidthPx)
	topMargin := cells(l.TopMargin, cellHeightPx)

	contents := make([]string, len(l.Columns))
	contentWidths := make([]int, len(l.Columns))
	for i := range l.Columns {
		var parts []string
		if i < len(rendered) {
			for _, part := range rendered[i] {
				if part != "" {
					parts = append(parts, part)
				}
			}
		}
		contents[i] = strings.Join(parts, componentGap)
		contentWidths[i] = lipgloss.Width(contents[i])
	}

	available := 0
	if width > 0 {
		available = width - 2*xMargin
	}
	widths := columnWidths(l.Columns, contentWidths, available)

	boxes := make([]string, 0, len(l.Columns))
	for i, col := range l.Columns {
		if widths[i] < chrome {
			continue
		}
		boxes = append(boxes, renderColumn(col, contents[i], widths[i], palette))
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
	return lipgloss.NewStyle().MarginLeft(xMargin).MarginTop(topMargin).Render(row)
}

func cells(px, per int) int {
	if px <= 0 {
		return 0
	}
	return (px + per - 1) / per
}

// columnWidths gives auto columns their content width and shares what is
// left between flex columns by weight. The last flex column absorbs
// rounding so the row fills available exactly. available <= 0 sizes every
// column to its content.
func columnWidths(cols []layout.Column, contentWidths []int, available int) []int {
	widths := make([]int, len(cols))
	if available <= 0 {
		for i := range cols {
			widths[i] = contentWidths[i] + chrome
		}
		return widths
	}

	remaining := available
	var totalFlex float64
	lastFlex := -1
	for i, col := range cols {
		if col.Width.Auto {
			widths[i] = contentWidths[i] + chrome
			remaining -= widths[i]
			continue
		}
		totalFlex += col.Width.Fraction()
		lastFlex = i
	}
	if remaining < 0 {
		remaining = 0
	}
	if lastFlex < 0 || totalFlex <= 0 {
		return widths
	}

	assigned := 0
	for i, col := range cols {
		if col.Width.Auto {
			continue
		}
		if i == lastFlex {
			widths[i] = remaining - assigned
			break
		}
		widths[i] = int(float64(remaining) * col.Width.Fraction() / totalFlex)
		assigned += widths[i]
	}
	return widths
}

func renderColumn(col layout.Column, content string, width int, palette theme.Palette) string {
	inner := width - 2
	body := lipgloss.NewStyle().Inline(true).MaxWidth(inner - 2).Render(content)

	return lipgloss.NewStyle().
		Border(columnBorder(col.Rounded)).
		BorderForeground(palette.Surface).
		Padding(0, 1).
		Width(inner).
		Align(position(col.Align)).
		Render(body)
}

// columnBorder draws square corners except where rounded is set.
func columnBorder(rounded layout.Corners) lipgloss.Border {
	border := lipgloss.NormalBorder()
	round := lipgloss.RoundedBorder()
	if rounded.Has(layout.TopLeft) {
		border.TopLeft = round.TopLeft
	}
	if rounded.Has(layout.TopRight) {
		border.TopRight = round.TopRight
	}
	if rounded.Has(layout.BottomLeft) {
		border.BottomLeft = round.BottomLeft
	}
	if rounded.Has(layout.BottomRight) {
		border.BottomRight = round.BottomRight
	}
	return border
}

func position(a layout.Align) lipgloss.Position {
	switch a {
	case layout.AlignCenter:
		return lipgloss.Center
	case layout.AlignRight:
		return lipgloss.Right
	default:
		return lipgloss.Left
	}
}
