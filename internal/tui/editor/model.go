// Package editor is the interactive layout editor. Every change goes
// through layout.Editor, which persists it so open bars update at once.
package editor

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/tilebar/internal/layout"
	"github.com/alexisbeaulieu97/tilebar/internal/logger"
	"github.com/alexisbeaulieu97/tilebar/internal/theme"
)

// marginStep is how far one keypress moves a margin, in pixels.
const marginStep = 8

type focus int

const (
	focusColumns focus = iota
	focusComponents
	focusOptions
)

// slot addresses a component by column and position.
type slot struct{ col, idx int }

// draft is options text that failed to parse. It is kept per component
// until the user fixes it or the column's components are reordered.
type draft struct {
	text string
	err  string
}

// Model is the editor's state.
type Model struct {
	ctx    context.Context
	editor *layout.Editor
	wm     string
	log    *logger.Logger

	focus      focus
	columns    list.Model
	components list.Model
	options    textarea.Model
	drafts     map[slot]draft
	help       help.Model
	showHelp   bool
	notice     string
	palette    theme.Palette

	changes <-chan layout.Layout

	width  int
	height int
}

// New creates the editor view over ed. changes, when non-nil, carries
// layouts written by other processes.
func New(ctx context.Context, ed *layout.Editor, wm string, changes <-chan layout.Layout, palette theme.Palette, log *logger.Logger) Model {
	ta := textarea.New()
	ta.Placeholder = `{"colorTheme": "blue"}`
	ta.ShowLineNumbers = false
	ta.SetHeight(6)
	ta.Blur()

	m := Model{
		ctx:        ctx,
		editor:     ed,
		wm:         wm,
		log:        log,
		columns:    newList("Columns · " + wm),
		components: newList("Widgets"),
		options:    ta,
		drafts:     make(map[slot]draft),
		help:       help.New(),
		palette:    palette,
		changes:    changes,
	}
	m.sync()
	return m
}

// Init waits for external layout changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForChange(m.changes))
}

func (m Model) currentSlot() slot {
	return slot{col: m.editor.OpenIndex(), idx: m.components.Index()}
}

func (m Model) currentDraft() (draft, bool) {
	d, ok := m.drafts[m.currentSlot()]
	return d, ok
}

// dropDrafts forgets the drafts of col, or of every column when col < 0.
func (m *Model) dropDrafts(col int) {
	for s := range m.drafts {
		if col < 0 || s.col == col {
			delete(m.drafts, s)
		}
	}
}

// Layout returns the layout being edited.
func (m Model) Layout() layout.Layout {
	return m.editor.Layout()
}

// sync rebuilds both lists from the editor and keeps the cursors in range.
func (m *Model) sync() {
	l := m.editor.Layout()

	colCursor := m.columns.Index()
	m.columns.SetItems(columnItems(l))
	m.columns.Select(clamp(colCursor, len(l.Columns)))

	open := m.editor.OpenIndex()
	compCursor := m.components.Index()
	m.components.SetItems(componentItems(l, open))
	if open >= 0 {
		m.components.Select(clamp(compCursor, len(l.Columns[open].Components)))
	}

	if open < 0 && m.focus != focusColumns {
		m.focus = focusColumns
		m.options.Blur()
	}
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (m *Model) resize() {
	half := m.width / 2
	listHeight := m.height - 10
	if listHeight < 4 {
		listHeight = 4
	}
	m.columns.SetSize(half, listHeight)
	m.components.SetSize(m.width-half, listHeight)
	m.options.SetWidth(m.width - half - 2)
	m.help.Width = m.width
}
