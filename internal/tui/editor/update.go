package editor

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/tilebar/internal/layout"
	"github.com/alexisbeaulieu97/tilebar/internal/options"
	tberrors "github.com/alexisbeaulieu97/tilebar/pkg/errors"
)

// Update handles incoming messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case externalChangeMsg:
		m.editor.Replace(msg.Layout)
		m.sync()
		return m, waitForChange(m.changes)

	case changesClosedMsg:
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) && (m.focus != focusOptions || msg.String() == "ctrl+c") {
			return m, tea.Quit
		}
		switch m.focus {
		case focusOptions:
			return m.handleOptionsKey(msg)
		case focusComponents:
			return m.handleComponentKey(msg)
		default:
			return m.handleColumnKey(msg)
		}
	}

	if m.focus == focusOptions {
		var cmd tea.Cmd
		m.options, cmd = m.options.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleColumnKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := m.editor.Layout()
	i := m.columns.Index()

	switch {
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, keys.Up):
		m.columns.CursorUp()
	case key.Matches(msg, keys.Down):
		m.columns.CursorDown()
	case key.Matches(msg, keys.Open):
		if m.apply(m.editor.Open(i)) {
			m.focus = focusComponents
			m.components.Select(0)
		}
	case key.Matches(msg, keys.Add):
		if m.apply(m.editor.AddColumn()) {
			m.sync()
			m.columns.Select(len(m.editor.Layout().Columns) - 1)
			return m, nil
		}
	case key.Matches(msg, keys.Remove):
		if m.apply(m.editor.RemoveColumn(i)) {
			m.dropDrafts(-1)
		}
	case key.Matches(msg, keys.Align):
		if i < len(l.Columns) {
			m.apply(m.editor.SetAlign(i, l.Columns[i].Align.Next()))
		}
	case key.Matches(msg, keys.Width):
		if i < len(l.Columns) {
			m.apply(m.editor.SetWidth(i, nextWidth(l.Columns[i].Width)))
		}
	case key.Matches(msg, keys.Rounded):
		if i < len(l.Columns) {
			m.apply(m.editor.SetRounded(i, nextCorners(l.Columns[i].Rounded)))
		}
	case key.Matches(msg, keys.MarginX):
		m.apply(m.editor.SetMargins(l.TopMargin, max(0, l.XMargin-marginStep)))
	case key.Matches(msg, keys.MarginXUp):
		m.apply(m.editor.SetMargins(l.TopMargin, l.XMargin+marginStep))
	case key.Matches(msg, keys.MarginT):
		m.apply(m.editor.SetMargins(max(0, l.TopMargin-marginStep), l.XMargin))
	case key.Matches(msg, keys.MarginTUp):
		m.apply(m.editor.SetMargins(l.TopMargin+marginStep, l.XMargin))
	}

	m.sync()
	return m, nil
}

func (m Model) handleComponentKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := m.editor.Layout()
	col := m.editor.OpenIndex()
	idx := m.components.Index()
	var comps []layout.Component
	if col >= 0 && col < len(l.Columns) {
		comps = l.Columns[col].Components
	}

	switch {
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, keys.Back):
		m.editor.Close()
		m.focus = focusColumns
	case key.Matches(msg, keys.Up):
		m.components.CursorUp()
	case key.Matches(msg, keys.Down):
		m.components.CursorDown()
	case key.Matches(msg, keys.Add):
		if m.apply(m.editor.AddComponent(col, options.KindCPU)) {
			m.sync()
			m.components.Select(len(comps))
			return m, nil
		}
	case key.Matches(msg, keys.Remove):
		if m.apply(m.editor.RemoveComponent(col, idx)) {
			m.dropDrafts(col)
		}
	case key.Matches(msg, keys.Type):
		if idx < len(comps) && m.apply(m.editor.SetComponentType(col, idx, comps[idx].Type.Next())) {
			delete(m.drafts, slot{col: col, idx: idx})
		}
	case key.Matches(msg, keys.MoveUp):
		if m.apply(m.editor.MoveComponent(col, idx, -1)) && idx > 0 {
			m.dropDrafts(col)
			m.sync()
			m.components.Select(idx - 1)
			return m, nil
		}
	case key.Matches(msg, keys.MoveDown):
		if m.apply(m.editor.MoveComponent(col, idx, 1)) && idx < len(comps)-1 {
			m.dropDrafts(col)
			m.sync()
			m.components.Select(idx + 1)
			return m, nil
		}
	case key.Matches(msg, keys.Edit):
		if idx < len(comps) {
			text := layout.FormatOptions(comps[idx].Options)
			if d, ok := m.drafts[slot{col: col, idx: idx}]; ok {
				text = d.text
			}
			m.options.SetValue(text)
			m.focus = focusOptions
			cmd := m.options.Focus()
			return m, cmd
		}
	}

	m.sync()
	return m, nil
}

// handleOptionsKey forwards typing to the field. Leaving the field parses
// the text; on failure the text stays and an inline error is shown.
func (m Model) handleOptionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, keys.Blur) {
		var cmd tea.Cmd
		m.options, cmd = m.options.Update(msg)
		return m, cmd
	}

	col := m.editor.OpenIndex()
	idx := m.components.Index()
	text := m.options.Value()

	m.options.Blur()
	m.focus = focusComponents

	if err := m.editor.SetComponentOptions(col, idx, text); err != nil {
		m.drafts[slot{col: col, idx: idx}] = draft{text: text, err: errorText(err)}
		m.log.Debug("options rejected", "column", col, "index", idx, "reason", err.Error())
		return m, nil
	}
	delete(m.drafts, slot{col: col, idx: idx})
	m.sync()
	return m, nil
}

// apply records err as the notice and reports whether the call succeeded.
func (m *Model) apply(err error) bool {
	if err != nil {
		m.notice = errorText(err)
		return false
	}
	m.notice = ""
	return true
}

func errorText(err error) string {
	var verr *tberrors.ValidationError
	if errors.As(err, &verr) {
		return verr.Field + ": " + verr.Message
	}
	return err.Error()
}
