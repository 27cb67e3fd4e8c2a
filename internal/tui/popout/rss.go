package popout

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/alexisbeaulieu97/tilebar/internal/feed/rss"
	"github.com/alexisbeaulieu97/tilebar/internal/logger"
	"github.com/alexisbeaulieu97/tilebar/internal/poller"
	"github.com/alexisbeaulieu97/tilebar/internal/seen"
	"github.com/alexisbeaulieu97/tilebar/internal/theme"
)

// RSSServices are the collaborators of the RSS window.
type RSSServices struct {
	Poller  *poller.Poller[rss.Item]
	Seen    *seen.Set
	Open    Opener
	Palette theme.Palette
	Log     *logger.Logger
}

type rssUpdatedMsg poller.Snapshot[rss.Item]

type rssClosedMsg struct{}

type markedMsg struct {
	err error
}

func waitForRSS(ch <-chan poller.Snapshot[rss.Item]) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return rssClosedMsg{}
		}
		return rssUpdatedMsg(snap)
	}
}

type rssEntry struct {
	item   rss.Item
	unseen bool
}

func (e rssEntry) Title() string {
	if e.unseen {
		return "● " + e.item.Title
	}
	return "  " + e.item.Title
}

func (e rssEntry) Description() string {
	parts := []string{e.item.Source}
	if !e.item.Published.IsZero() {
		parts = append(parts, humanize.Time(e.item.Published))
	}
	return "  " + strings.Join(parts, " · ")
}

func (e rssEntry) FilterValue() string { return e.item.Title }

// RSSModel lists feed items newest first. Opening an item marks it seen.
type RSSModel struct {
	ctx context.Context
	svc RSSServices

	list     list.Model
	spinner  spinner.Model
	help     help.Model
	showHelp bool

	items    []rss.Item
	fetchErr error
	fetching bool
	notice   string
}

// NewRSS creates the RSS window and shows the poller's current items.
func NewRSS(ctx context.Context, svc RSSServices) RSSModel {
	if svc.Open == nil {
		svc.Open = OpenInBrowser
	}
	if svc.Palette.Text == "" {
		svc.Palette = theme.ForFlavor(theme.FlavorMocha)
	}

	m := RSSModel{
		ctx:      ctx,
		svc:      svc,
		list:     newList("RSS", svc.Palette),
		spinner:  newSpinner(svc.Palette),
		help:     help.New(),
		fetching: true,
	}
	if svc.Poller != nil {
		snap := svc.Poller.Snapshot()
		if !snap.UpdatedAt.IsZero() || snap.LastError != nil {
			m.fetching = false
		}
		m.items, m.fetchErr = snap.Items, snap.LastError
	}
	m.rebuild()
	return m
}

// Init starts the spinner and listens for poller updates.
func (m RSSModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForRSS(m.updates()))
}

func (m RSSModel) updates() <-chan poller.Snapshot[rss.Item] {
	if m.svc.Poller == nil {
		return nil
	}
	return m.svc.Poller.Updates()
}

// Unseen reports how many listed items have not been opened.
func (m RSSModel) Unseen() int {
	n := 0
	for _, it := range m.list.Items() {
		if e, ok := it.(rssEntry); ok && e.unseen {
			n++
		}
	}
	return n
}

func (m *RSSModel) rebuild() {
	entries := make([]list.Item, len(m.items))
	for i, item := range m.items {
		unseen := true
		if m.svc.Seen != nil {
			unseen = !m.svc.Seen.Has(item.Identity())
		}
		entries[i] = rssEntry{item: item, unseen: unseen}
	}
	cursor := m.list.Index()
	m.list.SetItems(entries)
	if cursor >= len(entries) {
		cursor = len(entries) - 1
	}
	if cursor >= 0 {
		m.list.Select(cursor)
	}
	m.list.Title = fmt.Sprintf("RSS · %d unread", m.Unseen())
}

// Update handles incoming messages and updates the model.
func (m RSSModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-3)
		m.help.Width = msg.Width
		return m, nil

	case rssUpdatedMsg:
		m.items, m.fetchErr = msg.Items, msg.LastError
		m.fetching = false
		m.rebuild()
		return m, waitForRSS(m.updates())

	case rssClosedMsg, refreshDoneMsg:
		return m, nil

	case markedMsg:
		if msg.err != nil {
			m.notice = "could not save read state: " + msg.err.Error()
		}
		m.rebuild()
		return m, nil

	case openedMsg:
		if msg.err != nil {
			m.notice = "could not open link: " + msg.err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m RSSModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch {
	case key.Matches(msg, keys.Quit), key.Matches(msg, keys.ForceEnd):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, keys.Up):
		m.list.CursorUp()
	case key.Matches(msg, keys.Down):
		m.list.CursorDown()
	case key.Matches(msg, keys.Open):
		entry, ok := m.list.SelectedItem().(rssEntry)
		if !ok {
			return m, nil
		}
		cmds := []tea.Cmd{m.markCmd(entry.item.Identity())}
		if entry.item.Link != "" {
			cmds = append(cmds, openCmd(m.svc.Open, entry.item.Link))
		}
		return m, tea.Batch(cmds...)
	case key.Matches(msg, keys.MarkAll):
		ids := make([]string, len(m.items))
		for i, item := range m.items {
			ids[i] = item.Identity()
		}
		return m, m.markCmd(ids...)
	case key.Matches(msg, keys.Refresh):
		if m.svc.Poller == nil {
			return m, nil
		}
		m.fetching = true
		return m, tea.Batch(m.spinner.Tick, refreshCmd(m.ctx, m.svc.Poller.Refresh))
	}
	return m, nil
}

func (m RSSModel) markCmd(ids ...string) tea.Cmd {
	if m.svc.Seen == nil || len(ids) == 0 {
		return nil
	}
	set, ctx := m.svc.Seen, m.ctx
	return func() tea.Msg {
		return markedMsg{err: set.Mark(ctx, ids...)}
	}
}

// View renders the list and a status line.
func (m RSSModel) View() string {
	var b strings.Builder
	if len(m.items) == 0 && !m.fetching {
		b.WriteString(mutedStyle(m.svc.Palette).Render("No items."))
	} else {
		b.WriteString(m.list.View())
	}
	if line := statusLine(m.svc.Palette, m.fetching, m.spinner, m.fetchErr, m.notice); line != "" {
		b.WriteString("\n" + line)
	}
	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(m.help.FullHelpView(rssHelp{}.FullHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(rssHelp{}.ShortHelp()))
	}
	return b.String()
}
