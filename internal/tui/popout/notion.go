package popout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/alexisbeaulieu97/tilebar/internal/feed/notion"
	"github.com/alexisbeaulieu97/tilebar/internal/logger"
	"github.com/alexisbeaulieu97/tilebar/internal/poller"
	"github.com/alexisbeaulieu97/tilebar/internal/seen"
	"github.com/alexisbeaulieu97/tilebar/internal/theme"
)

// TaskStore changes tasks at the source.
type TaskStore interface {
	SetDone(ctx context.Context, taskID string, done bool) error
	SetStatus(ctx context.Context, taskID, status string) error
	StatusOptions(ctx context.Context) ([]string, error)
	Create(ctx context.Context, title string) (notion.Task, error)
}

var errNoStatusOptions = errors.New("the status property has no options")

// cycleStatusCmd moves task to the status option after its current one.
func cycleStatusCmd(ctx context.Context, store TaskStore, task notion.Task) tea.Cmd {
	return func() tea.Msg {
		options, err := store.StatusOptions(ctx)
		if err != nil {
			return mutationMsg{action: "change status", err: err}
		}
		next := notion.NextStatus(options, task.Status)
		if next == "" {
			return mutationMsg{action: "change status", err: errNoStatusOptions}
		}
		return mutationMsg{action: "change status", err: store.SetStatus(ctx, task.ID, next)}
	}
}

// NotionServices are the collaborators of the Notion window.
type NotionServices struct {
	Poller  *poller.Poller[notion.Task]
	Tasks   TaskStore
	Seen    *seen.Set
	Open    Opener
	Palette theme.Palette
	Log     *logger.Logger
}

type notionUpdatedMsg poller.Snapshot[notion.Task]

type notionClosedMsg struct{}

type mutationMsg struct {
	action string
	err    error
}

func waitForNotion(ch <-chan poller.Snapshot[notion.Task]) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return notionClosedMsg{}
		}
		return notionUpdatedMsg(snap)
	}
}

type taskEntry struct {
	task  notion.Task
	fresh bool
}

func (e taskEntry) Title() string {
	box := "[ ] "
	if e.task.Done {
		box = "[x] "
	}
	title := box + e.task.Title
	if e.fresh {
		title += " ●"
	}
	return title
}

func (e taskEntry) Description() string {
	var parts []string
	if e.task.Status != "" {
		parts = append(parts, e.task.Status)
	}
	if e.task.Due != nil {
		parts = append(parts, "due "+humanize.Time(*e.task.Due))
	}
	if len(parts) == 0 {
		return "    no due date"
	}
	return "    " + strings.Join(parts, " · ")
}

func (e taskEntry) FilterValue() string { return e.task.Title }

// NotionModel lists tasks, toggles them and creates new ones. Every change
// is followed by a refresh of the poller so the bar's badge follows.
type NotionModel struct {
	ctx context.Context
	svc NotionServices

	list     list.Model
	input    textinput.Model
	adding   bool
	spinner  spinner.Model
	help     help.Model
	showHelp bool

	tasks    []notion.Task
	fresh    map[string]bool
	fetchErr error
	fetching bool
	busy     bool
	notice   string
}

// NewNotion creates the Notion window and shows the poller's current tasks.
func NewNotion(ctx context.Context, svc NotionServices) NotionModel {
	if svc.Open == nil {
		svc.Open = OpenInBrowser
	}
	if svc.Palette.Text == "" {
		svc.Palette = theme.ForFlavor(theme.FlavorMocha)
	}

	input := textinput.New()
	input.Placeholder = "New task"
	input.CharLimit = 200
	input.Prompt = "+ "

	m := NotionModel{
		ctx:      ctx,
		svc:      svc,
		list:     newList("Todo", svc.Palette),
		input:    input,
		spinner:  newSpinner(svc.Palette),
		help:     help.New(),
		fresh:    make(map[string]bool),
		fetching: true,
	}
	if svc.Poller != nil {
		snap := svc.Poller.Snapshot()
		if !snap.UpdatedAt.IsZero() || snap.LastError != nil {
			m.fetching = false
		}
		m.tasks, m.fetchErr = snap.Items, snap.LastError
	}
	m.noteFresh()
	m.rebuild()
	return m
}

// Init starts the spinner, listens for poller updates and marks the tasks
// already shown as seen.
func (m NotionModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForNotion(m.updates()), m.markShownCmd())
}

func (m NotionModel) updates() <-chan poller.Snapshot[notion.Task] {
	if m.svc.Poller == nil {
		return nil
	}
	return m.svc.Poller.Updates()
}

// Pending reports how many listed tasks are not done.
func (m NotionModel) Pending() int {
	return notion.Pending(m.tasks)
}

// noteFresh flags tasks that were not in the seen set when they first
// appeared. The flag lasts for the life of the window.
func (m *NotionModel) noteFresh() {
	if m.svc.Seen == nil {
		return
	}
	for _, task := range m.tasks {
		id := task.Identity()
		if !m.svc.Seen.Has(id) {
			m.fresh[id] = true
		}
	}
}

func (m *NotionModel) rebuild() {
	entries := make([]list.Item, len(m.tasks))
	for i, task := range m.tasks {
		entries[i] = taskEntry{task: task, fresh: m.fresh[task.Identity()]}
	}
	cursor := m.list.Index()
	m.list.SetItems(entries)
	if cursor >= len(entries) {
		cursor = len(entries) - 1
	}
	if cursor >= 0 {
		m.list.Select(cursor)
	}
	m.list.Title = fmt.Sprintf("Todo · %d pending", m.Pending())
}

func (m NotionModel) markShownCmd() tea.Cmd {
	if m.svc.Seen == nil || len(m.tasks) == 0 {
		return nil
	}
	ids := make([]string, len(m.tasks))
	for i, task := range m.tasks {
		ids[i] = task.Identity()
	}
	set, ctx := m.svc.Seen, m.ctx
	return func() tea.Msg {
		return markedMsg{err: set.Mark(ctx, ids...)}
	}
}

// Update handles incoming messages and updates the model.
func (m NotionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-4)
		m.input.Width = msg.Width - 4
		m.help.Width = msg.Width
		return m, nil

	case notionUpdatedMsg:
		m.tasks, m.fetchErr = msg.Items, msg.LastError
		m.fetching = false
		m.noteFresh()
		m.rebuild()
		return m, tea.Batch(waitForNotion(m.updates()), m.markShownCmd())

	case notionClosedMsg, refreshDoneMsg:
		return m, nil

	case markedMsg:
		if msg.err != nil {
			m.svc.Log.Warn(msg.err, "could not save seen tasks")
		}
		return m, nil

	case mutationMsg:
		m.busy = false
		if msg.err != nil {
			m.notice = fmt.Sprintf("could not %s: %v", msg.action, msg.err)
			return m, nil
		}
		cmd := m.refresh()
		return m, cmd

	case openedMsg:
		if msg.err != nil {
			m.notice = "could not open task: " + msg.err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.adding {
			return m.handleInputKey(msg)
		}
		return m.handleKey(msg)
	}

	if m.adding {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *NotionModel) refresh() tea.Cmd {
	if m.svc.Poller == nil {
		return nil
	}
	m.fetching = true
	return tea.Batch(m.spinner.Tick, refreshCmd(m.ctx, m.svc.Poller.Refresh))
}

func (m NotionModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
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
	case key.Matches(msg, keys.Refresh):
		cmd := m.refresh()
		return m, cmd
	case key.Matches(msg, keys.Open):
		entry, ok := m.list.SelectedItem().(taskEntry)
		if !ok || entry.task.URL == "" {
			return m, nil
		}
		return m, openCmd(m.svc.Open, entry.task.URL)
	case key.Matches(msg, keys.Toggle):
		entry, ok := m.list.SelectedItem().(taskEntry)
		if !ok || m.svc.Tasks == nil || m.busy {
			return m, nil
		}
		m.busy = true
		store, ctx := m.svc.Tasks, m.ctx
		task := entry.task
		return m, func() tea.Msg {
			return mutationMsg{action: "update task", err: store.SetDone(ctx, task.ID, !task.Done)}
		}
	case key.Matches(msg, keys.Status):
		entry, ok := m.list.SelectedItem().(taskEntry)
		if !ok || m.svc.Tasks == nil || m.busy {
			return m, nil
		}
		m.busy = true
		return m, cycleStatusCmd(m.ctx, m.svc.Tasks, entry.task)
	case key.Matches(msg, keys.Add):
		if m.svc.Tasks == nil {
			m.notice = "adding tasks is not available"
			return m, nil
		}
		m.adding = true
		m.input.Reset()
		cmd := m.input.Focus()
		return m, cmd
	}
	return m, nil
}

func (m NotionModel) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.ForceEnd):
		return m, tea.Quit
	case key.Matches(msg, keys.Cancel):
		m.adding = false
		m.input.Blur()
		return m, nil
	case key.Matches(msg, keys.Submit):
		title := strings.TrimSpace(m.input.Value())
		if title == "" {
			m.notice = "task title is empty"
			return m, nil
		}
		m.adding = false
		m.input.Blur()
		m.busy = true
		m.notice = ""
		store, ctx := m.svc.Tasks, m.ctx
		return m, func() tea.Msg {
			_, err := store.Create(ctx, title)
			return mutationMsg{action: "add task", err: err}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the task list, the new-task field when open and a status
// line.
func (m NotionModel) View() string {
	var b strings.Builder
	if len(m.tasks) == 0 && !m.fetching {
		b.WriteString(mutedStyle(m.svc.Palette).Render("Nothing to do."))
	} else {
		b.WriteString(m.list.View())
	}
	if m.adding {
		b.WriteString("\n" + m.input.View())
	}
	if line := statusLine(m.svc.Palette, m.fetching || m.busy, m.spinner, m.fetchErr, m.notice); line != "" {
		b.WriteString("\n" + line)
	}
	b.WriteString("\n")
	var km help.KeyMap = notionHelp{}
	if m.adding {
		km = inputHelp{}
	}
	if m.showHelp {
		b.WriteString(m.help.FullHelpView(km.FullHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(km.ShortHelp()))
	}
	return b.String()
}
