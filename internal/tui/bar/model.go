// Package bar is the root view: it composes the layout's columns from
// widget renderings and keeps them current from the host, the feed pollers
// and layout changes made by any tilebar process.
package bar

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/tilebar/internal/feed/notion"
	"github.com/alexisbeaulieu97/tilebar/internal/feed/rss"
	"github.com/alexisbeaulieu97/tilebar/internal/host"
	"github.com/alexisbeaulieu97/tilebar/internal/layout"
	"github.com/alexisbeaulieu97/tilebar/internal/logger"
	"github.com/alexisbeaulieu97/tilebar/internal/options"
	"github.com/alexisbeaulieu97/tilebar/internal/poller"
	"github.com/alexisbeaulieu97/tilebar/internal/seen"
	"github.com/alexisbeaulieu97/tilebar/internal/theme"
	"github.com/alexisbeaulieu97/tilebar/internal/widget"
)

// DefaultSampleEvery is used when Services.SampleEvery is unset.
const DefaultSampleEvery = 2 * time.Second

// Launcher starts another tilebar surface, such as "config" or
// "popout rss", and reports back with a SurfaceClosedMsg.
type Launcher func(args ...string) tea.Cmd

// Services are the collaborators the bar reads from and controls. Nil
// pollers, seen set, repository or launcher disable the matching feature.
type Services struct {
	WM          string
	Host        host.Runtime
	Layouts     *layout.Repository
	RSS         *poller.Poller[rss.Item]
	Notion      *poller.Poller[notion.Task]
	RSSSeen     *seen.Set
	Launch      Launcher
	SampleEvery time.Duration
	Palette     theme.Palette
	Glyphs      widget.Glyphs
	Log         *logger.Logger
}

// Model is the bar's state.
type Model struct {
	ctx  context.Context
	svc  Services
	help help.Model

	layout   layout.Layout
	snapshot host.Snapshot
	now      time.Time

	rssItems    []rss.Item
	rssErr      error
	notionTasks []notion.Task
	notionErr   error
	feeds       widget.Feeds

	showHelp bool
	notice   string

	width  int
	height int

	layoutCh <-chan layout.Layout
	seenCh   <-chan struct{}
}

// New creates the bar. Subscriptions stop when ctx is done.
func New(ctx context.Context, svc Services) Model {
	if svc.SampleEvery <= 0 {
		svc.SampleEvery = DefaultSampleEvery
	}
	if svc.Palette.Text == "" {
		svc.Palette = theme.ForFlavor(theme.FlavorMocha)
	}
	if svc.Glyphs == (widget.Glyphs{}) {
		svc.Glyphs = widget.Unicode
	}

	m := Model{
		ctx:    ctx,
		svc:    svc,
		help:   help.New(),
		layout: layout.DefaultLayout(svc.WM),
		now:    time.Now(),
	}

	if svc.Layouts != nil {
		m.layout = svc.Layouts.Load(ctx, svc.WM)
		m.layoutCh = svc.Layouts.Watch(ctx, svc.WM)
	}
	if svc.RSSSeen != nil {
		m.seenCh = svc.RSSSeen.Watch(ctx)
	}
	if svc.RSS != nil {
		snap := svc.RSS.Snapshot()
		m.rssItems, m.rssErr = snap.Items, snap.LastError
	}
	if svc.Notion != nil {
		snap := svc.Notion.Snapshot()
		m.notionTasks, m.notionErr = snap.Items, snap.LastError
	}
	m.recountFeeds()
	return m
}

// Init starts host sampling and every subscription.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		sampleCmd(m.ctx, m.svc.Host, m.networkInterface()),
		tickCmd(m.svc.SampleEvery),
		waitForLayout(m.layoutCh),
		waitForSeen(m.seenCh),
	}
	if m.svc.RSS != nil {
		cmds = append(cmds, waitForRSS(m.svc.RSS.Updates()))
	}
	if m.svc.Notion != nil {
		cmds = append(cmds, waitForNotion(m.svc.Notion.Updates()))
	}
	return tea.Batch(cmds...)
}

// Layout returns the layout being shown.
func (m Model) Layout() layout.Layout {
	return m.layout
}

// Feeds returns the current badge counts.
func (m Model) Feeds() widget.Feeds {
	return m.feeds
}

func (m *Model) recountFeeds() {
	ids := make([]string, len(m.rssItems))
	for i, item := range m.rssItems {
		ids[i] = item.Identity()
	}

	unseen := len(ids)
	if m.svc.RSSSeen != nil {
		unseen = m.svc.RSSSeen.Unseen(ids)
	}

	m.feeds = widget.Feeds{
		RSSUnseen:     unseen,
		RSSFailed:     m.rssErr != nil,
		NotionPending: notion.Pending(m.notionTasks),
		NotionFailed:  m.notionErr != nil,
	}
}

// networkInterface is the interface named by the first network widget,
// or "" to let the host pick.
func (m Model) networkInterface() string {
	for _, col := range m.layout.Columns {
		for _, c := range col.Components {
			if c.Type != options.KindNetwork {
				continue
			}
			if opts, ok := options.MustDecode(c.Type, c.Options).(*options.Network); ok {
				return opts.Interface
			}
		}
	}
	return ""
}

func (m Model) env() widget.Env {
	return widget.Env{
		Host:    m.snapshot,
		Palette: m.svc.Palette,
		Glyphs:  m.svc.Glyphs,
		Feeds:   m.feeds,
		Now:     m.now,
	}
}
