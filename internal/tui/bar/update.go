package bar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/tilebar/internal/host"
)

// Update handles incoming messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.now = time.Time(msg)
		return m, tea.Batch(
			sampleCmd(m.ctx, m.svc.Host, m.networkInterface()),
			tickCmd(m.svc.SampleEvery),
		)

	case hostSampledMsg:
		m.snapshot = msg.Snapshot
		if msg.Err != nil {
			m.svc.Log.Debug(fmt.Sprintf("host sample incomplete: %v", msg.Err))
		}
		return m, nil

	case layoutChangedMsg:
		m.layout = msg.Layout
		m.svc.Log.Debug("layout changed")
		return m, tea.Batch(
			waitForLayout(m.layoutCh),
			sampleCmd(m.ctx, m.svc.Host, m.networkInterface()),
		)

	case rssUpdatedMsg:
		m.rssItems, m.rssErr = msg.Items, msg.LastError
		m.recountFeeds()
		return m, waitForRSS(m.svc.RSS.Updates())

	case notionUpdatedMsg:
		m.notionTasks, m.notionErr = msg.Items, msg.LastError
		m.recountFeeds()
		return m, waitForNotion(m.svc.Notion.Updates())

	case seenChangedMsg:
		m.recountFeeds()
		return m, waitForSeen(m.seenCh)

	case subscriptionClosedMsg:
		m.svc.Log.Debug("subscription closed", "feed", msg.Name)
		return m, nil

	case controlDoneMsg:
		if msg.Err != nil {
			m.notice = controlNotice(msg.Action, msg.Err)
			m.svc.Log.Warn(msg.Err, msg.Action+" failed")
		} else {
			m.notice = ""
		}
		return m, sampleCmd(m.ctx, m.svc.Host, m.networkInterface())

	case SurfaceClosedMsg:
		m.notice = ""
		if msg.Err != nil {
			m.notice = fmt.Sprintf("%s: %v", msg.Surface, msg.Err)
			m.svc.Log.Warn(msg.Err, msg.Surface+" exited with an error")
		}
		// A popout may have marked items or changed tasks.
		var cmds []tea.Cmd
		if m.svc.Notion != nil {
			cmds = append(cmds, refreshCmd(m.ctx, m.svc.Notion.Refresh))
		}
		m.recountFeeds()
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, keys.Config):
		return m.launch("config")

	case key.Matches(msg, keys.RSS):
		return m.launch("popout", "rss")

	case key.Matches(msg, keys.Notion):
		return m.launch("popout", "notion")

	case key.Matches(msg, keys.Refresh):
		var cmds []tea.Cmd
		if m.svc.RSS != nil {
			cmds = append(cmds, refreshCmd(m.ctx, m.svc.RSS.Refresh))
		}
		if m.svc.Notion != nil {
			cmds = append(cmds, refreshCmd(m.ctx, m.svc.Notion.Refresh))
		}
		return m, tea.Batch(cmds...)

	case key.Matches(msg, keys.Direction):
		if m.svc.Host.WM == nil {
			return m, nil
		}
		return m, controlCmd(m.ctx, "toggle direction", m.svc.Host.WM.ToggleDirection)

	case key.Matches(msg, keys.PlayPause):
		if m.svc.Host.Media == nil {
			return m, nil
		}
		return m, controlCmd(m.ctx, "play/pause", m.svc.Host.Media.PlayPause)

	case key.Matches(msg, keys.Next):
		if m.svc.Host.Media == nil {
			return m, nil
		}
		return m, controlCmd(m.ctx, "next track", m.svc.Host.Media.Next)

	case key.Matches(msg, keys.Previous):
		if m.svc.Host.Media == nil {
			return m, nil
		}
		return m, controlCmd(m.ctx, "previous track", m.svc.Host.Media.Previous)
	}

	return m, nil
}

func (m Model) launch(args ...string) (tea.Model, tea.Cmd) {
	if m.svc.Launch == nil {
		m.notice = strings.Join(args, " ") + " is not available"
		return m, nil
	}
	return m, m.svc.Launch(args...)
}

func controlNotice(action string, err error) string {
	if errors.Is(err, host.ErrUnsupported) {
		return action + " is not supported here"
	}
	return fmt.Sprintf("%s failed: %v", action, err)
}
