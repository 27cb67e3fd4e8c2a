package bar

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/tilebar/internal/feed/notion"
	"github.com/alexisbeaulieu97/tilebar/internal/feed/rss"
	"github.com/alexisbeaulieu97/tilebar/internal/host"
	"github.com/alexisbeaulieu97/tilebar/internal/layout"
	"github.com/alexisbeaulieu97/tilebar/internal/poller"
)

func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// sampleCmd reads every host provider once.
func sampleCmd(ctx context.Context, rt host.Runtime, iface string) tea.Cmd {
	return func() tea.Msg {
		snap, err := rt.Sample(ctx, iface)
		return hostSampledMsg{Snapshot: snap, Err: err}
	}
}

func waitForLayout(ch <-chan layout.Layout) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		l, ok := <-ch
		if !ok {
			return subscriptionClosedMsg{Name: "layout"}
		}
		return layoutChangedMsg{Layout: l}
	}
}

func waitForRSS(ch <-chan poller.Snapshot[rss.Item]) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return subscriptionClosedMsg{Name: "rss"}
		}
		return rssUpdatedMsg(snap)
	}
}

func waitForNotion(ch <-chan poller.Snapshot[notion.Task]) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return subscriptionClosedMsg{Name: "notion"}
		}
		return notionUpdatedMsg(snap)
	}
}

func waitForSeen(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return subscriptionClosedMsg{Name: "seen"}
		}
		return seenChangedMsg{}
	}
}

// controlCmd runs a media or WM action and reports its outcome.
func controlCmd(ctx context.Context, action string, run func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return controlDoneMsg{Action: action, Err: run(ctx)}
	}
}

// refreshCmd asks a poller for an immediate fetch. The result arrives
// through the poller's update channel.
func refreshCmd(ctx context.Context, refresh func(context.Context)) tea.Cmd {
	return func() tea.Msg {
		refresh(ctx)
		return nil
	}
}
