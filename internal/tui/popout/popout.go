// Package popout holds the RSS and Notion list windows that open from the
// bar. Both read from the same pollers the bar uses and refresh them after
// every change the user makes.
package popout

import (
	"context"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"

	"github.com/alexisbeaulieu97/tilebar/internal/theme"
)

// Opener shows a URL to the user.
type Opener func(url string) error

// OpenInBrowser opens url with the system browser.
func OpenInBrowser(url string) error {
	return browser.OpenURL(url)
}

type refreshDoneMsg struct{}

type openedMsg struct {
	err error
}

// refreshCmd runs refresh off the UI goroutine. The new items arrive on the
// poller's update channel.
func refreshCmd(ctx context.Context, refresh func(context.Context)) tea.Cmd {
	if refresh == nil {
		return nil
	}
	return func() tea.Msg {
		refresh(ctx)
		return refreshDoneMsg{}
	}
}

func openCmd(open Opener, url string) tea.Cmd {
	return func() tea.Msg {
		return openedMsg{err: open(url)}
	}
}

func newList(title string, palette theme.Palette) list.Model {
	delegate := list.NewDefaultDelegate()
	accent := palette.Resolve(theme.Mauve, theme.Blue)
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(accent).BorderForeground(accent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(palette.Subtext).BorderForeground(accent)

	l := list.New(nil, delegate, 0, 0)
	l.Title = title
	l.Styles.Title = l.Styles.Title.Background(accent).Foreground(palette.Base)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

func newSpinner(palette theme.Palette) spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(palette.Resolve(theme.Mauve, theme.Blue))),
	)
}

func mutedStyle(p theme.Palette) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.Muted)
}

func errorStyle(p theme.Palette) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.Resolve(theme.Red, theme.Red))
}

// statusLine is the line under the list: a spinner while fetching, the last
// error or a notice.
func statusLine(p theme.Palette, fetching bool, spin spinner.Model, fetchErr error, notice string) string {
	switch {
	case notice != "":
		return errorStyle(p).Render(notice)
	case fetching:
		return spin.View() + mutedStyle(p).Render(" fetching…")
	case fetchErr != nil:
		return errorStyle(p).Render("last fetch failed: " + fetchErr.Error())
	default:
		return ""
	}
}
