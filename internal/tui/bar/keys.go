package bar

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Config    key.Binding
	RSS       key.Binding
	Notion    key.Binding
	Refresh   key.Binding
	Direction key.Binding
	PlayPause key.Binding
	Next      key.Binding
	Previous  key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Config: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "edit layout"),
	),
	RSS: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rss"),
	),
	Notion: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "todos"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "refresh feeds"),
	),
	Direction: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "toggle direction"),
	),
	PlayPause: key.NewBinding(
		key.WithKeys(" ", "p"),
		key.WithHelp("space", "play/pause"),
	),
	Next: key.NewBinding(
		key.WithKeys("."),
		key.WithHelp(".", "next"),
	),
	Previous: key.NewBinding(
		key.WithKeys(","),
		key.WithHelp(",", "previous"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Config, k.RSS, k.Notion, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Config, k.RSS, k.Notion, k.Refresh},
		{k.Direction, k.PlayPause, k.Next, k.Previous},
		{k.Help, k.Quit},
	}
}
