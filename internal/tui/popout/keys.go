package popout

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	MarkAll  key.Binding
	Toggle   key.Binding
	Status   key.Binding
	Add      key.Binding
	Submit   key.Binding
	Cancel   key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
	ForceEnd key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Open:     key.NewBinding(key.WithKeys("enter", "o"), key.WithHelp("enter", "open")),
	MarkAll:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mark all read")),
	Toggle:   key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle done")),
	Status:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "next status")),
	Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
	Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
	Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Refresh:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "refresh")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "close")),
	ForceEnd: key.NewBinding(key.WithKeys("ctrl+c")),
}

type rssHelp struct{}

func (rssHelp) ShortHelp() []key.Binding {
	return []key.Binding{keys.Open, keys.MarkAll, keys.Refresh, keys.Quit, keys.Help}
}

func (h rssHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{{keys.Up, keys.Down}, h.ShortHelp()}
}

type notionHelp struct{}

func (notionHelp) ShortHelp() []key.Binding {
	return []key.Binding{keys.Toggle, keys.Status, keys.Add, keys.Open, keys.Refresh, keys.Quit, keys.Help}
}

func (h notionHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{{keys.Up, keys.Down}, h.ShortHelp()}
}

type inputHelp struct{}

func (inputHelp) ShortHelp() []key.Binding {
	return []key.Binding{keys.Submit, keys.Cancel}
}

func (h inputHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}
