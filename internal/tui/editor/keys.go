package editor

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Open      key.Binding
	Back      key.Binding
	Add       key.Binding
	Remove    key.Binding
	Align     key.Binding
	Width     key.Binding
	Rounded   key.Binding
	MarginX   key.Binding
	MarginXUp key.Binding
	MarginT   key.Binding
	MarginTUp key.Binding
	Type      key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding
	Edit      key.Binding
	Blur      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter", "right", "l"),
		key.WithHelp("enter", "open column"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "left", "h"),
		key.WithHelp("esc", "back"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add"),
	),
	Remove: key.NewBinding(
		key.WithKeys("x", "delete"),
		key.WithHelp("x", "remove"),
	),
	Align: key.NewBinding(
		key.WithKeys("A"),
		key.WithHelp("A", "cycle align"),
	),
	Width: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "cycle width"),
	),
	Rounded: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "cycle corners"),
	),
	MarginX: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[/]", "x margin"),
	),
	MarginXUp: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("[/]", "x margin"),
	),
	MarginT: key.NewBinding(
		key.WithKeys("{"),
		key.WithHelp("{/}", "top margin"),
	),
	MarginTUp: key.NewBinding(
		key.WithKeys("}"),
		key.WithHelp("{/}", "top margin"),
	),
	Type: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "cycle type"),
	),
	MoveUp: key.NewBinding(
		key.WithKeys("K", "shift+up"),
		key.WithHelp("K", "move up"),
	),
	MoveDown: key.NewBinding(
		key.WithKeys("J", "shift+down"),
		key.WithHelp("J", "move down"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit options"),
	),
	Blur: key.NewBinding(
		key.WithKeys("tab", "esc"),
		key.WithHelp("tab/esc", "apply options"),
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

// columnHelp is shown while the column list has focus.
type columnHelp struct{}

func (columnHelp) ShortHelp() []key.Binding {
	return []key.Binding{keys.Open, keys.Add, keys.Remove, keys.Align, keys.Width, keys.Rounded, keys.Help, keys.Quit}
}

func (columnHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{keys.Up, keys.Down, keys.Open},
		{keys.Add, keys.Remove, keys.Align, keys.Width, keys.Rounded},
		{keys.MarginX, keys.MarginT, keys.Help, keys.Quit},
	}
}

// componentHelp is shown while a column is open.
type componentHelp struct{}

func (componentHelp) ShortHelp() []key.Binding {
	return []key.Binding{keys.Back, keys.Add, keys.Remove, keys.Type, keys.MoveUp, keys.MoveDown, keys.Edit, keys.Quit}
}

func (componentHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{keys.Up, keys.Down, keys.Back},
		{keys.Add, keys.Remove, keys.Type},
		{keys.MoveUp, keys.MoveDown, keys.Edit},
		{keys.Help, keys.Quit},
	}
}

// optionsHelp is shown while the options field has focus.
type optionsHelp struct{}

func (optionsHelp) ShortHelp() []key.Binding {
	return []key.Binding{keys.Blur}
}

func (optionsHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{{keys.Blur}}
}
