package widget

// Glyphs is the icon set a renderer draws with.
type Glyphs struct {
	CPU      string
	Memory   string
	Charging string
	// Battery holds the empty, quarter, half, three-quarter and full icons.
	Battery [5]string
	// Wifi holds the disconnected, weak, fair, good and strong icons.
	Wifi       [5]string
	Ethernet   string
	Play       string
	Pause      string
	Horizontal string
	Vertical   string
	RSS        string
	Notion     string
	Down       string
	Up         string
	Ellipsis   string
	Failed     string
}

// Unicode is the default icon set.
var Unicode = Glyphs{
	CPU:        "⚙",
	Memory:     "▤",
	Charging:   "⚡",
	Battery:    [5]string{"□", "▂", "▄", "▆", "█"},
	Wifi:       [5]string{"✗", "▂", "▂▄", "▂▄▆", "▂▄▆█"},
	Ethernet:   "⇄",
	Play:       "▶",
	Pause:      "⏸",
	Horizontal: "⬌",
	Vertical:   "⬍",
	RSS:        "◉",
	Notion:     "☑",
	Down:       "↓",
	Up:         "↑",
	Ellipsis:   "…",
	Failed:     "⚠",
}

// ASCII is used when the terminal cannot draw Unicode.
var ASCII = Glyphs{
	CPU:        "cpu",
	Memory:     "mem",
	Charging:   "+",
	Battery:    [5]string{"[    ]", "[=   ]", "[==  ]", "[=== ]", "[====]"},
	Wifi:       [5]string{"x", ".", "..", "...", "...."},
	Ethernet:   "eth",
	Play:       ">",
	Pause:      "||",
	Horizontal: "<>",
	Vertical:   "^v",
	RSS:        "rss",
	Notion:     "todo",
	Down:       "v",
	Up:         "^",
	Ellipsis:   "...",
	Failed:     "!",
}
