package options

import "github.com/alexisbeaulieu97/tilebar/internal/theme"

// Options is the strongly typed configuration of one widget kind.
type Options interface {
	Kind() Kind
}

// Common holds the keys every widget accepts.
type Common struct {
	ColorTheme theme.Name `json:"colorTheme" validate:"color_theme"`
	Label      string     `json:"label" validate:"omitempty,max=24"`
}

// Base returns the shared keys of any widget options.
func (c Common) Base() Common { return c }

type CPU struct {
	Common
	WarnThreshold int  `json:"warnThreshold" validate:"min=1,max=100"`
	ShowIcon      bool `json:"showIcon"`
}

type Memory struct {
	Common
	WarnThreshold int    `json:"warnThreshold" validate:"min=1,max=100"`
	ShowIcon      bool   `json:"showIcon"`
	Unit          string `json:"unit" validate:"oneof=percent used"`
}

type Battery struct {
	Common
	LowThreshold int  `json:"lowThreshold" validate:"min=1,max=100"`
	ShowPercent  bool `json:"showPercent"`
}

type Network struct {
	Common
	Interface   string `json:"interface" validate:"max=32"`
	ShowTraffic bool   `json:"showTraffic"`
}

type Media struct {
	Common
	MaxLength  int  `json:"maxLength" validate:"min=5,max=200"`
	ShowArtist bool `json:"showArtist"`
}

type Clock struct {
	Common
	Format     string `json:"format" validate:"required,max=64"`
	DateFormat string `json:"dateFormat" validate:"max=64"`
}

type Direction struct {
	Common
}

type RSS struct {
	Common
	ShowZero bool `json:"showZero"`
}

type Notion struct {
	Common
	ShowZero bool `json:"showZero"`
}

func (CPU) Kind() Kind       { return KindCPU }
func (Memory) Kind() Kind    { return KindMemory }
func (Battery) Kind() Kind   { return KindBattery }
func (Network) Kind() Kind   { return KindNetwork }
func (Media) Kind() Kind     { return KindMedia }
func (Clock) Kind() Kind     { return KindClock }
func (Direction) Kind() Kind { return KindDirection }
func (RSS) Kind() Kind       { return KindRSS }
func (Notion) Kind() Kind    { return KindNotion }

// Defaults returns a pointer to the documented defaults for kind, or nil for
// an unknown kind.
func Defaults(kind Kind) Options {
	switch kind {
	case KindCPU:
		return &CPU{Common: Common{ColorTheme: theme.Blue}, WarnThreshold: 80, ShowIcon: true}
	case KindMemory:
		return &Memory{Common: Common{ColorTheme: theme.Mauve}, WarnThreshold: 85, ShowIcon: true, Unit: "percent"}
	case KindBattery:
		return &Battery{Common: Common{ColorTheme: theme.Green}, LowThreshold: 20, ShowPercent: true}
	case KindNetwork:
		return &Network{Common: Common{ColorTheme: theme.Sky}}
	case KindMedia:
		return &Media{Common: Common{ColorTheme: theme.Pink}, MaxLength: 30, ShowArtist: true}
	case KindClock:
		return &Clock{Common: Common{ColorTheme: theme.Lavender}, Format: "15:04", DateFormat: "Mon 02 Jan"}
	case KindDirection:
		return &Direction{Common: Common{ColorTheme: theme.Peach}}
	case KindRSS:
		return &RSS{Common: Common{ColorTheme: theme.Yellow, Label: "RSS"}}
	case KindNotion:
		return &Notion{Common: Common{ColorTheme: theme.Teal, Label: "Todo"}}
	default:
		return nil
	}
}
