// Package theme resolves symbolic color-theme names used in widget options
// to concrete terminal colors.
package theme

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Name is a symbolic accent color a widget can be themed with.
type Name string

const (
	Rosewater Name = "rosewater"
	Flamingo  Name = "flamingo"
	Pink      Name = "pink"
	Mauve     Name = "mauve"
	Red       Name = "red"
	Maroon    Name = "maroon"
	Peach     Name = "peach"
	Yellow    Name = "yellow"
	Green     Name = "green"
	Teal      Name = "teal"
	Sky       Name = "sky"
	Sapphire  Name = "sapphire"
	Blue      Name = "blue"
	Lavender  Name = "lavender"
)

// Flavor selects one of the built-in palettes.
type Flavor string

const (
	FlavorMocha Flavor = "mocha"
	FlavorLatte Flavor = "latte"
)

// Palette maps accent names to colors and carries the neutral tones the bar
// draws with.
type Palette struct {
	Flavor  Flavor
	accents map[Name]lipgloss.Color

	Text    lipgloss.Color
	Subtext lipgloss.Color
	Muted   lipgloss.Color
	Surface lipgloss.Color
	Base    lipgloss.Color
	Crust   lipgloss.Color
}

var flavors = map[Flavor]Palette{
	FlavorMocha: {
		Flavor: FlavorMocha,
		accents: map[Name]lipgloss.Color{
			Rosewater: "#f5e0dc",
			Flamingo:  "#f2cdcd",
			Pink:      "#f5c2e7",
			Mauve:     "#cba6f7",
			Red:       "#f38ba8",
			Maroon:    "#eba0ac",
			Peach:     "#fab387",
			Yellow:    "#f9e2af",
			Green:     "#a6e3a1",
			Teal:      "#94e2d5",
			Sky:       "#89dceb",
			Sapphire:  "#74c7ec",
			Blue:      "#89b4fa",
			Lavender:  "#b4befe",
		},
		Text:    "#cdd6f4",
		Subtext: "#a6adc8",
		Muted:   "#6c7086",
		Surface: "#313244",
		Base:    "#1e1e2e",
		Crust:   "#11111b",
	},
	FlavorLatte: {
		Flavor: FlavorLatte,
		accents: map[Name]lipgloss.Color{
			Rosewater: "#dc8a78",
			Flamingo:  "#dd7878",
			Pink:      "#ea76cb",
			Mauve:     "#8839ef",
			Red:       "#d20f39",
			Maroon:    "#e64553",
			Peach:     "#fe640b",
			Yellow:    "#df8e1d",
			Green:     "#40a02b",
			Teal:      "#179299",
			Sky:       "#04a5e5",
			Sapphire:  "#209fb5",
			Blue:      "#1e66f5",
			Lavender:  "#7287fd",
		},
		Text:    "#4c4f69",
		Subtext: "#6c6f85",
		Muted:   "#9ca0b0",
		Surface: "#ccd0da",
		Base:    "#eff1f5",
		Crust:   "#dce0e8",
	},
}

// ForFlavor returns the palette for f, falling back to mocha.
func ForFlavor(f Flavor) Palette {
	if p, ok := flavors[Flavor(strings.ToLower(string(f)))]; ok {
		return p
	}
	return flavors[FlavorMocha]
}

// Valid reports whether name is a known accent.
func Valid(name string) bool {
	_, ok := flavors[FlavorMocha].accents[Name(name)]
	return ok
}

// ValidFlavor reports whether f is a built-in flavor.
func ValidFlavor(f string) bool {
	_, ok := flavors[Flavor(f)]
	return ok
}

// Names lists every accent name in alphabetical order.
func Names() []Name {
	names := make([]Name, 0, len(flavors[FlavorMocha].accents))
	for name := range flavors[FlavorMocha].accents {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Resolve maps name to a color. Unknown names resolve to fallback, and an
// unknown fallback resolves to the palette's text color.
func (p Palette) Resolve(name, fallback Name) lipgloss.Color {
	if c, ok := p.accents[name]; ok {
		return c
	}
	if c, ok := p.accents[fallback]; ok {
		return c
	}
	return p.Text
}

// Accent returns a foreground style for name with the usual fallback rules.
func (p Palette) Accent(name, fallback Name) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.Resolve(name, fallback))
}
