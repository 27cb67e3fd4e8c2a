// Package layout models the bar's columns and components, persists them per
// window manager and provides the editor used to change them.
package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/tilebar/internal/options"
)

// Align is the horizontal placement of a column's content.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Valid reports whether a is a known alignment.
func (a Align) Valid() bool {
	switch a {
	case AlignLeft, AlignCenter, AlignRight:
		return true
	}
	return false
}

// Next cycles left → center → right → left.
func (a Align) Next() Align {
	switch a {
	case AlignLeft:
		return AlignCenter
	case AlignCenter:
		return AlignRight
	default:
		return AlignLeft
	}
}

// Corners is a set of rounded column corners.
type Corners uint8

const (
	TopLeft Corners = 1 << iota
	TopRight
	BottomLeft
	BottomRight

	NoCorners  Corners = 0
	AllCorners         = TopLeft | TopRight | BottomLeft | BottomRight
)

var cornerNames = []struct {
	corner Corners
	name   string
}{
	{TopLeft, "top-left"},
	{TopRight, "top-right"},
	{BottomLeft, "bottom-left"},
	{BottomRight, "bottom-right"},
}

// Has reports whether every corner in c is set.
func (cs Corners) Has(c Corners) bool {
	return cs&c == c
}

// Names lists the set corners in canonical order.
func (cs Corners) Names() []string {
	names := make([]string, 0, len(cornerNames))
	for _, entry := range cornerNames {
		if cs.Has(entry.corner) {
			names = append(names, entry.name)
		}
	}
	return names
}

// ParseCorner converts a corner name to its flag.
func ParseCorner(name string) (Corners, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "all" {
		return AllCorners, nil
	}
	for _, entry := range cornerNames {
		if entry.name == name {
			return entry.corner, nil
		}
	}
	return NoCorners, fmt.Errorf("unknown corner %q", name)
}

func (cs Corners) MarshalJSON() ([]byte, error) {
	if cs == AllCorners {
		return []byte(`"all"`), nil
	}
	return json.Marshal(cs.Names())
}

func (cs *Corners) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*cs = NoCorners
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		c, err := ParseCorner(single)
		if err != nil {
			return err
		}
		*cs = c
		return nil
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("rounded must be \"all\" or a list of corners")
	}

	var out Corners
	for _, name := range names {
		c, err := ParseCorner(name)
		if err != nil {
			return err
		}
		out |= c
	}
	*cs = out
	return nil
}

func (cs Corners) MarshalYAML() (any, error) {
	if cs == AllCorners {
		return "all", nil
	}
	return cs.Names(), nil
}

func (cs *Corners) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalYAMLViaJSON(node, cs)
}

// Width is either "auto" or a flex fraction. The zero value is flex 1.
type Width struct {
	Auto bool
	Flex float64
}

// AutoWidth sizes a column to its content.
func AutoWidth() Width { return Width{Auto: true} }

// FlexWidth shares remaining space in proportion to f.
func FlexWidth(f float64) Width { return Width{Flex: f} }

// Fraction returns the flex weight, treating an unset width as 1.
func (w Width) Fraction() float64 {
	if w.Auto {
		return 0
	}
	if w.Flex <= 0 {
		return 1
	}
	return w.Flex
}

func (w Width) String() string {
	switch {
	case w.Auto:
		return "auto"
	case w.Flex <= 0:
		return "1"
	default:
		return strconv.FormatFloat(w.Flex, 'g', -1, 64)
	}
}

// ParseWidth accepts "auto" or a positive number.
func ParseWidth(s string) (Width, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Width{}, nil
	}
	if s == "auto" {
		return AutoWidth(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return Width{}, fmt.Errorf("width must be \"auto\" or a positive number, got %q", s)
	}
	return FlexWidth(f), nil
}

func (w Width) MarshalJSON() ([]byte, error) {
	if w.Auto {
		return []byte(`"auto"`), nil
	}
	return json.Marshal(w.Fraction())
}

// IsZero reports an unset width.
func (w Width) IsZero() bool {
	return !w.Auto && w.Flex <= 0
}

func (w Width) MarshalYAML() (any, error) {
	if w.Auto {
		return "auto", nil
	}
	return w.Fraction(), nil
}

func (w *Width) UnmarshalYAML(node *yaml.Node) error {
	return unmarshalYAMLViaJSON(node, w)
}

func unmarshalYAMLViaJSON(node *yaml.Node, target json.Unmarshaler) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return target.UnmarshalJSON(data)
}

func (w *Width) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*w = Width{}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		if f <= 0 {
			return fmt.Errorf("width must be positive, got %v", f)
		}
		*w = FlexWidth(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("width must be \"auto\" or a number")
	}
	parsed, err := ParseWidth(s)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Component is one widget placed in a column.
type Component struct {
	Type    options.Kind   `json:"type" yaml:"type"`
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// Column is a group of components rendered side by side.
type Column struct {
	Align      Align       `json:"align" yaml:"align"`
	Rounded    Corners     `json:"rounded,omitempty" yaml:"rounded,omitempty"`
	Width      Width       `json:"width,omitzero" yaml:"width,omitempty"`
	Components []Component `json:"components" yaml:"components"`
}

// Layout is the full bar description. Column order is render order.
type Layout struct {
	TopMargin int      `json:"topMargin" yaml:"topMargin"`
	XMargin   int      `json:"xMargin" yaml:"xMargin"`
	Columns   []Column `json:"columns" yaml:"columns"`
}

// Clone returns a deep copy of l, including option maps.
func (l Layout) Clone() Layout {
	out := Layout{TopMargin: l.TopMargin, XMargin: l.XMargin}
	if l.Columns == nil {
		return out
	}
	out.Columns = make([]Column, len(l.Columns))
	for i, col := range l.Columns {
		out.Columns[i] = col.clone()
	}
	return out
}

func (c Column) clone() Column {
	out := c
	if c.Components != nil {
		out.Components = make([]Component, len(c.Components))
		for i, comp := range c.Components {
			out.Components[i] = Component{Type: comp.Type, Options: cloneMap(comp.Options)}
		}
	}
	return out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}
