package layout

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	tberrors "github.com/alexisbeaulieu97/tilebar/pkg/errors"
)

// Parse decodes and validates a stored JSON layout.
func Parse(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, tberrors.NewParseError("layout", data, err)
	}
	if err := Validate(l); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// ParseYAML decodes and validates a YAML layout, as accepted by import.
func ParseYAML(data []byte) (Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, tberrors.NewParseError("layout", data, err)
	}
	normalizeYAMLOptions(&l)
	if err := Validate(l); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Encode serializes l as stored JSON.
func Encode(l Layout) ([]byte, error) {
	return json.Marshal(l)
}

// EncodeIndent serializes l as indented JSON for display.
func EncodeIndent(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// EncodeYAML serializes l as YAML.
func EncodeYAML(l Layout) ([]byte, error) {
	return yaml.Marshal(l)
}

// Validate checks the invariants every stored layout must hold.
func Validate(l Layout) error {
	if l.TopMargin < 0 {
		return tberrors.NewValidationError("topMargin", "must not be negative", nil)
	}
	if l.XMargin < 0 {
		return tberrors.NewValidationError("xMargin", "must not be negative", nil)
	}
	for i, col := range l.Columns {
		if !col.Align.Valid() {
			return tberrors.NewValidationError(fmt.Sprintf("columns[%d].align", i), fmt.Sprintf("unknown alignment %q", col.Align), nil)
		}
		if col.Rounded > AllCorners {
			return tberrors.NewValidationError(fmt.Sprintf("columns[%d].rounded", i), "unknown corner", nil)
		}
		for j, comp := range col.Components {
			if !comp.Type.Valid() {
				return tberrors.NewValidationError(fmt.Sprintf("columns[%d].components[%d].type", i, j), fmt.Sprintf("unknown widget kind %q", comp.Type), nil)
			}
		}
	}
	return nil
}

// yaml.v3 decodes nested mappings as map[string]any already, but keeps
// integers as int; round-trip through JSON so options look the same as
// options read from storage.
func normalizeYAMLOptions(l *Layout) {
	for i := range l.Columns {
		for j := range l.Columns[i].Components {
			opts := l.Columns[i].Components[j].Options
			if opts == nil {
				continue
			}
			data, err := json.Marshal(opts)
			if err != nil {
				continue
			}
			var normalized map[string]any
			if err := json.Unmarshal(data, &normalized); err == nil {
				l.Columns[i].Components[j].Options = normalized
			}
		}
	}
}
