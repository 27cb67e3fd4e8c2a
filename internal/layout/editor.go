package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alexisbeaulieu97/tilebar/internal/options"
	tberrors "github.com/alexisbeaulieu97/tilebar/pkg/errors"
)

// errNoop marks a mutation that leaves the layout untouched.
var errNoop = errors.New("no change")

// Editor applies one change at a time to a layout. Each change is made on a
// deep copy, then handed to the change callback and the persister.
type Editor struct {
	mu       sync.Mutex
	layout   Layout
	open     int
	onChange func(Layout)
	persist  func(Layout)
}

// NewEditor starts editing initial with no column open. Either callback may
// be nil.
func NewEditor(initial Layout, onChange, persist func(Layout)) *Editor {
	return &Editor{
		layout:   initial.Clone(),
		open:     -1,
		onChange: onChange,
		persist:  persist,
	}
}

// Layout returns a copy of the current layout.
func (e *Editor) Layout() Layout {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layout.Clone()
}

// OpenIndex returns the column being edited, or -1.
func (e *Editor) OpenIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

// Replace adopts a layout written elsewhere. It neither persists nor calls
// the change callback. An open column that no longer exists is closed.
func (e *Editor) Replace(l Layout) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.layout = l.Clone()
	if e.open >= len(e.layout.Columns) {
		e.open = -1
	}
}

// Open selects column i for editing.
func (e *Editor) Open(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := checkColumn(e.layout, i); err != nil {
		return err
	}
	e.open = i
	return nil
}

// Close deselects the open column.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = -1
}

// AddColumn appends an empty left-aligned column.
func (e *Editor) AddColumn() error {
	return e.mutate(func(l *Layout) error {
		l.Columns = append(l.Columns, Column{Align: AlignLeft, Components: []Component{}})
		return nil
	})
}

// RemoveColumn deletes column i and keeps the open index pointing at the
// same column, closing it when it is the one removed.
func (e *Editor) RemoveColumn(i int) error {
	return e.mutate(func(l *Layout) error {
		if err := checkColumn(*l, i); err != nil {
			return err
		}
		l.Columns = append(l.Columns[:i], l.Columns[i+1:]...)
		switch {
		case i == e.open:
			e.open = -1
		case i < e.open:
			e.open--
		}
		return nil
	})
}

// SetAlign changes the alignment of column i.
func (e *Editor) SetAlign(i int, a Align) error {
	if !a.Valid() {
		return tberrors.NewValidationError("align", fmt.Sprintf("unknown alignment %q", a), nil)
	}
	return e.mutate(func(l *Layout) error {
		if err := checkColumn(*l, i); err != nil {
			return err
		}
		l.Columns[i].Align = a
		return nil
	})
}

// SetWidth changes the width of column i.
func (e *Editor) SetWidth(i int, w Width) error {
	if !w.Auto && w.Flex < 0 {
		return tberrors.NewValidationError("width", "must be positive", nil)
	}
	return e.mutate(func(l *Layout) error {
		if err := checkColumn(*l, i); err != nil {
			return err
		}
		l.Columns[i].Width = w
		return nil
	})
}

// SetRounded replaces the rounded corners of column i.
func (e *Editor) SetRounded(i int, corners Corners) error {
	if corners > AllCorners {
		return tberrors.NewValidationError("rounded", "unknown corner", nil)
	}
	return e.mutate(func(l *Layout) error {
		if err := checkColumn(*l, i); err != nil {
			return err
		}
		l.Columns[i].Rounded = corners
		return nil
	})
}

// SetMargins changes the outer margins.
func (e *Editor) SetMargins(top, x int) error {
	if top < 0 || x < 0 {
		return tberrors.NewValidationError("margins", "must not be negative", nil)
	}
	return e.mutate(func(l *Layout) error {
		l.TopMargin = top
		l.XMargin = x
		return nil
	})
}

// AddComponent appends a component of kind to column col.
func (e *Editor) AddComponent(col int, kind options.Kind) error {
	if !kind.Valid() {
		return tberrors.NewValidationError("type", fmt.Sprintf("unknown widget kind %q", kind), nil)
	}
	return e.mutate(func(l *Layout) error {
		if err := checkColumn(*l, col); err != nil {
			return err
		}
		l.Columns[col].Components = append(l.Columns[col].Components, Component{Type: kind})
		return nil
	})
}

// RemoveComponent deletes component idx of column col.
func (e *Editor) RemoveComponent(col, idx int) error {
	return e.mutate(func(l *Layout) error {
		if err := checkComponent(*l, col, idx); err != nil {
			return err
		}
		comps := l.Columns[col].Components
		l.Columns[col].Components = append(comps[:idx], comps[idx+1:]...)
		return nil
	})
}

// MoveComponent swaps component idx with its neighbour in direction delta
// (-1 or +1). Moving past either end does nothing.
func (e *Editor) MoveComponent(col, idx, delta int) error {
	if delta != -1 && delta != 1 {
		return tberrors.NewValidationError("delta", "must be -1 or 1", nil)
	}
	err := e.mutate(func(l *Layout) error {
		if err := checkComponent(*l, col, idx); err != nil {
			return err
		}
		comps := l.Columns[col].Components
		target := idx + delta
		if target < 0 || target >= len(comps) {
			return errNoop
		}
		comps[idx], comps[target] = comps[target], comps[idx]
		return nil
	})
	if errors.Is(err, errNoop) {
		return nil
	}
	return err
}

// SetComponentType changes the kind of a component and clears its options.
func (e *Editor) SetComponentType(col, idx int, kind options.Kind) error {
	if !kind.Valid() {
		return tberrors.NewValidationError("type", fmt.Sprintf("unknown widget kind %q", kind), nil)
	}
	return e.mutate(func(l *Layout) error {
		if err := checkComponent(*l, col, idx); err != nil {
			return err
		}
		l.Columns[col].Components[idx] = Component{Type: kind}
		return nil
	})
}

// SetComponentOptions parses raw as a JSON object and stores it as the
// component's options. Blank text and {} clear them. Invalid JSON is reported as a
// *errors.ValidationError and leaves the layout unchanged.
func (e *Editor) SetComponentOptions(col, idx int, raw string) error {
	var opts map[string]any
	if strings.TrimSpace(raw) != "" {
		var err error
		opts, err = parseOptions(raw)
		if err != nil {
			return err
		}
	}

	return e.mutate(func(l *Layout) error {
		if err := checkComponent(*l, col, idx); err != nil {
			return err
		}
		l.Columns[col].Components[idx].Options = opts
		return nil
	})
}

func parseOptions(raw string) (map[string]any, error) {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, tberrors.NewValidationError("options", "invalid JSON", err)
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, tberrors.NewValidationError("options", "must be a JSON object", nil)
	}
	if len(obj) == 0 {
		// Stored layouts omit empty options, so {} is kept as no options.
		return nil, nil
	}
	return obj, nil
}

// FormatOptions renders options the way the editor shows them.
func FormatOptions(opts map[string]any) string {
	if len(opts) == 0 {
		return ""
	}
	data, err := json.MarshalIndent(opts, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

func (e *Editor) mutate(apply func(*Layout) error) error {
	e.mu.Lock()
	next := e.layout.Clone()
	if err := apply(&next); err != nil {
		e.mu.Unlock()
		return err
	}
	e.layout = next
	snapshot := next.Clone()
	onChange, persist := e.onChange, e.persist
	e.mu.Unlock()

	if onChange != nil {
		onChange(snapshot)
	}
	if persist != nil {
		persist(snapshot.Clone())
	}
	return nil
}

func checkColumn(l Layout, i int) error {
	if i < 0 || i >= len(l.Columns) {
		return tberrors.NewValidationError("column", fmt.Sprintf("index %d out of range", i), nil)
	}
	return nil
}

func checkComponent(l Layout, col, idx int) error {
	if err := checkColumn(l, col); err != nil {
		return err
	}
	if idx < 0 || idx >= len(l.Columns[col].Components) {
		return tberrors.NewValidationError("component", fmt.Sprintf("index %d out of range", idx), nil)
	}
	return nil
}
