package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alexisbeaulieu97/tilebar/internal/layout"
	"github.com/alexisbeaulieu97/tilebar/internal/options"
)

func TestNextWidth(t *testing.T) {
	w := layout.AutoWidth()
	var seen []string
	for i := 0; i < 5; i++ {
		w = nextWidth(w)
		seen = append(seen, w.String())
	}
	assert.Equal(t, []string{"1", "2", "3", "auto", "1"}, seen)
	assert.Equal(t, layout.FlexWidth(2), nextWidth(layout.Width{}))
}

func TestNextCorners(t *testing.T) {
	c := layout.NoCorners
	c = nextCorners(c)
	assert.Equal(t, layout.AllCorners, c)
	c = nextCorners(c)
	assert.Equal(t, layout.TopLeft|layout.BottomLeft, c)
	c = nextCorners(c)
	assert.Equal(t, layout.TopRight|layout.BottomRight, c)
	assert.Equal(t, layout.NoCorners, nextCorners(c))
	assert.Equal(t, layout.NoCorners, nextCorners(layout.TopLeft))
}

func TestItemText(t *testing.T) {
	col := columnItem{index: 1, column: layout.Column{
		Align:      layout.AlignRight,
		Width:      layout.AutoWidth(),
		Components: []layout.Component{{Type: options.KindCPU}},
	}}
	assert.Equal(t, "Column 2", col.Title())
	assert.Equal(t, "right · width auto · square · 1 widgets", col.Description())

	comp := componentItem{component: layout.Component{Type: options.KindClock}}
	assert.Equal(t, "clock", comp.Title())
	assert.Equal(t, "defaults", comp.Description())

	comp.component.Options = map[string]any{"timeFormat": "15:04"}
	assert.Equal(t, `{ "timeFormat": "15:04" }`, comp.Description())
}
