package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/tilebar/internal/options"
	tberrors "github.com/alexisbeaulieu97/tilebar/pkg/errors"
)

type recorder struct {
	changes  []Layout
	persists []Layout
}

func newRecordedEditor(initial Layout) (*Editor, *recorder) {
	rec := &recorder{}
	editor := NewEditor(initial,
		func(l Layout) { rec.changes = append(rec.changes, l) },
		func(l Layout) { rec.persists = append(rec.persists, l) },
	)
	return editor, rec
}

func threeColumns() Layout {
	return Layout{Columns: []Column{
		{Align: AlignLeft, Components: []Component{{Type: options.KindCPU}, {Type: options.KindMemory}, {Type: options.KindClock}}},
		{Align: AlignCenter, Components: []Component{}},
		{Align: AlignRight, Components: []Component{}},
	}}
}

func kinds(l Layout, col int) []options.Kind {
	out := make([]options.Kind, 0, len(l.Columns[col].Components))
	for _, c := range l.Columns[col].Components {
		out = append(out, c.Type)
	}
	return out
}

func TestEditorMutationNotifiesAndPersists(t *testing.T) {
	editor, rec := newRecordedEditor(threeColumns())

	require.NoError(t, editor.AddColumn())
	require.Len(t, rec.changes, 1)
	require.Len(t, rec.persists, 1)
	assert.Len(t, rec.changes[0].Columns, 4)
	assert.Equal(t, rec.changes[0], rec.persists[0])
	assert.Equal(t, editor.Layout(), rec.persists[0])
}

func TestEditorDoesNotAliasCallerLayout(t *testing.T) {
	initial := threeColumns()
	editor, _ := newRecordedEditor(initial)

	require.NoError(t, editor.SetAlign(0, AlignRight))
	assert.Equal(t, AlignLeft, initial.Columns[0].Align)

	snapshot := editor.Layout()
	snapshot.Columns[0].Align = AlignCenter
	assert.Equal(t, AlignRight, editor.Layout().Columns[0].Align)
}

func TestEditorOutOfRangeChangesNothing(t *testing.T) {
	editor, rec := newRecordedEditor(threeColumns())
	before := editor.Layout()

	assert.Error(t, editor.RemoveColumn(7))
	assert.Error(t, editor.SetAlign(-1, AlignLeft))
	assert.Error(t, editor.RemoveComponent(0, 9))
	assert.Error(t, editor.AddComponent(5, options.KindRSS))
	assert.Error(t, editor.Open(3))
	assert.Error(t, editor.SetComponentType(1, 0, options.KindRSS))

	assert.Equal(t, before, editor.Layout())
	assert.Empty(t, rec.changes)
	assert.Empty(t, rec.persists)
}

func TestEditorMoveUpThenDownRestoresOrder(t *testing.T) {
	editor, _ := newRecordedEditor(threeColumns())
	original := kinds(editor.Layout(), 0)

	require.NoError(t, editor.MoveComponent(0, 1, -1))
	assert.Equal(t, []options.Kind{options.KindMemory, options.KindCPU, options.KindClock}, kinds(editor.Layout(), 0))

	require.NoError(t, editor.MoveComponent(0, 0, 1))
	assert.Equal(t, original, kinds(editor.Layout(), 0))
}

func TestEditorMovePastEndsIsNoop(t *testing.T) {
	editor, rec := newRecordedEditor(threeColumns())
	original := kinds(editor.Layout(), 0)

	require.NoError(t, editor.MoveComponent(0, 0, -1))
	require.NoError(t, editor.MoveComponent(0, 2, 1))

	assert.Equal(t, original, kinds(editor.Layout(), 0))
	assert.Empty(t, rec.changes)
	assert.Error(t, editor.MoveComponent(0, 0, 2))
}

func TestEditorRemoveColumnOpenIndex(t *testing.T) {
	cases := []struct {
		name     string
		open     int
		remove   int
		wantOpen int
	}{
		{name: "remove open column closes", open: 1, remove: 1, wantOpen: -1},
		{name: "remove before open shifts", open: 2, remove: 0, wantOpen: 1},
		{name: "remove after open keeps", open: 0, remove: 2, wantOpen: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			editor, _ := newRecordedEditor(threeColumns())
			require.NoError(t, editor.Open(tc.open))

			require.NoError(t, editor.RemoveColumn(tc.remove))
			assert.Equal(t, tc.wantOpen, editor.OpenIndex())
			assert.Len(t, editor.Layout().Columns, 2)
		})
	}
}

func TestEditorRemoveColumnWithNothingOpen(t *testing.T) {
	editor, _ := newRecordedEditor(threeColumns())
	require.NoError(t, editor.RemoveColumn(0))
	assert.Equal(t, -1, editor.OpenIndex())
}

func TestEditorSetComponentTypeClearsOptions(t *testing.T) {
	editor, _ := newRecordedEditor(threeColumns())
	require.NoError(t, editor.SetComponentOptions(0, 0, `{"warnThreshold": 50}`))
	assert.Equal(t, float64(50), editor.Layout().Columns[0].Components[0].Options["warnThreshold"])

	require.NoError(t, editor.SetComponentType(0, 0, options.KindBattery))
	comp := editor.Layout().Columns[0].Components[0]
	assert.Equal(t, options.KindBattery, comp.Type)
	assert.Nil(t, comp.Options)

	assert.Error(t, editor.SetComponentType(0, 0, "weather"))
}

func TestEditorSetComponentOptions(t *testing.T) {
	editor, rec := newRecordedEditor(threeColumns())

	err := editor.SetComponentOptions(0, 1, `{"unit": "used"`)
	var vErr *tberrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "options", vErr.Field)
	assert.Empty(t, rec.changes)

	assert.Error(t, editor.SetComponentOptions(0, 1, `[1,2]`))
	assert.Error(t, editor.SetComponentOptions(0, 1, `null`))

	require.NoError(t, editor.SetComponentOptions(0, 1, `{"unit": "used"}`))
	assert.Equal(t, "used", editor.Layout().Columns[0].Components[1].Options["unit"])

	require.NoError(t, editor.SetComponentOptions(0, 1, "   "))
	assert.Nil(t, editor.Layout().Columns[0].Components[1].Options)
	assert.Len(t, rec.persists, 2)
}

func TestEditorColumnSetters(t *testing.T) {
	editor, _ := newRecordedEditor(threeColumns())

	require.NoError(t, editor.SetWidth(1, AutoWidth()))
	require.NoError(t, editor.SetRounded(1, TopRight|BottomRight))
	require.NoError(t, editor.SetMargins(6, 12))
	assert.Error(t, editor.SetMargins(-1, 0))
	assert.Error(t, editor.SetAlign(0, "justify"))

	l := editor.Layout()
	assert.True(t, l.Columns[1].Width.Auto)
	assert.Equal(t, TopRight|BottomRight, l.Columns[1].Rounded)
	assert.Equal(t, 6, l.TopMargin)
	assert.Equal(t, 12, l.XMargin)
}

func TestEditorComponents(t *testing.T) {
	editor, _ := newRecordedEditor(threeColumns())

	require.NoError(t, editor.AddComponent(1, options.KindNotion))
	require.NoError(t, editor.AddComponent(1, options.KindRSS))
	assert.Equal(t, []options.Kind{options.KindNotion, options.KindRSS}, kinds(editor.Layout(), 1))

	require.NoError(t, editor.RemoveComponent(1, 0))
	assert.Equal(t, []options.Kind{options.KindRSS}, kinds(editor.Layout(), 1))

	assert.Error(t, editor.AddComponent(1, "weather"))
}

func TestEditorReplaceClosesMissingColumn(t *testing.T) {
	editor, rec := newRecordedEditor(threeColumns())
	require.NoError(t, editor.Open(2))

	editor.Replace(Layout{Columns: []Column{{Align: AlignLeft}}})
	assert.Equal(t, -1, editor.OpenIndex())
	assert.Empty(t, rec.persists)

	require.NoError(t, editor.Open(0))
	editor.Close()
	assert.Equal(t, -1, editor.OpenIndex())
}
