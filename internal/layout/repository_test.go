package layout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/tilebar/internal/logger"
	"github.com/alexisbeaulieu97/tilebar/internal/options"
	"github.com/alexisbeaulieu97/tilebar/internal/storage"
)

func newRepository(t *testing.T) (*Repository, storage.Store) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir(), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewRepository(store, logger.Nop()), store
}

func sampleLayout() Layout {
	return Layout{
		TopMargin: 3,
		XMargin:   5,
		Columns: []Column{
			{
				Align:   AlignLeft,
				Rounded: TopLeft | BottomLeft,
				Width:   FlexWidth(2),
				Components: []Component{
					{Type: options.KindCPU, Options: map[string]any{"warnThreshold": float64(60), "colorTheme": "red"}},
					{Type: options.KindClock},
				},
			},
			{
				Align:      AlignRight,
				Width:      AutoWidth(),
				Components: []Component{},
			},
		},
	}
}

func TestRepositoryLoadAfterSave(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepository(t)

	saved := sampleLayout()
	repo.Save(ctx, WMSway, saved)

	assert.Equal(t, saved, repo.Load(ctx, WMSway))
	assert.Equal(t, DefaultLayout(WMI3), repo.Load(ctx, WMI3))
}

func TestRepositoryRoundTripsEditedEmptyOptions(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepository(t)

	editor := NewEditor(sampleLayout(), nil, func(l Layout) { repo.Save(ctx, WMSway, l) })
	require.NoError(t, editor.SetComponentOptions(0, 0, " { } "))

	edited := editor.Layout()
	assert.Nil(t, edited.Columns[0].Components[0].Options)
	assert.Equal(t, edited, repo.Load(ctx, WMSway))
}

func TestRepositoryMalformedLoadsDefault(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepository(t)

	for _, raw := range []string{"", "{", "[]", `{"columns":[{"align":"nowhere"}]}`, `"text"`} {
		require.NoError(t, store.Set(ctx, Key(WMGlazeWM), []byte(raw)))
		assert.Equal(t, DefaultLayout(WMGlazeWM), repo.Load(ctx, WMGlazeWM), raw)
	}
}

func TestRepositoryWriteRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	repo, store := newRepository(t)

	bad := Layout{Columns: []Column{{Align: "diagonal"}}}
	assert.Error(t, repo.Write(ctx, WMI3, bad))

	_, err := store.Get(ctx, Key(WMI3))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	repo.Save(ctx, WMI3, bad)
	_, err = store.Get(ctx, Key(WMI3))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRepositoryReset(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepository(t)

	require.NoError(t, repo.Write(ctx, WMKomorebi, sampleLayout()))
	require.NoError(t, repo.Reset(ctx, WMKomorebi))
	assert.Equal(t, DefaultLayout(WMKomorebi), repo.Load(ctx, WMKomorebi))
}

func TestRepositoryWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo, store := newRepository(t)

	updates := repo.Watch(ctx, WMGlazeWM)

	repo.Save(ctx, WMGlazeWM, sampleLayout())
	assert.Equal(t, sampleLayout(), receive(t, updates))

	require.NoError(t, store.Set(ctx, Key(WMGlazeWM), []byte("garbage")))
	assert.Equal(t, DefaultLayout(WMGlazeWM), receive(t, updates))

	cancel()
	select {
	case _, ok := <-updates:
		if ok {
			// A value may have been in flight; the channel must still close.
			_, ok = <-updates
		}
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("watch channel did not close")
	}
}

func receive(t *testing.T, ch <-chan Layout) Layout {
	t.Helper()
	select {
	case l := <-ch:
		return l
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for layout")
	}
	return Layout{}
}
