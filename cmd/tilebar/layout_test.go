package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/tilebar/internal/layout"
	"github.com/alexisbeaulieu97/tilebar/internal/options"
)

const importedYAML = `topMargin: 4
xMargin: 0
columns:
  - align: center
    width: auto
    rounded: all
    components:
      - type: clock
        options:
          timeFormat: "15:04"
`

func TestLayoutShowDefaults(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := env.run("layout", "show")
	require.NoError(t, err)
	shown, err := layout.Parse([]byte(out))
	require.NoError(t, err)
	require.Equal(t, layout.DefaultLayout(layout.WMSway), shown)

	out, err = env.run("--wm", "komorebi", "layout", "show", "--format", "yaml")
	require.NoError(t, err)
	shown, err = layout.ParseYAML([]byte(out))
	require.NoError(t, err)
	require.Equal(t, layout.DefaultLayout(layout.WMKomorebi), shown)
}

func TestLayoutShowRejectsUnknownFormat(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := env.run("layout", "show", "--format", "toml")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--format json or --format yaml")
}

func TestLayoutImportShowReset(t *testing.T) {
	env := newTestEnv(t, "")
	path := filepath.Join(env.dir, "bar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(importedYAML), 0o644))

	out, err := env.run("layout", "import", path)
	require.NoError(t, err)
	require.Contains(t, out, "Layout for sway imported")

	out, err = env.run("layout", "show")
	require.NoError(t, err)
	shown, err := layout.Parse([]byte(out))
	require.NoError(t, err)
	require.Equal(t, 4, shown.TopMargin)
	require.Len(t, shown.Columns, 1)
	col := shown.Columns[0]
	require.Equal(t, layout.AlignCenter, col.Align)
	require.Equal(t, layout.AutoWidth(), col.Width)
	require.Equal(t, layout.AllCorners, col.Rounded)
	require.Equal(t, options.KindClock, col.Components[0].Type)
	require.Equal(t, "15:04", col.Components[0].Options["timeFormat"])

	_, err = env.run("layout", "reset")
	require.NoError(t, err)
	out, err = env.run("layout", "show")
	require.NoError(t, err)
	shown, err = layout.Parse([]byte(out))
	require.NoError(t, err)
	require.Equal(t, layout.DefaultLayout(layout.WMSway), shown)
}

func TestLayoutImportRejectsInvalidFile(t *testing.T) {
	env := newTestEnv(t, "")
	path := filepath.Join(env.dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"columns":[{"align":"left","components":[{"type":"gpu"}]}]}`), 0o644))

	_, err := env.run("layout", "import", path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "validating")
	require.Contains(t, err.Error(), "gpu")

	out, err := env.run("layout", "show")
	require.NoError(t, err)
	shown, err := layout.Parse([]byte(out))
	require.NoError(t, err)
	require.Equal(t, layout.DefaultLayout(layout.WMSway), shown)
}

func TestLayoutImportMissingFile(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := env.run("layout", "import", filepath.Join(env.dir, "nope.json"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLayoutExport(t *testing.T) {
	env := newTestEnv(t, "")
	path := filepath.Join(env.dir, "out.yml")

	out, err := env.run("layout", "export", path)
	require.NoError(t, err)
	require.Contains(t, out, "Layout exported to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	exported, err := layout.ParseYAML(data)
	require.NoError(t, err)
	require.Equal(t, layout.DefaultLayout(layout.WMSway), exported)
}

func TestFormatForPath(t *testing.T) {
	require.Equal(t, "yaml", formatForPath("a/b.YAML"))
	require.Equal(t, "yaml", formatForPath("b.yml"))
	require.Equal(t, "json", formatForPath("b.json"))
	require.Equal(t, "json", formatForPath("b"))
}
