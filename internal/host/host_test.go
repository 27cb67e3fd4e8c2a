package host

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func fixtureHost(t *testing.T) (*Procfs, string) {
	t.Helper()
	root := t.TempDir()
	proc := filepath.Join(root, "proc")
	sys := filepath.Join(root, "sys")

	writeFile(t, filepath.Join(proc, "stat"), "cpu  100 0 100 800 0 0 0 0 0 0\n")
	writeFile(t, filepath.Join(proc, "meminfo"), "MemTotal:       16000000 kB\nMemFree:         1000000 kB\nMemAvailable:    4000000 kB\n")
	writeFile(t, filepath.Join(proc, "net", "dev"), `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed
    lo:    1000      10    0    0    0     0          0         0     1000      10    0    0    0     0       0          0
 wlan0:   50000     100    0    0    0     0          0         0    20000      80    0    0    0     0       0          0
  eth0:       0       0    0    0    0     0          0         0        0       0    0    0    0     0       0          0
`)
	writeFile(t, filepath.Join(proc, "net", "wireless"), `Inter-| sta-|   Quality        |   Discarded packets               | Missed | WE
 face | tus | link level noise |  nwid  crypt   frag  retry   misc | beacon | 22
 wlan0: 0000   56.  -54.  -256        0      0      0      0      0        0
`)

	writeFile(t, filepath.Join(sys, "class", "power_supply", "AC", "type"), "Mains\n")
	writeFile(t, filepath.Join(sys, "class", "power_supply", "BAT0", "type"), "Battery\n")
	writeFile(t, filepath.Join(sys, "class", "power_supply", "BAT0", "capacity"), "42\n")
	writeFile(t, filepath.Join(sys, "class", "power_supply", "BAT0", "status"), "Charging\n")
	writeFile(t, filepath.Join(sys, "class", "net", "lo", "operstate"), "unknown\n")
	writeFile(t, filepath.Join(sys, "class", "net", "wlan0", "operstate"), "up\n")
	writeFile(t, filepath.Join(sys, "class", "net", "eth0", "operstate"), "up\n")

	p, err := NewProcfs(proc, sys)
	require.NoError(t, err)
	return p, proc
}

func TestProcfsCPU(t *testing.T) {
	p, proc := fixtureHost(t)
	ctx := context.Background()

	first, err := p.Usage(ctx)
	require.NoError(t, err)
	assert.True(t, first.Available)
	assert.InDelta(t, 20, first.Usage, 0.01)

	writeFile(t, filepath.Join(proc, "stat"), "cpu  150 0 150 900 0 0 0 0 0 0\n")
	second, err := p.Usage(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 50, second.Usage, 0.01)
}

func TestProcfsMemory(t *testing.T) {
	p, _ := fixtureHost(t)

	mem, err := p.Memory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(16000000*1024), mem.TotalBytes)
	assert.Equal(t, uint64(12000000*1024), mem.UsedBytes)
	assert.InDelta(t, 75, mem.UsedPercent(), 0.01)
}

func TestProcfsBattery(t *testing.T) {
	p, _ := fixtureHost(t)

	bat, err := p.Battery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BatteryStat{Available: true, Level: 42, Charging: true}, bat)
}

func TestProcfsBatteryMissing(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "proc"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sys"), 0o755))

	p, err := NewProcfs(filepath.Join(root, "proc"), filepath.Join(root, "sys"))
	require.NoError(t, err)

	_, err = p.Battery(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestProcfsNetwork(t *testing.T) {
	p, proc := fixtureHost(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return start }

	stat, err := p.Network(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "wlan0", stat.Interface)
	assert.True(t, stat.Connected)
	assert.False(t, stat.Ethernet)
	assert.Equal(t, 80, stat.Signal)
	assert.Zero(t, stat.RxRate)

	writeFile(t, filepath.Join(proc, "net", "dev"), `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed
 wlan0:   60000     100    0    0    0     0          0         0    22000      80    0    0    0     0       0          0
`)
	p.now = func() time.Time { return start.Add(2 * time.Second) }
	stat, err = p.Network(ctx, "")
	require.NoError(t, err)
	assert.InDelta(t, 5000, stat.RxRate, 0.01)
	assert.InDelta(t, 1000, stat.TxRate, 0.01)

	wired, err := p.Network(ctx, "eth0")
	require.NoError(t, err)
	assert.True(t, wired.Ethernet)
	assert.True(t, wired.Connected)
}

func TestParseDirection(t *testing.T) {
	dir, err := parseDirection([]byte("Vertical\n"))
	require.NoError(t, err)
	assert.Equal(t, Vertical, dir)

	dir, err = parseDirection([]byte(`{"success":true,"data":{"tilingDirection":"horizontal"}}`))
	require.NoError(t, err)
	assert.Equal(t, Horizontal, dir)

	_, err = parseDirection([]byte("diagonal"))
	assert.Error(t, err)
}

func TestExecWM(t *testing.T) {
	var commands [][]string
	run := func(_ context.Context, name string, args ...string) ([]byte, error) {
		commands = append(commands, append([]string{name}, args...))
		return []byte(`{"data":{"tilingDirection":"vertical"}}`), nil
	}
	ctx := context.Background()

	glaze := NewExecWM("glazewm", DefaultWMCommands("glazewm"), run)
	state, err := glaze.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, Vertical, state.Direction)
	require.NoError(t, glaze.ToggleDirection(ctx))
	assert.Equal(t, []string{"glazewm", "command", "toggle-tiling-direction"}, commands[1])

	sway := NewExecWM("sway", DefaultWMCommands("sway"), run)
	state, err = sway.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, Horizontal, state.Direction)
	require.NoError(t, sway.ToggleDirection(ctx))
	state, _ = sway.State(ctx)
	assert.Equal(t, Vertical, state.Direction)

	none := NewExecWM("unknown", DefaultWMCommands("unknown"), run)
	assert.ErrorIs(t, none.ToggleDirection(ctx), ErrUnsupported)
}

func TestExecWMPropagatesErrors(t *testing.T) {
	run := func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("not running")
	}
	wm := NewExecWM("glazewm", DefaultWMCommands("glazewm"), run)

	_, err := wm.State(context.Background())
	assert.Error(t, err)
	assert.Error(t, wm.ToggleDirection(context.Background()))
}

func TestMediaFromMetadata(t *testing.T) {
	stat := mediaFromMetadata("org.mpris.MediaPlayer2.spotify", "Playing", map[string]dbus.Variant{
		"xesam:title":  dbus.MakeVariant("Song"),
		"xesam:artist": dbus.MakeVariant([]string{"A", "B"}),
	})
	assert.Equal(t, MediaStat{Available: true, Player: "spotify", Playing: true, Title: "Song", Artist: "A, B"}, stat)

	paused := mediaFromMetadata("org.mpris.MediaPlayer2.vlc", "Paused", nil)
	assert.False(t, paused.Playing)
	assert.Empty(t, paused.Title)
}

func TestChoosePlayer(t *testing.T) {
	players := []string{"org.mpris.MediaPlayer2.firefox", "org.mpris.MediaPlayer2.spotify"}
	never := func(string) bool { return false }

	assert.Equal(t, "org.mpris.MediaPlayer2.spotify", choosePlayer(players, "spotify", never))
	assert.Equal(t, "org.mpris.MediaPlayer2.spotify", choosePlayer(players, "", func(name string) bool {
		return name == "org.mpris.MediaPlayer2.spotify"
	}))
	assert.Equal(t, "org.mpris.MediaPlayer2.firefox", choosePlayer(players, "", never))
	assert.Empty(t, choosePlayer(nil, "", never))
}

func TestRuntimeSample(t *testing.T) {
	static := NewStatic()
	rt := static.Runtime()
	ctx := context.Background()

	snap, err := rt.Sample(ctx, "eth1")
	require.NoError(t, err)
	assert.InDelta(t, 23, snap.CPU.Usage, 0.01)
	assert.Equal(t, "eth1", snap.Network.Interface)
	assert.True(t, snap.Media.Playing)

	require.NoError(t, rt.Media.PlayPause(ctx))
	require.NoError(t, rt.WM.ToggleDirection(ctx))
	snap, _ = rt.Sample(ctx, "")
	assert.False(t, snap.Media.Playing)
	assert.Equal(t, Vertical, snap.WM.Direction)
	assert.Equal(t, []string{"play-pause", "toggle-direction"}, static.Calls())

	empty, err := Runtime{}.Sample(ctx, "")
	require.NoError(t, err)
	assert.False(t, empty.CPU.Available)
}
