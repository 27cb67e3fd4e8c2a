// Package host exposes the machine and desktop state the bar displays:
// CPU, memory, battery, network, media playback and the window manager.
package host

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnsupported is returned when a reading is not available on this host.
var ErrUnsupported = errors.New("not supported on this host")

// CPUStat is the CPU busy share since the previous sample.
type CPUStat struct {
	Available bool
	Usage     float64 // percent, 0-100
}

// MemoryStat describes physical memory use.
type MemoryStat struct {
	Available  bool
	UsedBytes  uint64
	TotalBytes uint64
}

// UsedPercent returns used memory as a percentage.
func (m MemoryStat) UsedPercent() float64 {
	if m.TotalBytes == 0 {
		return 0
	}
	return float64(m.UsedBytes) * 100 / float64(m.TotalBytes)
}

// BatteryStat describes the primary battery.
type BatteryStat struct {
	Available bool
	Level     int // percent, 0-100
	Charging  bool
}

// NetworkStat describes the active network interface.
type NetworkStat struct {
	Available bool
	Interface string
	Connected bool
	Ethernet  bool
	Signal    int // wireless link quality, percent
	RxRate    float64
	TxRate    float64
}

// MediaStat describes the current media player.
type MediaStat struct {
	Available bool
	Player    string
	Playing   bool
	Title     string
	Artist    string
}

// Direction is the WM's tiling direction for new windows.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Vertical {
		return Horizontal
	}
	return Vertical
}

// WMState describes the window manager.
type WMState struct {
	Available bool
	Name      string
	Direction Direction
}

type CPU interface {
	Usage(ctx context.Context) (CPUStat, error)
}

type Memory interface {
	Memory(ctx context.Context) (MemoryStat, error)
}

type Battery interface {
	Battery(ctx context.Context) (BatteryStat, error)
}

// Network reports on iface, or on the best active interface when iface is
// empty.
type Network interface {
	Network(ctx context.Context, iface string) (NetworkStat, error)
}

type Media interface {
	Current(ctx context.Context) (MediaStat, error)
	PlayPause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
}

type WindowManager interface {
	State(ctx context.Context) (WMState, error)
	ToggleDirection(ctx context.Context) error
}

// Runtime bundles the providers. Nil providers are reported as
// unavailable.
type Runtime struct {
	CPU     CPU
	Memory  Memory
	Battery Battery
	Network Network
	Media   Media
	WM      WindowManager
}

// Snapshot is one reading of every provider.
type Snapshot struct {
	At      time.Time
	CPU     CPUStat
	Memory  MemoryStat
	Battery BatteryStat
	Network NetworkStat
	Media   MediaStat
	WM      WMState
}

// Sample reads every provider. Readings that fail are left unavailable and
// their errors are joined into the returned error.
func (r Runtime) Sample(ctx context.Context, iface string) (Snapshot, error) {
	snap := Snapshot{At: time.Now()}
	var errs []error

	record := func(name string, err error) {
		if err != nil && !errors.Is(err, ErrUnsupported) {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if r.CPU != nil {
		stat, err := r.CPU.Usage(ctx)
		record("cpu", err)
		if err == nil {
			snap.CPU = stat
		}
	}
	if r.Memory != nil {
		stat, err := r.Memory.Memory(ctx)
		record("memory", err)
		if err == nil {
			snap.Memory = stat
		}
	}
	if r.Battery != nil {
		stat, err := r.Battery.Battery(ctx)
		record("battery", err)
		if err == nil {
			snap.Battery = stat
		}
	}
	if r.Network != nil {
		stat, err := r.Network.Network(ctx, iface)
		record("network", err)
		if err == nil {
			snap.Network = stat
		}
	}
	if r.Media != nil {
		stat, err := r.Media.Current(ctx)
		record("media", err)
		if err == nil {
			snap.Media = stat
		}
	}
	if r.WM != nil {
		stat, err := r.WM.State(ctx)
		record("wm", err)
		if err == nil {
			snap.WM = stat
		}
	}

	return snap, errors.Join(errs...)
}
