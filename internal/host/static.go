package host

import (
	"context"
	"sync"
)

// Static is an in-memory host used by tests and demo mode. Media and
// window manager controls mutate its state.
type Static struct {
	mu      sync.Mutex
	cpu     CPUStat
	memory  MemoryStat
	battery BatteryStat
	network NetworkStat
	media   MediaStat
	wm      WMState
	calls   []string
}

// NewStatic returns a Static host with plausible demo values.
func NewStatic() *Static {
	return &Static{
		cpu:     CPUStat{Available: true, Usage: 23},
		memory:  MemoryStat{Available: true, UsedBytes: 6 << 30, TotalBytes: 16 << 30},
		battery: BatteryStat{Available: true, Level: 76},
		network: NetworkStat{Available: true, Interface: "wlan0", Connected: true, Signal: 68},
		media:   MediaStat{Available: true, Player: "demo", Playing: true, Title: "Clair de Lune", Artist: "Claude Debussy"},
		wm:      WMState{Available: true, Name: "demo", Direction: Horizontal},
	}
}

// Runtime exposes s through every provider slot.
func (s *Static) Runtime() Runtime {
	return Runtime{CPU: s, Memory: s, Battery: s, Network: s, Media: s, WM: s}
}

func (s *Static) SetCPU(v CPUStat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cpu = v
}

func (s *Static) SetMemory(v MemoryStat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory = v
}

func (s *Static) SetBattery(v BatteryStat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.battery = v
}

func (s *Static) SetNetwork(v NetworkStat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.network = v
}

func (s *Static) SetMedia(v MediaStat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media = v
}

func (s *Static) SetWM(v WMState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wm = v
}

// Calls lists the control actions received, in order.
func (s *Static) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Static) Usage(context.Context) (CPUStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cpu, nil
}

func (s *Static) Memory(context.Context) (MemoryStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memory, nil
}

func (s *Static) Battery(context.Context) (BatteryStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battery, nil
}

func (s *Static) Network(_ context.Context, iface string) (NetworkStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stat := s.network
	if iface != "" {
		stat.Interface = iface
	}
	return stat, nil
}

func (s *Static) Current(context.Context) (MediaStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.media, nil
}

func (s *Static) PlayPause(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media.Playing = !s.media.Playing
	s.calls = append(s.calls, "play-pause")
	return nil
}

func (s *Static) Next(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "next")
	return nil
}

func (s *Static) Previous(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "previous")
	return nil
}

func (s *Static) State(context.Context) (WMState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wm, nil
}

func (s *Static) ToggleDirection(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wm.Direction = s.wm.Direction.Toggle()
	s.calls = append(s.calls, "toggle-direction")
	return nil
}
