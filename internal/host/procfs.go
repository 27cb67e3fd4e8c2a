package host

import (
	"context"
	"errors"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/procfs"
	"github.com/prometheus/procfs/sysfs"
)

// wireless link quality is reported on a 0-70 scale by most drivers.
const maxLinkQuality = 70

// Procfs reads CPU, memory, battery and network state from /proc and /sys.
type Procfs struct {
	proc procfs.FS
	sys  sysfs.FS
	now  func() time.Time

	mu      sync.Mutex
	prevCPU *procfs.CPUStat
	prevNet map[string]netSample
}

type netSample struct {
	at      time.Time
	rxBytes uint64
	txBytes uint64
}

// NewProcfs opens the given proc and sys mount points. Empty strings use
// the defaults.
func NewProcfs(procMount, sysMount string) (*Procfs, error) {
	if procMount == "" {
		procMount = procfs.DefaultMountPoint
	}
	if sysMount == "" {
		sysMount = sysfs.DefaultMountPoint
	}

	proc, err := procfs.NewFS(procMount)
	if err != nil {
		return nil, err
	}
	sys, err := sysfs.NewFS(sysMount)
	if err != nil {
		return nil, err
	}

	return &Procfs{
		proc:    proc,
		sys:     sys,
		now:     time.Now,
		prevNet: make(map[string]netSample),
	}, nil
}

// Usage returns CPU use since the previous call. The first call reports
// use since boot.
func (p *Procfs) Usage(_ context.Context) (CPUStat, error) {
	stat, err := p.proc.Stat()
	if err != nil {
		return CPUStat{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	cur := stat.CPUTotal
	prev := procfs.CPUStat{}
	if p.prevCPU != nil {
		prev = *p.prevCPU
	}
	p.prevCPU = &cur

	idle := (cur.Idle + cur.Iowait) - (prev.Idle + prev.Iowait)
	total := cpuTotal(cur) - cpuTotal(prev)
	if total <= 0 {
		return CPUStat{Available: true}, nil
	}

	usage := (total - idle) / total * 100
	return CPUStat{Available: true, Usage: clampPercent(usage)}, nil
}

func cpuTotal(s procfs.CPUStat) float64 {
	return s.User + s.Nice + s.System + s.Idle + s.Iowait + s.IRQ + s.SoftIRQ + s.Steal
}

// Memory reads /proc/meminfo.
func (p *Procfs) Memory(_ context.Context) (MemoryStat, error) {
	info, err := p.proc.Meminfo()
	if err != nil {
		return MemoryStat{}, err
	}
	if info.MemTotalBytes == nil || info.MemAvailableBytes == nil {
		return MemoryStat{}, ErrUnsupported
	}

	total := *info.MemTotalBytes
	avail := *info.MemAvailableBytes
	used := uint64(0)
	if total > avail {
		used = total - avail
	}
	return MemoryStat{Available: true, UsedBytes: used, TotalBytes: total}, nil
}

// Battery reads the first battery under /sys/class/power_supply.
func (p *Procfs) Battery(_ context.Context) (BatteryStat, error) {
	supplies, err := p.sys.PowerSupplyClass()
	if errors.Is(err, fs.ErrNotExist) {
		return BatteryStat{}, ErrUnsupported
	}
	if err != nil {
		return BatteryStat{}, err
	}

	names := make([]string, 0, len(supplies))
	for name := range supplies {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		supply := supplies[name]
		if !strings.EqualFold(supply.Type, "Battery") || supply.Capacity == nil {
			continue
		}
		return BatteryStat{
			Available: true,
			Level:     int(clampPercent(float64(*supply.Capacity))),
			Charging:  strings.EqualFold(supply.Status, "Charging"),
		}, nil
	}
	return BatteryStat{}, ErrUnsupported
}

// Network reports on iface, or picks the first interface that is up,
// preferring wireless ones.
func (p *Procfs) Network(_ context.Context, iface string) (NetworkStat, error) {
	class, err := p.sys.NetClass()
	if err != nil {
		return NetworkStat{}, err
	}

	quality := map[string]int{}
	if wireless, err := p.proc.Wireless(); err == nil {
		for _, w := range wireless {
			quality[w.Name] = w.QualityLink
		}
	}

	if iface == "" {
		iface = pickInterface(class, quality)
	}
	if iface == "" {
		return NetworkStat{Available: true}, nil
	}

	info, ok := class[iface]
	if !ok {
		return NetworkStat{Available: true, Interface: iface}, nil
	}

	stat := NetworkStat{
		Available: true,
		Interface: iface,
		Connected: info.OperState == "up",
	}
	if link, wireless := quality[iface]; wireless {
		stat.Signal = int(clampPercent(float64(link) * 100 / maxLinkQuality))
	} else {
		stat.Ethernet = true
	}
	if !stat.Connected {
		stat.Signal = 0
	}

	if dev, err := p.proc.NetDev(); err == nil {
		if line, ok := dev[iface]; ok {
			stat.RxRate, stat.TxRate = p.rates(iface, line)
		}
	}
	return stat, nil
}

func (p *Procfs) rates(iface string, line procfs.NetDevLine) (float64, float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	prev, ok := p.prevNet[iface]
	p.prevNet[iface] = netSample{at: now, rxBytes: line.RxBytes, txBytes: line.TxBytes}
	if !ok {
		return 0, 0
	}

	elapsed := now.Sub(prev.at).Seconds()
	if elapsed <= 0 || line.RxBytes < prev.rxBytes || line.TxBytes < prev.txBytes {
		return 0, 0
	}
	return float64(line.RxBytes-prev.rxBytes) / elapsed, float64(line.TxBytes-prev.txBytes) / elapsed
}

func pickInterface(class sysfs.NetClass, wireless map[string]int) string {
	names := make([]string, 0, len(class))
	for name, info := range class {
		if name == "lo" || info.OperState != "up" {
			continue
		}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		_, wi := wireless[names[i]]
		_, wj := wireless[names[j]]
		if wi != wj {
			return wi
		}
		return names[i] < names[j]
	})
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
