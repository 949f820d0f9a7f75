package metrics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/sensors"
)

const (
	DefaultCPUWindow = time.Second
	DefaultDiskPath  = "/"
)

type SamplerParams struct {
	CPUWindow time.Duration
	DiskPath  string
}

// Sampler reads one subsystem at a time. It holds no state between calls
// beyond its parameters and is safe for concurrent use.
type Sampler struct {
	cpuWindow time.Duration
	diskPath  string
	now       func() time.Time
}

func NewSampler(params SamplerParams) *Sampler {
	s := &Sampler{
		cpuWindow: params.CPUWindow,
		diskPath:  params.DiskPath,
		now:       time.Now,
	}
	if s.cpuWindow <= 0 {
		s.cpuWindow = DefaultCPUWindow
	}
	if s.diskPath == "" {
		s.diskPath = DefaultDiskPath
	}
	return s
}

// SampleAll reads every subsystem. A failing subsystem only marks its own
// field; the others are still populated. CPU blocks for the sampling window.
func (s *Sampler) SampleAll(ctx context.Context) Snapshot {
	return Snapshot{
		Identity: s.Identity(ctx),
		CPU:      s.CPU(ctx),
		Memory:   s.Memory(ctx),
		Disk:     s.Disk(ctx),
		Network:  s.Network(ctx),
		Thermal:  s.Thermal(ctx),
	}
}

func (s *Sampler) Identity(ctx context.Context) Result[Identity] {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return Unavailable[Identity]("identity", fmt.Errorf("error getting host info: %w", err))
	}
	boot := time.Unix(int64(info.BootTime), 0)
	uptime := s.now().Sub(boot).Truncate(time.Second)
	if uptime < 0 {
		uptime = 0
	}
	return Ok(Identity{
		Hostname:        info.Hostname,
		OS:              info.OS,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		Kernel:          info.KernelVersion,
		Arch:            info.KernelArch,
		BootTime:        boot,
		Uptime:          uptime,
	})
}

func (s *Sampler) CPU(ctx context.Context) Result[CpuUsage] {
	// Interval-averaged over the window, not since the previous call.
	pct, err := cpu.PercentWithContext(ctx, s.cpuWindow, false)
	if err != nil {
		return Unavailable[CpuUsage]("cpu", fmt.Errorf("error getting CPU usage: %w", err))
	}
	if len(pct) == 0 {
		return Unavailable[CpuUsage]("cpu", fmt.Errorf("error getting CPU usage: no data"))
	}

	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return Unavailable[CpuUsage]("cpu", fmt.Errorf("error getting CPU count: %w", err))
	}

	usage := CpuUsage{
		UsagePct: clampPercent(pct[0]),
		Cores:    cores,
	}

	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 && infos[0].Mhz > 0 {
		usage.Frequency = Frequency{MHz: infos[0].Mhz, Known: true}
	}

	// Zero-filled when load averages are unsupported.
	if avg, err := load.AvgWithContext(ctx); err == nil && avg != nil {
		usage.Load = LoadAvg{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15}
	}

	return Ok(usage)
}

func (s *Sampler) Memory(ctx context.Context) Result[MemUsage] {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Unavailable[MemUsage]("memory", fmt.Errorf("error getting memory usage: %w", err))
	}
	swap, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return Unavailable[MemUsage]("memory", fmt.Errorf("error getting swap usage: %w", err))
	}
	return Ok(MemUsage{
		Total:        vm.Total,
		Used:         vm.Used,
		Available:    vm.Available,
		UsagePct:     Percent(vm.Used, vm.Total),
		SwapTotal:    swap.Total,
		SwapUsed:     swap.Used,
		SwapUsagePct: Percent(swap.Used, swap.Total),
	})
}

func (s *Sampler) Disk(ctx context.Context) Result[DiskUsage] {
	usage, err := disk.UsageWithContext(ctx, s.diskPath)
	if err != nil {
		return Unavailable[DiskUsage]("disk", fmt.Errorf("error getting disk usage: %w", err))
	}
	d := DiskUsage{
		Path:        usage.Path,
		Total:       usage.Total,
		Used:        usage.Used,
		Free:        usage.Free,
		UsedPercent: Percent(usage.Used, usage.Total),
	}
	// IO counters are optional; missing counters leave zeros.
	if counters, err := disk.IOCountersWithContext(ctx); err == nil {
		d.ReadBytes, d.WriteBytes = sumWholeDevices(counters)
	}
	return Ok(d)
}

func (s *Sampler) Network(ctx context.Context) Result[NetUsage] {
	stats, err := net.IOCountersWithContext(ctx, false) // false = aggregated
	if err != nil {
		return Unavailable[NetUsage]("network", fmt.Errorf("error getting network usage: %w", err))
	}
	if len(stats) == 0 {
		return Unavailable[NetUsage]("network", fmt.Errorf("error getting network usage: no interfaces"))
	}
	total := stats[0]
	return Ok(NetUsage{
		BytesSent:   total.BytesSent,
		BytesRecv:   total.BytesRecv,
		PacketsSent: total.PacketsSent,
		PacketsRecv: total.PacketsRecv,
	})
}

func (s *Sampler) Thermal(ctx context.Context) Result[[]Temperature] {
	temps, err := sensors.TemperaturesWithContext(ctx)
	// gopsutil returns partial readings alongside a warning error.
	if len(temps) == 0 {
		if err == nil {
			err = fmt.Errorf("no temperature sensors")
		}
		return Unavailable[[]Temperature]("thermal", fmt.Errorf("error getting sensors temperatures: %w", err))
	}
	out := make([]Temperature, 0, len(temps))
	for _, t := range temps {
		out = append(out, Temperature{
			Sensor:   t.SensorKey,
			Celsius:  t.Temperature,
			High:     t.High,
			Critical: t.Critical,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sensor < out[j].Sensor })
	return Ok(out)
}

// Percent returns used/total*100 clamped to [0,100]; zero when total is zero.
func Percent(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return clampPercent(float64(used) / float64(total) * 100)
}

func clampPercent(p float64) float64 {
	switch {
	case math.IsNaN(p) || p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// sumWholeDevices adds up read/write bytes, skipping partitions whose parent
// device is also listed (sda1 under sda, nvme0n1p2 under nvme0n1).
func sumWholeDevices(counters map[string]disk.IOCountersStat) (read, write uint64) {
	for name, c := range counters {
		if isPartitionOf(name, counters) {
			continue
		}
		read += c.ReadBytes
		write += c.WriteBytes
	}
	return read, write
}

func isPartitionOf(name string, counters map[string]disk.IOCountersStat) bool {
	for parent := range counters {
		if parent == name || !strings.HasPrefix(name, parent) {
			continue
		}
		suffix := name[len(parent):]
		// Devices ending in a digit separate partitions with "p".
		if last := parent[len(parent)-1]; last >= '0' && last <= '9' {
			if !strings.HasPrefix(suffix, "p") {
				continue
			}
			suffix = suffix[1:]
		}
		if suffix != "" && strings.Trim(suffix, "0123456789") == "" {
			return true
		}
	}
	return false
}
