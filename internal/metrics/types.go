package metrics

import "time"

type Identity struct {
	Hostname        string        `json:"hostname" yaml:"hostname"`
	OS              string        `json:"os" yaml:"os"`
	Platform        string        `json:"platform" yaml:"platform"`
	PlatformVersion string        `json:"platform_version" yaml:"platform_version"`
	Kernel          string        `json:"kernel" yaml:"kernel"`
	Arch            string        `json:"arch" yaml:"arch"`
	BootTime        time.Time     `json:"boot_time" yaml:"boot_time"`
	Uptime          time.Duration `json:"uptime" yaml:"uptime"`
}

// Frequency is the current clock speed. Known is false when the host does not
// report one, which is a valid reading rather than an error.
type Frequency struct {
	MHz   float64 `json:"mhz" yaml:"mhz"`
	Known bool    `json:"known" yaml:"known"`
}

type LoadAvg struct {
	Load1  float64 `json:"load1" yaml:"load1"`
	Load5  float64 `json:"load5" yaml:"load5"`
	Load15 float64 `json:"load15" yaml:"load15"`
}

type CpuUsage struct {
	UsagePct  float64   `json:"usage" yaml:"usage"`
	Cores     int       `json:"cores" yaml:"cores"`
	Frequency Frequency `json:"frequency" yaml:"frequency"`
	Load      LoadAvg   `json:"load" yaml:"load"`
}

type MemUsage struct {
	Total        uint64  `json:"total" yaml:"total"`
	Used         uint64  `json:"used" yaml:"used"`
	Available    uint64  `json:"available" yaml:"available"`
	UsagePct     float64 `json:"usage" yaml:"usage"`
	SwapTotal    uint64  `json:"swap_total" yaml:"swap_total"`
	SwapUsed     uint64  `json:"swap_used" yaml:"swap_used"`
	SwapUsagePct float64 `json:"swap_usage" yaml:"swap_usage"`
}

// DiskUsage covers one mount point. ReadBytes and WriteBytes are cumulative
// since boot across whole devices, zero when the host does not expose them.
type DiskUsage struct {
	Path        string  `json:"path" yaml:"path"`
	Total       uint64  `json:"total" yaml:"total"`
	Used        uint64  `json:"used" yaml:"used"`
	Free        uint64  `json:"free" yaml:"free"`
	UsedPercent float64 `json:"used_percent" yaml:"used_percent"`
	ReadBytes   uint64  `json:"read_bytes" yaml:"read_bytes"`
	WriteBytes  uint64  `json:"write_bytes" yaml:"write_bytes"`
}

// NetUsage is host-wide and cumulative since boot.
type NetUsage struct {
	BytesSent   uint64 `json:"bytes_sent" yaml:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv" yaml:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent" yaml:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv" yaml:"packets_recv"`
}

type Temperature struct {
	Sensor   string  `json:"sensor" yaml:"sensor"`
	Celsius  float64 `json:"celsius" yaml:"celsius"`
	High     float64 `json:"high" yaml:"high"`
	Critical float64 `json:"critical" yaml:"critical"`
}

// Snapshot bundles one reading per subsystem. Every field fails on its own.
type Snapshot struct {
	Identity Result[Identity]      `json:"identity" yaml:"identity"`
	CPU      Result[CpuUsage]      `json:"cpu" yaml:"cpu"`
	Memory   Result[MemUsage]      `json:"memory" yaml:"memory"`
	Disk     Result[DiskUsage]     `json:"disk" yaml:"disk"`
	Network  Result[NetUsage]      `json:"network" yaml:"network"`
	Thermal  Result[[]Temperature] `json:"thermal" yaml:"thermal"`
}

// Errors lists the subsystems that could not be read, keyed by name.
func (s *Snapshot) Errors() map[string]string {
	out := make(map[string]string)
	add := func(name string, ok bool, reason string) {
		if !ok {
			out[name] = reason
		}
	}
	add("identity", s.Identity.Available(), s.Identity.Reason())
	add("cpu", s.CPU.Available(), s.CPU.Reason())
	add("memory", s.Memory.Available(), s.Memory.Reason())
	add("disk", s.Disk.Available(), s.Disk.Reason())
	add("network", s.Network.Available(), s.Network.Reason())
	add("thermal", s.Thermal.Available(), s.Thermal.Reason())
	return out
}
