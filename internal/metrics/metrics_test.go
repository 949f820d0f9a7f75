package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lsmerrors "github.com/Florex0Real/linux-system-manager/internal/errors"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name        string
		used, total uint64
		want        float64
	}{
		{"zero total", 10, 0, 0},
		{"both zero", 0, 0, 0},
		{"half", 50, 100, 50},
		{"full", 100, 100, 100},
		{"used above total is clamped", 150, 100, 100},
		{"empty", 0, 4096, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percent(tt.used, tt.total), 1e-9)
		})
	}
}

func TestSumWholeDevicesSkipsPartitions(t *testing.T) {
	counters := map[string]disk.IOCountersStat{
		"sda":       {ReadBytes: 100, WriteBytes: 10},
		"sda1":      {ReadBytes: 60, WriteBytes: 6},
		"sda2":      {ReadBytes: 40, WriteBytes: 4},
		"nvme0n1":   {ReadBytes: 1000, WriteBytes: 100},
		"nvme0n1p1": {ReadBytes: 1000, WriteBytes: 100},
		"loop1":     {ReadBytes: 1, WriteBytes: 0},
		"loop10":    {ReadBytes: 2, WriteBytes: 0},
	}

	read, write := sumWholeDevices(counters)
	assert.Equal(t, uint64(100+1000+1+2), read)
	assert.Equal(t, uint64(10+100), write)
}

func TestNetRates(t *testing.T) {
	prev := Ok(NetUsage{BytesSent: 1000, BytesRecv: 2000})
	cur := Ok(NetUsage{BytesSent: 3000, BytesRecv: 2500})

	r := NetRates(prev, cur, 2*time.Second)
	assert.Equal(t, uint64(1000), r.TxRate)
	assert.Equal(t, uint64(250), r.RxRate)

	assert.Equal(t, NetRate{}, NetRates(prev, cur, 0))
	assert.Equal(t, NetRate{}, NetRates(Unavailable[NetUsage]("network", errors.New("x")), cur, time.Second))

	reset := NetRates(cur, prev, time.Second)
	assert.Equal(t, uint64(0), reset.TxRate, "counter reset must not underflow")
	assert.Equal(t, uint64(0), reset.RxRate)
}

func TestResult(t *testing.T) {
	ok := Ok(MemUsage{Total: 10})
	assert.True(t, ok.Available())
	assert.Empty(t, ok.Reason())

	bad := Unavailable[MemUsage]("memory", errors.New("boom"))
	assert.False(t, bad.Available())
	assert.Contains(t, bad.Reason(), "memory unavailable")
	assert.Contains(t, bad.Reason(), "boom")
	assert.True(t, errors.Is(bad.Err, lsmerrors.ErrUnavailable))
}

func TestResultJSON(t *testing.T) {
	data, err := json.Marshal(Ok(NetUsage{BytesSent: 7}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":{"bytes_sent":7,"bytes_recv":0,"packets_sent":0,"packets_recv":0}}`, string(data))

	data, err = json.Marshal(Unavailable[NetUsage]("network", errors.New("no /proc")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"network unavailable: no /proc"}`, string(data))

	var back Result[NetUsage]
	require.NoError(t, json.Unmarshal(data, &back))
	assert.False(t, back.Available())

	require.Error(t, json.Unmarshal([]byte(`{}`), &back))
}

func TestSnapshotErrors(t *testing.T) {
	s := Snapshot{
		Identity: Ok(Identity{Hostname: "h"}),
		CPU:      Unavailable[CpuUsage]("cpu", errors.New("no stat")),
		Memory:   Ok(MemUsage{}),
		Disk:     Ok(DiskUsage{}),
		Network:  Ok(NetUsage{}),
		Thermal:  Unavailable[[]Temperature]("thermal", errors.New("none")),
	}
	errs := s.Errors()
	assert.Len(t, errs, 2)
	assert.Contains(t, errs, "cpu")
	assert.Contains(t, errs, "thermal")
}

func requireLinux(t *testing.T) {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("host sampling tests run on linux")
	}
}

func TestSamplerReadingsAreInRange(t *testing.T) {
	requireLinux(t)
	s := NewSampler(SamplerParams{CPUWindow: 50 * time.Millisecond})
	ctx := context.Background()

	if m, ok := s.Memory(ctx).Get(); ok {
		assert.GreaterOrEqual(t, m.UsagePct, 0.0)
		assert.LessOrEqual(t, m.UsagePct, 100.0)
		assert.GreaterOrEqual(t, m.SwapUsagePct, 0.0)
		assert.LessOrEqual(t, m.SwapUsagePct, 100.0)
		if m.SwapTotal == 0 {
			assert.Zero(t, m.SwapUsagePct)
		}
	}

	if d, ok := s.Disk(ctx).Get(); ok {
		assert.GreaterOrEqual(t, d.UsedPercent, 0.0)
		assert.LessOrEqual(t, d.UsedPercent, 100.0)
	}

	if c, ok := s.CPU(ctx).Get(); ok {
		assert.GreaterOrEqual(t, c.UsagePct, 0.0)
		assert.LessOrEqual(t, c.UsagePct, 100.0)
		assert.Positive(t, c.Cores)
		if !c.Frequency.Known {
			assert.Zero(t, c.Frequency.MHz)
		}
	}

	if id, ok := s.Identity(ctx).Get(); ok {
		assert.NotEmpty(t, id.Hostname)
		assert.GreaterOrEqual(t, id.Uptime, time.Duration(0))
	}
}

func TestCPUBlocksForWindow(t *testing.T) {
	requireLinux(t)
	window := 100 * time.Millisecond
	s := NewSampler(SamplerParams{CPUWindow: window})

	start := time.Now()
	r := s.CPU(context.Background())
	if !r.Available() {
		t.Skipf("cpu not readable here: %s", r.Reason())
	}
	assert.GreaterOrEqual(t, time.Since(start), window)
}

func TestSampleAllIsolatesFailures(t *testing.T) {
	requireLinux(t)
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	s := NewSampler(SamplerParams{CPUWindow: 10 * time.Millisecond, DiskPath: missing})

	snap := s.SampleAll(context.Background())

	assert.False(t, snap.Disk.Available(), "disk on a missing path must fail")
	assert.True(t, errors.Is(snap.Disk.Err, lsmerrors.ErrUnavailable))
	assert.True(t, snap.Memory.Available(), fmt.Sprintf("memory should still be read: %s", snap.Memory.Reason()))
}
