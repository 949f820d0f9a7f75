// Package format renders readings for display.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Florex0Real/linux-system-manager/internal/files"
	"github.com/Florex0Real/linux-system-manager/internal/metrics"
)

const (
	BarWidth   = 20
	TimeLayout = "2006-01-02 15:04"
)

// Bytes formats a byte count with binary units, e.g. "1.5 GiB".
func Bytes(b uint64) string {
	return humanize.IBytes(b)
}

// Rate formats bytes/sec.
func Rate(bps uint64) string {
	return humanize.IBytes(bps) + "/s"
}

// Uptime renders d as "3 days, 4:05:06" or "4:05:06".
func Uptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	clock := fmt.Sprintf("%d:%02d:%02d", h, m, s)
	switch days {
	case 0:
		return clock
	case 1:
		return "1 day, " + clock
	}
	return fmt.Sprintf("%d days, %s", days, clock)
}

// Bar draws a fixed-width usage bar for a percentage in [0,100].
func Bar(pct float64, width int) string {
	if width <= 0 {
		width = BarWidth
	}
	filled := int(pct / 100 * float64(width))
	filled = max(0, min(filled, width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// PercentBar renders "42.0% [████░░...]".
func PercentBar(pct float64) string {
	return fmt.Sprintf("%.1f%% [%s]", pct, Bar(pct, BarWidth))
}

// EntrySize is "-" for directories and a byte count otherwise.
func EntrySize(e files.Entry) string {
	if e.IsDir || e.Size < 0 {
		return "-"
	}
	return Bytes(uint64(e.Size))
}

func EntryKind(e files.Entry) string {
	if e.IsDir {
		return "DIR"
	}
	return "FILE"
}

// Frequency is "N/A" when the host reports none.
func Frequency(f metrics.Frequency) string {
	if !f.Known {
		return "N/A"
	}
	return fmt.Sprintf("%.0f MHz", f.MHz)
}

// Truncate shortens s to n runes, marking the cut with "…".
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
