package web

import (
	"fmt"
	"strings"
	"time"

	"github.com/Florex0Real/linux-system-manager/internal/command"
	"github.com/Florex0Real/linux-system-manager/internal/format"
	"github.com/Florex0Real/linux-system-manager/internal/metrics"
)

// Helpers for the templ components.

func platform(id metrics.Identity) string {
	return strings.TrimSpace(id.Platform + " " + id.PlatformVersion)
}

func loadAverage(l metrics.LoadAvg) string {
	return fmt.Sprintf("%.2f %.2f %.2f", l.Load1, l.Load5, l.Load15)
}

func usage(used, total uint64, pct float64) string {
	return fmt.Sprintf("%s / %s (%.1f%%)", format.Bytes(used), format.Bytes(total), pct)
}

func traffic(total, rate uint64) string {
	return fmt.Sprintf("%s (%s)", format.Bytes(total), format.Rate(rate))
}

func terminateURL(pid int32) string {
	return fmt.Sprintf("/api/processes/%d/terminate", pid)
}

// commandStatus is the trailer under a command's output. A killed command
// has exit code -1, which would read like a real status.
func commandStatus(res command.Result, timeout time.Duration) string {
	if res.TimedOut {
		return fmt.Sprintf("[timed out after %s]", timeout)
	}
	return fmt.Sprintf("[exit %d]", res.ExitCode)
}
