// Package process lists, ranks and signals host processes.
package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/labstack/gommon/log"
	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sys/unix"

	lsmerrors "github.com/Florex0Real/linux-system-manager/internal/errors"
)

// Record is one row of the process table. Recomputed on every listing.
type Record struct {
	Pid  int32  `json:"pid" yaml:"pid"`
	Name string `json:"name" yaml:"name"`
	// CpuPct is gopsutil's CPUPercent: CPU time over the process's whole
	// lifetime divided by its age. It is not usage since the previous
	// listing, so a process that was busy early and is now idle still ranks
	// high.
	CpuPct float64 `json:"cpu_pct" yaml:"cpu_pct"`
	MemPct float64 `json:"mem_pct" yaml:"mem_pct"`
	Status string  `json:"status" yaml:"status"`
}

// Lister returns the processes visible to the caller.
type Lister func(ctx context.Context) ([]*process.Process, error)

type Enumerator struct {
	processes Lister
	logger    *log.Logger
}

func NewEnumerator(logger *log.Logger) *Enumerator {
	return &Enumerator{
		processes: process.ProcessesWithContext,
		logger:    logger,
	}
}

// List reads every visible process, ranks by CPU descending and keeps the
// top limit (limit <= 0 keeps all). Processes that exit or deny access while
// being read are left out.
func (e *Enumerator) List(ctx context.Context, limit int) ([]Record, error) {
	procs, err := e.processes(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting processes: %w", err)
	}

	records := make([]Record, 0, len(procs))
	skipped := 0
	for _, p := range procs {
		r, ok := read(ctx, p)
		if !ok {
			skipped++
			continue
		}
		records = append(records, r)
	}
	if skipped > 0 && e.logger != nil {
		e.logger.Debugf("skipped %d of %d processes", skipped, len(procs))
	}

	return Rank(records, limit), nil
}

func read(ctx context.Context, p *process.Process) (Record, bool) {
	// Lifetime average from one read of the process times.
	cpuPct, err := p.CPUPercentWithContext(ctx)
	if err != nil {
		// Process might have died
		return Record{}, false
	}
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return Record{}, false
	}

	var memPct float64
	if pct, err := p.MemoryPercentWithContext(ctx); err == nil {
		memPct = float64(pct)
	}

	status := "unknown"
	if st, err := p.StatusWithContext(ctx); err == nil && len(st) > 0 && st[0] != "" {
		status = st[0]
	}

	return Record{
		Pid:    p.Pid,
		Name:   name,
		CpuPct: cpuPct,
		MemPct: memPct,
		Status: status,
	}, true
}

// Rank sorts by CPU percentage descending and truncates to limit.
// Equal CPU keeps input order. limit <= 0 means no truncation.
func Rank(records []Record, limit int) []Record {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CpuPct > records[j].CpuPct
	})

	// Top N
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}

// Lookup reads one process.
func Lookup(ctx context.Context, pid int32) (Record, error) {
	if pid <= 0 {
		return Record{}, notFound(pid, nil)
	}
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return Record{}, notFound(pid, err)
	}
	r, ok := read(ctx, p)
	if !ok {
		return Record{}, notFound(pid, nil)
	}
	return r, nil
}

// Terminate sends a single SIGTERM to pid. It reports NOT_FOUND when the pid
// does not name a live process and PERMISSION_DENIED when the caller may not
// signal it. There is no retry and no escalation to SIGKILL.
func Terminate(ctx context.Context, pid int32) error {
	if pid <= 0 {
		// kill(0) and kill(-n) address process groups, never a single target.
		return notFound(pid, nil)
	}
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return classify(pid, err)
	}
	if err := p.TerminateWithContext(ctx); err != nil {
		return classify(pid, err)
	}
	return nil
}

func classify(pid int32, err error) error {
	switch {
	case errors.Is(err, process.ErrorProcessNotRunning),
		errors.Is(err, os.ErrProcessDone),
		errors.Is(err, unix.ESRCH):
		return notFound(pid, err)
	case errors.Is(err, os.ErrPermission),
		errors.Is(err, process.ErrorNotPermitted):
		return lsmerrors.WrapWithSuggestion(err, lsmerrors.ErrCodePermission,
			fmt.Sprintf("not allowed to terminate process %d", pid),
			"run as the process owner or root")
	}
	return lsmerrors.Wrap(err, lsmerrors.ErrCodeExec, fmt.Sprintf("failed to terminate process %d", pid))
}

func notFound(pid int32, cause error) error {
	return lsmerrors.Wrap(cause, lsmerrors.ErrCodeNotFound, fmt.Sprintf("no process with pid %d", pid))
}
