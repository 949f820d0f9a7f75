// Package scheduler assembles and publishes system snapshots at a bounded rate.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/Florex0Real/linux-system-manager/internal/files"
	"github.com/Florex0Real/linux-system-manager/internal/metrics"
	"github.com/Florex0Real/linux-system-manager/internal/process"
)

const DefaultInterval = 2 * time.Second

// MetricsSource samples every host subsystem once.
type MetricsSource interface {
	SampleAll(ctx context.Context) metrics.Snapshot
}

// ProcessSource lists processes ranked by CPU, capped at limit.
type ProcessSource interface {
	List(ctx context.Context, limit int) ([]process.Record, error)
}

// DirSource lists a directory.
type DirSource func(path string) ([]files.Entry, error)

type Params struct {
	Interval     time.Duration
	ProcessLimit int
	Path         string

	Metrics   MetricsSource
	Processes ProcessSource
	ListDir   DirSource
	Logger    *log.Logger
	Now       func() time.Time
}

// Scheduler owns the latest snapshot. Readers get it lock-free through
// Latest; Collect replaces it at most once per interval.
type Scheduler struct {
	interval     time.Duration
	processLimit int

	metrics   MetricsSource
	processes ProcessSource
	listDir   DirSource
	logger    *log.Logger
	now       func() time.Time

	latest  atomic.Pointer[Snapshot]
	path    atomic.Pointer[string]
	collect sync.Mutex
	seq     uint64 // guarded by collect

	subsMu sync.Mutex
	subs   map[chan *Snapshot]struct{}
}

func New(p Params) *Scheduler {
	s := &Scheduler{
		interval:     p.Interval,
		processLimit: p.ProcessLimit,
		metrics:      p.Metrics,
		processes:    p.Processes,
		listDir:      p.ListDir,
		logger:       p.Logger,
		now:          p.Now,
		subs:         make(map[chan *Snapshot]struct{}),
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.listDir == nil {
		s.listDir = files.List
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.SetPath(p.Path)
	return s
}

func (s *Scheduler) Interval() time.Duration { return s.interval }

// SetPath changes the directory listed by the next collection.
func (s *Scheduler) SetPath(p string) {
	p = files.Resolve(p)
	s.path.Store(&p)
}

func (s *Scheduler) Path() string {
	return *s.path.Load()
}

// Latest returns the most recently published snapshot, nil before the first.
func (s *Scheduler) Latest() *Snapshot {
	return s.latest.Load()
}

// Collect returns the latest snapshot when it is younger than the interval
// and otherwise gathers, publishes and returns a new one. Concurrent callers
// share one collection.
func (s *Scheduler) Collect(ctx context.Context) *Snapshot {
	if snap := s.fresh(); snap != nil {
		return snap
	}

	s.collect.Lock()
	defer s.collect.Unlock()

	// Another caller may have collected while we waited.
	if snap := s.fresh(); snap != nil {
		return snap
	}
	return s.collectLocked(ctx)
}

func (s *Scheduler) fresh() *Snapshot {
	snap := s.latest.Load()
	if snap != nil && s.now().Sub(snap.CompletedAt) < s.interval {
		return snap
	}
	return nil
}

func (s *Scheduler) collectLocked(ctx context.Context) *Snapshot {
	prev := s.latest.Load()
	started := s.now()

	snap := &Snapshot{StartedAt: started}
	if s.metrics != nil {
		snap.Metrics = s.metrics.SampleAll(ctx)
	}
	snap.Processes = s.listProcesses(ctx)
	snap.Directory = s.listDirectory()

	s.seq++
	snap.Seq = s.seq
	snap.CompletedAt = s.now()

	if prev != nil {
		snap.NetRate = metrics.NetRates(prev.Metrics.Network, snap.Metrics.Network,
			snap.CompletedAt.Sub(prev.CompletedAt))
	}

	if s.logger != nil {
		for subsystem, reason := range snap.Errors() {
			s.logger.Debugf("snapshot %d: %s: %s", snap.Seq, subsystem, reason)
		}
	}

	s.latest.Store(snap)
	s.publish(snap)
	return snap
}

func (s *Scheduler) listProcesses(ctx context.Context) metrics.Result[[]process.Record] {
	if s.processes == nil {
		return metrics.Ok([]process.Record{})
	}
	records, err := s.processes.List(ctx, s.processLimit)
	if err != nil {
		return metrics.Unavailable[[]process.Record]("processes", err)
	}
	return metrics.Ok(records)
}

func (s *Scheduler) listDirectory() Directory {
	path := s.Path()
	entries, err := s.listDir(path)
	if err != nil {
		return Directory{Path: path, Entries: metrics.Result[[]files.Entry]{Err: err}}
	}
	return Directory{Path: path, Entries: metrics.Ok(entries)}
}

// Run collects in a loop until ctx is done, waiting one interval between
// passes. Cancellation is only observed between passes: a pass in progress
// runs to completion, CPU window included, and is published before Run
// returns.
func (s *Scheduler) Run(ctx context.Context) {
	if s.logger != nil {
		s.logger.Infof("refreshing every %s", s.interval)
	}
	passCtx := context.WithoutCancel(ctx)
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.Collect(passCtx)
			timer.Reset(s.interval)
		}
	}
}
