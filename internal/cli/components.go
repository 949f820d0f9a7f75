package cli

import (
	"github.com/Florex0Real/linux-system-manager/internal/command"
	"github.com/Florex0Real/linux-system-manager/internal/logging"
	"github.com/Florex0Real/linux-system-manager/internal/metrics"
	"github.com/Florex0Real/linux-system-manager/internal/process"
	"github.com/Florex0Real/linux-system-manager/internal/scheduler"
)

func (a *app) newSampler() *metrics.Sampler {
	return metrics.NewSampler(metrics.SamplerParams{
		CPUWindow: a.cfg.CPUWindow,
		DiskPath:  a.cfg.DiskPath,
	})
}

func (a *app) newEnumerator() *process.Enumerator {
	return process.NewEnumerator(logging.New("process"))
}

func (a *app) newRunner() *command.Runner {
	return command.NewRunner(a.cfg.Command.Shell, logging.New("command"))
}

// newScheduler builds a scheduler listing at most processLimit processes
// (0 for all) and the configured start directory.
func (a *app) newScheduler(processLimit int) *scheduler.Scheduler {
	return scheduler.New(scheduler.Params{
		Interval:     a.cfg.RefreshInterval,
		ProcessLimit: processLimit,
		Path:         a.cfg.StartDir,
		Metrics:      a.newSampler(),
		Processes:    a.newEnumerator(),
		Logger:       logging.New("scheduler"),
	})
}
