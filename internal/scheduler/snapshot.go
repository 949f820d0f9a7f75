package scheduler

import (
	"time"

	"github.com/Florex0Real/linux-system-manager/internal/files"
	"github.com/Florex0Real/linux-system-manager/internal/metrics"
	"github.com/Florex0Real/linux-system-manager/internal/process"
)

// Snapshot is one complete, immutable view of the host. Once published it
// is never modified; readers may hold it for as long as they like.
type Snapshot struct {
	Seq         uint64    `json:"seq" yaml:"seq"`
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	CompletedAt time.Time `json:"completed_at" yaml:"completed_at"`

	Metrics   metrics.Snapshot                 `json:"metrics" yaml:"metrics"`
	NetRate   metrics.NetRate                  `json:"net_rate" yaml:"net_rate"`
	Processes metrics.Result[[]process.Record] `json:"processes" yaml:"processes"`
	Directory Directory                        `json:"directory" yaml:"directory"`
}

type Directory struct {
	Path    string                        `json:"path" yaml:"path"`
	Entries metrics.Result[[]files.Entry] `json:"entries" yaml:"entries"`
}

// Errors maps each unavailable part of the snapshot to its reason.
func (s *Snapshot) Errors() map[string]string {
	errs := s.Metrics.Errors()
	if !s.Processes.Available() {
		errs["processes"] = s.Processes.Reason()
	}
	if !s.Directory.Entries.Available() {
		errs["directory"] = s.Directory.Entries.Reason()
	}
	return errs
}
