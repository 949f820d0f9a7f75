package web

import (
	"context"

	"github.com/Florex0Real/linux-system-manager/internal/scheduler"
)

// follow sends the latest snapshot, if there is one, and then every newer
// published snapshot until ctx or done ends the stream. It subscribes before
// reading Latest so nothing published in between is missed; a snapshot seen
// both ways is sent once. It returns the first send error.
func (s *Server) follow(ctx context.Context, done <-chan struct{}, send func(*scheduler.Snapshot) error) error {
	updates, unsubscribe := s.sched.Subscribe()
	defer unsubscribe()

	var sent uint64
	if snap := s.sched.Latest(); snap != nil {
		if err := send(snap); err != nil {
			return err
		}
		sent = snap.Seq
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-done:
			return nil
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			if snap.Seq <= sent {
				continue
			}
			if err := send(snap); err != nil {
				return err
			}
			sent = snap.Seq
		}
	}
}
