// internal/sched/driver.go

package sched

import (
	"context"
	"time"
)

// Run drives Tick at the configured interval until ctx is cancelled or no
// live task remains. It runs on the calling goroutine, which must be the
// scheduler's host context; tasks must never call it.
func (s *Scheduler) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.TickMS) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.Tick()
		if s.Live() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
