package job

import (
	"log/slog"
	"time"

	"cotick/internal/sched"
)

// Relay returns a task body that sleeps for the given duration and then
// fires ev.
func Relay(s *sched.Scheduler, ev sched.EventID, after time.Duration, log *slog.Logger) sched.TaskFunc {
	return func() {
		s.Sleep(after)
		log.Info("relay firing", "event_id", ev)
		s.Set(ev)
	}
}

// Listener returns a task body that waits on ev and logs whether the wait
// was signaled or timed out.
func Listener(s *sched.Scheduler, ev sched.EventID, timeout time.Duration, log *slog.Logger) sched.TaskFunc {
	return func() {
		signaled := s.Wait(ev, timeout)
		log.Info("listener woke", "event_id", ev, "signaled", signaled)
	}
}

// Spinner returns a task body that yields n times, logging each round.
func Spinner(s *sched.Scheduler, name string, n int, log *slog.Logger) sched.TaskFunc {
	return func() {
		for i := 0; i < n; i++ {
			log.Info("spin", "name", name, "round", i)
			s.Yield()
		}
	}
}
