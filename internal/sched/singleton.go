package sched

import "sync"

var (
	defaultOnce  sync.Once
	defaultSched *Scheduler
)

// Default returns the process-wide scheduler, created on first use with
// default configuration. Prefer an explicit New per host goroutine; Default
// is a convenience for one-scheduler programs.
func Default() *Scheduler {
	defaultOnce.Do(func() {
		defaultSched = New(defaultConfig(), nil)
	})
	return defaultSched
}
