package main

import (
	"context"
	"os"
	"time"

	"cotick/internal/job"
	"cotick/internal/logging"
	"cotick/internal/sched"
)

func main() {
	// Read the configuration; an optional path may be given on the command line
	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg := sched.Load(path)
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	s := sched.New(cfg, log)

	ev := s.CreateEvent()
	s.CreateTask(job.Relay(s, ev, 50*time.Millisecond, log))
	s.CreateTask(job.Listener(s, ev, 5*time.Second, log))
	s.CreateTask(job.Spinner(s, "a", 3, log))
	s.CreateTask(job.Spinner(s, "b", 3, log))

	if err := s.Run(context.Background()); err != nil {
		log.Error("scheduler stopped", "err", err)
		os.Exit(1)
	}
	log.Info("all tasks finished", "ticks", s.Ticks())
}
