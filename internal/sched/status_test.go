package sched

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func drainStatus(ch <-chan StatusEvent) []StatusEvent {
	var got []StatusEvent
	for {
		select {
		case ev := <-ch:
			got = append(got, ev)
		default:
			return got
		}
	}
}

func TestObserveStreamsTransitions(t *testing.T) {
	s, clk := newTestScheduler()
	ch := s.Observe(32)

	ev := s.CreateEvent()
	s.CreateTask(func() {
		s.Sleep(10 * time.Millisecond)
		s.Set(ev)
	})
	s.CreateTask(func() { s.Wait(ev, Forever) })

	s.Tick()
	s.Tick()
	clk.Advance(10 * time.Millisecond)
	s.Tick()
	s.Tick()
	s.Tick()

	var kinds []StatusKind
	for _, e := range drainStatus(ch) {
		kinds = append(kinds, e.Kind)
	}

	want := []StatusKind{StatusSpawn, StatusDispatch, StatusSleep, StatusWake, StatusSignal, StatusFinish}
	for _, w := range want {
		found := false
		for _, k := range kinds {
			if k == w {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("status stream %v is missing %s", kinds, w)
		}
	}
}

func TestStatusKindStrings(t *testing.T) {
	cases := map[StatusKind]string{
		StatusSpawn:     "Spawn",
		StatusDispatch:  "Dispatch",
		StatusYield:     "Yield",
		StatusSleep:     "Sleep",
		StatusWake:      "Wake",
		StatusWait:      "Wait",
		StatusSignal:    "Signal",
		StatusTimeout:   "Timeout",
		StatusFinish:    "Finish",
		StatusFail:      "Fail",
		StatusKind(99):  "Unknown",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("String(%d) = %q, want %q", kind, got, want)
		}
	}
}

func TestCSVLoggingWritesRows(t *testing.T) {
	s, _ := newTestScheduler()
	path := filepath.Join(t.TempDir(), "events.csv")
	if err := s.EnableCSVLogging(path); err != nil {
		t.Fatalf("EnableCSVLogging: %v", err)
	}

	s.CreateTask(func() {})
	s.Tick()
	s.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "timestamp,tick,kind,task_id,event_id") {
		t.Fatalf("csv missing header: %q", out)
	}
	for _, kind := range []string{"Spawn", "Dispatch", "Finish"} {
		if !strings.Contains(out, kind) {
			t.Fatalf("csv missing %s row: %q", kind, out)
		}
	}
}
