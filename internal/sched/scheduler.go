// internal/sched/scheduler.go

package sched

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/saweima12/gcrate/pqueue"
)

// readyEntry pairs a runnable task with the word to pass on its next resume.
type readyEntry struct {
	t   *task
	val uintptr
}

// sleepEntry orders sleeping tasks by deadline; seq keeps equal deadlines
// FIFO.
type sleepEntry struct {
	deadline time.Time
	seq      uint64
	t        *task
}

func sleepEarlier(i, j sleepEntry) bool {
	if i.deadline.Equal(j.deadline) {
		return i.seq < j.seq
	}
	return i.deadline.Before(j.deadline)
}

// Scheduler multiplexes tasks cooperatively onto the goroutine that drives
// Tick. Every live task is reachable from exactly one of: the current slot,
// the ready queue, the sleep heap, or one event's waiting sequence. All
// operations run on the host goroutine or inside a task switched in by it,
// so no locking is needed anywhere.
type Scheduler struct {
	cfg Config
	log *slog.Logger

	host    *fiberContext
	current *task

	ready    *linkedlistqueue.Queue // of readyEntry
	sleeping *pqueue.PriorityQueue[sleepEntry]
	events   map[EventID]*event

	nextTaskID  TaskID
	nextEventID EventID
	sleepSeq    uint64
	live        int

	// now is read exactly once per tick; injectable for tests.
	now func() time.Time

	ticks atomic.Int64

	statusCh  chan StatusEvent
	csvFile   *os.File
	csvWriter *csv.Writer

	onFailure func(id TaskID, recovered any)
}

// New creates a Scheduler. The calling goroutine is its host context: Tick,
// Run and Close must be issued from it. A nil logger discards.
func New(cfg Config, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{
		cfg:      cfg,
		log:      logger,
		host:     newHostContext(),
		ready:    linkedlistqueue.New(),
		sleeping: pqueue.NewPriorityQueue[sleepEntry](sleepEarlier, 64),
		events:   make(map[EventID]*event),
		now:      time.Now,
	}
}

// CreateTask appends a new task to the tail of the ready queue. Callable
// from the host or from inside a task; never suspends the caller.
func (s *Scheduler) CreateTask(fn TaskFunc) TaskID {
	t := s.newTask(fn)
	s.live++
	s.readyPush(t, resumeGeneric)
	s.emit(StatusSpawn, t.id, 0)
	s.log.Debug("task created", "task_id", t.id)
	return t.id
}

// CreateEvent produces a non-signaled event and returns its handle. Never
// suspends.
func (s *Scheduler) CreateEvent() EventID {
	s.nextEventID++
	id := s.nextEventID
	s.events[id] = newEvent()
	return id
}

// Wait blocks the calling task until id is set or deleted (true) or the
// timeout elapses (false). A zero timeout polls; Forever never times out. A
// latched event is consumed without suspending. From the host context, or on
// an unknown id, Wait reports true immediately and the latch is untouched.
func (s *Scheduler) Wait(id EventID, timeout time.Duration) bool {
	t := s.current
	if t == nil {
		return true
	}
	ev, ok := s.events[id]
	if !ok {
		return true
	}
	if ev.signaled {
		ev.signaled = false
		return true
	}
	if timeout == 0 {
		return false
	}

	w := &waiter{t: t}
	if timeout > 0 {
		w.deadline = s.now().Add(timeout)
		w.timed = true
	}
	ev.park(w)
	s.emit(StatusWait, t.id, id)
	return s.suspend(t) == resumeSignaled
}

// Set releases the earliest waiter of id with a signaled resume, or latches
// the event when nobody waits. Exactly one task is released per call. Never
// suspends; callable anywhere.
func (s *Scheduler) Set(id EventID) {
	ev, ok := s.events[id]
	if !ok {
		return
	}
	if w := ev.popFront(); w != nil {
		s.readyPush(w.t, resumeSignaled)
		s.emit(StatusSignal, w.t.id, id)
		return
	}
	ev.signaled = true
}

// Delete releases every waiter of id as if signaled, in arrival order, and
// removes the event. Callable anywhere; unknown ids are ignored.
func (s *Scheduler) Delete(id EventID) {
	ev, ok := s.events[id]
	if !ok {
		return
	}
	for w := ev.popFront(); w != nil; w = ev.popFront() {
		s.readyPush(w.t, resumeSignaled)
		s.emit(StatusSignal, w.t.id, id)
	}
	delete(s.events, id)
}

// Yield re-appends the calling task to the tail of the ready queue and hands
// control to the host. A no-op from the host context.
func (s *Scheduler) Yield() {
	t := s.current
	if t == nil {
		return
	}
	s.readyPush(t, resumeGeneric)
	s.emit(StatusYield, t.id, 0)
	s.suspend(t)
}

// Sleep parks the calling task for at least d. Sleep(0) is Yield. A no-op
// from the host context.
func (s *Scheduler) Sleep(d time.Duration) {
	t := s.current
	if t == nil {
		return
	}
	if d <= 0 {
		s.Yield()
		return
	}
	s.sleepSeq++
	s.sleeping.Push(sleepEntry{deadline: s.now().Add(d), seq: s.sleepSeq, t: t})
	s.emit(StatusSleep, t.id, 0)
	s.suspend(t)
}

// Tick drives the scheduler one step: wake expired sleepers, expire timed
// waits, then run at most one task that was already ready when the tick
// began. Tasks readied during this tick run in a later one. A tick with
// nothing expired and nothing ready switches no contexts. Calling Tick from
// inside a task is refused.
func (s *Scheduler) Tick() {
	if s.current != nil {
		return
	}
	s.ticks.Add(1)
	now := s.now()

	runnable := s.ready.Size()

	for s.sleeping.Len() > 0 {
		if s.sleeping.Peek().deadline.After(now) {
			break
		}
		woken := s.sleeping.Pop()
		s.readyPush(woken.t, resumeGeneric)
		s.emit(StatusWake, woken.t.id, 0)
	}

	for id, ev := range s.events {
		ev.expire(now, func(t *task) {
			s.readyPush(t, resumeGeneric)
			s.emit(StatusTimeout, t.id, id)
		})
	}

	if runnable == 0 {
		return
	}
	v, _ := s.ready.Dequeue()
	entry := v.(readyEntry)
	s.current = entry.t
	s.emit(StatusDispatch, entry.t.id, 0)
	if switchContext(s.host, entry.t.fc, entry.val) == taskFinished {
		s.finishCurrent()
	}
	// On taskSuspended the task already re-parked itself and emptied the
	// current slot before switching.
}

// Close tears down every live task and drops all events; host-only. Each
// parked task is resumed with a poison word so its suspension point unwinds
// the stack: deferred functions run and the goroutine exits. The status
// stream and CSV log are closed last.
func (s *Scheduler) Close() {
	if s.current != nil {
		return
	}
	for s.live > 0 {
		if v, ok := s.ready.Dequeue(); ok {
			s.kill(v.(readyEntry).t)
			continue
		}
		if s.sleeping.Len() > 0 {
			s.kill(s.sleeping.Pop().t)
			continue
		}
		killed := false
		for _, ev := range s.events {
			if w := ev.popFront(); w != nil {
				s.kill(w.t)
				killed = true
				break
			}
		}
		if !killed {
			s.log.Error("close: live task not found in any container", "live", s.live)
			break
		}
	}
	s.events = make(map[EventID]*event)
	s.closeStatus()
}

// kill resumes t with the teardown poison and waits for its final switch. A
// task whose unwind re-parks itself is picked up again by Close's drain
// loop.
func (s *Scheduler) kill(t *task) {
	s.current = t
	if switchContext(s.host, t.fc, resumeKill) == taskFinished {
		s.finishCurrent()
	}
}

// Live reports the number of tasks created and not yet destroyed.
func (s *Scheduler) Live() int { return s.live }

// Ticks reports how many times Tick has run. Safe to read from observers.
func (s *Scheduler) Ticks() int64 { return s.ticks.Load() }

// SetFailureHook routes abnormal task terminations to fn instead of the
// logger.
func (s *Scheduler) SetFailureHook(fn func(id TaskID, recovered any)) {
	s.onFailure = fn
}

// suspend parks the calling task and transfers control to the host. The
// caller must already have moved t into its new container: once the switch
// happens the host cannot know where the task went, so the current slot is
// emptied here, before the switch, and is always empty when the host sees a
// suspended return.
func (s *Scheduler) suspend(t *task) uintptr {
	s.current = nil
	v := switchContext(t.fc, s.host, taskSuspended)
	if v == resumeKill {
		panic(killSignal{})
	}
	return v
}

func (s *Scheduler) readyPush(t *task, val uintptr) {
	s.ready.Enqueue(readyEntry{t: t, val: val})
}

func (s *Scheduler) finishCurrent() {
	t := s.current
	s.current = nil
	s.live--
	s.emit(StatusFinish, t.id, 0)
	s.log.Debug("task finished", "task_id", t.id)
}

// taskFailed runs on the failing task's stack, before its final switch.
func (s *Scheduler) taskFailed(t *task, recovered any) {
	s.emit(StatusFail, t.id, 0)
	if s.onFailure != nil {
		s.onFailure(t.id, recovered)
		return
	}
	s.log.Error("task terminated abnormally", "task_id", t.id, "panic", recovered)
}
