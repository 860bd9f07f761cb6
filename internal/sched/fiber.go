// internal/sched/fiber.go

package sched

// Words carried across a context switch. Toward a task, resumeGeneric covers
// first entry, yield and sleep completion, and wait timeout; resumeSignaled
// means the awaited event fired; resumeKill tears the task down (Close only).
// Toward the host, taskSuspended means the task re-parked itself and
// taskFinished means it must be destroyed.
const (
	resumeGeneric  uintptr = 0
	resumeSignaled uintptr = 1
	resumeKill     uintptr = 2

	taskSuspended uintptr = 0
	taskFinished  uintptr = 1
)

// fiberContext is a resumable execution state. Each context owns an
// unbuffered channel; whoever is parked on it holds the context's stack. At
// any instant exactly one context in the scheduler is executing, so none of
// the structures the contexts share need locking.
type fiberContext struct {
	resume chan uintptr
}

// newHostContext wraps the calling execution itself; no goroutine is spawned.
func newHostContext() *fiberContext {
	return &fiberContext{resume: make(chan uintptr)}
}

// newFiberContext binds entry to a fresh goroutine stack. The goroutine
// parks immediately and entry receives the word passed by the first switch
// into the context. The goroutine's stack is owned by that goroutine alone
// and grows on demand, which stands in for the fixed stack buffer of a raw
// fcontext realization.
func newFiberContext(entry func(first uintptr)) *fiberContext {
	fc := &fiberContext{resume: make(chan uintptr)}
	go func() {
		entry(<-fc.resume)
	}()
	return fc
}

// switchContext resumes in with v and parks the caller on out. The call
// returns when a later switch targets out, carrying that switch's word.
// After the send the caller touches nothing but its own channel, so the
// brief overlap with the resumed context is harmless.
func switchContext(out, in *fiberContext, v uintptr) uintptr {
	in.resume <- v
	return <-out.resume
}

// finalSwitch resumes in with v without parking the caller. Used exactly
// once per task, by the trampoline; the calling goroutine must return
// immediately afterwards.
func finalSwitch(in *fiberContext, v uintptr) {
	in.resume <- v
}
