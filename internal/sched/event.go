// internal/sched/event.go

package sched

import (
	"container/list"
	"time"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
)

// EventID is a stable machine-word handle for an event, valid until Delete.
// Operations on an unknown id follow the benign-failure table: Wait reports
// true, Set and Delete do nothing.
type EventID uintptr

// Forever makes Wait block until the event is set or deleted. Any negative
// timeout is treated the same way.
const Forever = time.Duration(-1)

// waiter is one entry in an event's waiting sequence.
type waiter struct {
	t        *task
	deadline time.Time
	timed    bool
}

// event is an auto-reset latch with a FIFO of waiting tasks. waiting owns
// its entries; timed holds back-references only (deadline -> task ->
// *list.Element) so a timeout wake can unlink its waiting entry in O(1), and
// Set can drop the timed entry of the head it releases.
type event struct {
	signaled bool
	waiting  *list.List
	timed    *treemap.Map
}

func newEvent() *event {
	return &event{
		waiting: list.New(),
		timed:   treemap.NewWith(utils.TimeComparator),
	}
}

// park appends w to the waiting sequence and, for a finite timeout, indexes
// it under its deadline.
func (e *event) park(w *waiter) {
	el := e.waiting.PushBack(w)
	if !w.timed {
		return
	}
	e.bucket(w.deadline)[w.t] = el
}

func (e *event) bucket(deadline time.Time) map[*task]*list.Element {
	if v, ok := e.timed.Get(deadline); ok {
		return v.(map[*task]*list.Element)
	}
	b := make(map[*task]*list.Element)
	e.timed.Put(deadline, b)
	return b
}

// popFront removes and returns the earliest waiter, nil when none. Its timed
// index entry, if any, goes with it.
func (e *event) popFront() *waiter {
	front := e.waiting.Front()
	if front == nil {
		return nil
	}
	w := front.Value.(*waiter)
	e.waiting.Remove(front)
	e.unindex(w)
	return w
}

func (e *event) unindex(w *waiter) {
	if !w.timed {
		return
	}
	if v, ok := e.timed.Get(w.deadline); ok {
		b := v.(map[*task]*list.Element)
		delete(b, w.t)
		if len(b) == 0 {
			e.timed.Remove(w.deadline)
		}
	}
}

// expire unlinks every waiter whose deadline is at or before now, handing
// each task to wake and dropping the exhausted buckets.
func (e *event) expire(now time.Time, wake func(t *task)) {
	for !e.timed.Empty() {
		k, v := e.timed.Min()
		if k.(time.Time).After(now) {
			return
		}
		for t, el := range v.(map[*task]*list.Element) {
			e.waiting.Remove(el)
			wake(t)
		}
		e.timed.Remove(k)
	}
}
