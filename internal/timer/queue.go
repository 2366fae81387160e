// Package timer provides a deadline queue whose callbacks run on the
// goroutine that drains it.
package timer

import (
	"container/heap"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/soar/padmapper/internal/dpad"
)

// Entry is one scheduled callback.
type Entry struct {
	q        *Queue
	deadline time.Time
	seq      uint64
	fn       func()
	index    int // position in the heap, -1 once removed
}

// Stop cancels the entry. It reports whether the entry was still pending.
func (e *Entry) Stop() bool {
	return e.q.remove(e)
}

// Deadline returns when the entry is due.
func (e *Entry) Deadline() time.Time {
	return e.deadline
}

// Queue orders callbacks by deadline. Scheduling and cancelling may happen
// from any goroutine, but callbacks only run inside RunDue.
type Queue struct {
	clock clockwork.Clock

	mu      sync.Mutex
	entries entryHeap
	seq     uint64
	wake    chan struct{}
}

// NewQueue returns a queue reading time from clock. A nil clock uses the
// real clock.
func NewQueue(clock clockwork.Clock) *Queue {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Queue{clock: clock, wake: make(chan struct{}, 1)}
}

func (q *Queue) Clock() clockwork.Clock { return q.clock }

// AfterFunc schedules f to run d from now.
func (q *Queue) AfterFunc(d time.Duration, f func()) dpad.Timer {
	return q.Schedule(d, f)
}

// Schedule is AfterFunc returning the concrete entry.
func (q *Queue) Schedule(d time.Duration, f func()) *Entry {
	q.mu.Lock()
	q.seq++
	e := &Entry{q: q, deadline: q.clock.Now().Add(d), seq: q.seq, fn: f}
	heap.Push(&q.entries, e)
	first := q.entries[0] == e
	q.mu.Unlock()

	if first {
		select {
		case q.wake <- struct{}{}:
		default:
		}
	}
	return e
}

func (q *Queue) remove(e *Entry) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if e.index < 0 {
		return false
	}
	heap.Remove(&q.entries, e.index)
	return true
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Next returns the earliest deadline.
func (q *Queue) Next() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return time.Time{}, false
	}
	return q.entries[0].deadline, true
}

// Wake is signalled when a new earliest deadline is scheduled.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

// RunDue runs every callback whose deadline is not after the clock's
// current time, in deadline order, and returns how many ran. Callbacks
// scheduled by a running callback run in the same call if already due.
func (q *Queue) RunDue() int {
	ran := 0
	for {
		now := q.clock.Now()
		q.mu.Lock()
		if len(q.entries) == 0 || q.entries[0].deadline.After(now) {
			q.mu.Unlock()
			return ran
		}
		e := heap.Pop(&q.entries).(*Entry)
		q.mu.Unlock()

		e.fn()
		ran++
	}
}

type entryHeap []*Entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x any) {
	e := x.(*Entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}
