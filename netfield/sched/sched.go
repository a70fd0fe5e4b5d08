// Package sched is a single-threaded timer queue, the Go stand-in for a page's
// setTimeout/requestAnimationFrame. The host frame calls RunDue; callbacks run
// on that goroutine, so engine state needs no locks.
package sched

import (
	"sort"
	"time"
)

// Queue holds pending timers. It is not safe for concurrent use.
type Queue struct {
	now    func() time.Time
	timers []*Timer
	seq    uint64
}

// Timer is one pending callback.
type Timer struct {
	q     *Queue
	seq   uint64
	at    time.Time
	fn    func()
	armed bool
}

// New returns a queue reading time from now (time.Now when nil).
func New(now func() time.Time) *Queue {
	if now == nil {
		now = time.Now
	}
	return &Queue{now: now}
}

// Now returns the queue's clock reading.
func (q *Queue) Now() time.Time { return q.now() }

// After schedules fn to run at the first RunDue at least d from now.
func (q *Queue) After(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	q.seq++
	t := &Timer{q: q, seq: q.seq, at: q.now().Add(d), fn: fn, armed: true}
	q.timers = append(q.timers, t)
	return t
}

// Stop disarms the timer. It reports whether the timer was still pending and
// is safe to call any number of times.
func (t *Timer) Stop() bool {
	if t == nil || !t.armed {
		return false
	}
	t.armed = false
	t.q.remove(t)
	return true
}

// Reset re-arms the timer to fire d from now.
func (t *Timer) Reset(d time.Duration) {
	if t == nil {
		return
	}
	if d < 0 {
		d = 0
	}
	if !t.armed {
		t.armed = true
		t.q.timers = append(t.q.timers, t)
	}
	t.q.seq++
	t.seq = t.q.seq
	t.at = t.q.now().Add(d)
}

// Pending reports whether the timer has not fired or been stopped.
func (t *Timer) Pending() bool { return t != nil && t.armed }

func (q *Queue) remove(t *Timer) {
	for i, v := range q.timers {
		if v == t {
			q.timers = append(q.timers[:i], q.timers[i+1:]...)
			return
		}
	}
}

// RunDue fires every timer whose deadline has passed, earliest first, and
// returns how many ran. Timers armed by a callback wait for the next call.
func (q *Queue) RunDue() int {
	now := q.now()
	var due []*Timer
	for _, t := range q.timers {
		if !t.at.After(now) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return 0
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}
		return due[i].at.Before(due[j].at)
	})
	ran := 0
	for _, t := range due {
		// An earlier callback may have stopped or re-armed this one.
		if !t.armed || t.at.After(now) {
			continue
		}
		t.armed = false
		q.remove(t)
		if t.fn != nil {
			t.fn()
		}
		ran++
	}
	return ran
}

// Len returns the number of pending timers.
func (q *Queue) Len() int { return len(q.timers) }

// Clear disarms every pending timer.
func (q *Queue) Clear() {
	for _, t := range q.timers {
		t.armed = false
	}
	q.timers = nil
}

// ManualClock is a controllable time source for tests and offline rendering.
type ManualClock struct {
	t time.Time
}

// NewManualClock returns a clock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{t: start}
}

func (c *ManualClock) Now() time.Time { return c.t }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
