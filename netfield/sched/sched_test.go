package sched

import (
	"testing"
	"time"
)

func TestRunDueOrderAndDeadline(t *testing.T) {
	clk := NewManualClock(time.Unix(0, 0))
	q := New(clk.Now)

	var order []int
	q.After(20*time.Millisecond, func() { order = append(order, 2) })
	q.After(10*time.Millisecond, func() { order = append(order, 1) })
	q.After(50*time.Millisecond, func() { order = append(order, 3) })

	if n := q.RunDue(); n != 0 {
		t.Fatalf("RunDue() at t=0 = %d, want 0", n)
	}
	clk.Advance(25 * time.Millisecond)
	if n := q.RunDue(); n != 2 {
		t.Fatalf("RunDue() at t=25ms = %d, want 2", n)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("order = %v, want [1 2]", order)
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", q.Len())
	}
}

func TestStopIsIdempotent(t *testing.T) {
	clk := NewManualClock(time.Unix(0, 0))
	q := New(clk.Now)
	fired := false
	tm := q.After(time.Millisecond, func() { fired = true })

	if !tm.Stop() {
		t.Fatalf("first Stop() = false, want true")
	}
	if tm.Stop() {
		t.Fatalf("second Stop() = true, want false")
	}
	clk.Advance(time.Second)
	q.RunDue()
	if fired {
		t.Fatalf("stopped timer fired")
	}
}

func TestCallbackArmedTimerWaitsForNextRun(t *testing.T) {
	clk := NewManualClock(time.Unix(0, 0))
	q := New(clk.Now)
	runs := 0
	var tick func()
	tick = func() {
		runs++
		q.After(0, tick)
	}
	q.After(0, tick)

	q.RunDue()
	q.RunDue()
	if runs != 2 {
		t.Fatalf("runs = %d, want 2 (one per RunDue)", runs)
	}
}

func TestResetReschedules(t *testing.T) {
	clk := NewManualClock(time.Unix(0, 0))
	q := New(clk.Now)
	fired := 0
	tm := q.After(10*time.Millisecond, func() { fired++ })

	clk.Advance(8 * time.Millisecond)
	tm.Reset(10 * time.Millisecond)
	clk.Advance(8 * time.Millisecond)
	q.RunDue()
	if fired != 0 {
		t.Fatalf("fired = %d after reset, want 0", fired)
	}
	clk.Advance(5 * time.Millisecond)
	q.RunDue()
	if fired != 1 || tm.Pending() {
		t.Fatalf("fired,pending = %d,%v, want 1,false", fired, tm.Pending())
	}
}

func TestCallbackStopsLaterTimer(t *testing.T) {
	clk := NewManualClock(time.Unix(0, 0))
	q := New(clk.Now)
	var second *Timer
	secondFired := false
	q.After(time.Millisecond, func() { second.Stop() })
	second = q.After(2*time.Millisecond, func() { secondFired = true })

	clk.Advance(5 * time.Millisecond)
	q.RunDue()
	if secondFired {
		t.Fatalf("timer stopped by an earlier callback still fired")
	}
}

func TestClear(t *testing.T) {
	q := New(nil)
	tm := q.After(0, func() {})
	q.Clear()
	if q.Len() != 0 || tm.Pending() {
		t.Fatalf("Clear left len=%d pending=%v", q.Len(), tm.Pending())
	}
}
