package interact

import (
	"testing"
	"time"

	"backdrop/netfield/sched"
)

func TestFocusDecaysAfterSilence(t *testing.T) {
	clk := sched.NewManualClock(time.Unix(0, 0))
	q := sched.New(clk.Now)
	tr := New(q, 0)

	tr.Sample(10, 20)
	if !tr.FocusActive() {
		t.Fatalf("FocusActive() = false right after Sample")
	}
	if x, y := tr.FocusPoint(); x != 10 || y != 20 {
		t.Fatalf("FocusPoint() = %v,%v, want 10,20", x, y)
	}

	clk.Advance(200 * time.Millisecond)
	q.RunDue()
	if tr.FocusActive() {
		t.Fatalf("FocusActive() = true after 200ms of silence")
	}
}

func TestSamplesKeepFocusAlive(t *testing.T) {
	clk := sched.NewManualClock(time.Unix(0, 0))
	q := sched.New(clk.Now)
	tr := New(q, 80*time.Millisecond)

	for i := 0; i < 10; i++ {
		tr.Sample(float64(i), 0)
		clk.Advance(50 * time.Millisecond)
		q.RunDue()
		if !tr.FocusActive() {
			t.Fatalf("FocusActive() = false at sample %d", i)
		}
	}
	if q.Len() != 1 {
		t.Fatalf("pending timers = %d, want 1 (rearmed, not stacked)", q.Len())
	}
}

func TestResetDisarms(t *testing.T) {
	q := sched.New(nil)
	tr := New(q, 0)
	tr.Reset()
	tr.Sample(1, 1)
	tr.Reset()
	if tr.FocusActive() || q.Len() != 0 {
		t.Fatalf("after Reset active=%v pending=%d", tr.FocusActive(), q.Len())
	}
}
