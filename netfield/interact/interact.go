// Package interact turns pointer samples into a decaying interaction focus.
package interact

import (
	"time"

	"backdrop/netfield/sched"
)

// DefaultDecay is how long focus survives without a new sample.
const DefaultDecay = 80 * time.Millisecond

// Tracker records the latest pointer sample and clears focus after a quiet
// interval. Samples and reads both happen on the engine goroutine.
type Tracker struct {
	q     *sched.Queue
	decay time.Duration

	x, y   float64
	active bool
	last   time.Time
	timer  *sched.Timer
}

// New returns a tracker that arms its decay timer on q.
func New(q *sched.Queue, decay time.Duration) *Tracker {
	if decay <= 0 {
		decay = DefaultDecay
	}
	return &Tracker{q: q, decay: decay}
}

// Sample records a pointer position and (re)arms the decay timer.
func (t *Tracker) Sample(x, y float64) {
	t.x, t.y = x, y
	t.active = true
	t.last = t.q.Now()
	if t.timer == nil {
		t.timer = t.q.After(t.decay, t.expire)
		return
	}
	t.timer.Reset(t.decay)
}

func (t *Tracker) expire() { t.active = false }

// FocusActive reports whether a sample arrived within the decay window.
func (t *Tracker) FocusActive() bool { return t.active }

// FocusPoint returns the last sampled position.
func (t *Tracker) FocusPoint() (x, y float64) { return t.x, t.y }

// LastSample returns when the last sample was recorded.
func (t *Tracker) LastSample() time.Time { return t.last }

// Reset clears focus and disarms the decay timer.
func (t *Tracker) Reset() {
	t.active = false
	t.timer.Stop()
}
