// Package loop drives the built-in renderer: a timer-queue tick that recomputes
// the connection graph, advances the node field and paints the frame.
package loop

import (
	"fmt"
	"math"
	"time"

	"backdrop/netfield/field"
	"backdrop/netfield/graph"
	"backdrop/netfield/sched"
	"backdrop/netfield/tier"
	"backdrop/raster"
)

// State is the loop lifecycle state.
type State uint8

const (
	Idle State = iota
	Running
	Suspended
	Destroyed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Suspended:
		return "suspended"
	case Destroyed:
		return "destroyed"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Degradation thresholds.
const (
	SlowFPSCeiling = 45
	SlowFPSRatio   = 0.75
	SlowFrames     = 30
	SkipEvery      = 3

	// MaxDT bounds the normalized frame delta after a stall.
	MaxDT = 3.0
)

// Surface supplies the canvas for one frame. Canvas returns nil when there is
// nothing to draw on; the loop then simulates without painting.
type Surface interface {
	Canvas() *raster.Canvas
	Present() error
}

// Stats describes the loop after the most recent tick.
type Stats struct {
	Frame    uint64
	FPS      float64
	Nodes    int
	Edges    int
	Skipped  uint64
	Degraded bool
}

// Config parameterizes a loop.
type Config struct {
	Tier  tier.Tier
	Theme Theme
	// OnFrame, if set, runs after every painted tick.
	OnFrame func(Stats, *raster.Canvas)
	// OnError receives present errors.
	OnError func(error)
}

// Loop is the render loop state machine. All methods must be called from the
// goroutine that runs the queue.
type Loop struct {
	q       *sched.Queue
	cfg     Config
	surface Surface
	focus   field.Interaction

	field *field.Field
	graph graph.Graph
	edges []graph.Edge
	// haveEdges is false until the current generation's first recompute.
	haveEdges bool

	state State
	timer *sched.Timer

	lastTick time.Time
	// deadline is the ideal time of the current tick. Successive deadlines are
	// one interval apart, so a late tick never pulls the next one earlier than
	// the grid allows.
	deadline time.Time
	fps      float64
	slow     int
	stats    Stats
}

// New returns an idle loop over f.
func New(q *sched.Queue, f *field.Field, surface Surface, focus field.Interaction, cfg Config) *Loop {
	if cfg.Theme == (Theme{}) {
		cfg.Theme = DefaultTheme()
	}
	return &Loop{q: q, cfg: cfg, surface: surface, focus: focus, field: f}
}

// State returns the current lifecycle state.
func (l *Loop) State() State { return l.state }

// Stats returns the most recent tick statistics.
func (l *Loop) Stats() Stats { return l.stats }

// Tier returns the loop's tier.
func (l *Loop) Tier() tier.Tier { return l.cfg.Tier }

// Field returns the field being animated.
func (l *Loop) Field() *field.Field { return l.field }

// SetField swaps in a new generation. Edges from the old generation are
// dropped.
func (l *Loop) SetField(f *field.Field) {
	l.field = f
	l.edges = nil
	l.haveEdges = false
}

// Start moves Idle to Running and schedules the first tick. It reports whether
// the transition happened.
func (l *Loop) Start() bool {
	if l.state != Idle {
		return false
	}
	l.state = Running
	l.schedule(0)
	return true
}

// Suspend pauses ticking until Resume.
func (l *Loop) Suspend() bool {
	if l.state != Running {
		return false
	}
	l.state = Suspended
	l.timer.Stop()
	l.timer = nil
	return true
}

// Resume restarts ticking after Suspend. The first tick after a resume uses
// a nominal frame delta.
func (l *Loop) Resume() bool {
	if l.state != Suspended {
		return false
	}
	l.state = Running
	l.lastTick = time.Time{}
	l.deadline = time.Time{}
	l.schedule(0)
	return true
}

// Stop cancels the pending tick and destroys the loop. Safe to call any number
// of times; no tick runs after the first call returns.
func (l *Loop) Stop() {
	l.state = Destroyed
	l.timer.Stop()
	l.timer = nil
}

func (l *Loop) schedule(d time.Duration) {
	l.timer = l.q.After(d, l.tick)
}

// FrameInterval returns the target time between ticks.
func (l *Loop) FrameInterval() time.Duration {
	fps := l.cfg.Tier.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	return time.Second / time.Duration(fps)
}

func (l *Loop) slowThreshold() float64 {
	return math.Min(SlowFPSCeiling, SlowFPSRatio*float64(l.cfg.Tier.TargetFPS))
}

func (l *Loop) tick() {
	l.timer = nil
	if l.state != Running {
		return
	}
	start := l.q.Now()
	interval := l.FrameInterval()
	// Re-anchor on the first tick and after a stall of a whole interval.
	if l.deadline.IsZero() || start.Sub(l.deadline) >= interval {
		l.deadline = start
	}

	dt := 1.0
	if !l.lastTick.IsZero() {
		elapsed := start.Sub(l.lastTick).Seconds()
		dt = math.Min(math.Max(elapsed*60, 0), MaxDT)
		if elapsed > 0 {
			inst := 1 / elapsed
			if l.fps == 0 {
				l.fps = inst
			} else {
				l.fps = l.fps*0.9 + inst*0.1
			}
		}
	}
	l.lastTick = start

	if l.cfg.Tier.Name != tier.High && l.fps > 0 && l.fps < l.slowThreshold() {
		l.slow++
	} else {
		l.slow = 0
	}
	degraded := l.slow >= SlowFrames
	l.stats.Frame++
	skip := degraded && l.haveEdges && l.stats.Frame%SkipEvery == 0

	var c *raster.Canvas
	if l.surface != nil {
		c = l.surface.Canvas()
	}
	if c != nil {
		c.Wash(l.cfg.Theme.Trail)
	}

	if l.field != nil {
		if skip {
			l.stats.Skipped++
		} else {
			l.edges = l.graph.Recompute(l.field.Nodes, l.cfg.Tier.MaxConnections, l.cfg.Tier.ConnectionDistance)
			l.haveEdges = true
		}
		l.field.Step(dt, start, l.focus)
		if c != nil {
			paintEdges(c, l.field, l.edges, &l.cfg.Theme)
			paintNodes(c, l.field.Nodes, &l.cfg.Theme)
		}
		l.stats.Nodes = len(l.field.Nodes)
	}
	l.stats.Edges = len(l.edges)
	l.stats.FPS = l.fps
	l.stats.Degraded = degraded

	if c != nil {
		if l.cfg.OnFrame != nil {
			l.cfg.OnFrame(l.stats, c)
		}
		if err := l.surface.Present(); err != nil && l.cfg.OnError != nil {
			l.cfg.OnError(err)
		}
	}

	// OnFrame or OnError may have stopped the loop.
	if l.state != Running {
		return
	}
	l.deadline = l.deadline.Add(interval)
	l.schedule(max(l.deadline.Sub(l.q.Now()), 0))
}
