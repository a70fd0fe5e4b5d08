// Package net3d is the heavier external renderer: a slowly orbiting 3D net of
// points joined by proximity lines, drawn with quarkgl projection.
package net3d

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"backdrop/netfield/bridge"
	"backdrop/netfield/sched"
	"backdrop/netfield/tier"
	"backdrop/quarkgl"
	"backdrop/raster"
)

// Config is the full set of renderer options.
type Config struct {
	Points      int
	MaxDistance float64 // world units; the cube spans [-1,1]
	MaxLinks    int     // per point
	Color       raster.Color
	Background  raster.Color
	ShowDots    bool
	DotSize     float64 // logical pixels at unit perspective
	SpinSpeed   float64 // radians per second
	// MouseControls lets the pointer steer the orbit.
	MouseControls bool
	TargetFPS     int
	Seed          int64

	// OnFrame, if set, runs after every frame is drawn.
	OnFrame func(*raster.Canvas)
}

// FromTier derives a configuration from a tier.
func FromTier(t tier.Tier) Config {
	c := Config{
		Points:        t.NodeCount * 2,
		MaxDistance:   0.2 + t.ConnectionDistance/1000,
		MaxLinks:      t.MaxConnections + 2,
		Color:         raster.Hex(0x3a7bd5),
		Background:    raster.Hex(0x0a0e1a),
		ShowDots:      true,
		DotSize:       3,
		SpinSpeed:     0.08,
		MouseControls: true,
		TargetFPS:     t.TargetFPS,
		Seed:          1,
	}
	if t.Name == tier.High {
		c.MaxLinks++
	}
	return c
}

var ErrNoCanvas = errors.New("net3d: no canvas")

// Loader builds a Renderer for a configuration.
type Loader struct {
	Config Config
}

// Load generates the point cloud. It honors ctx between batches.
func (l Loader) Load(ctx context.Context) (bridge.Renderer, error) {
	cfg := l.Config
	if cfg.Points <= 0 {
		return nil, errors.New("net3d: no points")
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	pts := make([]point, cfg.Points)
	for i := range pts {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		pts[i] = point{
			base:  quarkgl.V3(rng.Float64()*2-1, rng.Float64()*2-1, rng.Float64()*2-1),
			phase: rng.Float64() * 2 * math.Pi,
		}
	}
	return &Renderer{cfg: cfg, pts: pts}, nil
}

type point struct {
	base  quarkgl.Vec3
	phase float64

	pos  quarkgl.Vec3
	scr  quarkgl.Projected
	seen bool
}

// Renderer draws the net on its own timer.
type Renderer struct {
	cfg Config
	pts []point

	m     bridge.Mount
	orbit quarkgl.OrbitController
	cam   quarkgl.Camera
	proj  quarkgl.Projector

	timer    *sched.Timer
	start    time.Time
	last     time.Time
	deadline time.Time
	frames   uint64
	dead     bool

	// turn is yaw still to be applied from clicks.
	turn float64
}

// TurnStep is the yaw one click adds.
const TurnStep = math.Pi / 4

// WheelZoom is the orbit radius change per wheel notch.
const WheelZoom = 0.25

// Init takes the mount and schedules the first frame.
func (r *Renderer) Init(m bridge.Mount) error {
	if m.Surface == nil || m.Surface.Canvas() == nil {
		return ErrNoCanvas
	}
	if m.Queue == nil {
		return errors.New("net3d: no queue")
	}
	r.m = m
	r.cam = quarkgl.DefaultCamera()
	r.orbit = quarkgl.OrbitController{Radius: 3.2, MinRadius: 2, MaxRadius: 6, MaxPitch: 0.6, Pitch: 0.2}
	r.start = m.Queue.Now()
	r.timer = m.Queue.After(0, r.frame)
	return nil
}

// Resize records the new logical size; the next frame uses it.
func (r *Renderer) Resize(w, h float64) {
	r.m.Width, r.m.Height = w, h
}

// Destroy cancels the pending frame.
func (r *Renderer) Destroy() {
	r.dead = true
	r.timer.Stop()
	r.timer = nil
}

// Frames returns how many frames have been drawn.
func (r *Renderer) Frames() uint64 { return r.frames }

func (r *Renderer) interval() time.Duration {
	fps := r.cfg.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	return time.Second / time.Duration(fps)
}

func (r *Renderer) frame() {
	r.timer = nil
	if r.dead {
		return
	}
	now := r.m.Queue.Now()
	interval := r.interval()
	if r.deadline.IsZero() || now.Sub(r.deadline) >= interval {
		r.deadline = now
	}
	dt := 1 / 60.0
	if !r.last.IsZero() {
		dt = math.Min(now.Sub(r.last).Seconds(), 0.25)
	}
	r.last = now
	t := now.Sub(r.start).Seconds()

	r.steer(dt)
	r.orbit.Apply(&r.cam)

	c := r.m.Surface.Canvas()
	if c != nil {
		w, h := r.m.Width, r.m.Height
		if w <= 0 || h <= 0 {
			w, h = c.LogicalSize()
		}
		r.proj.Setup(r.cam, w, h)
		c.Wash(r.cfg.Background.WithAlpha(96))
		r.draw(c, t)
		if r.cfg.OnFrame != nil {
			r.cfg.OnFrame(c)
		}
		_ = r.m.Surface.Present()
	}
	r.frames++

	if r.dead {
		return
	}
	r.deadline = r.deadline.Add(interval)
	r.timer = r.m.Queue.After(max(r.deadline.Sub(r.m.Queue.Now()), 0), r.frame)
}

// Turn queues a TurnStep rotation, eased in over the next frames.
func (r *Renderer) Turn() { r.turn += TurnStep }

// Zoom moves the camera in (negative notches) or out within the orbit limits.
func (r *Renderer) Zoom(notches float64) { r.orbit.Zoom(notches * WheelZoom) }

// steer spins the orbit and, with mouse controls, eases it toward the pointer.
func (r *Renderer) steer(dt float64) {
	r.orbit.Rotate(r.cfg.SpinSpeed*dt, 0)
	if r.turn != 0 {
		step := r.turn * math.Min(dt*6, 1)
		if math.Abs(r.turn-step) < 1e-3 {
			step = r.turn
		}
		r.orbit.Rotate(step, 0)
		r.turn -= step
	}
	if !r.cfg.MouseControls || r.m.Focus == nil || !r.m.Focus.FocusActive() {
		return
	}
	w, h := r.m.Width, r.m.Height
	if w <= 0 || h <= 0 {
		return
	}
	x, y := r.m.Focus.FocusPoint()
	nx, ny := x/w*2-1, y/h*2-1
	r.orbit.Ease(r.orbit.Yaw+nx*0.5, ny*0.5, math.Min(dt*2, 1))
}

func (r *Renderer) draw(c *raster.Canvas, t float64) {
	for i := range r.pts {
		p := &r.pts[i]
		wob := 0.03 * math.Sin(t*0.7+p.phase)
		p.pos = p.base.Add(quarkgl.V3(wob, wob*0.5, -wob))
		p.scr, p.seen = r.proj.Project(p.pos)
	}

	maxD := r.cfg.MaxDistance
	for i := range r.pts {
		a := &r.pts[i]
		if !a.seen {
			continue
		}
		links := 0
		for j := i + 1; j < len(r.pts) && links < r.cfg.MaxLinks; j++ {
			b := &r.pts[j]
			if !b.seen {
				continue
			}
			d := quarkgl.Dist(a.pos, b.pos)
			if d > maxD {
				continue
			}
			links++
			k := (1 - d/maxD) * 0.7
			ca := r.cfg.Color.Fade(k * nearness(a.scr.Scale))
			cb := r.cfg.Color.Fade(k * nearness(b.scr.Scale))
			c.Line(a.scr.X, a.scr.Y, b.scr.X, b.scr.Y, ca, cb)
		}
	}

	if !r.cfg.ShowDots {
		return
	}
	for i := range r.pts {
		p := &r.pts[i]
		if !p.seen {
			continue
		}
		size := math.Max(r.cfg.DotSize*p.scr.Scale, 0.5)
		c.Disc(p.scr.X, p.scr.Y, size, r.cfg.Color.Fade(nearness(p.scr.Scale)))
	}
}

// nearness maps a perspective factor (1/view distance) to an opacity, dimming
// the far side of the cube.
func nearness(scale float64) float64 {
	return math.Max(0.15, math.Min(1, scale*2.6-0.3))
}
