// Package app mounts the visualization engine on a host: it probes the
// device, picks a tier, sizes the surface, seeds the field and runs either the
// built-in loop or a negotiated external renderer.
package app

import (
	"context"
	"fmt"
	"time"

	"backdrop/config"
	"backdrop/hal"
	"backdrop/internal/buildinfo"
	"backdrop/latch"
	"backdrop/netfield/bridge"
	"backdrop/netfield/field"
	"backdrop/netfield/hud"
	"backdrop/netfield/interact"
	"backdrop/netfield/loop"
	"backdrop/netfield/net3d"
	"backdrop/netfield/probe"
	"backdrop/netfield/sched"
	"backdrop/netfield/tier"
	"backdrop/netfield/viewport"
	"backdrop/raster"
)

// Path names the renderer currently producing frames.
type Path string

const (
	PathNone     Path = "none"
	PathPending  Path = "pending"
	PathBuiltin  Path = "builtin"
	PathExternal Path = "external"
)

// Config controls an engine.
type Config struct {
	Table tier.Table
	// Force pins a tier instead of selecting one from the probe.
	Force *tier.Name
	Seed  int64
	HUD   bool

	// External allows negotiating the external renderer.
	External bool
	Bridge   bridge.Config
	// Loader builds the external renderer loader for a tier; defaults to net3d.
	Loader func(tier.Tier) bridge.Loader

	ConstrainedDPRCap float64
	HighDPRCap        float64

	// Flags are probe overrides that outrank the config file.
	Flags hal.EnvOverrides
	// File is the loaded config file, if any.
	File *config.Config
	// Reloads, if set, delivers config file changes.
	Reloads *latch.Value[config.Reload]

	// Now is the engine clock; defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	return Config{
		Table:             tier.DefaultTable,
		Seed:              1,
		External:          true,
		ConstrainedDPRCap: viewport.ConstrainedDPRCap,
		HighDPRCap:        viewport.HighDPRCap,
	}
}

// Apply folds a config file into c. Flags keep precedence over the file.
func (c Config) Apply(f *config.Config) (Config, error) {
	if f == nil {
		return c, nil
	}
	tb, err := f.Table(tier.DefaultTable)
	if err != nil {
		return c, err
	}
	c.Table = tb
	c.File = f
	if n, ok := f.Forced(); ok && c.Force == nil {
		c.Force = &n
	}
	if f.Seed != 0 {
		c.Seed = f.Seed
	}
	c.HUD = c.HUD || f.HUD.Enabled
	c.External = c.External && f.BridgeEnabled()
	if d := f.Bridge.Timeout.Duration; d > 0 {
		c.Bridge.Timeout = d
	}
	if n := f.Bridge.FailuresToTrip; n > 0 {
		c.Bridge.FailuresToTrip = n
	}
	if d := f.Bridge.Cooldown.Duration; d > 0 {
		c.Bridge.Cooldown = d
	}
	if v := f.Viewport.ConstrainedDPRCap; v > 0 {
		c.ConstrainedDPRCap = v
	}
	if v := f.Viewport.HighDPRCap; v > 0 {
		c.HighDPRCap = v
	}
	return c, nil
}

// Engine is one mounted visualization. All methods run on the host's UI
// goroutine.
type Engine struct {
	h    hal.HAL
	log  hal.Logger
	cfg  Config
	base Config

	q       *sched.Queue
	tracker *interact.Tracker
	bridge  *bridge.Bridge
	overlay *hud.Overlay
	ctx     context.Context
	cancel  context.CancelFunc

	viewport *latch.Reader[hal.Viewport]
	pointer  *latch.Reader[hal.PointerSample]
	gestures *latch.Reader[hal.Gestures]
	visible  *latch.Reader[bool]
	motion   *latch.Reader[bool]
	reloads  *latch.Reader[config.Reload]

	// per mount
	mounted  bool
	snap     probe.Snapshot
	tier     tier.Tier
	vp       *viewport.Manager
	surface  *fbSurface
	field    *field.Field
	loop     *loop.Loop
	path     Path
	sized    bool
	hidden   bool
	motionOv *bool

	// seen is the gesture totals already acted on.
	seen hal.Gestures

	gen    uint64
	mounts uint64
	dead   bool
}

// New mounts an engine on h. It never fails; problems are logged and the
// engine degrades.
func New(h hal.HAL, cfg Config) *Engine {
	if cfg.Table == (tier.Table{}) {
		cfg.Table = tier.DefaultTable
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Loader == nil {
		cfg.Loader = func(t tier.Tier) bridge.Loader { return net3d.Loader{Config: net3d.FromTier(t)} }
	}
	cfg.Bridge.Logger = h.Logger()

	e := &Engine{
		h:    h,
		log:  h.Logger(),
		cfg:  cfg,
		base: cfg,
		q:    sched.New(cfg.Now),
	}
	e.base.File = nil
	if cfg.File != nil {
		applied, err := e.base.Apply(cfg.File)
		if err != nil {
			e.logf("config", "warn: ignored: %v", err)
		} else {
			e.cfg = applied
		}
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.tracker = interact.New(e.q, interact.DefaultDecay)
	e.bridge = bridge.New(e.cfg.Bridge)
	e.overlay = hud.New()

	d, in := h.Display(), h.Input()
	e.viewport = latch.NewReader(d.Viewport())
	e.visible = latch.NewReader(d.Visibility())
	e.pointer = latch.NewReader(in.Pointer())
	e.motion = latch.NewReader(in.ReducedMotion())
	e.gestures = latch.NewReader(in.Gestures())
	if g, ok := e.gestures.Latest(); ok {
		e.seen = g
	}
	if cfg.Reloads != nil {
		e.reloads = latch.NewReader(cfg.Reloads)
	}
	// Anything already published belongs to this mount.
	e.motion.Next()

	e.logf("engine", "%s", buildinfo.String())
	e.mount()
	return e
}

// NewStep mounts an engine and returns its Step for the hal runners.
func NewStep(h hal.HAL, cfg Config) func() error {
	return New(h, cfg).Step
}

func (e *Engine) logf(component, format string, args ...any) {
	if e.log == nil {
		return
	}
	e.log.WriteLineString("backdrop: " + component + ": " + fmt.Sprintf(format, args...))
}

func (e *Engine) env() hal.Env {
	ovr := e.cfg.Flags
	if e.cfg.File != nil {
		ovr = e.cfg.File.Overlay(ovr)
	}
	if e.motionOv != nil {
		ovr.ReducedMotion = e.motionOv
	}
	return overrideEnv{base: e.h.Env(), ovr: ovr}
}

func (e *Engine) mount() {
	e.mounts++
	e.snap = probe.Probe(e.env())
	if e.snap.Degraded {
		e.logf("probe", "warn: signals unavailable, using conservative defaults")
	}
	if e.cfg.Force != nil {
		e.tier = e.cfg.Table.Get(*e.cfg.Force)
		if e.snap.ReducedMotion && e.tier.TargetFPS > tier.ReducedMotionMaxFPS {
			e.tier.TargetFPS = tier.ReducedMotionMaxFPS
		}
	} else {
		e.tier = e.cfg.Table.Select(e.snap)
	}
	e.logf("engine", "mount %d: %s; tier %s", e.mounts, e.snap, e.tier)

	e.mounted = true
	e.sized = false
	e.path = PathNone

	fb := e.h.Display().Framebuffer()
	if fb == nil {
		e.logf("engine", "warn: %v; rendering nothing", hal.ErrNoSurface)
		return
	}
	dprCap := e.cfg.ConstrainedDPRCap
	if e.tier.Name == tier.High {
		dprCap = e.cfg.HighDPRCap
	}
	e.vp = viewport.New(fb, dprCap, e.reseed)
	e.surface = &fbSurface{fb: fb, scale: e.vp.Scale}

	// A rectangle published before this mount still applies.
	if r, ok := e.viewport.Latest(); ok {
		e.resize(r)
	}
}

// unmount stops every renderer and timer of the current mount.
func (e *Engine) unmount() {
	if !e.mounted {
		return
	}
	if e.loop != nil {
		e.loop.Stop()
		e.loop = nil
	}
	e.bridge.Close()
	e.tracker.Reset()
	e.q.Clear()
	e.vp = nil
	e.surface = nil
	e.field = nil
	e.path = PathNone
	e.mounted = false
}

func (e *Engine) remount(reason string) {
	e.logf("engine", "remount: %s", reason)
	e.unmount()
	e.mount()
}

// reseed starts a new field generation at the logical size.
func (e *Engine) reseed(w, h float64) {
	e.gen++
	e.field = field.Initialize(e.gen, w, h, e.tier, e.cfg.Seed+int64(e.gen))
	if e.loop != nil {
		e.loop.SetField(e.field)
	}
	e.bridge.Resize(w, h)
}

func (e *Engine) resize(r hal.Viewport) {
	if e.vp == nil {
		return
	}
	ok, err := e.vp.OnResize(r)
	if err != nil {
		e.logf("viewport", "warn: %v", err)
	}
	if !ok {
		return
	}
	bw, bh := e.vp.BackingSize()
	e.logf("viewport", "%.0fx%.0f scale %.2f backing %dx%d gen %d", r.Width, r.Height, e.vp.Scale(), bw, bh, e.gen)
	if !e.sized {
		e.sized = true
		e.startRenderer()
	}
}

func (e *Engine) startRenderer() {
	if e.cfg.External && e.tier.Name != tier.Low && !e.snap.ReducedMotion {
		w, h := e.vp.Size()
		m := bridge.Mount{Queue: e.q, Surface: e.surface, Focus: e.tracker, Width: w, Height: h}
		if ld := e.cfg.Loader(e.tier); ld != nil {
			if e.bridge.Negotiate(e.ctx, e.wrapHUD(ld), m) == bridge.Pending {
				e.path = PathPending
				return
			}
		}
	}
	e.startBuiltin()
}

func (e *Engine) startBuiltin() {
	cfg := loop.Config{
		Tier: e.tier,
		OnError: func(err error) {
			e.logf("loop", "warn: present: %v", err)
		},
	}
	if e.cfg.HUD {
		cfg.OnFrame = func(st loop.Stats, c *raster.Canvas) {
			e.overlay.Draw(c, hud.Info{
				Tier: e.tier.Name.String(), Path: string(PathBuiltin), Generation: e.gen,
				Nodes: st.Nodes, Edges: st.Edges, FPS: st.FPS, Degraded: st.Degraded,
				Version: buildinfo.Short(),
			})
		}
	}
	e.loop = loop.New(e.q, e.field, e.surface, e.tracker, cfg)
	e.loop.Start()
	if e.hidden {
		e.loop.Suspend()
	}
	e.path = PathBuiltin
}

// wrapHUD adds the overlay to net3d renderers.
func (e *Engine) wrapHUD(ld bridge.Loader) bridge.Loader {
	nl, ok := ld.(net3d.Loader)
	if !ok || !e.cfg.HUD {
		return ld
	}
	nl.Config.OnFrame = func(c *raster.Canvas) {
		e.overlay.Draw(c, hud.Info{
			Tier: e.tier.Name.String(), Path: string(PathExternal), Generation: e.gen,
			Version: buildinfo.Short(),
		})
	}
	return nl
}

// Step consumes host signals, advances negotiation and runs due timers. A
// panic tears the engine down; later steps do nothing.
func (e *Engine) Step() error {
	if e.dead {
		return nil
	}
	defer func() {
		if v := recover(); v != nil {
			_ = recoverFrame(e.log, v)
			e.shutdown()
			e.blank()
		}
	}()

	e.drainReloads()
	e.drainMotion()
	if r, ok := e.viewport.Next(); ok && e.mounted {
		e.resize(r)
	}
	e.drainVisibility()
	if p, ok := e.pointer.Next(); ok {
		e.tracker.Sample(p.X, p.Y)
	}
	e.drainGestures()
	if e.path == PathPending {
		switch e.bridge.Poll() {
		case bridge.Ready:
			e.path = PathExternal
		case bridge.TimedOut, bridge.Failed:
			e.startBuiltin()
		}
	}
	e.q.RunDue()
	return nil
}

func (e *Engine) drainReloads() {
	r, ok := e.reloads.Next()
	if !ok {
		return
	}
	if r.Err != nil {
		e.logf("config", "warn: reload ignored: %v", r.Err)
		return
	}
	cfg, err := e.base.Apply(r.Config)
	if err != nil {
		e.logf("config", "warn: reload ignored: %v", err)
		return
	}
	old := e.cfg.Bridge
	e.cfg = cfg
	e.unmount()
	if cfg.Bridge != old {
		// New thresholds start with a fresh breaker.
		e.bridge = bridge.New(cfg.Bridge)
	}
	e.logf("engine", "remount: config changed")
	e.mount()
}

func (e *Engine) drainMotion() {
	v, ok := e.motion.Next()
	if !ok {
		return
	}
	e.motionOv = &v
	if v != e.snap.ReducedMotion {
		e.remount(fmt.Sprintf("reduced motion %t", v))
	}
}

// steerable is implemented by external renderers that react to clicks and
// the wheel.
type steerable interface {
	Turn()
	Zoom(notches float64)
}

// drainGestures forwards clicks and wheel notches since the last step to the
// external renderer. The built-in loop ignores them.
func (e *Engine) drainGestures() {
	g, ok := e.gestures.Next()
	if !ok {
		return
	}
	clicks, wheel := g.Clicks-e.seen.Clicks, g.Wheel-e.seen.Wheel
	e.seen = g
	s, ok := e.bridge.Active().(steerable)
	if !ok || e.path != PathExternal {
		return
	}
	for ; clicks > 0; clicks-- {
		s.Turn()
	}
	if wheel != 0 {
		// Wheel away from the user zooms in.
		s.Zoom(-wheel)
	}
}

func (e *Engine) drainVisibility() {
	v, ok := e.visible.Next()
	if !ok {
		return
	}
	e.hidden = !v
	if e.loop == nil {
		return
	}
	if v {
		e.loop.Resume()
	} else {
		e.loop.Suspend()
	}
}

// blank clears the surface after a failure so no half-drawn frame lingers.
func (e *Engine) blank() {
	if fb := e.h.Display().Framebuffer(); fb != nil {
		bg := loop.DefaultTheme().Background
		fb.ClearRGB(bg.R, bg.G, bg.B)
		_ = fb.Present()
	}
}

func (e *Engine) shutdown() {
	e.unmount()
	e.cancel()
	e.dead = true
}

// Unmount releases every timer and renderer. Safe to call more than once.
func (e *Engine) Unmount() {
	if e.dead {
		return
	}
	e.shutdown()
	e.logf("engine", "unmounted")
}

// Path returns the active renderer path.
func (e *Engine) Path() Path { return e.path }

// Tier returns the active tier.
func (e *Engine) Tier() tier.Tier { return e.tier }

// Snapshot returns the capability snapshot of the current mount.
func (e *Engine) Snapshot() probe.Snapshot { return e.snap }

// Field returns the current generation, or nil before the first resize.
func (e *Engine) Field() *field.Field { return e.field }

// Loop returns the built-in loop, or nil when it is not running.
func (e *Engine) Loop() *loop.Loop { return e.loop }

// Generation returns the number of fields seeded so far.
func (e *Engine) Generation() uint64 { return e.gen }

// Mounts returns how many times the engine has mounted.
func (e *Engine) Mounts() uint64 { return e.mounts }
