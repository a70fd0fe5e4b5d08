package net3d

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"backdrop/netfield/bridge"
	"backdrop/netfield/sched"
	"backdrop/netfield/tier"
	"backdrop/raster"
)

type surface struct {
	c        *raster.Canvas
	presents int
}

func (s *surface) Canvas() *raster.Canvas { return s.c }
func (s *surface) Present() error         { s.presents++; return nil }

func newSurface(w, h int) *surface {
	return &surface{c: raster.New(make([]byte, w*h*4), w*4, w, h, 1)}
}

func TestFromTier(t *testing.T) {
	for _, n := range []tier.Name{tier.Medium, tier.High} {
		tr := tier.DefaultTable.Get(n)
		c := FromTier(tr)
		if c.Points != tr.NodeCount*2 || c.TargetFPS != tr.TargetFPS {
			t.Fatalf("%s: FromTier() = %+v", n, c)
		}
		if c.MaxDistance <= 0 || c.MaxLinks <= 0 {
			t.Fatalf("%s: non-positive distance or links: %+v", n, c)
		}
	}
}

func TestLoadHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Loader{Config: FromTier(tier.DefaultTable.Get(tier.Medium))}.Load(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Load() err = %v, want canceled", err)
	}
}

func TestRendererDrawsAndStops(t *testing.T) {
	clk := sched.NewManualClock(time.Unix(0, 0))
	q := sched.New(clk.Now)
	s := newSurface(160, 120)

	r, err := Loader{Config: FromTier(tier.DefaultTable.Get(tier.Medium))}.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	if err := r.Init(bridge.Mount{Queue: q, Surface: s, Width: 160, Height: 120}); err != nil {
		t.Fatalf("Init() err = %v", err)
	}
	for i := 0; i < 10; i++ {
		q.RunDue()
		clk.Advance(17 * time.Millisecond)
	}
	nr := r.(*Renderer)
	if nr.Frames() == 0 || s.presents == 0 {
		t.Fatalf("Frames() = %d, presents = %d", nr.Frames(), s.presents)
	}
	lit := false
	for i := 0; i+3 < len(s.c.Buf); i += 4 {
		if s.c.Buf[i+2] > 0x40 {
			lit = true
			break
		}
	}
	if !lit {
		t.Fatalf("nothing drawn")
	}

	r.Destroy()
	r.Destroy()
	n := nr.Frames()
	for i := 0; i < 5; i++ {
		clk.Advance(50 * time.Millisecond)
		q.RunDue()
	}
	if nr.Frames() != n {
		t.Fatalf("frames after Destroy: %d -> %d", n, nr.Frames())
	}
}

func TestInitWithoutCanvas(t *testing.T) {
	r, _ := Loader{Config: FromTier(tier.DefaultTable.Get(tier.Medium))}.Load(context.Background())
	err := r.Init(bridge.Mount{Queue: sched.New(nil), Surface: &surface{}})
	if !errors.Is(err, ErrNoCanvas) {
		t.Fatalf("Init() err = %v, want ErrNoCanvas", err)
	}
}

func mounted(t *testing.T, name tier.Name) (*Renderer, *sched.Queue, *sched.ManualClock) {
	t.Helper()
	clk := sched.NewManualClock(time.Unix(0, 0))
	q := sched.New(clk.Now)
	r, err := Loader{Config: FromTier(tier.DefaultTable.Get(name))}.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	if err := r.Init(bridge.Mount{Queue: q, Surface: newSurface(64, 48), Width: 64, Height: 48}); err != nil {
		t.Fatalf("Init() err = %v", err)
	}
	return r.(*Renderer), q, clk
}

func TestCadenceCappedAtTarget(t *testing.T) {
	for _, name := range []tier.Name{tier.Medium, tier.High} {
		r, q, clk := mounted(t, name)
		fps := uint64(r.cfg.TargetFPS)
		for sec := 1; sec <= 3; sec++ {
			before := r.Frames()
			for i := 0; i < 1000; i++ {
				clk.Advance(time.Millisecond)
				q.RunDue()
			}
			got := r.Frames() - before
			if got > fps || got+2 < fps {
				t.Fatalf("%s: %d frames in second %d at 1 kHz host steps, want %d", name, got, sec, fps)
			}
		}
		r.Destroy()
	}
}

func TestHostAtTargetRateKeepsUp(t *testing.T) {
	r, q, clk := mounted(t, tier.Medium)
	step := r.interval()
	for i := 0; i < 60; i++ {
		clk.Advance(step)
		q.RunDue()
	}
	if got := r.Frames(); got < 58 {
		t.Fatalf("Frames() = %d after 60 host steps at the target rate", got)
	}
}

func TestTurnAddsStep(t *testing.T) {
	turned, q1, clk1 := mounted(t, tier.Medium)
	plain, q2, clk2 := mounted(t, tier.Medium)
	turned.Turn()
	for i := 0; i < 120; i++ {
		clk1.Advance(turned.interval())
		q1.RunDue()
		clk2.Advance(plain.interval())
		q2.RunDue()
	}
	if turned.turn != 0 {
		t.Fatalf("turn = %v still pending after 2s", turned.turn)
	}
	diff := math.Mod(turned.orbit.Yaw-plain.orbit.Yaw+4*math.Pi, 2*math.Pi)
	if math.Abs(diff-TurnStep) > 1e-6 {
		t.Fatalf("yaw difference = %v, want %v", diff, TurnStep)
	}
}

func TestZoomClamped(t *testing.T) {
	r, _, _ := mounted(t, tier.Medium)
	start := r.orbit.Radius
	r.Zoom(-1)
	if got := r.orbit.Radius; math.Abs(got-(start-WheelZoom)) > 1e-9 {
		t.Fatalf("Radius = %v after one notch in, want %v", got, start-WheelZoom)
	}
	r.Zoom(100)
	if got := r.orbit.Radius; got != r.orbit.MaxRadius {
		t.Fatalf("Radius = %v, want clamp at %v", got, r.orbit.MaxRadius)
	}
	r.Zoom(-100)
	if got := r.orbit.Radius; got != r.orbit.MinRadius {
		t.Fatalf("Radius = %v, want clamp at %v", got, r.orbit.MinRadius)
	}
}
