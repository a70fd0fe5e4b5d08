package hal

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestFramebufferResize(t *testing.T) {
	fb := newHostFramebuffer(4, 2)
	if got, want := len(fb.Buffer()), 4*2*4; got != want {
		t.Fatalf("len(Buffer()) = %d, want %d", got, want)
	}
	if err := fb.Resize(10, 3); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if fb.Width() != 10 || fb.Height() != 3 || fb.StrideBytes() != 40 {
		t.Fatalf("size = %dx%d stride %d, want 10x3 stride 40", fb.Width(), fb.Height(), fb.StrideBytes())
	}
	if err := fb.Resize(0, 3); err == nil {
		t.Fatalf("Resize(0,3) err = nil, want error")
	}
	if fb.Width() != 10 {
		t.Fatalf("failed Resize changed width to %d", fb.Width())
	}
}

func TestFramebufferClearAndSnapshot(t *testing.T) {
	fb := newHostFramebuffer(2, 2)
	fb.ClearRGB(1, 2, 3)
	pix, w, h := fb.snapshot(nil)
	if w != 2 || h != 2 {
		t.Fatalf("snapshot size = %dx%d, want 2x2", w, h)
	}
	r, g, b := rgbaAt(pix, w, h, 1, 1)
	if r != 1 || g != 2 || b != 3 || pix[3] != 0xFF {
		t.Fatalf("pixel = %d,%d,%d,%d, want 1,2,3,255", r, g, b, pix[3])
	}
}

func TestEnvOverridesAndFallbacks(t *testing.T) {
	yes := true
	e := newHostEnv(EnvOverrides{Concurrency: 8, DevicePixelRatio: 1.5, ReducedMotion: &yes, NetworkType: "4g"})
	if n, ok := e.Concurrency(); !ok || n != 8 {
		t.Fatalf("Concurrency() = %d,%v, want 8,true", n, ok)
	}
	if v, ok := e.DevicePixelRatio(); !ok || v != 1.5 {
		t.Fatalf("DevicePixelRatio() = %v,%v, want 1.5,true", v, ok)
	}
	if v, ok := e.ReducedMotion(); !ok || !v {
		t.Fatalf("ReducedMotion() = %v,%v, want true,true", v, ok)
	}
	if v, ok := e.NetworkType(); !ok || v != "4g" {
		t.Fatalf("NetworkType() = %q,%v, want 4g,true", v, ok)
	}

	bare := newHostEnv(EnvOverrides{})
	bare.lookup = func(string) (string, bool) { return "", false }
	if _, ok := bare.DevicePixelRatio(); ok {
		t.Fatalf("DevicePixelRatio() ok = true without a scale source")
	}
	if _, ok := bare.ReducedMotion(); ok {
		t.Fatalf("ReducedMotion() ok = true without env")
	}
	bare.lookup = func(k string) (string, bool) {
		if k == EnvReducedMotion {
			return "1", true
		}
		return "", false
	}
	if v, ok := bare.ReducedMotion(); !ok || !v {
		t.Fatalf("ReducedMotion() = %v,%v from env, want true,true", v, ok)
	}
}

func TestHostLoggerPaintsSeverity(t *testing.T) {
	var buf bytes.Buffer
	l := newHostLogger(&buf)
	l.warn.DisableColor()
	l.err.DisableColor()
	l.WriteLineString("backdrop: bridge: warn: timed out")
	l.WriteLineBytes([]byte("plain"))
	out := buf.String()
	if !strings.Contains(out, "timed out\n") || !strings.HasSuffix(out, "plain\n") {
		t.Fatalf("log output = %q", out)
	}
}

func TestNoSurfaceHost(t *testing.T) {
	h := New(Options{NoSurface: true})
	if fb := h.Display().Framebuffer(); fb != nil {
		t.Fatalf("Framebuffer() = %v, want nil", fb)
	}
	if v, seq := h.Display().Visibility().Load(); !v || seq == 0 {
		t.Fatalf("Visibility() = %v (seq %d), want published true", v, seq)
	}
}

func TestMountHeadlessPublishesViewport(t *testing.T) {
	var got HAL
	h, step, err := MountHeadless(func(h HAL) func() error {
		got = h
		return func() error { return nil }
	}, HeadlessConfig{Width: 300, Height: 200, Scale: 2})
	if err != nil {
		t.Fatalf("MountHeadless: %v", err)
	}
	if got != h || step == nil {
		t.Fatalf("newApp not called with the mounted host")
	}
	vp, seq := h.Display().Viewport().Load()
	if seq == 0 || vp.Width != 300 || vp.Height != 200 || vp.DeviceScale != 2 {
		t.Fatalf("viewport = %+v (seq %d), want 300x200@2", vp, seq)
	}
	if dpr, ok := h.Env().DevicePixelRatio(); !ok || dpr != 2 {
		t.Fatalf("DevicePixelRatio() = %v,%v, want 2,true", dpr, ok)
	}
}

func TestTerminalMouseGestures(t *testing.T) {
	h := newHost(Options{Log: io.Discard})
	var buttons tcell.ButtonMask
	for _, ev := range []*tcell.EventMouse{
		tcell.NewEventMouse(3, 4, tcell.Button1, tcell.ModNone),
		tcell.NewEventMouse(4, 4, tcell.Button1, tcell.ModNone), // drag, not a new click
		tcell.NewEventMouse(4, 4, tcell.ButtonNone, tcell.ModNone),
		tcell.NewEventMouse(4, 4, tcell.Button1, tcell.ModNone),
		tcell.NewEventMouse(4, 4, tcell.WheelUp, tcell.ModNone),
		tcell.NewEventMouse(4, 4, tcell.WheelUp, tcell.ModNone),
		tcell.NewEventMouse(4, 4, tcell.WheelDown, tcell.ModNone),
	} {
		if !handleTerminalEvent(h, ev, &buttons) {
			t.Fatalf("mouse event treated as quit")
		}
	}
	if g, _ := h.gestures.Load(); g != (Gestures{Clicks: 2, Wheel: 1}) {
		t.Fatalf("gestures = %+v, want 2 clicks and 1 notch", g)
	}
	if p, _ := h.pointer.Load(); p.X != 4 || p.Y != 9 {
		t.Fatalf("pointer = %+v, want 4,9", p)
	}
}
