package hal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"backdrop/latch"

	"github.com/fatih/color"
)

// Options configures a host HAL.
type Options struct {
	// Width and Height seed the framebuffer; the engine resizes it on mount.
	Width, Height int
	// NoSurface simulates a host without a drawing context.
	NoSurface bool
	// Env overrides detected device signals.
	Env EnvOverrides
	// Log receives log lines; defaults to stdout.
	Log io.Writer
}

type hostHAL struct {
	logger *hostLogger
	fb     *hostFramebuffer
	env    *hostEnv

	noSurface bool

	viewport latch.Value[Viewport]
	visible  latch.Value[bool]
	pointer  latch.Value[PointerSample]
	gestures latch.Value[Gestures]
	motion   latch.Value[bool]
}

// New returns a host HAL implementation.
func New(opts Options) HAL {
	return newHost(opts)
}

func newHost(opts Options) *hostHAL {
	w := opts.Log
	if w == nil {
		w = os.Stdout
	}
	if opts.Width <= 0 {
		opts.Width = 320
	}
	if opts.Height <= 0 {
		opts.Height = 240
	}
	h := &hostHAL{
		logger:    newHostLogger(w),
		fb:        newHostFramebuffer(opts.Width, opts.Height),
		env:       newHostEnv(opts.Env),
		noSurface: opts.NoSurface,
	}
	h.visible.Publish(true)
	if opts.Env.ReducedMotion != nil {
		h.motion.Publish(*opts.Env.ReducedMotion)
	}
	return h
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Display() Display { return hostDisplay{h: h} }
func (h *hostHAL) Input() Input     { return hostInput{h: h} }
func (h *hostHAL) Env() Env         { return h.env }

type hostDisplay struct {
	h *hostHAL
}

func (d hostDisplay) Framebuffer() Framebuffer {
	if d.h.noSurface {
		return nil
	}
	return d.h.fb
}

func (d hostDisplay) Viewport() *latch.Value[Viewport] { return &d.h.viewport }
func (d hostDisplay) Visibility() *latch.Value[bool]   { return &d.h.visible }

type hostInput struct {
	h *hostHAL
}

func (in hostInput) Pointer() *latch.Value[PointerSample] { return &in.h.pointer }
func (in hostInput) Gestures() *latch.Value[Gestures]     { return &in.h.gestures }
func (in hostInput) ReducedMotion() *latch.Value[bool]    { return &in.h.motion }

// gesture adds to the gesture totals.
func (h *hostHAL) gesture(clicks uint64, wheel float64) {
	if clicks == 0 && wheel == 0 {
		return
	}
	h.gestures.Update(func(g Gestures) Gestures { return g.Add(clicks, wheel) })
}

type hostLogger struct {
	mu   sync.Mutex
	w    io.Writer
	warn *color.Color
	err  *color.Color
}

func newHostLogger(w io.Writer) *hostLogger {
	return &hostLogger{
		w:    w,
		warn: color.New(color.FgYellow),
		err:  color.New(color.FgRed, color.Bold),
	}
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, l.paint(s))
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.WriteLineString(string(b))
}

// paint colours a line by the severity token the engine puts after the
// component name ("backdrop: bridge: warn: ...").
func (l *hostLogger) paint(s string) string {
	switch {
	case strings.Contains(s, " error: "):
		return l.err.Sprint(s)
	case strings.Contains(s, " warn: "):
		return l.warn.Sprint(s)
	}
	return s
}
