package hal

import (
	"errors"

	"backdrop/latch"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// ErrNoSurface reports a host that cannot provide a drawing surface.
var ErrNoSurface = errors.New("hal: no drawing surface")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGBA8888 is 32bpp, byte order R, G, B, A (non-premultiplied).
	PixelFormatRGBA8888 PixelFormat = iota + 1
)

// Framebuffer is a resizable pixel buffer plus a "present" hook.
//
// Buffer is only valid until the next Resize.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	Resize(w, h int) error
	ClearRGB(r, g, b uint8)
	Present() error
}

// Viewport is the container rectangle in logical pixels and the device scale
// the host reports for it.
type Viewport struct {
	Width       float64
	Height      float64
	DeviceScale float64
}

// PointerSample is one pointer or touch observation in logical pixels.
type PointerSample struct {
	X, Y  float64
	Touch bool
}

// Gestures are running totals since the host started. Consumers act on the
// difference from the totals they last saw, so gestures between two frames
// are never lost.
type Gestures struct {
	Clicks uint64
	// Wheel counts notches; positive is away from the user.
	Wheel float64
}

// Add returns g with delta clicks and wheel notches added.
func (g Gestures) Add(clicks uint64, wheel float64) Gestures {
	g.Clicks += clicks
	g.Wheel += wheel
	return g
}

// Display provides the drawing surface and the signals describing it.
//
// Framebuffer returns nil when the host has no drawing context.
type Display interface {
	Framebuffer() Framebuffer
	Viewport() *latch.Value[Viewport]
	Visibility() *latch.Value[bool]
}

// Input provides pointer observations, gesture totals and the reduced-motion
// preference.
type Input interface {
	Pointer() *latch.Value[PointerSample]
	Gestures() *latch.Value[Gestures]
	ReducedMotion() *latch.Value[bool]
}

// Env reports ambient device signals. A false second result means the signal
// is unavailable on this host.
type Env interface {
	Concurrency() (int, bool)
	DevicePixelRatio() (float64, bool)
	ReducedMotion() (bool, bool)
	NetworkType() (string, bool)
	Mobile() (bool, bool)
}

// HAL provides the only contact point between the engine and its host.
type HAL interface {
	Logger() Logger
	Display() Display
	Input() Input
	Env() Env
}
