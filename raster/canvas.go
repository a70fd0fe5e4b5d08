// Package raster draws antialias-free primitives into an RGBA8888 buffer with
// source-over alpha blending. Coordinates are logical pixels; Scale maps them
// to buffer pixels.
package raster

import (
	"math"

	"backdrop/hal"
)

// Canvas is a view over an RGBA8888 pixel buffer.
type Canvas struct {
	Buf    []byte
	Stride int // bytes per row
	W, H   int // buffer pixels

	// Scale converts logical coordinates to buffer pixels.
	Scale float64
}

// New wraps buf. scale <= 0 means 1.
func New(buf []byte, stride, w, h int, scale float64) *Canvas {
	if scale <= 0 {
		scale = 1
	}
	return &Canvas{Buf: buf, Stride: stride, W: w, H: h, Scale: scale}
}

// FromFramebuffer wraps fb's current buffer. It returns nil when fb is nil or
// not RGBA8888.
func FromFramebuffer(fb hal.Framebuffer, scale float64) *Canvas {
	if fb == nil || fb.Format() != hal.PixelFormatRGBA8888 {
		return nil
	}
	return New(fb.Buffer(), fb.StrideBytes(), fb.Width(), fb.Height(), scale)
}

func (c *Canvas) ok() bool {
	return c != nil && c.Buf != nil && c.Stride > 0 && c.W > 0 && c.H > 0
}

// Size returns the buffer size in pixels.
func (c *Canvas) Size() (w, h int) { return c.W, c.H }

// LogicalSize returns the buffer size in logical pixels.
func (c *Canvas) LogicalSize() (w, h float64) {
	return float64(c.W) / c.Scale, float64(c.H) / c.Scale
}

// Clear overwrites every pixel with col.
func (c *Canvas) Clear(col Color) {
	if !c.ok() {
		return
	}
	for y := 0; y < c.H; y++ {
		row := c.Buf[y*c.Stride:]
		for x := 0; x < c.W; x++ {
			off := x * 4
			if off+3 >= len(row) {
				break
			}
			row[off], row[off+1], row[off+2], row[off+3] = col.R, col.G, col.B, col.A
		}
	}
}

// Wash blends col over the whole buffer at col.A, leaving a fading trail of
// the previous frame.
func (c *Canvas) Wash(col Color) {
	if !c.ok() || col.A == 0 {
		return
	}
	if col.A == 0xFF {
		c.Clear(col)
		return
	}
	for y := 0; y < c.H; y++ {
		for x := 0; x < c.W; x++ {
			c.blend(x, y, col)
		}
	}
}

// SetPixel blends col at buffer pixel (x, y). Out-of-bounds writes are
// dropped.
func (c *Canvas) SetPixel(x, y int, col Color) {
	if !c.ok() {
		return
	}
	c.blend(x, y, col)
}

func (c *Canvas) blend(x, y int, col Color) {
	if x < 0 || y < 0 || x >= c.W || y >= c.H || col.A == 0 {
		return
	}
	off := y*c.Stride + x*4
	if off < 0 || off+3 >= len(c.Buf) {
		return
	}
	p := c.Buf[off : off+4 : off+4]
	if col.A == 0xFF {
		p[0], p[1], p[2], p[3] = col.R, col.G, col.B, 0xFF
		return
	}
	a := uint32(col.A)
	ia := 255 - a
	p[0] = uint8((uint32(col.R)*a + uint32(p[0])*ia) / 255)
	p[1] = uint8((uint32(col.G)*a + uint32(p[1])*ia) / 255)
	p[2] = uint8((uint32(col.B)*a + uint32(p[2])*ia) / 255)
	p[3] = uint8(a + uint32(p[3])*ia/255)
}

func (c *Canvas) device(v float64) int { return int(math.Round(v * c.Scale)) }

// Line draws a one-pixel line from (x0,y0) to (x1,y1) in logical pixels,
// interpolating from c0 to c1.
func (c *Canvas) Line(x0, y0, x1, y1 float64, c0, c1 Color) {
	if !c.ok() {
		return
	}
	c.line(c.device(x0), c.device(y0), c.device(x1), c.device(y1), c0, c1)
}

func (c *Canvas) line(x0, y0, x1, y1 int, c0, c1 Color) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	steps := max(dx, -dy)
	if steps > 4*(c.W+c.H) {
		// Far off-canvas; not worth walking.
		return
	}
	err := dx + dy
	for i := 0; ; i++ {
		col := c0
		if c0 != c1 && steps > 0 {
			col = Lerp(c0, c1, float64(i)/float64(steps))
		}
		c.blend(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// Rect fills an axis-aligned rectangle given in logical pixels.
func (c *Canvas) Rect(x, y, w, h float64, col Color) {
	if !c.ok() || w <= 0 || h <= 0 {
		return
	}
	x0, y0 := max(c.device(x), 0), max(c.device(y), 0)
	x1, y1 := min(c.device(x+w), c.W), min(c.device(y+h), c.H)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			c.blend(px, py, col)
		}
	}
}

// Disc fills a circle of radius r (logical pixels).
func (c *Canvas) Disc(cx, cy, r float64, col Color) {
	c.radial(cx, cy, r, col, false)
}

// Glow fills a circle whose alpha falls off quadratically from col.A at the
// center to zero at radius r.
func (c *Canvas) Glow(cx, cy, r float64, col Color) {
	c.radial(cx, cy, r, col, true)
}

func (c *Canvas) radial(cx, cy, r float64, col Color, falloff bool) {
	if !c.ok() || r <= 0 || col.A == 0 {
		return
	}
	dcx, dcy, dr := cx*c.Scale, cy*c.Scale, r*c.Scale
	if dr < 0.5 {
		c.blend(int(dcx), int(dcy), col)
		return
	}
	minX := max(int(math.Floor(dcx-dr)), 0)
	maxX := min(int(math.Ceil(dcx+dr)), c.W-1)
	minY := max(int(math.Floor(dcy-dr)), 0)
	maxY := min(int(math.Ceil(dcy+dr)), c.H-1)
	r2 := dr * dr
	for y := minY; y <= maxY; y++ {
		fy := float64(y) + 0.5 - dcy
		for x := minX; x <= maxX; x++ {
			fx := float64(x) + 0.5 - dcx
			d2 := fx*fx + fy*fy
			if d2 > r2 {
				continue
			}
			if !falloff {
				c.blend(x, y, col)
				continue
			}
			k := 1 - math.Sqrt(d2)/dr
			c.blend(x, y, col.Fade(k*k))
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
