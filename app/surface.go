package app

import (
	"backdrop/hal"
	"backdrop/raster"
)

// fbSurface exposes the host framebuffer as a raster canvas at the viewport
// manager's current scale.
type fbSurface struct {
	fb    hal.Framebuffer
	scale func() float64

	c *raster.Canvas
}

func (s *fbSurface) Canvas() *raster.Canvas {
	if s.fb == nil {
		return nil
	}
	buf := s.fb.Buffer()
	w, h := s.fb.Width(), s.fb.Height()
	if len(buf) == 0 || w <= 0 || h <= 0 {
		return nil
	}
	sc := s.scale()
	// Buffer is only valid until the next resize; rewrap when it moves.
	if s.c == nil || s.c.W != w || s.c.H != h || s.c.Scale != sc || &s.c.Buf[0] != &buf[0] {
		s.c = raster.FromFramebuffer(s.fb, sc)
	}
	return s.c
}

func (s *fbSurface) Present() error {
	if s.fb == nil {
		return hal.ErrNoSurface
	}
	return s.fb.Present()
}
