package raster

import "testing"

func newCanvas(w, h int, scale float64) *Canvas {
	return New(make([]byte, w*h*4), w*4, w, h, scale)
}

func (c *Canvas) at(x, y int) Color {
	off := y*c.Stride + x*4
	return Color{c.Buf[off], c.Buf[off+1], c.Buf[off+2], c.Buf[off+3]}
}

func TestClearAndSetPixel(t *testing.T) {
	c := newCanvas(4, 3, 1)
	c.Clear(RGB(1, 2, 3))
	if got := c.at(3, 2); got != RGB(1, 2, 3) {
		t.Fatalf("at(3,2) = %v, want {1 2 3 255}", got)
	}
	c.SetPixel(-1, 0, RGB(9, 9, 9))
	c.SetPixel(4, 0, RGB(9, 9, 9))
	c.SetPixel(1, 1, RGB(200, 100, 50))
	if got := c.at(1, 1); got != RGB(200, 100, 50) {
		t.Fatalf("at(1,1) = %v", got)
	}
}

func TestBlendHalfAlpha(t *testing.T) {
	c := newCanvas(1, 1, 1)
	c.Clear(RGB(0, 0, 0))
	c.SetPixel(0, 0, RGBA(255, 255, 255, 128))
	got := c.at(0, 0)
	if got.R < 127 || got.R > 129 {
		t.Fatalf("blended R = %d, want ~128", got.R)
	}
}

func TestWashFadesTowardColor(t *testing.T) {
	c := newCanvas(2, 2, 1)
	c.Clear(RGB(255, 255, 255))
	for i := 0; i < 40; i++ {
		c.Wash(RGBA(0, 0, 0, 64))
	}
	if got := c.at(1, 1); got.R > 4 {
		t.Fatalf("after wash R = %d, want near 0", got.R)
	}
}

func TestLineEndpointsAndScale(t *testing.T) {
	c := newCanvas(20, 20, 2)
	c.Line(1, 1, 8, 1, RGB(255, 0, 0), RGB(0, 0, 255))
	if got := c.at(2, 2); got != RGB(255, 0, 0) {
		t.Fatalf("start = %v, want red", got)
	}
	if got := c.at(16, 2); got != RGB(0, 0, 255) {
		t.Fatalf("end = %v, want blue", got)
	}
	if got := c.at(9, 2); got.R == 0 || got.B == 0 {
		t.Fatalf("middle = %v, want a red/blue mix", got)
	}
}

func TestDiscClipped(t *testing.T) {
	c := newCanvas(8, 8, 1)
	c.Disc(0, 0, 3, RGB(10, 20, 30))
	if got := c.at(0, 0); got != RGB(10, 20, 30) {
		t.Fatalf("at(0,0) = %v", got)
	}
	if got := c.at(7, 7); got != (Color{}) {
		t.Fatalf("at(7,7) = %v, want untouched", got)
	}
}

func TestGlowFallsOff(t *testing.T) {
	c := newCanvas(21, 21, 1)
	c.Clear(RGB(0, 0, 0))
	c.Glow(10.5, 10.5, 10, RGB(255, 255, 255))
	center, edge := c.at(10, 10), c.at(10, 18)
	if center.R <= edge.R {
		t.Fatalf("center R %d <= edge R %d", center.R, edge.R)
	}
}

func TestColorHelpers(t *testing.T) {
	if got := Hex(0x3a7bd5); got != RGB(0x3a, 0x7b, 0xd5) {
		t.Fatalf("Hex = %v", got)
	}
	if got := RGB(200, 100, 50).Scale(1); got != RGB(200, 100, 50) {
		t.Fatalf("Scale(1) = %v", got)
	}
	if got := RGB(200, 100, 50).Scale(0); got != RGB(0, 0, 0) {
		t.Fatalf("Scale(0) = %v", got)
	}
	if got := Lerp(RGB(0, 0, 0), RGB(255, 255, 255), 1); got != RGB(255, 255, 255) {
		t.Fatalf("Lerp(1) = %v", got)
	}
}

func TestRectClipped(t *testing.T) {
	c := newCanvas(10, 10, 2)
	c.Rect(3, 3, 10, 10, RGB(1, 1, 1))
	if got := c.at(9, 9); got != RGB(1, 1, 1) {
		t.Fatalf("at(9,9) = %v", got)
	}
	if got := c.at(5, 5); got != (Color{}) {
		t.Fatalf("at(5,5) = %v, want untouched", got)
	}
}
