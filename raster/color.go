package raster

// Color is an RGBA color in 8-bit channels, not premultiplied.
type Color struct {
	R, G, B, A uint8
}

func RGB(r, g, b uint8) Color     { return Color{R: r, G: g, B: b, A: 0xFF} }
func RGBA(r, g, b, a uint8) Color { return Color{R: r, G: g, B: b, A: a} }

// Hex decodes 0xRRGGBB.
func Hex(v uint32) Color {
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v))
}

// Scale multiplies the color channels by s in [0,1]; alpha is kept.
func (c Color) Scale(s float64) Color {
	t := uint32(clamp01(s) * 255)
	mul := func(ch uint8) uint8 { return uint8(uint32(ch) * t / 255) }
	return Color{R: mul(c.R), G: mul(c.G), B: mul(c.B), A: c.A}
}

func (c Color) WithAlpha(a uint8) Color { c.A = a; return c }

// Fade multiplies alpha by s in [0,1].
func (c Color) Fade(s float64) Color {
	c.A = uint8(float64(c.A) * clamp01(s))
	return c
}

// Lerp mixes a toward b by t in [0,1], alpha included.
func Lerp(a, b Color, t float64) Color {
	t = clamp01(t)
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5) }
	return Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
