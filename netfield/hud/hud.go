// Package hud draws a small text overlay with engine statistics.
package hud

import (
	"fmt"
	"image/color"
	"math"

	"backdrop/raster"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Info is what the overlay shows.
type Info struct {
	Tier       string
	Path       string
	Generation uint64
	Nodes      int
	Edges      int
	FPS        float64
	Degraded   bool
	Version    string
}

// Lines formats i for display.
func (i Info) Lines() []string {
	lines := []string{
		fmt.Sprintf("%s  %s  gen %d", i.Tier, i.Path, i.Generation),
		fmt.Sprintf("nodes %d  edges %d", i.Nodes, i.Edges),
	}
	fps := fmt.Sprintf("fps %.1f", i.FPS)
	if i.Degraded {
		fps += "  degraded"
	}
	lines = append(lines, fps)
	if i.Version != "" {
		lines = append(lines, i.Version)
	}
	return lines
}

// Overlay renders Info into the top-left corner of a canvas.
type Overlay struct {
	Font  tinyfont.Fonter
	Color raster.Color
	Panel raster.Color
	// LineHeight and Pad are in logical pixels.
	LineHeight int16
	Pad        int16
}

// New returns an overlay using TomThumb.
func New() *Overlay {
	return &Overlay{
		Font:       &tinyfont.TomThumb,
		Color:      raster.RGB(0xd0, 0xe4, 0xff),
		Panel:      raster.RGBA(0, 0, 0, 0x90),
		LineHeight: 7,
		Pad:        3,
	}
}

// Draw paints the panel and text.
func (o *Overlay) Draw(c *raster.Canvas, info Info) {
	if c == nil {
		return
	}
	lines := info.Lines()
	var widest uint32
	for _, l := range lines {
		if _, w := tinyfont.LineWidth(o.Font, l); w > widest {
			widest = w
		}
	}
	panelW := float64(widest) + 2*float64(o.Pad)
	panelH := float64(int(o.LineHeight)*len(lines)) + 2*float64(o.Pad)
	c.Rect(0, 0, panelW, panelH, o.Panel)

	d := canvasDisplay{c: c, scale: int16(max(math.Round(c.Scale), 1))}
	fg := color.RGBA{R: o.Color.R, G: o.Color.G, B: o.Color.B, A: 0xFF}
	y := o.Pad + o.LineHeight - 1
	for _, l := range lines {
		tinyfont.WriteLine(d, o.Font, o.Pad, y, l, fg)
		y += o.LineHeight
	}
}

// canvasDisplay adapts a canvas to drivers.Displayer in logical pixels, each
// drawn as a scale×scale block.
type canvasDisplay struct {
	c     *raster.Canvas
	scale int16
}

var _ drivers.Displayer = canvasDisplay{}

func (d canvasDisplay) Size() (x, y int16) {
	w, h := d.c.Size()
	return int16(w / int(d.scale)), int16(h / int(d.scale))
}

func (d canvasDisplay) SetPixel(x, y int16, c color.RGBA) {
	col := raster.RGBA(c.R, c.G, c.B, c.A)
	bx, by := int(x)*int(d.scale), int(y)*int(d.scale)
	for dy := 0; dy < int(d.scale); dy++ {
		for dx := 0; dx < int(d.scale); dx++ {
			d.c.SetPixel(bx+dx, by+dy, col)
		}
	}
}

func (d canvasDisplay) Display() error { return nil }
