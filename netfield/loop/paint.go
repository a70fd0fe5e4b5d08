package loop

import (
	"math"

	"backdrop/netfield/field"
	"backdrop/netfield/graph"
	"backdrop/raster"
)

// Theme is the palette of the built-in renderer.
type Theme struct {
	Background raster.Color
	// Trail is washed over the previous frame each tick; its alpha sets how
	// long motion trails persist.
	Trail     raster.Color
	Primary   raster.Color
	Secondary raster.Color
	Accent    raster.Color
	Highlight raster.Color

	EdgeAlpha float64
	GlowAlpha float64
}

// HighlightThreshold is the brightness above which a node gets a highlight.
const HighlightThreshold = 0.7

// DefaultTheme returns the built-in palette.
func DefaultTheme() Theme {
	bg := raster.Hex(0x0a0e1a)
	return Theme{
		Background: bg,
		Trail:      bg.WithAlpha(64),
		Primary:    raster.Hex(0x3a7bd5),
		Secondary:  raster.Hex(0x00d2ff),
		Accent:     raster.Hex(0x9d50bb),
		Highlight:  raster.RGB(0xff, 0xff, 0xff),
		EdgeAlpha:  0.6,
		GlowAlpha:  0.35,
	}
}

func (t *Theme) colorOf(k field.Kind) raster.Color {
	switch k {
	case field.Primary:
		return t.Primary
	case field.Accent:
		return t.Accent
	}
	return t.Secondary
}

// paintEdges draws each edge as a gradient between its endpoint colors, with
// opacity scaled by closeness and by each endpoint's brightness.
func paintEdges(c *raster.Canvas, f *field.Field, edges []graph.Edge, th *Theme) {
	for _, e := range edges {
		a, okA := f.Lookup(e.A)
		b, okB := f.Lookup(e.B)
		if !okA || !okB {
			continue
		}
		k := e.Strength * th.EdgeAlpha
		ca := th.colorOf(a.Kind).Fade(k * a.Brightness)
		cb := th.colorOf(b.Kind).Fade(k * b.Brightness)
		c.Line(a.X, a.Y, b.X, b.Y, ca, cb)
	}
}

// paintNodes draws a pulsing glow, a core disc and, for bright nodes, a
// highlight.
func paintNodes(c *raster.Canvas, nodes []field.Node, th *Theme) {
	for i := range nodes {
		n := &nodes[i]
		r := math.Max(n.Size+math.Sin(n.PulsePhase), 0.5)
		col := th.colorOf(n.Kind)
		c.Glow(n.X, n.Y, r*4, col.Fade(n.Brightness*th.GlowAlpha))
		c.Disc(n.X, n.Y, r, col.Fade(0.4+0.6*n.Brightness))
		if n.Brightness > HighlightThreshold {
			c.Disc(n.X, n.Y, r*0.4, th.Highlight.Fade(n.Brightness))
		}
	}
}
