// Package field owns the simulated node set: seeding a generation and
// advancing its physics once per tick.
package field

import (
	"math"
	"math/rand"
	"time"

	"backdrop/netfield/tier"

	"github.com/aquilax/go-perlin"
)

// Kind selects how a node reacts to interaction and how it is painted.
type Kind uint8

const (
	Primary Kind = iota
	Secondary
	Accent
)

func (k Kind) String() string {
	switch k {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	case Accent:
		return "accent"
	}
	return "unknown"
}

// Kind shares, innermost first.
const (
	PrimaryShare = 0.30
	AccentShare  = 0.20
)

// Node is one simulated point. IDs are unique within a generation.
type Node struct {
	ID     int
	X, Y   float64
	VX, VY float64
	Size   float64

	Brightness       float64
	TargetBrightness float64
	PulsePhase       float64

	Kind        Kind
	Connections []int

	LastInteraction time.Time
}

// Interaction is the read side of the pointer tracker.
type Interaction interface {
	FocusActive() bool
	FocusPoint() (x, y float64)
}

// Field is one generation of nodes laid out for a viewport.
type Field struct {
	Generation    uint64
	Width, Height float64
	Margin        float64
	Tier          tier.Tier
	Params        Params
	Nodes         []Node

	prev  []Node
	noise *perlin.Perlin
	frame uint64
}

// Initialize seeds a new generation of t.NodeCount nodes for a w×h viewport.
// Nodes sit on concentric elliptical rings inside a fixed edge margin so none
// spawn clipped; kinds are assigned by ring (primary innermost, accent
// outermost).
func Initialize(gen uint64, w, h float64, t tier.Tier, seed int64) *Field {
	p := DefaultParams()
	margin := p.Margin
	if short := math.Min(w, h); short < 4*margin {
		margin = math.Max(short/4, 0)
	}
	f := &Field{
		Generation: gen,
		Width:      w,
		Height:     h,
		Margin:     margin,
		Tier:       t,
		Params:     p,
		noise:      perlin.NewPerlin(2, 2, 3, seed),
	}
	n := t.NodeCount
	if n <= 0 {
		return f
	}
	rng := rand.New(rand.NewSource(seed))
	f.Nodes = make([]Node, n)
	f.prev = make([]Node, n)

	cx, cy := w/2, h/2
	rx, ry := math.Max(w/2-margin, 0), math.Max(h/2-margin, 0)

	rings := ringCounts(n)
	primaries := int(math.Round(PrimaryShare * float64(n)))
	accents := int(math.Round(AccentShare * float64(n)))

	id := 0
	for ring, count := range rings {
		frac := 0.0
		if len(rings) > 1 {
			frac = float64(ring) / float64(len(rings)-1)
		}
		offset := rng.Float64() * 2 * math.Pi
		for j := 0; j < count; j++ {
			angle := offset + 2*math.Pi*float64(j)/float64(count)
			angle += (rng.Float64() - 0.5) * (math.Pi / float64(count+1))
			r := frac * (1 + (rng.Float64()-0.5)*0.15)
			r = math.Min(r, 1)

			node := &f.Nodes[id]
			node.ID = id
			node.X = clamp(cx+r*rx*math.Cos(angle), margin, w-margin)
			node.Y = clamp(cy+r*ry*math.Sin(angle), margin, h-margin)
			node.VX = (rng.Float64() - 0.5) * p.InitialSpeed
			node.VY = (rng.Float64() - 0.5) * p.InitialSpeed
			node.PulsePhase = rng.Float64() * 2 * math.Pi

			switch {
			case id < primaries:
				node.Kind = Primary
				node.Size = 3 + rng.Float64()
			case id >= n-accents:
				node.Kind = Accent
				node.Size = 2.5 + rng.Float64()*0.8
			default:
				node.Kind = Secondary
				node.Size = 1.8 + rng.Float64()*0.7
			}
			node.TargetBrightness = p.ambient(node.PulsePhase)
			node.Brightness = node.TargetBrightness
			id++
		}
	}
	return f
}

// ringCounts splits n nodes into a center node plus rings holding 6k nodes
// each; the last ring takes the remainder.
func ringCounts(n int) []int {
	if n <= 0 {
		return nil
	}
	counts := []int{1}
	left := n - 1
	for k := 1; left > 0; k++ {
		c := min(6*k, left)
		counts = append(counts, c)
		left -= c
	}
	return counts
}

// Step advances every node by dt frames (1 = 1/60 s). Each node's next state
// is computed only from the previous frame, so iteration order never changes
// the outcome.
func (f *Field) Step(dt float64, now time.Time, in Interaction) {
	if len(f.Nodes) == 0 {
		return
	}
	dt = clamp(dt, 0, f.Params.MaxDT)
	copy(f.prev, f.Nodes)
	f.frame++

	focus := in != nil && in.FocusActive()
	var fx, fy float64
	if focus {
		fx, fy = in.FocusPoint()
	}
	for i := range f.Nodes {
		f.stepNode(&f.Nodes[i], f.prev[i], dt, now, focus, fx, fy)
	}
}

func (f *Field) stepNode(n *Node, p Node, dt float64, now time.Time, focus bool, fx, fy float64) {
	par := &f.Params
	cx, cy := f.Width/2, f.Height/2
	rx, ry := math.Max(f.Width/2-f.Margin, 1), math.Max(f.Height/2-f.Margin, 1)

	vx, vy := p.VX, p.VY
	ex, ey := (p.X-cx)/rx, (p.Y-cy)/ry
	er := math.Hypot(ex, ey)

	// 1. soft centering beyond the bounded radius
	if er > par.BoundRadius {
		pull := par.CenterForce * (er - par.BoundRadius) / er
		vx -= (p.X - cx) * pull * dt
		vy -= (p.Y - cy) * pull * dt
	}

	// 2. orbital drift toward the next point on the node's current radius
	if er > 1e-6 {
		a := math.Atan2(ey, ex) + par.OrbitSpeed*dt
		tx := cx + er*rx*math.Cos(a)
		ty := cy + er*ry*math.Sin(a)
		vx += (tx - p.X) * par.OrbitPull * dt
		vy += (ty - p.Y) * par.OrbitPull * dt
	}

	// 3. interaction: primaries attract, the rest repel
	target := p.TargetBrightness
	last := p.LastInteraction
	if focus {
		dx, dy := fx-p.X, fy-p.Y
		d := math.Hypot(dx, dy)
		if d < par.InteractionRadius && d > 1e-6 {
			s := 1 - d/par.InteractionRadius
			ux, uy := dx/d, dy/d
			if p.Kind == Primary {
				vx += ux * par.Attract * s * dt
				vy += uy * par.Attract * s * dt
			} else {
				vx -= ux * par.Repel * s * dt
				vy -= uy * par.Repel * s * dt
			}
			target = math.Max(target, par.FocusBrightness+(1-par.FocusBrightness)*s)
			last = now
		}
	}

	// 4. damping plus smooth jitter
	damp := math.Pow(par.Damping, dt)
	vx *= damp
	vy *= damp
	t := float64(f.frame) * par.JitterScale
	vx += f.noise.Noise2D(float64(p.ID)*0.37, t) * par.Jitter * dt
	vy += f.noise.Noise2D(float64(p.ID)*0.37+100, t) * par.Jitter * dt
	if sp := math.Hypot(vx, vy); sp > par.MaxSpeed {
		vx, vy = vx/sp*par.MaxSpeed, vy/sp*par.MaxSpeed
	}

	x, y := p.X+vx*dt, p.Y+vy*dt
	if x < 0 || x > f.Width {
		vx = -vx
		x = clamp(x, 0, f.Width)
	}
	if y < 0 || y > f.Height {
		vy = -vy
		y = clamp(y, 0, f.Height)
	}

	// 5. brightness smoothing; quiet nodes fall back to the ambient baseline
	if last.IsZero() || now.Sub(last) > par.QuietWindow {
		target = par.ambient(p.PulsePhase)
	}
	target = clamp(target, 0, 1)
	alpha := math.Min(par.Smoothing*dt, par.MaxSmoothing)
	bright := clamp(p.Brightness+(target-p.Brightness)*alpha, 0, 1)

	// 6. pulse
	phase := math.Mod(p.PulsePhase+par.PulseSpeed*dt, 2*math.Pi)

	n.X, n.Y = x, y
	n.VX, n.VY = vx, vy
	n.TargetBrightness = target
	n.Brightness = bright
	n.PulsePhase = phase
	n.LastInteraction = last
}

// Frame returns how many steps this generation has taken.
func (f *Field) Frame() uint64 { return f.frame }

// Lookup returns the node with the given id.
func (f *Field) Lookup(id int) (*Node, bool) {
	if id < 0 || id >= len(f.Nodes) || f.Nodes[id].ID != id {
		return nil, false
	}
	return &f.Nodes[id], true
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
