// Package viewport sizes the backing store for the container rectangle and
// reseeds the node field whenever it changes.
package viewport

import (
	"fmt"
	"math"

	"backdrop/hal"
	"backdrop/netfield/tier"
)

// DPR caps per tier.
const (
	ConstrainedDPRCap = 2
	HighDPRCap        = 3
)

// DPRCap returns the device pixel ratio cap for a tier.
func DPRCap(n tier.Name) float64 {
	if n == tier.High {
		return HighDPRCap
	}
	return ConstrainedDPRCap
}

// Surface is the resizable backing store. hal.Framebuffer satisfies it.
type Surface interface {
	Resize(w, h int) error
}

// ReseedFunc receives the new size in logical pixels.
type ReseedFunc func(w, h float64)

// Manager owns backing-store sizing.
type Manager struct {
	surface Surface
	cap     float64
	reseed  ReseedFunc

	width, height float64
	scale         float64
	bw, bh        int
}

// New returns a manager. surface may be nil when the host has no drawing
// context; sizes are still tracked and reseeds still happen.
func New(surface Surface, dprCap float64, reseed ReseedFunc) *Manager {
	if dprCap < 1 {
		dprCap = 1
	}
	return &Manager{surface: surface, cap: dprCap, reseed: reseed, scale: 1}
}

// OnResize applies a new container rectangle. Non-positive sizes and a
// rectangle identical to the current one are ignored and report false.
// Otherwise the backing store becomes rect × min(dpr, cap) and the field is
// reseeded at the logical size. A failed surface resize leaves the previous
// state and generation in place.
func (m *Manager) OnResize(r hal.Viewport) (bool, error) {
	if !(r.Width > 0) || !(r.Height > 0) {
		return false, nil
	}
	scale := EffectiveScale(r.DeviceScale, m.cap)
	if r.Width == m.width && r.Height == m.height && scale == m.scale && m.bw > 0 {
		return false, nil
	}
	bw := max(int(math.Round(r.Width*scale)), 1)
	bh := max(int(math.Round(r.Height*scale)), 1)

	if m.surface != nil {
		if err := m.surface.Resize(bw, bh); err != nil {
			return false, fmt.Errorf("viewport: resize %dx%d: %w", bw, bh, err)
		}
	}
	m.width, m.height = r.Width, r.Height
	m.scale = scale
	m.bw, m.bh = bw, bh
	if m.reseed != nil {
		m.reseed(r.Width, r.Height)
	}
	return true, nil
}

// EffectiveScale returns min(dpr, cap), treating a missing dpr as 1.
func EffectiveScale(dpr, dprCap float64) float64 {
	if !(dpr > 0) {
		dpr = 1
	}
	return math.Min(dpr, dprCap)
}

// Size returns the logical container size.
func (m *Manager) Size() (w, h float64) { return m.width, m.height }

// Scale returns the applied logical-to-backing scale.
func (m *Manager) Scale() float64 { return m.scale }

// BackingSize returns the backing store size in pixels.
func (m *Manager) BackingSize() (w, h int) { return m.bw, m.bh }

// Cap returns the configured DPR cap.
func (m *Manager) Cap() float64 { return m.cap }
