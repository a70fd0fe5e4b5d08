package field

import (
	"math"
	"time"
)

// Params are the physics constants of a field. Velocities are in logical
// pixels per frame at 60 Hz.
type Params struct {
	Margin       float64
	InitialSpeed float64
	MaxSpeed     float64
	MaxDT        float64

	BoundRadius float64 // fraction of the inner ellipse
	CenterForce float64
	OrbitSpeed  float64 // radians per frame
	OrbitPull   float64

	InteractionRadius float64
	Attract           float64
	Repel             float64
	FocusBrightness   float64

	Damping     float64
	Jitter      float64
	JitterScale float64

	Smoothing    float64
	MaxSmoothing float64
	QuietWindow  time.Duration
	AmbientBase  float64
	AmbientAmp   float64
	PulseSpeed   float64
}

// DefaultParams returns the built-in physics constants.
func DefaultParams() Params {
	return Params{
		Margin:       40,
		InitialSpeed: 0.5,
		MaxSpeed:     2.5,
		MaxDT:        4,

		BoundRadius: 1.0,
		CenterForce: 0.002,
		OrbitSpeed:  0.0015,
		OrbitPull:   0.01,

		InteractionRadius: 150,
		Attract:           0.06,
		Repel:             0.08,
		FocusBrightness:   0.6,

		Damping:     0.97,
		Jitter:      0.015,
		JitterScale: 0.01,

		Smoothing:    0.08,
		MaxSmoothing: 0.5,
		QuietWindow:  1500 * time.Millisecond,
		AmbientBase:  0.35,
		AmbientAmp:   0.15,
		PulseSpeed:   0.04,
	}
}

// ambient is the oscillating resting brightness for a pulse phase.
func (p *Params) ambient(phase float64) float64 {
	return clamp(p.AmbientBase+p.AmbientAmp*math.Sin(phase), 0, 1)
}
