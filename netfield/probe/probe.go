// Package probe classifies the host device once per mount.
package probe

import "fmt"

// Speed is the network speed class.
type Speed uint8

const (
	SpeedUnknown Speed = iota
	SpeedSlow
	SpeedFast
)

func (s Speed) String() string {
	switch s {
	case SpeedSlow:
		return "slow"
	case SpeedFast:
		return "fast"
	}
	return "unknown"
}

// Env reports ambient device signals. A false second result means the signal
// is unavailable. hal.Env satisfies it.
type Env interface {
	Concurrency() (int, bool)
	DevicePixelRatio() (float64, bool)
	ReducedMotion() (bool, bool)
	NetworkType() (string, bool)
	Mobile() (bool, bool)
}

// Classification thresholds.
const (
	HighEndMinConcurrency = 8
	HighEndMaxDPR         = 2.0
	LowEndMaxConcurrency  = 2
	LowEndMinDPR          = 2.0 // exclusive
)

// Snapshot is an immutable record of device signals. It is a value type; copy
// it freely.
type Snapshot struct {
	IsHighEnd        bool
	IsLowEnd         bool
	Speed            Speed
	ReducedMotion    bool
	DevicePixelRatio float64
	Concurrency      int
	IsMobile         bool

	// Degraded is set when a core signal was unavailable and defaulted.
	Degraded bool
}

func (s Snapshot) String() string {
	class := "medium"
	switch {
	case s.IsLowEnd:
		class = "low-end"
	case s.IsHighEnd:
		class = "high-end"
	}
	return fmt.Sprintf("%s cpu=%d dpr=%.2f net=%s reduced=%v mobile=%v",
		class, s.Concurrency, s.DevicePixelRatio, s.Speed, s.ReducedMotion, s.IsMobile)
}

// Conservative is the snapshot used when nothing can be detected.
func Conservative() Snapshot {
	return Classify(1, 1, false, SpeedUnknown, false)
}

// Classify applies the fixed thresholds to raw signals.
func Classify(concurrency int, dpr float64, reduced bool, speed Speed, mobile bool) Snapshot {
	return Snapshot{
		IsHighEnd:        concurrency >= HighEndMinConcurrency && dpr <= HighEndMaxDPR,
		IsLowEnd:         concurrency <= LowEndMaxConcurrency || dpr > LowEndMinDPR,
		Speed:            speed,
		ReducedMotion:    reduced,
		DevicePixelRatio: dpr,
		Concurrency:      concurrency,
		IsMobile:         mobile,
	}
}

// SpeedFromNetworkType maps an effective connection type to a speed class.
// Only 4g and 3g count as fast; any other reported type is slow.
func SpeedFromNetworkType(t string) Speed {
	switch t {
	case "":
		return SpeedUnknown
	case "4g", "3g":
		return SpeedFast
	}
	return SpeedSlow
}

// Probe inspects env and never fails: unavailable or misbehaving signals fall
// back to the conservative (non-high-end) branch.
func Probe(env Env) Snapshot {
	if env == nil {
		s := Conservative()
		s.Degraded = true
		return s
	}
	degraded := false

	concurrency, ok := query(env.Concurrency)
	if !ok || concurrency <= 0 {
		concurrency = 1
		degraded = true
	}
	dpr, ok := query(env.DevicePixelRatio)
	if !ok || dpr <= 0 {
		dpr = 1
		degraded = true
	}
	reduced, ok := query(env.ReducedMotion)
	if !ok {
		reduced = false
	}
	speed := SpeedUnknown
	if t, ok := query(env.NetworkType); ok {
		speed = SpeedFromNetworkType(t)
	}
	mobile, ok := query(env.Mobile)
	if !ok {
		mobile = false
	}

	s := Classify(concurrency, dpr, reduced, speed, mobile)
	if degraded {
		// A missing core signal never yields high-end.
		s.IsHighEnd = false
		s.Degraded = true
	}
	return s
}

// query calls fn, treating a panic as "unavailable".
func query[T any](fn func() (T, bool)) (v T, ok bool) {
	defer func() {
		if recover() != nil {
			var zero T
			v, ok = zero, false
		}
	}()
	return fn()
}
