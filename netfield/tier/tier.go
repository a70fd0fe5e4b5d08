// Package tier maps a capability snapshot to a quality tier.
package tier

import (
	"errors"
	"fmt"

	"backdrop/netfield/probe"
)

// Name identifies a quality tier.
type Name uint8

const (
	Low Name = iota
	Medium
	High
)

func (n Name) String() string {
	switch n {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	}
	return fmt.Sprintf("tier(%d)", uint8(n))
}

// ParseName parses "low", "medium" or "high".
func ParseName(s string) (Name, error) {
	switch s {
	case "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "high":
		return High, nil
	}
	return 0, fmt.Errorf("tier: unknown name %q", s)
}

// ReducedMotionMaxFPS caps the frame rate whenever reduced motion is preferred.
const ReducedMotionMaxFPS = 15

// Tier is the active rendering budget. Changing it requires a full reseed.
type Tier struct {
	Name               Name
	NodeCount          int
	MaxConnections     int
	ConnectionDistance float64
	TargetFPS          int
}

func (t Tier) String() string {
	return fmt.Sprintf("%s nodes=%d conns=%d dist=%.0f fps=%d",
		t.Name, t.NodeCount, t.MaxConnections, t.ConnectionDistance, t.TargetFPS)
}

// Table holds one tier per name.
type Table struct {
	Low, Medium, High Tier
}

// DefaultTable is the built-in tier table.
var DefaultTable = Table{
	Low:    Tier{Name: Low, NodeCount: 20, MaxConnections: 2, ConnectionDistance: 150, TargetFPS: 30},
	Medium: Tier{Name: Medium, NodeCount: 40, MaxConnections: 3, ConnectionDistance: 200, TargetFPS: 60},
	High:   Tier{Name: High, NodeCount: 60, MaxConnections: 4, ConnectionDistance: 250, TargetFPS: 60},
}

// Get returns the tier with the given name.
func (tb Table) Get(n Name) Tier {
	switch n {
	case High:
		return tb.High
	case Medium:
		return tb.Medium
	}
	return tb.Low
}

// Set replaces the tier with the given name.
func (tb *Table) Set(n Name, t Tier) {
	t.Name = n
	switch n {
	case High:
		tb.High = t
	case Medium:
		tb.Medium = t
	default:
		tb.Low = t
	}
}

// Bounds are the permitted ranges for each tier.
type Bounds struct {
	MinNodes, MaxNodes int
	MinConns, MaxConns int
	MinDist, MaxDist   float64
	MinFPS, MaxFPS     int
}

// TableBounds are the ranges Validate enforces.
var TableBounds = map[Name]Bounds{
	Low:    {MinNodes: 15, MaxNodes: 25, MinConns: 2, MaxConns: 2, MinDist: 120, MaxDist: 200, MinFPS: 15, MaxFPS: 30},
	Medium: {MinNodes: 25, MaxNodes: 50, MinConns: 3, MaxConns: 3, MinDist: 140, MaxDist: 250, MinFPS: 60, MaxFPS: 60},
	High:   {MinNodes: 35, MaxNodes: 70, MinConns: 4, MaxConns: 5, MinDist: 160, MaxDist: 300, MinFPS: 60, MaxFPS: 60},
}

var ErrInvalidTier = errors.New("tier: invalid")

// Validate checks every tier against TableBounds.
func (tb Table) Validate() error {
	for _, n := range []Name{Low, Medium, High} {
		t := tb.Get(n)
		b := TableBounds[n]
		switch {
		case t.NodeCount <= 0 || t.MaxConnections <= 0 || t.ConnectionDistance <= 0 || t.TargetFPS <= 0:
			return fmt.Errorf("%w: %s has a non-positive field", ErrInvalidTier, n)
		case t.NodeCount < b.MinNodes || t.NodeCount > b.MaxNodes:
			return fmt.Errorf("%w: %s nodes %d outside [%d,%d]", ErrInvalidTier, n, t.NodeCount, b.MinNodes, b.MaxNodes)
		case t.MaxConnections < b.MinConns || t.MaxConnections > b.MaxConns:
			return fmt.Errorf("%w: %s connections %d outside [%d,%d]", ErrInvalidTier, n, t.MaxConnections, b.MinConns, b.MaxConns)
		case t.ConnectionDistance < b.MinDist || t.ConnectionDistance > b.MaxDist:
			return fmt.Errorf("%w: %s distance %.0f outside [%.0f,%.0f]", ErrInvalidTier, n, t.ConnectionDistance, b.MinDist, b.MaxDist)
		case t.TargetFPS < b.MinFPS || t.TargetFPS > b.MaxFPS:
			return fmt.Errorf("%w: %s fps %d outside [%d,%d]", ErrInvalidTier, n, t.TargetFPS, b.MinFPS, b.MaxFPS)
		}
	}
	return nil
}

// Select returns the tier for s from DefaultTable.
func Select(s probe.Snapshot) Tier {
	return DefaultTable.Select(s)
}

// Select is a pure lookup:
//
//	reduced motion, slow network, low-end or mobile → low
//	high-end with a fast network                     → high
//	anything else                                    → medium
//
// Reduced motion additionally caps TargetFPS at ReducedMotionMaxFPS.
func (tb Table) Select(s probe.Snapshot) Tier {
	var t Tier
	switch {
	case s.ReducedMotion || s.Speed == probe.SpeedSlow || s.IsLowEnd || s.IsMobile:
		t = tb.Low
	case s.IsHighEnd && s.Speed == probe.SpeedFast:
		t = tb.High
	default:
		t = tb.Medium
	}
	if s.ReducedMotion && t.TargetFPS > ReducedMotionMaxFPS {
		t.TargetFPS = ReducedMotionMaxFPS
	}
	return t
}
