package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"backdrop/hal"
	"backdrop/latch"
	"backdrop/netfield/tier"
)

const sample = `
seed = 7

[probe]
concurrency = 8
device_pixel_ratio = 1.5
reduced_motion = true
network = "4g"

[tier]
force = "medium"

[tiers.low]
nodes = 18
fps = 20

[bridge]
enabled = false
timeout = "2s"
failures_to_trip = 3
cooldown = "30s"

[viewport]
high_dpr_cap = 2.5

[hud]
enabled = true
`

func TestParse(t *testing.T) {
	c, err := Parse(sample)
	if err != nil {
		t.Fatalf("Parse() err = %v", err)
	}
	if c.Seed != 7 || c.Probe.Concurrency != 8 || c.Probe.Network != "4g" {
		t.Fatalf("Parse() = %+v", c)
	}
	if c.Bridge.Timeout.Duration != 2*time.Second || c.Bridge.Cooldown.Duration != 30*time.Second {
		t.Fatalf("bridge durations = %v, %v", c.Bridge.Timeout, c.Bridge.Cooldown)
	}
	if c.BridgeEnabled() {
		t.Fatalf("BridgeEnabled() = true, want false")
	}
	if n, ok := c.Forced(); !ok || n != tier.Medium {
		t.Fatalf("Forced() = %v, %v", n, ok)
	}
	if !c.HUD.Enabled || c.Viewport.HighDPRCap != 2.5 {
		t.Fatalf("hud/viewport = %+v %+v", c.HUD, c.Viewport)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"unknown-key", "[probe]\ncores = 4\n", ErrUnknownKey},
		{"bad-force", "[tier]\nforce = \"ultra\"\n", ErrBadValue},
		{"bad-tier-name", "[tiers.ultra]\nnodes = 3\n", ErrBadValue},
		{"negative-dpr", "[probe]\ndevice_pixel_ratio = -1.0\n", ErrBadValue},
		{"small-cap", "[viewport]\nconstrained_dpr_cap = 0.5\n", ErrBadValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.text); !errors.Is(err, tt.want) {
				t.Fatalf("Parse() err = %v, want %v", err, tt.want)
			}
		})
	}
	if _, err := Parse("[bridge]\ntimeout = \"soon\"\n"); err == nil {
		t.Fatalf("Parse() accepted a bad duration")
	}
}

func TestTableOverrides(t *testing.T) {
	c, err := Parse(sample)
	if err != nil {
		t.Fatalf("Parse() err = %v", err)
	}
	tb, err := c.Table(tier.DefaultTable)
	if err != nil {
		t.Fatalf("Table() err = %v", err)
	}
	low := tb.Get(tier.Low)
	if low.NodeCount != 18 || low.TargetFPS != 20 || low.MaxConnections != 2 {
		t.Fatalf("low = %+v", low)
	}
	if tb.Get(tier.High) != tier.DefaultTable.Get(tier.High) {
		t.Fatalf("high tier changed")
	}
}

func TestTableOutOfRange(t *testing.T) {
	c, err := Parse("[tiers.low]\nnodes = 200\n")
	if err != nil {
		t.Fatalf("Parse() err = %v", err)
	}
	tb, err := c.Table(tier.DefaultTable)
	if !errors.Is(err, tier.ErrInvalidTier) {
		t.Fatalf("Table() err = %v, want ErrInvalidTier", err)
	}
	if tb != tier.DefaultTable {
		t.Fatalf("Table() did not return the base table on error")
	}
}

func TestOverlayFlagsWin(t *testing.T) {
	c, _ := Parse(sample)
	yes := false
	got := c.Overlay(hal.EnvOverrides{Concurrency: 2, ReducedMotion: &yes})
	if got.Concurrency != 2 || *got.ReducedMotion {
		t.Fatalf("flag values overwritten: %+v", got)
	}
	if got.DevicePixelRatio != 1.5 || got.NetworkType != "4g" {
		t.Fatalf("file values not applied: %+v", got)
	}
}

func TestNilConfigDefaults(t *testing.T) {
	var c *Config
	if !c.BridgeEnabled() {
		t.Fatalf("BridgeEnabled() = false on nil config")
	}
	if _, ok := c.Forced(); ok {
		t.Fatalf("Forced() ok on nil config")
	}
	if tb, err := c.Table(tier.DefaultTable); err != nil || tb != tier.DefaultTable {
		t.Fatalf("Table() = %v, %v", tb, err)
	}
}

func TestWatchPublishesReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backdrop.toml")
	if err := os.WriteFile(path, []byte("seed = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out latch.Value[Reload]
	if err := Watch(ctx, path, 20*time.Millisecond, &out); err != nil {
		t.Fatalf("Watch() err = %v", err)
	}
	if err := os.WriteFile(path, []byte("seed = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if r, seq := out.Load(); seq > 0 && r.Config != nil && r.Config.Seed == 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no reload with seed 2 published")
}
