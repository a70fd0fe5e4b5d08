// Package config loads the optional TOML configuration file and watches it
// for edits.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"backdrop/hal"
	"backdrop/netfield/tier"

	"github.com/BurntSushi/toml"
)

// Config mirrors the TOML file. Zero values mean "not set".
type Config struct {
	Seed     int64                   `toml:"seed"`
	Probe    ProbeConfig             `toml:"probe"`
	Tier     TierConfig              `toml:"tier"`
	Tiers    map[string]TierOverride `toml:"tiers"`
	Bridge   BridgeConfig            `toml:"bridge"`
	Viewport ViewportConfig          `toml:"viewport"`
	HUD      HUDConfig               `toml:"hud"`
}

// ProbeConfig overrides detected device signals.
type ProbeConfig struct {
	Concurrency      int     `toml:"concurrency"`
	DevicePixelRatio float64 `toml:"device_pixel_ratio"`
	ReducedMotion    *bool   `toml:"reduced_motion"`
	Network          string  `toml:"network"`
	Mobile           *bool   `toml:"mobile"`
}

// TierConfig pins the tier instead of selecting it from the probe.
type TierConfig struct {
	Force string `toml:"force"` // "", "low", "medium" or "high"
}

// TierOverride replaces individual fields of one tier.
type TierOverride struct {
	Nodes       int     `toml:"nodes"`
	Connections int     `toml:"connections"`
	Distance    float64 `toml:"distance"`
	FPS         int     `toml:"fps"`
}

// BridgeConfig controls the external renderer.
type BridgeConfig struct {
	Enabled        *bool    `toml:"enabled"`
	Timeout        Duration `toml:"timeout"`
	FailuresToTrip uint32   `toml:"failures_to_trip"`
	Cooldown       Duration `toml:"cooldown"`
}

// ViewportConfig overrides the DPR caps.
type ViewportConfig struct {
	ConstrainedDPRCap float64 `toml:"constrained_dpr_cap"`
	HighDPRCap        float64 `toml:"high_dpr_cap"`
}

// HUDConfig controls the statistics overlay.
type HUDConfig struct {
	Enabled bool `toml:"enabled"`
}

// Duration decodes TOML strings such as "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

var (
	ErrUnknownKey = errors.New("config: unknown key")
	ErrBadValue   = errors.New("config: bad value")
)

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(string(data))
}

// Parse decodes and validates TOML text. Unknown keys are an error so typos
// do not silently fall back to defaults.
func Parse(text string) (*Config, error) {
	var c Config
	md, err := toml.Decode(text, &c)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if und := md.Undecoded(); len(und) > 0 {
		keys := make([]string, len(und))
		for i, k := range und {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.Tier.Force != "" {
		if _, err := tier.ParseName(c.Tier.Force); err != nil {
			return fmt.Errorf("%w: tier.force: %v", ErrBadValue, err)
		}
	}
	for name := range c.Tiers {
		if _, err := tier.ParseName(name); err != nil {
			return fmt.Errorf("%w: tiers.%s: %v", ErrBadValue, name, err)
		}
	}
	if c.Probe.Concurrency < 0 || c.Probe.DevicePixelRatio < 0 {
		return fmt.Errorf("%w: probe values must not be negative", ErrBadValue)
	}
	if c.Bridge.Timeout.Duration < 0 || c.Bridge.Cooldown.Duration < 0 {
		return fmt.Errorf("%w: bridge durations must not be negative", ErrBadValue)
	}
	if v := c.Viewport.ConstrainedDPRCap; v != 0 && v < 1 {
		return fmt.Errorf("%w: viewport.constrained_dpr_cap %v < 1", ErrBadValue, v)
	}
	if v := c.Viewport.HighDPRCap; v != 0 && v < 1 {
		return fmt.Errorf("%w: viewport.high_dpr_cap %v < 1", ErrBadValue, v)
	}
	return nil
}

// Table applies the [tiers.*] overrides to base and validates the result.
func (c *Config) Table(base tier.Table) (tier.Table, error) {
	if c == nil {
		return base, nil
	}
	out := base
	for key, o := range c.Tiers {
		n, err := tier.ParseName(key)
		if err != nil {
			return base, fmt.Errorf("%w: tiers.%s: %v", ErrBadValue, key, err)
		}
		t := out.Get(n)
		if o.Nodes != 0 {
			t.NodeCount = o.Nodes
		}
		if o.Connections != 0 {
			t.MaxConnections = o.Connections
		}
		if o.Distance != 0 {
			t.ConnectionDistance = o.Distance
		}
		if o.FPS != 0 {
			t.TargetFPS = o.FPS
		}
		out.Set(n, t)
	}
	if err := out.Validate(); err != nil {
		return base, fmt.Errorf("config: %w", err)
	}
	return out, nil
}

// Forced returns the pinned tier name, if any.
func (c *Config) Forced() (tier.Name, bool) {
	if c == nil || c.Tier.Force == "" {
		return 0, false
	}
	n, err := tier.ParseName(c.Tier.Force)
	return n, err == nil
}

// Overlay fills the unset fields of o from the [probe] section. Flags set
// explicitly on o win.
func (c *Config) Overlay(o hal.EnvOverrides) hal.EnvOverrides {
	if c == nil {
		return o
	}
	p := c.Probe
	if o.Concurrency == 0 {
		o.Concurrency = p.Concurrency
	}
	if o.DevicePixelRatio == 0 {
		o.DevicePixelRatio = p.DevicePixelRatio
	}
	if o.ReducedMotion == nil {
		o.ReducedMotion = p.ReducedMotion
	}
	if o.NetworkType == "" {
		o.NetworkType = p.Network
	}
	if o.Mobile == nil {
		o.Mobile = p.Mobile
	}
	return o
}

// BridgeEnabled reports whether the external renderer may be tried. It
// defaults to true.
func (c *Config) BridgeEnabled() bool {
	if c == nil || c.Bridge.Enabled == nil {
		return true
	}
	return *c.Bridge.Enabled
}
