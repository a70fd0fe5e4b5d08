package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Hz      int
	Ticks   uint64
	Width   int
	Height  int
	Scale   float64
	Options Options
}

func (cfg *HeadlessConfig) normalize() {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
}

// RunHeadless runs the engine without opening a window. The viewport is
// published once from the configured size.
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	cfg.normalize()
	_, step, err := MountHeadless(newApp, cfg)
	if err != nil {
		return err
	}

	d := time.Second / time.Duration(cfg.Hz)
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}

// MountHeadless builds a headless host, publishes its viewport and mounts the
// app without starting a ticker. Callers drive the returned step themselves.
func MountHeadless(newApp func(HAL) func() error, cfg HeadlessConfig) (HAL, func() error, error) {
	cfg.normalize()
	if time.Second/time.Duration(cfg.Hz) <= 0 {
		return nil, nil, fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	cfg.Options.Width, cfg.Options.Height = cfg.Width, cfg.Height
	if cfg.Options.Env.DevicePixelRatio <= 0 {
		cfg.Options.Env.DevicePixelRatio = cfg.Scale
	}
	h := newHost(cfg.Options)
	h.viewport.Publish(Viewport{Width: float64(cfg.Width), Height: float64(cfg.Height), DeviceScale: cfg.Scale})
	return h, newApp(h), nil
}

// Snapshot copies the current framebuffer pixels of a host HAL.
func Snapshot(h HAL) (pix []byte, w, hh int, ok bool) {
	host, isHost := h.(*hostHAL)
	if !isHost {
		return nil, 0, 0, false
	}
	pix, w, hh = host.fb.snapshot(nil)
	return pix, w, hh, true
}
