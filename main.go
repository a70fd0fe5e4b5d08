package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"backdrop/app"
	"backdrop/config"
	"backdrop/hal"
	"backdrop/hostlink"
	"backdrop/internal/buildinfo"
	"backdrop/latch"
	"backdrop/netfield/tier"
)

func main() {
	var (
		headless hal.HeadlessConfig
		terminal bool
		env      hal.EnvOverrides
		reduced  string
		mobile   string
		cfgPath  string
		force    string
		hud      bool
		external bool
		listen   string
		version  bool
	)
	flag.BoolVar(&headless.Enabled, "headless", false, "Run without a window.")
	flag.BoolVar(&terminal, "terminal", false, "Render into the terminal.")
	flag.IntVar(&headless.Hz, "hz", 60, "Tick rate in headless and terminal mode.")
	flag.Uint64Var(&headless.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.IntVar(&headless.Width, "width", 1280, "Viewport width in logical pixels.")
	flag.IntVar(&headless.Height, "height", 720, "Viewport height in logical pixels.")
	flag.Float64Var(&headless.Scale, "scale", 1, "Device scale reported by the headless host.")
	flag.IntVar(&env.Concurrency, "cores", 0, "Pin the probed core count (0 = detect).")
	flag.Float64Var(&env.DevicePixelRatio, "dpr", 0, "Pin the probed device pixel ratio (0 = detect).")
	flag.StringVar(&reduced, "reduced-motion", "", "Pin the reduced-motion preference (true/false).")
	flag.StringVar(&env.NetworkType, "network", "", "Pin the network type (4g, 3g, 2g, slow-2g).")
	flag.StringVar(&mobile, "mobile", "", "Pin the mobile hint (true/false).")
	flag.StringVar(&cfgPath, "config", "", "TOML config file; reloaded on change.")
	flag.StringVar(&force, "tier", "", "Force a tier (low, medium, high).")
	flag.BoolVar(&hud, "hud", false, "Draw the statistics overlay.")
	flag.BoolVar(&external, "external", true, "Try the external 3D renderer on capable tiers.")
	flag.StringVar(&listen, "listen", "", "Serve host signals over websocket on this address.")
	flag.BoolVar(&version, "version", false, "Print the version and exit.")
	flag.Parse()

	if version {
		fmt.Println(buildinfo.String())
		return
	}
	var err error
	if env.ReducedMotion, err = optBool("reduced-motion", reduced); err != nil {
		fail(err)
	}
	if env.Mobile, err = optBool("mobile", mobile); err != nil {
		fail(err)
	}

	cfg := app.DefaultConfig()
	cfg.Flags = env
	cfg.HUD = hud
	cfg.External = external
	if force != "" {
		n, err := tier.ParseName(force)
		if err != nil {
			fail(err)
		}
		cfg.Force = &n
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfgPath != "" {
		file, err := config.Load(cfgPath)
		if err != nil {
			fail(err)
		}
		cfg.File = file
		var reloads latch.Value[config.Reload]
		if err := config.Watch(ctx, cfgPath, config.DefaultDebounce, &reloads); err != nil {
			fmt.Fprintln(os.Stderr, "backdrop: config: warn: not watching:", err)
		} else {
			cfg.Reloads = &reloads
		}
	}
	var once sync.Once
	newApp := func(h hal.HAL) func() error {
		if listen != "" {
			once.Do(func() {
				go func() {
					if err := hostlink.ListenAndServe(ctx, listen, h); err != nil && !errors.Is(err, context.Canceled) {
						h.Logger().WriteLineString("backdrop: hostlink: error: " + err.Error())
					}
				}()
			})
		}
		return app.NewStep(h, cfg)
	}
	opts := hal.Options{Env: env}

	switch {
	case terminal:
		err = hal.RunTerminal(ctx, newApp, hal.TerminalConfig{Hz: headless.Hz, Options: opts})
	case headless.Enabled:
		headless.Options = opts
		err = hal.RunHeadless(ctx, newApp, headless)
	default:
		err = hal.RunWindow(newApp, hal.WindowConfig{Width: headless.Width, Height: headless.Height, TPS: headless.Hz, Options: opts})
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fail(err)
	}
}

func optBool(name, v string) (*bool, error) {
	switch v {
	case "":
		return nil, nil
	case "true", "1", "yes":
		b := true
		return &b, nil
	case "false", "0", "no":
		b := false
		return &b, nil
	}
	return nil, fmt.Errorf("-%s: want true or false, got %q", name, v)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
