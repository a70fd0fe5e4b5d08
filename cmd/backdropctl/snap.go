package main

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"time"

	"backdrop/app"
	"backdrop/hal"
	"backdrop/netfield/sched"

	"github.com/spf13/cobra"
)

type snapOptions struct {
	out      string
	width    int
	height   int
	scale    float64
	frames   int
	seed     int64
	external bool
	hud      bool
	wait     time.Duration
}

func snapCmd() *cobra.Command {
	o := snapOptions{}
	c := &cobra.Command{
		Use:   "snap",
		Short: "Render frames headlessly and write the last one as PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnap(cmd.OutOrStdout(), o)
		},
	}
	f := c.Flags()
	f.StringVarP(&o.out, "out", "o", "backdrop.png", "output PNG path")
	f.IntVar(&o.width, "width", 800, "viewport width in logical pixels")
	f.IntVar(&o.height, "height", 450, "viewport height in logical pixels")
	f.Float64Var(&o.scale, "scale", 1, "device scale")
	f.IntVar(&o.frames, "frames", 120, "frames to simulate at 60 Hz")
	f.Int64Var(&o.seed, "seed", 1, "field seed")
	f.BoolVar(&o.external, "external", false, "negotiate the 3D renderer first")
	f.BoolVar(&o.hud, "hud", false, "draw the statistics overlay")
	f.DurationVar(&o.wait, "wait", 2*time.Second, "how long to wait for the 3D renderer")
	return c
}

func runSnap(w io.Writer, o snapOptions) error {
	ovr, err := env.overrides()
	if err != nil {
		return err
	}
	clk := sched.NewManualClock(time.Unix(0, 0))
	var eng *app.Engine
	newApp := func(h hal.HAL) func() error {
		cfg := app.DefaultConfig()
		cfg.Flags = ovr
		cfg.Seed = o.seed
		cfg.External = o.external
		cfg.HUD = o.hud
		cfg.Now = clk.Now
		eng = app.New(h, cfg)
		return eng.Step
	}
	h, step, err := hal.MountHeadless(newApp, hal.HeadlessConfig{
		Width: o.width, Height: o.height, Scale: o.scale,
		Options: hal.Options{Env: ovr, Log: io.Discard},
	})
	if err != nil {
		return err
	}
	defer eng.Unmount()

	if err := step(); err != nil {
		return err
	}
	// The loader runs off the UI goroutine; give it real time to answer.
	deadline := time.Now().Add(o.wait)
	for eng.Path() == app.PathPending && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
		if err := step(); err != nil {
			return err
		}
	}
	for i := 0; i < o.frames; i++ {
		clk.Advance(time.Second / 60)
		if err := step(); err != nil {
			return err
		}
	}

	pix, pw, ph, ok := hal.Snapshot(h)
	if !ok || pw <= 0 || ph <= 0 {
		return fmt.Errorf("snap: %w", hal.ErrNoSurface)
	}
	img := &image.RGBA{Pix: pix, Stride: pw * 4, Rect: image.Rect(0, 0, pw, ph)}
	f, err := os.Create(o.out)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	t := eng.Tier()
	fmt.Fprintf(w, "%s %s %dx%d  tier %s  path %s  gen %d\n",
		good.Sprint("wrote"), o.out, pw, ph, brand.Sprint(t.Name), eng.Path(), eng.Generation())
	return nil
}
