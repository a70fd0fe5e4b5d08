package main

import (
	"fmt"
	"strconv"
	"strings"

	"backdrop/hal"
	"backdrop/internal/buildinfo"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	brand  = color.New(color.FgHiCyan, color.Bold)
	subtle = color.New(color.FgHiBlack)
	good   = color.New(color.FgGreen)
	warn   = color.New(color.FgYellow)
)

// envFlags are the probe overrides shared by every subcommand.
type envFlags struct {
	cores   int
	dpr     float64
	reduced string
	network string
	mobile  string
}

var env envFlags

var rootCmd = &cobra.Command{
	Use:           "backdropctl",
	Short:         "backdropctl inspects and renders the network backdrop",
	Version:       buildinfo.Short(),
	SilenceUsage:  true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&env.cores, "cores", 0, "pin the probed core count (0 = detect)")
	pf.Float64Var(&env.dpr, "dpr", 0, "pin the probed device pixel ratio (0 = detect)")
	pf.StringVar(&env.reduced, "reduced-motion", "", "pin the reduced-motion preference (true/false)")
	pf.StringVar(&env.network, "network", "", "pin the network type (4g, 3g, 2g, slow-2g)")
	pf.StringVar(&env.mobile, "mobile", "", "pin the mobile hint (true/false)")

	rootCmd.AddCommand(
		probeCmd(),
		tiersCmd(),
		snapCmd(),
	)
}

func (f envFlags) overrides() (hal.EnvOverrides, error) {
	o := hal.EnvOverrides{Concurrency: f.cores, DevicePixelRatio: f.dpr, NetworkType: f.network}
	var err error
	if o.ReducedMotion, err = optBool("reduced-motion", f.reduced); err != nil {
		return o, err
	}
	if o.Mobile, err = optBool("mobile", f.mobile); err != nil {
		return o, err
	}
	return o, nil
}

func optBool(name, v string) (*bool, error) {
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &b, nil
}

func yesNo(b bool) string {
	if b {
		return good.Sprint("yes")
	}
	return subtle.Sprint("no")
}
