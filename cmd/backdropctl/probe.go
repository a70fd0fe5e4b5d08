package main

import (
	"fmt"
	"io"

	"backdrop/config"
	"backdrop/hal"
	"backdrop/netfield/probe"
	"backdrop/netfield/tier"
	"backdrop/netfield/viewport"

	"github.com/spf13/cobra"
)

func probeCmd() *cobra.Command {
	var cfgPath string
	c := &cobra.Command{
		Use:   "probe",
		Short: "Print the capability snapshot and the tier it selects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := env.overrides()
			if err != nil {
				return err
			}
			table := tier.DefaultTable
			var forced *tier.Name
			if cfgPath != "" {
				file, err := config.Load(cfgPath)
				if err != nil {
					return err
				}
				o = file.Overlay(o)
				if table, err = file.Table(table); err != nil {
					return err
				}
				if n, ok := file.Forced(); ok {
					forced = &n
				}
			}
			h := hal.New(hal.Options{Env: o, Log: io.Discard})
			snap := probe.Probe(h.Env())
			t := table.Select(snap)
			if forced != nil {
				t = table.Get(*forced)
			}
			printProbe(cmd.OutOrStdout(), snap, t, forced != nil)
			return nil
		},
	}
	c.Flags().StringVar(&cfgPath, "config", "", "apply a TOML config file")
	return c
}

func printProbe(w io.Writer, s probe.Snapshot, t tier.Tier, forced bool) {
	fmt.Fprintf(w, "%s %s\n\n", brand.Sprint("backdrop"), subtle.Sprint("capability probe"))
	fmt.Fprintf(w, "  Concurrency:    %d\n", s.Concurrency)
	fmt.Fprintf(w, "  Pixel ratio:    %.2f\n", s.DevicePixelRatio)
	fmt.Fprintf(w, "  Network:        %s\n", s.Speed)
	fmt.Fprintf(w, "  Reduced motion: %s\n", yesNo(s.ReducedMotion))
	fmt.Fprintf(w, "  Mobile:         %s\n", yesNo(s.IsMobile))
	fmt.Fprintf(w, "  High end:       %s\n", yesNo(s.IsHighEnd))
	fmt.Fprintf(w, "  Low end:        %s\n", yesNo(s.IsLowEnd))
	if s.Degraded {
		fmt.Fprintf(w, "  %s\n", warn.Sprint("some signals unavailable; conservative defaults used"))
	}
	fmt.Fprintln(w)
	how := "selected"
	if forced {
		how = "forced"
	}
	fmt.Fprintf(w, "  Tier:           %s %s\n", brand.Sprint(t.Name), subtle.Sprintf("(%s)", how))
	fmt.Fprintf(w, "  Nodes:          %d\n", t.NodeCount)
	fmt.Fprintf(w, "  Connections:    %d within %.0fpx\n", t.MaxConnections, t.ConnectionDistance)
	fmt.Fprintf(w, "  Frame rate:     %d fps\n", t.TargetFPS)
	fmt.Fprintf(w, "  DPR cap:        %.0f\n", viewport.DPRCap(t.Name))
}
