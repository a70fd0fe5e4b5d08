package main

import (
	"fmt"
	"io"
	"strings"

	"backdrop/config"
	"backdrop/netfield/tier"

	"github.com/spf13/cobra"
)

func tiersCmd() *cobra.Command {
	var cfgPath string
	c := &cobra.Command{
		Use:   "tiers",
		Short: "Print the quality tier table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := tier.DefaultTable
			if cfgPath != "" {
				file, err := config.Load(cfgPath)
				if err != nil {
					return err
				}
				if table, err = file.Table(table); err != nil {
					return err
				}
			}
			printTiers(cmd.OutOrStdout(), table)
			return nil
		},
	}
	c.Flags().StringVar(&cfgPath, "config", "", "apply the [tiers] overrides of a TOML config file")
	return c
}

func printTiers(w io.Writer, tb tier.Table) {
	headers := []string{"TIER", "NODES", "CONNS", "DISTANCE", "FPS"}
	rows := [][]string{}
	for _, n := range []tier.Name{tier.Low, tier.Medium, tier.High} {
		t := tb.Get(n)
		rows = append(rows, []string{
			n.String(),
			fmt.Sprint(t.NodeCount),
			fmt.Sprint(t.MaxConnections),
			fmt.Sprintf("%.0f", t.ConnectionDistance),
			fmt.Sprint(t.TargetFPS),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}
	line := func(cells []string) string {
		var b strings.Builder
		b.WriteString("  ")
		for i, c := range cells {
			fmt.Fprintf(&b, "%-*s  ", widths[i], c)
		}
		return b.String()
	}
	subtle.Fprintln(w, line(headers))
	for _, row := range rows {
		fmt.Fprintln(w, line(row))
	}
}
