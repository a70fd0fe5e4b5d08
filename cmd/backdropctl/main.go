// Command backdropctl inspects what the engine would do on this machine and
// renders headless snapshots.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
