// Command arenaviz renders scripted arena ticks to PNG snapshots for
// visual debugging of map loads and subsystem behavior.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "arenaviz",
	Short:   "Render scripted arena ticks to PNG for visual debugging",
	Version: version,
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
