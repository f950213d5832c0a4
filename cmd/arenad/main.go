// Command arenad hosts the arena simulation core over HTTP/WebSocket.
//
// USAGE:
//
//	arenad run --map maps/default.yaml
//	arenad validate-map maps/default.yaml
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	version = "dev"

	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:     "arenad",
	Short:   "Arena simulation host daemon",
	Long:    `arenad loads an arena map, runs the tick-driven simulation core, and exposes it over HTTP/WebSocket for a game client or test harness to drive.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", ".env file to load (default: .env in the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateMapCmd)
	rootCmd.AddCommand(replayCmd)
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		Level(level).
		With().Timestamp().Logger()
}

func main() {
	log = newLogger()
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("arenad exited with error")
		os.Exit(1)
	}
}
