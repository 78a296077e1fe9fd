package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "lyriclens",
		Short:   "LyricLens, a cached song lyrics interpretation service",
		Version: version,
	}

	root.AddCommand(
		newServeCmd(),
		newAnalyzeCmd(),
		newStatsCmd(),
		newHistoryCmd(),
		newPopularCmd(),
		newCacheCmd(),
		newMCPCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. Output goes to stderr so it never
// mixes with command output or the MCP stdio channel.
func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}
