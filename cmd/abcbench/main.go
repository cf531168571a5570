// Package main provides the CLI entry point for abcbench, a harness that
// drives the ABC synthesis tool over a benchmark suite and tabulates its
// size, depth and timing reports.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	root := newRootCmd(logger, level)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("abcbench failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "abcbench",
		Short: "Benchmark harness for the ABC logic synthesis tool",
		Long: `abcbench runs ABC over a list of AIG benchmarks and fraig modes,
extracts and/level counts and elapsed times from its output, and writes
them to a results table. It can also build a structural-choice library
by replaying a fixed recipe over a benchmark list.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				level.Set(slog.LevelDebug)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "",
		"Path to a YAML config file (default: $ABCBENCH_CONFIG or ./abcbench.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false,
		"Log debug output, including every ABC script")

	root.AddCommand(newRunCmd(logger))
	root.AddCommand(newGenlibCmd(logger))
	root.AddCommand(newParseCmd())

	return root
}
