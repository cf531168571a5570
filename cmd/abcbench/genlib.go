package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weiihann/abcbench/config"
	"github.com/weiihann/abcbench/harness"
	"github.com/weiihann/abcbench/recipe"
)

func newGenlibCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genlib",
		Short: "Build a structural-choice library from benchmark circuits",
		Long: `Record the structures ABC produces while replaying a fixed recipe on
each library benchmark, then dump them to an AIG library file. With no
library benchmarks the library is started, dumped and stopped empty.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			build, _ := cmd.Flags().GetBool("build")

			return generateLibrary(cmd.Context(), logger, cfg, build)
		},
	}

	flags := cmd.Flags()
	addABCFlags(flags)
	flags.StringSlice("lib-benchmarks", nil,
		"Benchmark names whose structures go into the library")
	flags.String("lib-recipe", "",
		"ABC commands replayed on every library benchmark")
	flags.String("lib-name", "",
		"Library file to dump (default temp.aig)")
	flags.Duration("lib-timeout", 0,
		"Timeout for the whole library build, 0 disables it")

	return cmd
}

func generateLibrary(
	ctx context.Context,
	logger *slog.Logger,
	cfg *config.Config,
	build bool,
) error {
	binPath, err := prepareBinary(ctx, logger, cfg, build)
	if err != nil {
		return err
	}

	paths := recipe.BenchmarkPaths(cfg.BenchmarkDir, cfg.LibBenchmarks, cfg.BenchmarkExt)
	script := recipe.LibraryScript(paths, cfg.LibRecipe, cfg.LibName)

	logger.InfoContext(ctx, "building library",
		slog.String("library", cfg.LibName),
		slog.Int("benchmarks", len(paths)),
	)
	logger.DebugContext(ctx, "library script", slog.String("script", script))

	runner := harness.NewRunner(binPath, cfg.ABCEnv, logger)

	out, err := runner.Run(ctx, script, cfg.LibTimeout)
	if err != nil {
		return fmt.Errorf("generate library %s: %w", cfg.LibName, err)
	}

	logger.InfoContext(ctx, "library written",
		slog.String("library", cfg.LibName),
		slog.Int("output_lines", strings.Count(out.Text, "\n")),
		slog.Duration("wall_time", out.Wall),
	)

	return nil
}
