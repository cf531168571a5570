package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/weiihann/abcbench/config"
	"github.com/weiihann/abcbench/harness"
	"github.com/weiihann/abcbench/metrics"
	"github.com/weiihann/abcbench/report"
	"github.com/weiihann/abcbench/sweep"
)

func addABCFlags(flags *pflag.FlagSet) {
	flags.String("abc-bin", "", "Path to the abc binary")
	flags.String("abc-src", "",
		"ABC source tree, used with --build")
	flags.StringArray("abc-env", nil,
		"KEY=VALUE added to the environment abc runs in (repeatable)")
	flags.Bool("build", false,
		"Build abc from --abc-src before running")
	flags.String("benchmark-dir", "",
		"Directory holding the benchmark circuits")
	flags.String("benchmark-ext", "",
		"Extension appended to benchmark names (default .aig)")
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run ABC over every benchmark and fraig mode",
		Long: `Run ABC once per (benchmark, mode) pair, in order, and write one row
per run to the results table. A run that exceeds the timeout is recorded
with zero stats and a "timeout" time cell; the sweep continues.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			build, _ := cmd.Flags().GetBool("build")

			return runSweep(cmd.Context(), logger, cfg, build)
		},
	}

	flags := cmd.Flags()
	addABCFlags(flags)
	flags.StringSlice("benchmarks", nil,
		"Benchmark names (e.g. sixteen,twenty,twentythree)")
	flags.StringSlice("modes", nil,
		`Fraig flags to try per benchmark; an empty entry is the default mode (default ",-c,-x")`)
	flags.String("bench-script", "",
		"ABC script template with {{.Path}} and {{.Mode}}")
	flags.Duration("timeout", 0,
		"Per-run timeout, 0 disables it (default 5m)")
	flags.Bool("continue-on-error", false,
		"Record a failed run and keep going instead of stopping")
	flags.Int("retries", 0,
		"Retries for runs that fail for reasons other than a timeout")
	flags.Duration("retry-interval", 0,
		"Initial backoff between retries (default 1s)")
	flags.String("result-dir", "",
		"Directory for the log, results and metrics files")
	flags.String("log-file", "",
		"Transcript of every ABC output line (default log.txt)")
	flags.String("results-file", "",
		"Results table (default run_abc_stats plus the format's extension)")
	flags.String("metrics-file", "",
		"Write Prometheus text-format metrics here")
	flags.String("format", "",
		"Results format: csv, markdown, json, yaml (default csv)")

	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// prepareBinary builds abc when asked to and returns the binary to run.
func prepareBinary(
	ctx context.Context,
	logger *slog.Logger,
	cfg *config.Config,
	build bool,
) (string, error) {
	if !build {
		return cfg.ABCBin, nil
	}

	if cfg.ABCSrc == "" {
		return "", fmt.Errorf("--build needs abc_src to be set")
	}

	return harness.Build(ctx, logger, cfg.ABCSrc, filepath.Base(cfg.ABCBin))
}

func runSweep(
	ctx context.Context,
	logger *slog.Logger,
	cfg *config.Config,
	build bool,
) error {
	if len(cfg.Benchmarks) == 0 {
		logger.WarnContext(ctx, "no benchmarks configured, table will be empty")
	}

	binPath, err := prepareBinary(ctx, logger, cfg, build)
	if err != nil {
		return err
	}

	if cfg.ResultDir != "" {
		if err := os.MkdirAll(cfg.ResultDir, 0o755); err != nil {
			return fmt.Errorf("create result dir: %w", err)
		}
	}

	logPath := cfg.Resolve(cfg.LogFile)

	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("create log file: %w", err)
	}
	defer logFile.Close()

	runner := harness.NewRunner(binPath, cfg.ABCEnv, logger)

	s, err := sweep.New(sweep.Config{
		BenchmarkDir:    cfg.BenchmarkDir,
		Extension:       cfg.BenchmarkExt,
		Benchmarks:      cfg.Benchmarks,
		Modes:           cfg.Modes,
		Script:          cfg.BenchScript,
		Timeout:         cfg.Timeout,
		ContinueOnError: cfg.ContinueOnError,
		Retries:         cfg.Retries,
		RetryInterval:   cfg.RetryInterval,
	}, runner, io.MultiWriter(os.Stdout, logFile), logger)
	if err != nil {
		return err
	}

	collector := metrics.New(s.ID)
	s.SetObserver(collector)

	rows, err := s.Run(ctx)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	resultsPath := cfg.Resolve(cfg.ResultsFile)
	if err := writeResults(resultsPath, cfg.Format, s.ID, rows); err != nil {
		return err
	}

	if len(rows) > 0 {
		if err := report.Generate(os.Stdout, rows); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	if cfg.MetricsFile != "" {
		if err := collector.WriteFile(cfg.Resolve(cfg.MetricsFile)); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "benchmark complete",
		slog.String("run_id", s.ID),
		slog.String("results", resultsPath),
		slog.String("log", logPath),
	)

	return logFile.Close()
}

func writeResults(path, format, runID string, rows []sweep.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}

	if err := report.Write(f, format, runID, rows); err != nil {
		f.Close()

		return fmt.Errorf("write results: %w", err)
	}

	return f.Close()
}
