// Package sweep runs ABC over every (benchmark, mode) combination in order
// and collects one row per run.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/xid"

	"github.com/weiihann/abcbench/abclog"
	"github.com/weiihann/abcbench/harness"
	"github.com/weiihann/abcbench/recipe"
)

// Executor runs one ABC script. *harness.Runner satisfies it.
type Executor interface {
	Run(ctx context.Context, script string, timeout time.Duration) (*harness.Output, error)
}

// Observer is told about every finished row.
type Observer interface {
	Observe(row Row)
}

// Config describes one sweep.
type Config struct {
	BenchmarkDir    string
	Extension       string
	Benchmarks      []string
	Modes           []string
	Script          string
	Timeout         time.Duration
	ContinueOnError bool
	Retries         int
	RetryInterval   time.Duration
}

// Sweep iterates benchmarks (outer) and modes (inner) sequentially.
type Sweep struct {
	ID         string
	cfg        Config
	exec       Executor
	builder    *recipe.Builder
	transcript io.Writer
	observer   Observer
	logger     *slog.Logger
}

// New prepares a sweep. ABC output is copied line by line to transcript,
// which may be nil.
func New(
	cfg Config,
	exec Executor,
	transcript io.Writer,
	logger *slog.Logger,
) (*Sweep, error) {
	if cfg.Extension == "" {
		cfg.Extension = recipe.DefaultExtension
	}

	builder, err := recipe.NewBuilder(cfg.Script)
	if err != nil {
		return nil, err
	}

	id := xid.New().String()

	return &Sweep{
		ID:         id,
		cfg:        cfg,
		exec:       exec,
		builder:    builder,
		transcript: transcript,
		logger:     logger.With(slog.String("run_id", id)),
	}, nil
}

// SetObserver registers o to receive each row as it is appended.
func (s *Sweep) SetObserver(o Observer) {
	s.observer = o
}

// Run executes every combination and returns the rows in iteration order.
// A timeout is recorded and the sweep continues. Any other failure stops
// the sweep unless ContinueOnError is set; the rows gathered so far are
// returned alongside the error.
func (s *Sweep) Run(ctx context.Context) ([]Row, error) {
	rows := make([]Row, 0, len(s.cfg.Benchmarks)*len(s.cfg.Modes))

	s.logger.InfoContext(ctx, "starting sweep",
		slog.Int("benchmarks", len(s.cfg.Benchmarks)),
		slog.Int("modes", len(s.cfg.Modes)),
		slog.Duration("timeout", s.cfg.Timeout),
	)

	for _, name := range s.cfg.Benchmarks {
		path := recipe.BenchmarkPath(s.cfg.BenchmarkDir, name, s.cfg.Extension)

		for _, mode := range s.cfg.Modes {
			if err := ctx.Err(); err != nil {
				return rows, err
			}

			row, err := s.runOne(ctx, name, path, mode)
			if err != nil {
				return rows, fmt.Errorf("run %s %s: %w", name, ModeLabel(mode), err)
			}

			rows = append(rows, row)

			if s.observer != nil {
				s.observer.Observe(row)
			}
		}
	}

	s.logger.InfoContext(ctx, "sweep complete", slog.Int("rows", len(rows)))

	return rows, nil
}

func (s *Sweep) runOne(
	ctx context.Context,
	name, path, mode string,
) (Row, error) {
	logger := s.logger.With(
		slog.String("benchmark", name),
		slog.String("mode", ModeLabel(mode)),
	)

	script, err := s.builder.Script(path, mode)
	if err != nil {
		return Row{}, err
	}

	logger.InfoContext(ctx, "running case", slog.String("path", path))

	out, err := s.execute(ctx, logger, script)

	switch {
	case err == nil:

	case errors.Is(err, harness.ErrTimeout):
		logger.WarnContext(ctx, "case timed out", slog.Duration("timeout", s.cfg.Timeout))

		return sentinelRow(name, mode, OutcomeTimeout), nil

	case ctx.Err() != nil:
		return Row{}, ctx.Err()

	case s.cfg.ContinueOnError:
		logger.ErrorContext(ctx, "case failed, skipping", slog.String("error", err.Error()))

		return sentinelRow(name, mode, OutcomeError), nil

	default:
		return Row{}, err
	}

	sum, err := abclog.ParseString(out.Text, s.transcript)
	if err != nil {
		return Row{}, err
	}

	row := Row{
		Benchmark: name,
		Mode:      mode,
		Stats:     sum.Stats,
		Deltas:    sum.Deltas,
		Outcome:   OutcomeOK,
		Wall:      out.Wall,
	}

	logger.InfoContext(ctx, "case finished",
		slog.Any("stats", row.Stats),
		slog.Any("time", row.Deltas),
		slog.Duration("wall_time", row.Wall),
	)

	return row, nil
}

// execute runs the script, retrying failures other than timeouts and
// cancellation up to Retries times with exponential backoff.
func (s *Sweep) execute(
	ctx context.Context,
	logger *slog.Logger,
	script string,
) (*harness.Output, error) {
	if s.cfg.Retries <= 0 {
		return s.exec.Run(ctx, script, s.cfg.Timeout)
	}

	attempt := 0
	operation := func() (*harness.Output, error) {
		attempt++

		out, err := s.exec.Run(ctx, script, s.cfg.Timeout)
		if err == nil {
			return out, nil
		}

		if errors.Is(err, harness.ErrTimeout) || ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}

		logger.WarnContext(ctx, "abc failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)

		return nil, err
	}

	expBackoff := backoff.NewExponentialBackOff()
	if s.cfg.RetryInterval > 0 {
		expBackoff.InitialInterval = s.cfg.RetryInterval
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(uint(s.cfg.Retries+1)),
		backoff.WithMaxElapsedTime(0),
	)
}
