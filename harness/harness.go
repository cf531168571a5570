package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// ErrTimeout is returned when ABC does not finish within the run timeout.
var ErrTimeout = errors.New("abc timed out")

// waitDelay bounds how long Run waits for output pipes after killing ABC.
const waitDelay = 5 * time.Second

// Runner launches the ABC binary.
type Runner struct {
	BinaryPath string
	Env        []string
	Logger     *slog.Logger
}

// NewRunner creates a Runner for the binary at binaryPath. Env is
// appended to the inherited environment.
func NewRunner(binaryPath string, env []string, logger *slog.Logger) *Runner {
	return &Runner{
		BinaryPath: binaryPath,
		Env:        env,
		Logger:     logger.With(slog.String("abc", binaryPath)),
	}
}

// Run executes `abc -c script` and returns its standard output. Standard
// error is discarded. A timeout of zero or less disables the deadline.
// When the deadline passes the returned error wraps ErrTimeout; any other
// failure, including a non-zero exit, is returned wrapped as is.
func (r *Runner) Run(
	ctx context.Context,
	script string,
	timeout time.Duration,
) (*Output, error) {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, r.BinaryPath, "-c", script)
	cmd.WaitDelay = waitDelay

	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	r.Logger.Debug("starting abc", slog.String("script", script))

	wallStart := time.Now()
	err := cmd.Run()
	wallElapsed := time.Since(wallStart)

	if err != nil {
		if ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, fmt.Errorf("abc failed: %w", err)
	}

	r.Logger.Debug("abc finished", slog.Duration("wall_time", wallElapsed))

	return &Output{Text: stdout.String(), Wall: wallElapsed}, nil
}
