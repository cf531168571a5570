package harness

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
)

// DefaultTarget is the make target that produces the abc binary.
const DefaultTarget = "abc"

// ResolveBinary returns the path make leaves the target binary at.
func ResolveBinary(srcDir, target string) string {
	if target == "" {
		target = DefaultTarget
	}

	return filepath.Join(srcDir, target)
}

// Build compiles ABC from the source tree at srcDir and returns the path
// of the resulting binary. Build output goes to stderr.
func Build(
	ctx context.Context,
	logger *slog.Logger,
	srcDir string,
	target string,
) (string, error) {
	if target == "" {
		target = DefaultTarget
	}

	binPath := ResolveBinary(srcDir, target)

	logger.InfoContext(ctx, "building abc",
		slog.String("source_dir", srcDir),
		slog.String("target", target),
	)

	cmd := exec.CommandContext(
		ctx, "make", "-j"+strconv.Itoa(runtime.NumCPU()), target,
	)
	cmd.Dir = srcDir
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("build %s: %w", target, err)
	}

	if _, err := os.Stat(binPath); err != nil {
		return "", fmt.Errorf(
			"build %s: binary not found at %s", target, binPath,
		)
	}

	logger.InfoContext(ctx, "abc built", slog.String("binary", binPath))

	return binPath, nil
}
