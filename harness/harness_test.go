package harness

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const fakeABC = `#!/bin/sh
case "$2" in
  *hang*) exec sleep 10 ;;
  *fail*) echo "partial"; exit 3 ;;
  *printenv*) echo "seed=$ABC_SEED"; exit 0 ;;
esac
echo "ABC command line: \"$2\""
echo "and = 120 lev = 6"
echo "not for stdout" >&2
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFakeABC(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	path := filepath.Join(t.TempDir(), "abc")
	if err := os.WriteFile(path, []byte(fakeABC), 0o755); err != nil {
		t.Fatalf("write fake abc: %v", err)
	}

	return path
}

func TestRunCapturesStdout(t *testing.T) {
	r := NewRunner(writeFakeABC(t), nil, discardLogger())

	out, err := r.Run(context.Background(), "&r x.aig; &ps", time.Minute)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(out.Text, `ABC command line: "&r x.aig; &ps"`) {
		t.Errorf("script not passed as single -c argument: %q", out.Text)
	}
	if !strings.Contains(out.Text, "and = 120 lev = 6") {
		t.Errorf("missing stats line: %q", out.Text)
	}
	if strings.Contains(out.Text, "not for stdout") {
		t.Error("stderr leaked into captured output")
	}
	if out.Wall <= 0 {
		t.Errorf("wall = %v, want > 0", out.Wall)
	}
}

func TestRunTimeout(t *testing.T) {
	r := NewRunner(writeFakeABC(t), nil, discardLogger())

	start := time.Now()
	_, err := r.Run(context.Background(), "hang", 100*time.Millisecond)

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("timeout took %v", time.Since(start))
	}
}

func TestRunFailureIsNotTimeout(t *testing.T) {
	r := NewRunner(writeFakeABC(t), nil, discardLogger())

	_, err := r.Run(context.Background(), "fail", time.Minute)
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("non-zero exit reported as timeout")
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want *exec.ExitError", err)
	}
	if exitErr.ExitCode() != 3 {
		t.Errorf("exit code = %d, want 3", exitErr.ExitCode())
	}
}

func TestRunNoTimeout(t *testing.T) {
	r := NewRunner(writeFakeABC(t), nil, discardLogger())

	if _, err := r.Run(context.Background(), "&ps", 0); err != nil {
		t.Fatalf("Run without timeout failed: %v", err)
	}
}

func TestRunParentCancelled(t *testing.T) {
	r := NewRunner(writeFakeABC(t), nil, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, "&ps", time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunMissingBinary(t *testing.T) {
	r := NewRunner(filepath.Join(t.TempDir(), "nope"), nil, discardLogger())

	_, err := r.Run(context.Background(), "&ps", time.Minute)
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("missing binary reported as timeout")
	}
}

func TestResolveBinary(t *testing.T) {
	if got := ResolveBinary("/src/abc", ""); got != "/src/abc/abc" {
		t.Errorf("ResolveBinary default = %q", got)
	}
	if got := ResolveBinary("/src/abc", "abc_pure"); got != "/src/abc/abc_pure" {
		t.Errorf("ResolveBinary abc_pure = %q", got)
	}
}

func TestBuild(t *testing.T) {
	if _, err := exec.LookPath("make"); err != nil {
		t.Skip("make not available")
	}

	dir := t.TempDir()
	makefile := "abc:\n\tprintf '#!/bin/sh\\n' > abc\n\tchmod +x abc\n"
	if err := os.WriteFile(filepath.Join(dir, "Makefile"), []byte(makefile), 0o644); err != nil {
		t.Fatalf("write Makefile: %v", err)
	}

	bin, err := Build(context.Background(), discardLogger(), dir, "")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if bin != filepath.Join(dir, "abc") {
		t.Errorf("binary = %q", bin)
	}
}

func TestBuildMissingTarget(t *testing.T) {
	if _, err := exec.LookPath("make"); err != nil {
		t.Skip("make not available")
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Makefile"), []byte("all:\n\ttrue\n"), 0o644); err != nil {
		t.Fatalf("write Makefile: %v", err)
	}

	if _, err := Build(context.Background(), discardLogger(), dir, "abc"); err == nil {
		t.Error("expected error for missing make target")
	}
}

func TestRunPassesEnv(t *testing.T) {
	r := NewRunner(writeFakeABC(t), []string{"ABC_SEED=7"}, discardLogger())

	out, err := r.Run(context.Background(), "printenv", time.Minute)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if strings.TrimSpace(out.Text) != "seed=7" {
		t.Errorf("output = %q, want seed=7", out.Text)
	}
}
