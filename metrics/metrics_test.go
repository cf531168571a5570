package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/abcbench/sweep"
)

func TestObserve(t *testing.T) {
	c := New("r1")

	c.Observe(sweep.Row{
		Benchmark: "twenty",
		Mode:      "-c",
		Stats:     []int{500, 20, 450, 19},
		Deltas:    []float64{1.25},
		Outcome:   sweep.OutcomeOK,
		Wall:      2 * time.Second,
	})
	c.Observe(sweep.Row{
		Benchmark: "twenty",
		Mode:      "",
		Stats:     []int{0, 0, 0, 0},
		Outcome:   sweep.OutcomeTimeout,
	})

	assert.Equal(t, 500.0, testutil.ToFloat64(c.andNodes.WithLabelValues("twenty", "-c", "ori")))
	assert.Equal(t, 450.0, testutil.ToFloat64(c.andNodes.WithLabelValues("twenty", "-c", "fr")))
	assert.Equal(t, 19.0, testutil.ToFloat64(c.levels.WithLabelValues("twenty", "-c", "fr")))
	assert.Equal(t, 1.25, testutil.ToFloat64(c.stage.WithLabelValues("twenty", "-c", "1")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.wall.WithLabelValues("twenty", "-c")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues("timeout")))

	// Timed-out runs only count; their placeholder stats are not exported.
	assert.Equal(t, 1, testutil.CollectAndCount(c.wall))
}

func TestWriteFile(t *testing.T) {
	c := New("r2")
	c.Observe(sweep.Row{
		Benchmark: "sixteen",
		Stats:     []int{10, 2, 9, 2},
		Outcome:   sweep.OutcomeOK,
	})

	path := filepath.Join(t.TempDir(), "abcbench.prom")
	require.NoError(t, c.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.Contains(text, `abcbench_and_nodes{benchmark="sixteen",mode="default",run_id="r2",stage="ori"} 10`), text)
	assert.Contains(t, text, `abcbench_runs_total{outcome="ok",run_id="r2"} 1`)
}

func TestStageName(t *testing.T) {
	assert.Equal(t, "ori", stageName(0))
	assert.Equal(t, "fr", stageName(1))
	assert.Equal(t, "3", stageName(2))
}
