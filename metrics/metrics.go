// Package metrics exports sweep rows in the Prometheus text format so a
// node_exporter textfile collector can pick them up.
package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/weiihann/abcbench/sweep"
)

const namespace = "abcbench"

// Collector holds the gauges for one sweep. It implements sweep.Observer.
type Collector struct {
	registry *prometheus.Registry

	andNodes *prometheus.GaugeVec
	levels   *prometheus.GaugeVec
	stage    *prometheus.GaugeVec
	wall     *prometheus.GaugeVec
	runs     *prometheus.CounterVec
}

// New creates a Collector with its own registry. runID is attached to
// every series as a constant label.
func New(runID string) *Collector {
	constLabels := prometheus.Labels{"run_id": runID}
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		andNodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "and_nodes",
			Help:        "AND node count reported by ABC.",
			ConstLabels: constLabels,
		}, []string{"benchmark", "mode", "stage"}),
		levels: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "levels",
			Help:        "Logic depth reported by ABC.",
			ConstLabels: constLabels,
		}, []string{"benchmark", "mode", "stage"}),
		stage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "stage_seconds",
			Help:        "Seconds between the first time marker and each later one.",
			ConstLabels: constLabels,
		}, []string{"benchmark", "mode", "stage"}),
		wall: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "wall_seconds",
			Help:        "Wall-clock duration of the ABC process.",
			ConstLabels: constLabels,
		}, []string{"benchmark", "mode"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "runs_total",
			Help:        "ABC invocations by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
	}

	reg.MustRegister(c.andNodes, c.levels, c.stage, c.wall, c.runs)

	return c
}

// Observe records a finished row.
func (c *Collector) Observe(row sweep.Row) {
	mode := row.ModeLabel()

	c.runs.WithLabelValues(string(row.Outcome)).Inc()

	if row.Outcome != sweep.OutcomeOK {
		return
	}

	for i := 0; i+1 < len(row.Stats); i += 2 {
		stage := stageName(i / 2)
		c.andNodes.WithLabelValues(row.Benchmark, mode, stage).Set(float64(row.Stats[i]))
		c.levels.WithLabelValues(row.Benchmark, mode, stage).Set(float64(row.Stats[i+1]))
	}

	for i, d := range row.Deltas {
		c.stage.WithLabelValues(row.Benchmark, mode, strconv.Itoa(i+1)).Set(d)
	}

	c.wall.WithLabelValues(row.Benchmark, mode).Set(row.Wall.Seconds())
}

// WriteFile writes the current values to path atomically.
func (c *Collector) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}

	return nil
}

func stageName(pair int) string {
	switch pair {
	case 0:
		return "ori"
	case 1:
		return "fr"
	default:
		return strconv.Itoa(pair + 1)
	}
}
