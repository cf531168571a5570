package sweep

import (
	"strconv"
	"time"
)

// Outcome says how a single ABC invocation ended.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeTimeout Outcome = "timeout"
	OutcomeError   Outcome = "error"
)

// DefaultModeLabel names the empty fraig flag in reports.
const DefaultModeLabel = "default"

// placeholderStats stands in for the before/after pairs of a run that
// produced no output.
var placeholderStats = []int{0, 0, 0, 0}

// Row is the record of one (benchmark, mode) run.
type Row struct {
	Benchmark string        `json:"benchmark" yaml:"benchmark"`
	Mode      string        `json:"mode" yaml:"mode"`
	Stats     []int         `json:"stats" yaml:"stats"`
	Deltas    []float64     `json:"deltas,omitempty" yaml:"deltas,omitempty"`
	Outcome   Outcome       `json:"outcome" yaml:"outcome"`
	Wall      time.Duration `json:"wall_ns" yaml:"wall_ns"`
}

func sentinelRow(benchmark, mode string, outcome Outcome) Row {
	stats := make([]int, len(placeholderStats))
	copy(stats, placeholderStats)

	return Row{
		Benchmark: benchmark,
		Mode:      mode,
		Stats:     stats,
		Outcome:   outcome,
	}
}

// ModeLabel is the mode as written to the sat_type column.
func (r Row) ModeLabel() string {
	return ModeLabel(r.Mode)
}

// ModeLabel maps a fraig flag to its report label.
func ModeLabel(mode string) string {
	if mode == "" || mode == " " {
		return DefaultModeLabel
	}

	return mode
}

// TimeCells renders the time segment: the deltas in seconds, or the
// outcome as a single sentinel cell when the run produced no output.
func (r Row) TimeCells() []string {
	if r.Outcome != OutcomeOK {
		return []string{string(r.Outcome)}
	}

	cells := make([]string, 0, len(r.Deltas))
	for _, d := range r.Deltas {
		cells = append(cells, strconv.FormatFloat(d, 'f', -1, 64))
	}

	return cells
}

// StatCells renders the stats segment.
func (r Row) StatCells() []string {
	cells := make([]string, 0, len(r.Stats))
	for _, s := range r.Stats {
		cells = append(cells, strconv.Itoa(s))
	}

	return cells
}
