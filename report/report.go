// Package report renders sweep rows as CSV, markdown, JSON or YAML.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/weiihann/abcbench/sweep"
)

// Formats lists the accepted output formats.
var Formats = []string{"csv", "markdown", "json", "yaml"}

// Extension returns the file extension conventionally used for format.
func Extension(format string) string {
	switch format {
	case "markdown", "md":
		return ".md"
	case "json":
		return ".json"
	case "yaml", "yml":
		return ".yaml"
	default:
		return ".csv"
	}
}

// Document is the structured form written by the JSON and YAML renderers.
type Document struct {
	RunID string      `json:"run_id" yaml:"run_id"`
	Rows  []sweep.Row `json:"rows" yaml:"rows"`
}

// Write renders rows in the named format.
func Write(w io.Writer, format, runID string, rows []sweep.Row) error {
	switch format {
	case "", "csv":
		return WriteCSV(w, rows)
	case "markdown", "md":
		return Generate(w, rows)
	case "json":
		return GenerateJSON(w, runID, rows)
	case "yaml", "yml":
		return GenerateYAML(w, runID, rows)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// WriteCSV writes the table with its header row.
func WriteCSV(w io.Writer, rows []sweep.Row) error {
	t := NewTable(rows)

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if err := cw.WriteAll(t.Cells); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	return nil
}

// Generate writes a markdown table for the given rows.
func Generate(w io.Writer, rows []sweep.Row) error {
	if len(rows) == 0 {
		return fmt.Errorf("no results to report")
	}

	t := NewTable(rows)

	fmt.Fprintln(w, "## Fraig Results")
	fmt.Fprintln(w)

	if n := countOutcome(rows, sweep.OutcomeTimeout); n > 0 {
		fmt.Fprintf(w, "Timeouts: **%d**\n\n", n)
	}
	if n := countOutcome(rows, sweep.OutcomeError); n > 0 {
		fmt.Fprintf(w, "Failures: **%d**\n\n", n)
	}

	fmt.Fprintln(w, "| "+strings.Join(t.Header, " | ")+" | reduction | wall |")

	sep := make([]string, len(t.Header)+2)
	for i := range sep {
		sep[i] = "---"
	}
	fmt.Fprintln(w, "|"+strings.Join(sep, "|")+"|")

	for i, line := range t.Cells {
		cells := make([]string, len(line))
		for j, c := range line {
			if c == "" {
				c = "-"
			}
			cells[j] = c
		}

		fmt.Fprintf(w, "| %s | %s | %s |\n",
			strings.Join(cells, " | "),
			formatReduction(rows[i]),
			formatWall(rows[i].Wall),
		)
	}

	return nil
}

// GenerateJSON writes rows as JSON to w.
func GenerateJSON(w io.Writer, runID string, rows []sweep.Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(Document{RunID: runID, Rows: rows})
}

// GenerateYAML writes rows as YAML to w.
func GenerateYAML(w io.Writer, runID string, rows []sweep.Row) error {
	out, err := yaml.Marshal(Document{RunID: runID, Rows: rows})
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	_, err = w.Write(out)

	return err
}

func countOutcome(rows []sweep.Row, o sweep.Outcome) int {
	n := 0
	for _, r := range rows {
		if r.Outcome == o {
			n++
		}
	}

	return n
}

// formatReduction reports the last and count against the first one.
func formatReduction(r sweep.Row) string {
	if r.Outcome != sweep.OutcomeOK || len(r.Stats) < 4 || r.Stats[0] == 0 {
		return "-"
	}

	last := r.Stats[len(r.Stats)-2]
	pct := 100 * float64(r.Stats[0]-last) / float64(r.Stats[0])

	return fmt.Sprintf("%.2f%%", pct)
}

func formatWall(d time.Duration) string {
	if d <= 0 {
		return "-"
	}

	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}

	return fmt.Sprintf("%.2fs", float64(ms)/1000)
}
