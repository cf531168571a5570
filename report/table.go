package report

import (
	"slices"
	"strconv"

	"github.com/weiihann/abcbench/sweep"
)

// BaseHeader is the column schema of a run whose output held two stats
// lines and two time markers.
var BaseHeader = []string{
	"benchmark", "ori_and", "ori_level", "fr_and", "fr_level", "time", "sat_type",
}

const (
	baseStatCols = 4
	baseTimeCols = 1
)

// Table is a rectangular rendering of sweep rows. Runs that printed more
// stats lines or time markers than the base schema widen the header;
// shorter rows are padded with empty cells.
type Table struct {
	Header []string
	Cells  [][]string
}

// NewTable lays out rows in order.
func NewTable(rows []sweep.Row) *Table {
	statCols, timeCols := baseStatCols, baseTimeCols

	for _, r := range rows {
		statCols = max(statCols, len(r.Stats)+len(r.Stats)%2)
		timeCols = max(timeCols, len(r.TimeCells()))
	}

	t := &Table{
		Header: header(statCols, timeCols),
		Cells:  make([][]string, 0, len(rows)),
	}

	for _, r := range rows {
		line := make([]string, 0, len(t.Header))
		line = append(line, r.Benchmark)
		line = appendPadded(line, r.StatCells(), statCols)
		line = appendPadded(line, r.TimeCells(), timeCols)
		line = append(line, r.ModeLabel())

		t.Cells = append(t.Cells, line)
	}

	return t
}

func header(statCols, timeCols int) []string {
	// BaseHeader is benchmark, four stat columns, time, sat_type.
	h := slices.Clone(BaseHeader[:1+baseStatCols])

	for pair := 3; 2*pair <= statCols; pair++ {
		n := strconv.Itoa(pair)
		h = append(h, "and_"+n, "level_"+n)
	}

	h = append(h, BaseHeader[1+baseStatCols])
	for i := 2; i <= timeCols; i++ {
		h = append(h, "time_"+strconv.Itoa(i))
	}

	return append(h, BaseHeader[len(BaseHeader)-1])
}

func appendPadded(dst, cells []string, width int) []string {
	dst = append(dst, cells...)
	for i := len(cells); i < width; i++ {
		dst = append(dst, "")
	}

	return dst
}
