// Package abclog classifies lines printed by ABC and extracts elapsed-time
// deltas and (and, lev) pairs from them.
package abclog

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ElapseMarker is the literal ABC prints on every "time" report.
const ElapseMarker = "elapse:"

// Kind tags a classified line.
type Kind int

const (
	// Other is any line that carries nothing the harness records.
	Other Kind = iota
	// TimeMarker is an elapse line with a parseable cumulative time.
	TimeMarker
	// StatsMarker is a line reporting an and count followed by a level.
	StatsMarker
)

func (k Kind) String() string {
	switch k {
	case TimeMarker:
		return "time"
	case StatsMarker:
		return "stats"
	default:
		return "other"
	}
}

var statsPattern = regexp.MustCompile(`and.*?([0-9]+).*?lev.*?([0-9]+)`)

// Line is a classified output line. Seconds is set for TimeMarker lines,
// And and Lev for StatsMarker lines.
type Line struct {
	Kind    Kind
	Seconds float64
	And     int
	Lev     int
}

// Classify decides what a single line means. A time line carries its
// cumulative seconds in the second-to-last field; one whose field does not
// parse is treated as Other.
func Classify(line string) Line {
	if strings.Contains(line, ElapseMarker) {
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			v, err := strconv.ParseFloat(fields[len(fields)-2], 64)
			if err == nil {
				return Line{Kind: TimeMarker, Seconds: v}
			}
		}
	}

	m := statsPattern.FindStringSubmatch(line)
	if m == nil {
		return Line{Kind: Other}
	}

	and, errAnd := strconv.Atoi(m[1])
	lev, errLev := strconv.Atoi(m[2])
	if errAnd != nil || errLev != nil {
		return Line{Kind: Other}
	}

	return Line{Kind: StatsMarker, And: and, Lev: lev}
}

// Summary holds everything extracted from one ABC invocation.
type Summary struct {
	// Stats is a flat (and, lev, and, lev, ...) sequence in encounter order.
	Stats []int `json:"stats"`
	// Deltas are seconds since the first time marker, one per later marker.
	Deltas []float64 `json:"deltas"`
	// Lines counts every line read, matched or not.
	Lines int `json:"lines"`
}

// Pairs returns Stats regrouped as (and, lev) pairs.
func (s Summary) Pairs() [][2]int {
	pairs := make([][2]int, 0, len(s.Stats)/2)
	for i := 0; i+1 < len(s.Stats); i += 2 {
		pairs = append(pairs, [2]int{s.Stats[i], s.Stats[i+1]})
	}

	return pairs
}

// Parser accumulates a Summary line by line. The zero value is ready to use.
type Parser struct {
	// Tee receives every line read, newline terminated.
	Tee io.Writer

	summary  Summary
	baseline float64
	haveBase bool
}

// Feed classifies one line and records what it carries.
func (p *Parser) Feed(line string) error {
	p.summary.Lines++

	if p.Tee != nil {
		if _, err := io.WriteString(p.Tee, line+"\n"); err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
	}

	l := Classify(line)

	switch l.Kind {
	case TimeMarker:
		if !p.haveBase {
			p.baseline = l.Seconds
			p.haveBase = true

			return nil
		}

		p.summary.Deltas = append(p.summary.Deltas, l.Seconds-p.baseline)

	case StatsMarker:
		p.summary.Stats = append(p.summary.Stats, l.And, l.Lev)
	}

	return nil
}

// Summary returns what has been collected so far.
func (p *Parser) Summary() Summary {
	return p.summary
}

// Parse reads r to EOF and summarizes it.
func Parse(r io.Reader, tee io.Writer) (Summary, error) {
	p := Parser{Tee: tee}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for sc.Scan() {
		if err := p.Feed(sc.Text()); err != nil {
			return p.Summary(), err
		}
	}

	if err := sc.Err(); err != nil {
		return p.Summary(), fmt.Errorf("scan output: %w", err)
	}

	return p.Summary(), nil
}

// ParseString is Parse over captured text.
func ParseString(text string, tee io.Writer) (Summary, error) {
	return Parse(strings.NewReader(text), tee)
}
