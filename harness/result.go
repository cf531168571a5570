// Package harness runs the ABC binary on a command script and captures
// what it prints.
package harness

import "time"

// Output is what a single ABC invocation produced.
type Output struct {
	Text string
	Wall time.Duration
}
