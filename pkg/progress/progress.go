// Package progress defines the sink the core reports scan and execution
// progress to, plus a console implementation. The sink owns all terminal
// rendering; reporting is cosmetic and never affects sync correctness.
package progress

// IndeterminatePercent is passed when the total amount of work is not
// known yet (e.g. while a directory walk is still discovering entries).
const IndeterminatePercent = -1

// Sink receives a percentage (0-100, or IndeterminatePercent) and a
// short label per unit of work. Implementations must be safe for
// concurrent use; the source and target scans of a pair report to the
// same sink in parallel.
type Sink interface {
	Report(percent int, label string)
	// Done clears any live rendering once a phase completes.
	Done()
}

// Nop discards all progress reports.
type Nop struct{}

func (Nop) Report(int, string) {}
func (Nop) Done()              {}
