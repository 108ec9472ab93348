// Package engine defines the analysis engine contract and runs engine
// instances on a dedicated background goroutine.
//
// The engine handle is exclusively owned by that goroutine: it is
// constructed there, called there, and dropped there. The rest of the
// daemon interacts with it only through Host messages, and observes
// health only through the Lifecycle state machine.
package engine

import (
	"proofd/internal/lint"
)

// Engine produces findings from text. Implementations are pluggable.
//
// Contract: no call may take the process down. Implementations should
// degrade internally where they can; the Host additionally recovers
// panics and flips the engine degraded, so a misbehaving plug-in costs
// one pass, not the daemon.
type Engine interface {
	// Lint analyzes text and returns findings with spans in rune
	// offsets. A degraded engine returns nil.
	Lint(text string) []lint.Finding

	// AddWord registers a word as known, suppressing future findings.
	AddWord(word string)

	// RemoveWord forgets a previously added word.
	RemoveWord(word string)

	// Degraded reports whether the engine failed internally and is now
	// an inert shell that always returns empty results.
	Degraded() bool
}

// Factory constructs an engine. An error, or an engine that reports
// Degraded immediately after construction, counts as a degraded
// construction attempt and feeds the Lifecycle retry schedule.
type Factory func() (Engine, error)
