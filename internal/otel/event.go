// Package otel provides structured observability for proofd.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain
// goroutine. An optional RingBuffer provides live in-memory inspection
// for the status TUI's event feed.
//
// Events carry counts, generations, and categories. They never carry
// the text being proofread.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Analysis pass events
	KindPassStart   EventKind = "pass.start"
	KindPassEmpty   EventKind = "pass.empty"   // no snapshot or empty text
	KindPassStale   EventKind = "pass.stale"   // result discarded by generation check
	KindPassPublish EventKind = "pass.publish" // annotations handed to renderer
	KindPassSkipped EventKind = "pass.skipped" // suppression flag set

	// Engine lifecycle events
	KindEngineReady    EventKind = "engine.ready"
	KindEngineDegraded EventKind = "engine.degraded"
	KindEngineRetry    EventKind = "engine.retry"
	KindEngineFailed   EventKind = "engine.failed"
	KindEnginePanic    EventKind = "engine.panic"

	// Spatial mapping events
	KindMapFallback EventKind = "map.fallback" // coarser bounds strategy used
	KindMapDropped  EventKind = "map.dropped"  // annotation dropped, no bounds

	// Correction events
	KindCorrectStrategy EventKind = "correct.strategy"
	KindCorrectFailed   EventKind = "correct.failed"

	// Dictionary events
	KindDictAdd    EventKind = "dict.add"
	KindDictReload EventKind = "dict.reload"

	// Store events
	KindStoreError EventKind = "store.error"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"
)

// Event is the universal observability record. Every field except Kind
// and Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // component: "coord", "engine", "spatial", "main"
	SessionID string         `json:"session_id,omitempty"` // random hex, same for entire app run
	Gen       uint64         `json:"gen,omitempty"`        // analysis pass generation
	Dur       time.Duration  `json:"-"`                    // not serialized directly
	DurMs     float64        `json:"dur_ms,omitempty"`     // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`      // findings, annotations, words
	Category  string         `json:"category,omitempty"`   // finding category
	Strategy  int            `json:"strategy,omitempty"`   // correction strategy index (1-based)
	State     string         `json:"state,omitempty"`      // engine state name
	Retry     int            `json:"retry,omitempty"`      // engine retry counter
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`   // free text, never user content
	Extra     map[string]any `json:"extra,omitempty"` // escape hatch for unusual fields
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
