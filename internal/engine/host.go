package engine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"proofd/internal/lint"
	"proofd/internal/logging"
	"proofd/internal/otel"
)

// Result is a completed lint pass, delivered to the sink tagged with
// the generation it was computed for. The coordinator performs the
// staleness check; the host never second-guesses generations.
type Result struct {
	Gen      uint64
	Findings []lint.Finding
	Ignored  int // findings suppressed by the ignore set
	Dur      time.Duration
}

// ConstructResult reports an engine construction attempt.
type ConstructResult struct {
	Ready bool
	Err   error
}

// Fault reports that a previously ready engine failed during a call.
type Fault struct{}

// job carries one lint request to the background goroutine. The ignore
// set is a point-in-time copy taken at dispatch; it is never shared
// live across the context boundary.
type job struct {
	text           string
	gen            uint64
	ignore         map[string]struct{}
	maxSuggestions int
}

type hostMsg struct {
	lint      *job
	construct bool
	addWord   string
	remove    string
}

// Host runs the engine on its own goroutine and reports outcomes to a
// sink callback. The sink is invoked from the background goroutine and
// must only enqueue (the coordinator's inbox send satisfies this).
type Host struct {
	factory Factory
	limiter *rate.Limiter
	sink    func(any)
	events  *otel.Logger

	msgs chan hostMsg
	wg   sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewHost creates a Host. maxLintPerSec bounds how often the engine is
// invoked; bursts beyond it queue rather than drop.
func NewHost(factory Factory, maxLintPerSec int, sink func(any), events *otel.Logger) *Host {
	if maxLintPerSec <= 0 {
		maxLintPerSec = 10
	}
	return &Host{
		factory: factory,
		limiter: rate.NewLimiter(rate.Limit(maxLintPerSec), maxLintPerSec),
		sink:    sink,
		events:  events,
		msgs:    make(chan hostMsg, 64),
	}
}

// Start launches the background goroutine and kicks off the first
// construction attempt. Call with a cancellable context; cancellation
// is the only stop mechanism besides Stop.
func (h *Host) Start(ctx context.Context) {
	h.startOnce.Do(func() {
		h.wg.Add(1)
		go h.run(ctx)
		h.Construct()
	})
}

// Stop closes the message channel and waits for the goroutine to exit.
func (h *Host) Stop() {
	h.stopOnce.Do(func() {
		close(h.msgs)
		h.wg.Wait()
	})
}

// Submit enqueues a lint pass. Non-blocking from the caller's view; if
// the queue is full the job is dropped, which the generation mechanism
// absorbs (the coordinator will re-request on the next quiet period).
func (h *Host) Submit(text string, gen uint64, ignore map[string]struct{}, maxSuggestions int) {
	h.send(hostMsg{lint: &job{text: text, gen: gen, ignore: ignore, maxSuggestions: maxSuggestions}})
}

// Construct enqueues an engine construction attempt.
func (h *Host) Construct() {
	h.send(hostMsg{construct: true})
}

// AddWord forwards a dictionary addition to the engine.
func (h *Host) AddWord(word string) {
	h.send(hostMsg{addWord: word})
}

// RemoveWord forwards a dictionary removal to the engine.
func (h *Host) RemoveWord(word string) {
	h.send(hostMsg{remove: word})
}

func (h *Host) send(m hostMsg) {
	defer func() {
		// Sending on the closed channel after Stop is a benign race
		// during teardown; swallow it.
		_ = recover()
	}()
	select {
	case h.msgs <- m:
	default:
		logging.Warn("engine queue full, message dropped")
	}
}

// run is the background goroutine. It is the only code that touches
// the engine handle.
func (h *Host) run(ctx context.Context) {
	defer h.wg.Done()

	var eng Engine // owned here, nil until constructed

	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-h.msgs:
			if !ok {
				return
			}
			switch {
			case m.construct:
				eng = h.construct()
			case m.addWord != "":
				if eng != nil {
					h.guard(&eng, func() { eng.AddWord(m.addWord) })
				}
			case m.remove != "":
				if eng != nil {
					h.guard(&eng, func() { eng.RemoveWord(m.remove) })
				}
			case m.lint != nil:
				h.runLint(ctx, &eng, m.lint)
			}
		}
	}
}

// construct attempts to build the engine and reports the outcome.
func (h *Host) construct() Engine {
	eng, err := h.factory()
	if err != nil || eng == nil || eng.Degraded() {
		h.events.Error(otel.KindEngineDegraded, "engine", err)
		h.sink(ConstructResult{Ready: false, Err: err})
		return nil
	}
	h.sink(ConstructResult{Ready: true})
	return eng
}

// runLint executes one lint pass. A nil or degraded engine yields an
// empty result, never an error: the pipeline treats "engine not ready"
// as "no findings".
func (h *Host) runLint(ctx context.Context, eng *Engine, j *job) {
	start := time.Now()

	var findings []lint.Finding
	if *eng != nil && !(*eng).Degraded() {
		if err := h.limiter.Wait(ctx); err != nil {
			return
		}
		h.guard(eng, func() { findings = (*eng).Lint(j.text) })
	}

	out := make([]lint.Finding, 0, len(findings))
	ignored := 0
	for _, f := range findings {
		if f.OriginalText == "" {
			f.OriginalText = lint.Substring(j.text, f.Span)
		}
		if _, skip := j.ignore[f.Normalized()]; skip {
			ignored++
			continue
		}
		// The engine computed spans against this exact text, so a
		// mismatch here means a buggy engine; relocation doubles as
		// validation and drops what it cannot place.
		span, ok := lint.Relocate(j.text, f)
		if !ok {
			continue
		}
		f.Span = span
		if len(f.Suggestions) > j.maxSuggestions {
			f.Suggestions = f.Suggestions[:j.maxSuggestions]
		}
		out = append(out, f)
	}

	h.sink(Result{Gen: j.gen, Findings: out, Ignored: ignored, Dur: time.Since(start)})
}

// guard runs fn, converting a panic into a dropped engine plus a Fault
// report. The slot is nulled so later calls skip the engine until a
// retry reconstructs it.
func (h *Host) guard(eng *Engine, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("engine panicked", "panic", r)
			h.events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindEnginePanic, Comp: "engine"})
			*eng = nil
			h.sink(Fault{})
		}
	}()
	fn()
}
