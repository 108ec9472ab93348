// Package coord runs the foreground coordination loop for proofd: a
// single goroutine consuming one inbox, owning all pipeline state.
// Everything else (debounce timers, the engine host, the lifecycle
// retry timer, platform signal callbacks) only enqueues messages here.
package coord

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"proofd/internal/annotate"
	"proofd/internal/config"
	"proofd/internal/correct"
	"proofd/internal/dict"
	"proofd/internal/engine"
	"proofd/internal/focus"
	"proofd/internal/history"
	"proofd/internal/lint"
	"proofd/internal/logging"
	"proofd/internal/otel"
	"proofd/internal/signal"
	"proofd/internal/spatial"
)

// inboxSize bounds the message queue. Overflow drops the message; the
// debounce and generation machinery absorb drops by re-requesting.
const inboxSize = 256

// Inbox message types. Internal: the public API wraps them.
type (
	msgSignal     struct{ sig focus.Signal }
	msgAnalyze    struct{}
	msgEngine     struct{ v any } // engine.Result, ConstructResult, Fault
	msgRetry      struct{}
	msgSuppress   struct{ on bool }
	msgIgnore     struct{ index int }
	msgAddDict    struct{ index int }
	msgDictReload struct{}
)

type msgApply struct {
	index       int
	replacement string
}

// PassPublished is sent to the notify callback after annotations are
// handed to the renderer. Findings stay in process memory so the UI
// can build the suggestion popup; logs and history only ever see the
// counts.
type PassPublished struct {
	Gen         uint64
	Spelling    int
	Grammar     int
	Findings    []lint.Finding
	Annotations []annotate.Annotation
	Dropped     int
	Dur         time.Duration
}

// StatusChanged is sent to the notify callback on every engine
// lifecycle transition.
type StatusChanged struct {
	Status engine.Status
}

// Deps wires a Coordinator. Provider and Renderer are required; the
// rest may be nil and the corresponding feature is disabled.
type Deps struct {
	Provider  focus.Provider
	Renderer  annotate.Renderer
	Factory   engine.Factory
	Dict      *dict.Dictionary
	Store     *history.Store
	Displays  spatial.Displays
	Clipboard correct.Clipboard
	Paster    correct.Paster
	Config    *config.Config
	Events    *otel.Logger

	// Notify receives PassPublished and StatusChanged. Called from the
	// coordinator loop; must not block (program.Send qualifies).
	Notify func(any)
}

// Coordinator owns the analysis pipeline state. All fields below the
// inbox are confined to the loop goroutine.
type Coordinator struct {
	deps    Deps
	host    *engine.Host
	life    *engine.Lifecycle
	applier *correct.Applier

	editDeb   *signal.Debouncer
	windowDeb *signal.Debouncer

	inbox chan any
	gen   atomic.Uint64
	wg    sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
	stopc     chan struct{}

	// Loop-confined state.
	suppressed bool
	ignore     map[string]struct{}
	snap       *focus.Snapshot // snapshot of the in-flight generation
	published  []lint.Finding  // findings of the last published pass
	pubSnap    *focus.Snapshot // snapshot those findings belong to
}

// New creates a Coordinator. Call Start to run it.
func New(deps Deps) *Coordinator {
	if deps.Config == nil {
		deps.Config = config.DefaultConfig()
	}
	if deps.Events == nil {
		deps.Events = otel.NewNullLogger()
	}
	if deps.Displays == nil {
		deps.Displays = noDisplays{}
	}

	c := &Coordinator{
		deps:   deps,
		inbox:  make(chan any, inboxSize),
		stopc:  make(chan struct{}),
		ignore: make(map[string]struct{}),
	}

	c.host = engine.NewHost(deps.Factory, deps.Config.Engine.MaxLintPerSec,
		func(v any) { c.post(msgEngine{v: v}) }, deps.Events)
	c.life = engine.NewLifecycle(deps.Config.RetryDelays(),
		func() { c.post(msgRetry{}) })
	c.applier = correct.NewApplier(deps.Provider, deps.Clipboard, deps.Paster,
		deps.Config.ClipboardDelay(), deps.Events)

	c.editDeb = signal.New(deps.Config.EditDebounce(),
		func() { c.post(msgAnalyze{}) })
	c.windowDeb = signal.New(deps.Config.WindowDebounce(),
		func() { c.post(msgAnalyze{}) })

	return c
}

// Start launches the loop, the engine host, and the platform signal
// observer. Call with a cancellable context.
func (c *Coordinator) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		c.host.Start(ctx)

		if c.deps.Dict != nil {
			if err := c.deps.Dict.Watch(func() { c.post(msgDictReload{}) }); err != nil {
				logging.Warn("dictionary watch unavailable", "err", err)
			}
		}

		c.deps.Provider.ObserveSignals(func(sig focus.Signal) {
			c.post(msgSignal{sig: sig})
		})

		c.wg.Add(1)
		go c.run(ctx)
	})
}

// Stop tears the pipeline down: observers first so nothing new is
// enqueued, then timers, then the loop and the engine host.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		c.deps.Provider.StopObserving()
		c.editDeb.Stop()
		c.windowDeb.Stop()
		c.life.Stop()
		close(c.stopc)
		c.wg.Wait()
		c.host.Stop()
	})
}

// RequestAnalysis asks for an immediate pass, bypassing the debounce.
func (c *Coordinator) RequestAnalysis() { c.post(msgAnalyze{}) }

// SetSuppressed pauses (true) or resumes (false) analysis dispatch.
// The UI sets it while a suggestion popup is open so a pass cannot
// yank annotations out from under the user.
func (c *Coordinator) SetSuppressed(on bool) { c.post(msgSuppress{on: on}) }

// AddToIgnoreList suppresses the published finding at index for the
// rest of the session.
func (c *Coordinator) AddToIgnoreList(index int) { c.post(msgIgnore{index: index}) }

// AddToDictionary persists the flagged word of the published finding
// at index and teaches it to the engine.
func (c *Coordinator) AddToDictionary(index int) { c.post(msgAddDict{index: index}) }

// ApplyCorrection writes replacement over the published finding at
// index, then re-analyzes after a settle delay.
func (c *Coordinator) ApplyCorrection(index int, replacement string) {
	c.post(msgApply{index: index, replacement: replacement})
}

// EngineStatus returns the current engine lifecycle snapshot.
func (c *Coordinator) EngineStatus() engine.Status { return c.life.Status() }

// Generation returns the current dispatch generation.
func (c *Coordinator) Generation() uint64 { return c.gen.Load() }

// post enqueues without blocking. Drops on overflow.
func (c *Coordinator) post(m any) {
	select {
	case c.inbox <- m:
	default:
		logging.Warn("coordinator inbox full, message dropped")
	}
}

// run is the foreground loop. Sole owner of pipeline state.
func (c *Coordinator) run(ctx context.Context) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopc:
			return
		case m := <-c.inbox:
			c.handle(m)
		}
	}
}

func (c *Coordinator) handle(m any) {
	switch m := m.(type) {
	case msgSignal:
		c.handleSignal(m.sig)
	case msgAnalyze:
		c.dispatch()
	case msgEngine:
		c.handleEngine(m.v)
	case msgRetry:
		c.deps.Events.Emit(otel.Event{Kind: otel.KindEngineRetry, Comp: "engine",
			Retry: c.life.Status().Retry})
		c.host.Construct()
	case msgSuppress:
		c.suppressed = m.on
		if !m.on {
			c.dispatch()
		}
	case msgIgnore:
		c.addToIgnore(m.index)
	case msgAddDict:
		c.addToDictionary(m.index)
	case msgApply:
		c.applyCorrection(m.index, m.replacement)
	case msgDictReload:
		c.deps.Events.Emit(otel.Event{Kind: otel.KindDictReload, Comp: "dict",
			Count: c.deps.Dict.Len()})
		c.dispatch()
	}
}

// handleSignal folds one platform edit signal into the pipeline. Edit
// and geometry signals wait out a debounce; a focus change re-analyzes
// immediately because everything held belongs to the previous app.
func (c *Coordinator) handleSignal(sig focus.Signal) {
	switch sig.Kind {
	case focus.SignalKeystroke, focus.SignalElementChanged:
		c.editDeb.Signal()
	case focus.SignalFocusChanged:
		// The snapshot and anything in flight belong to the previous
		// app; invalidate them before reading the new focus. The bump
		// matters even when the new focus is empty, since the empty
		// path inside dispatch does not advance the generation.
		c.clearPublished()
		c.snap = nil
		c.gen.Add(1)
		c.dispatch()
	case focus.SignalWindowMoved, focus.SignalScrolled:
		// Annotations are now at wrong screen positions; blank beats
		// wrong until the geometry settles.
		c.clearPublished()
		c.windowDeb.Signal()
	}
}

// dispatch snapshots the focused text and hands a lint job to the
// engine host under a fresh generation.
func (c *Coordinator) dispatch() {
	if c.suppressed {
		c.deps.Events.Emit(otel.Event{Kind: otel.KindPassSkipped, Comp: "coord"})
		return
	}

	snap := c.deps.Provider.ReadFocusedText()
	if snap == nil || strings.TrimSpace(snap.Text) == "" {
		c.clearPublished()
		c.snap = nil
		c.deps.Events.Emit(otel.Event{Kind: otel.KindPassEmpty, Comp: "coord"})
		return
	}

	gen := c.gen.Add(1)
	c.snap = snap

	ignore := make(map[string]struct{}, len(c.ignore))
	for k := range c.ignore {
		ignore[k] = struct{}{}
	}

	c.deps.Events.Emit(otel.Event{Kind: otel.KindPassStart, Comp: "coord", Gen: gen})
	c.host.Submit(snap.Text, gen, ignore, c.deps.Config.Engine.MaxSuggestions)
}

// handleEngine consumes one message from the engine host.
func (c *Coordinator) handleEngine(v any) {
	switch v := v.(type) {
	case engine.Result:
		c.consumeResult(v)
	case engine.ConstructResult:
		if v.Ready {
			c.life.ConstructionSucceeded()
			c.deps.Events.Emit(otel.Event{Kind: otel.KindEngineReady, Comp: "engine"})
			c.recordEngineEvent()
			c.dispatch()
		} else {
			c.life.ConstructionFailed()
			c.emitDegraded()
			c.recordEngineEvent()
		}
	case engine.Fault:
		c.life.Fault()
		c.emitDegraded()
		c.recordEngineEvent()
	}
}

// consumeResult performs the staleness check. This is the only place
// a generation is compared; a result that does not match the latest
// dispatched generation is discarded wholesale.
func (c *Coordinator) consumeResult(r engine.Result) {
	if r.Gen != c.gen.Load() {
		c.deps.Events.Emit(otel.Event{Kind: otel.KindPassStale, Comp: "coord", Gen: r.Gen})
		c.recordPass(r, 0, true)
		return
	}
	if c.snap == nil {
		return
	}

	mapper := spatial.NewMapper(c.deps.Provider, c.deps.Displays,
		c.deps.Config.Spatial.DescendantDepth, c.deps.Events)
	anns := mapper.Map(c.snap.Owner, r.Findings)
	dropped := len(r.Findings) - len(anns)

	c.published = r.Findings
	c.pubSnap = c.snap

	if len(anns) == 0 {
		c.deps.Renderer.ClearAnnotations()
	} else {
		c.deps.Renderer.UpdateAnnotations(anns)
	}

	c.deps.Events.Emit(otel.Event{Kind: otel.KindPassPublish, Comp: "coord",
		Gen: r.Gen, Count: len(anns), Dur: r.Dur})
	c.recordPass(r, dropped, false)

	if c.deps.Notify != nil {
		sp, gr := countByCategory(r.Findings)
		c.deps.Notify(PassPublished{
			Gen:         r.Gen,
			Spelling:    sp,
			Grammar:     gr,
			Findings:    r.Findings,
			Annotations: anns,
			Dropped:     dropped,
			Dur:         r.Dur,
		})
	}
}

// addToIgnore suppresses one published finding for the session and
// re-runs the pass so its annotation disappears.
func (c *Coordinator) addToIgnore(index int) {
	f, ok := c.publishedFinding(index)
	if !ok {
		return
	}
	c.ignore[f.Normalized()] = struct{}{}
	c.dispatch()
}

// addToDictionary persists the flagged text as a known word, teaches
// the live engine, and re-runs the pass.
func (c *Coordinator) addToDictionary(index int) {
	f, ok := c.publishedFinding(index)
	if !ok {
		return
	}
	word := strings.TrimSpace(f.OriginalText)
	if word == "" {
		return
	}

	if c.deps.Dict != nil {
		if err := c.deps.Dict.Add(word); err != nil {
			logging.Error("dictionary add failed", "err", err)
			c.deps.Events.Error(otel.KindStoreError, "dict", err)
		}
	}
	c.host.AddWord(word)
	c.deps.Events.Emit(otel.Event{Kind: otel.KindDictAdd, Comp: "dict"})
	c.dispatch()
}

// applyCorrection delegates to the applier, records the outcome, and
// schedules a re-analysis after the settle delay so the host
// application has flushed our write before we re-read.
func (c *Coordinator) applyCorrection(index int, replacement string) {
	f, ok := c.publishedFinding(index)
	if !ok || c.pubSnap == nil {
		return
	}

	strategy := c.applier.Apply(correct.Request{
		Owner:       c.pubSnap.Owner,
		Span:        f.Span,
		Original:    f.OriginalText,
		Replacement: replacement,
	})

	if c.deps.Store != nil {
		err := c.deps.Store.RecordCorrection(history.Correction{
			Category: string(f.Category),
			Strategy: int(strategy),
			OK:       strategy != correct.StrategyNone,
		})
		if err != nil {
			c.deps.Events.Error(otel.KindStoreError, "history", err)
		}
	}

	c.clearPublished()
	time.AfterFunc(c.deps.Config.SettleDelay(), func() { c.post(msgAnalyze{}) })
}

// publishedFinding bounds-checks an index from the UI against the last
// published pass. Clicks race against republication, so an out-of-date
// index is an expected no-op.
func (c *Coordinator) publishedFinding(index int) (lint.Finding, bool) {
	if index < 0 || index >= len(c.published) {
		return lint.Finding{}, false
	}
	return c.published[index], true
}

func (c *Coordinator) clearPublished() {
	c.published = nil
	c.pubSnap = nil
	c.deps.Renderer.ClearAnnotations()
}

func (c *Coordinator) emitDegraded() {
	st := c.life.Status()
	kind := otel.KindEngineDegraded
	if st.State == engine.StateFailed {
		kind = otel.KindEngineFailed
	}
	c.deps.Events.Emit(otel.Event{Level: otel.LevelWarn, Kind: kind, Comp: "engine",
		State: st.String(), Retry: st.Retry})
}

func (c *Coordinator) recordEngineEvent() {
	st := c.life.Status()
	if c.deps.Store != nil {
		err := c.deps.Store.RecordEngineEvent(history.EngineEvent{
			State: st.String(),
			Retry: st.Retry,
		})
		if err != nil {
			c.deps.Events.Error(otel.KindStoreError, "history", err)
		}
	}
	if c.deps.Notify != nil {
		c.deps.Notify(StatusChanged{Status: st})
	}
}

func (c *Coordinator) recordPass(r engine.Result, dropped int, stale bool) {
	if c.deps.Store == nil {
		return
	}
	sp, gr := countByCategory(r.Findings)
	err := c.deps.Store.RecordPass(history.Pass{
		Generation: r.Gen,
		Spelling:   sp,
		Grammar:    gr,
		Dropped:    dropped,
		Stale:      stale,
		Dur:        r.Dur,
	})
	if err != nil {
		c.deps.Events.Error(otel.KindStoreError, "history", err)
	}
}

// noDisplays stands in when no display enumerator is wired; the
// mapper then falls back to its zero-frame path.
type noDisplays struct{}

func (noDisplays) List() []spatial.Display { return nil }

func countByCategory(findings []lint.Finding) (spelling, grammar int) {
	for _, f := range findings {
		if f.Category == lint.Grammar {
			grammar++
		} else {
			spelling++
		}
	}
	return
}
