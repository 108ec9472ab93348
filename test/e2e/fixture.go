// Package e2e drives the full pipeline (coordinator, engine host,
// built-in word list engine, spatial mapper, correction applier)
// against a scripted in-memory text field.
package e2e

import (
	"context"
	"sync"
	"testing"
	"time"

	"proofd/internal/annotate"
	"proofd/internal/config"
	"proofd/internal/coord"
	"proofd/internal/engine"
	"proofd/internal/focus"
	"proofd/internal/lint"
	"proofd/internal/spatial"
)

// textField is a scripted stand-in for a host application text element.
type textField struct {
	mu       sync.Mutex
	text     string
	sel      lint.Span
	observer func(focus.Signal)
}

func (f *textField) setText(s string) {
	f.mu.Lock()
	f.text = s
	f.mu.Unlock()
}

func (f *textField) getText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

func (f *textField) typeKey() {
	f.mu.Lock()
	fn := f.observer
	f.mu.Unlock()
	if fn != nil {
		fn(focus.Signal{Kind: focus.SignalKeystroke})
	}
}

func (f *textField) ReadFocusedText() *focus.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.text == "" {
		return nil
	}
	return &focus.Snapshot{Text: f.text, Owner: "field"}
}

func (f *textField) LiveText(owner focus.Owner) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, true
}

func (f *textField) BoundsForRange(span lint.Span, owner focus.Owner) (focus.Rect, bool) {
	return focus.Rect{
		X: 40 + float64(span.Start)*8,
		Y: 700,
		W: float64(span.Len()) * 8,
		H: 16,
	}, true
}

func (f *textField) BoundsForOwner(owner focus.Owner) (focus.Rect, bool) {
	return focus.Rect{X: 40, Y: 700, W: 800, H: 16}, true
}

func (f *textField) DescendantBounds(owner focus.Owner, text string, maxDepth int) []focus.Rect {
	return nil
}

func (f *textField) WriteSelection(span lint.Span, owner focus.Owner) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !span.Valid() || span.End > len([]rune(f.text)) {
		return false
	}
	f.sel = span
	return true
}

func (f *textField) ReadSelection(owner focus.Owner) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	runes := []rune(f.text)
	if !f.sel.Valid() || f.sel.End > len(runes) {
		return "", false
	}
	return string(runes[f.sel.Start:f.sel.End]), true
}

func (f *textField) ReplaceSelection(owner focus.Owner, text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	runes := []rune(f.text)
	if !f.sel.Valid() || f.sel.End > len(runes) {
		return false
	}
	f.text = string(runes[:f.sel.Start]) + text + string(runes[f.sel.End:])
	return true
}

func (f *textField) ReplaceWholeText(owner focus.Owner, text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
	return true
}

func (f *textField) ObserveSignals(fn func(focus.Signal)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observer = fn
}

func (f *textField) StopObserving() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observer = nil
}

// overlay records published annotations like a real renderer would.
type overlay struct {
	mu      sync.Mutex
	current []annotate.Annotation
}

func (o *overlay) UpdateAnnotations(anns []annotate.Annotation) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = anns
}

func (o *overlay) ClearAnnotations() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = nil
}

func (o *overlay) annotations() []annotate.Annotation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]annotate.Annotation(nil), o.current...)
}

type screen struct{}

func (screen) List() []spatial.Display {
	return []spatial.Display{{Frame: focus.Rect{X: 0, Y: 0, W: 1440, H: 900}, Primary: true}}
}

// pipeline owns a running coordinator wired to the fixtures.
type pipeline struct {
	coord   *coord.Coordinator
	field   *textField
	overlay *overlay
	notify  chan any
}

// startPipeline wires the real coordinator to the given engine factory
// and waits for engine readiness.
func startPipeline(t *testing.T, factory engine.Factory) *pipeline {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Timing.EditDebounceMs = 20
	cfg.Timing.WindowDebounceMs = 20
	cfg.Timing.SettleDelayMs = 10
	cfg.Engine.RetryDelaysMs = []int{10, 10, 10}
	cfg.Engine.MaxLintPerSec = 1000

	p := &pipeline{
		field:   &textField{},
		overlay: &overlay{},
		notify:  make(chan any, 64),
	}
	p.coord = coord.New(coord.Deps{
		Provider: p.field,
		Renderer: p.overlay,
		Factory:  factory,
		Displays: screen{},
		Config:   cfg,
		Notify:   func(v any) { p.notify <- v },
	})
	p.coord.Start(context.Background())
	t.Cleanup(p.coord.Stop)

	waitReady(t, p.notify)
	return p
}

func waitReady(t *testing.T, ch chan any) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case v := <-ch:
			if s, ok := v.(coord.StatusChanged); ok && s.Status.String() == "ready" {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for engine readiness")
		}
	}
}

func waitPass(t *testing.T, ch chan any) coord.PassPublished {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case v := <-ch:
			if p, ok := v.(coord.PassPublished); ok {
				return p
			}
		case <-deadline:
			t.Fatal("timed out waiting for a published pass")
		}
	}
}
