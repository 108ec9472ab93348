package main

import (
	"context"
	"sync"
	"time"

	"proofd/internal/focus"
	"proofd/internal/lint"
	"proofd/internal/spatial"
)

// demoScript is typed into the demo field one rune at a time.
const demoScript = "This is a tset of the proofreading pipleine. " +
	"Evrything you see flows through the real coordinator."

// demoTypeDelay is the pause between simulated keystrokes.
const demoTypeDelay = 80 * time.Millisecond

// demoField is an in-process text field that types a script, emitting
// keystroke signals like a real host application. It implements
// focus.Provider with synthesized geometry so the whole pipeline runs
// without a platform bridge.
type demoField struct {
	mu       sync.Mutex
	text     string
	sel      lint.Span
	observer func(focus.Signal)
}

func newDemoField() *demoField {
	return &demoField{}
}

// Run types the script on a background goroutine.
func (d *demoField) Run(ctx context.Context) {
	go func() {
		for _, r := range demoScript {
			select {
			case <-ctx.Done():
				return
			case <-time.After(demoTypeDelay):
			}

			d.mu.Lock()
			d.text += string(r)
			fn := d.observer
			d.mu.Unlock()

			if fn != nil {
				fn(focus.Signal{Kind: focus.SignalKeystroke})
			}
		}
	}()
}

func (d *demoField) ReadFocusedText() *focus.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.text == "" {
		return nil
	}
	return &focus.Snapshot{Text: d.text, Owner: "demo"}
}

func (d *demoField) LiveText(owner focus.Owner) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text, true
}

// BoundsForRange lays the text out on a single synthetic line, 8px per
// rune, near the top of the demo display.
func (d *demoField) BoundsForRange(span lint.Span, owner focus.Owner) (focus.Rect, bool) {
	return focus.Rect{
		X: 40 + float64(span.Start)*8,
		Y: 820,
		W: float64(span.Len()) * 8,
		H: 16,
	}, true
}

func (d *demoField) BoundsForOwner(owner focus.Owner) (focus.Rect, bool) {
	return focus.Rect{X: 40, Y: 820, W: 1000, H: 16}, true
}

func (d *demoField) DescendantBounds(owner focus.Owner, text string, maxDepth int) []focus.Rect {
	return nil
}

func (d *demoField) WriteSelection(span lint.Span, owner focus.Owner) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !span.Valid() || span.End > len([]rune(d.text)) {
		return false
	}
	d.sel = span
	return true
}

func (d *demoField) ReadSelection(owner focus.Owner) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	runes := []rune(d.text)
	if !d.sel.Valid() || d.sel.End > len(runes) {
		return "", false
	}
	return string(runes[d.sel.Start:d.sel.End]), true
}

func (d *demoField) ReplaceSelection(owner focus.Owner, text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	runes := []rune(d.text)
	if !d.sel.Valid() || d.sel.End > len(runes) {
		return false
	}
	d.text = string(runes[:d.sel.Start]) + text + string(runes[d.sel.End:])
	return true
}

func (d *demoField) ReplaceWholeText(owner focus.Owner, text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = text
	return true
}

func (d *demoField) ObserveSignals(fn func(focus.Signal)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observer = fn
}

func (d *demoField) StopObserving() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observer = nil
}

// demoDisplays is a single 1440x900 primary screen.
type demoDisplays struct{}

func (demoDisplays) List() []spatial.Display {
	return []spatial.Display{{Frame: focus.Rect{X: 0, Y: 0, W: 1440, H: 900}, Primary: true}}
}
