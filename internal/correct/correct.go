// Package correct writes a chosen replacement back into the external
// text field through a layered fallback cascade. Each strategy verifies
// before it commits; when every strategy fails the correction is simply
// abandoned and the next analysis pass re-reports the finding.
package correct

import (
	"strings"
	"time"

	"proofd/internal/focus"
	"proofd/internal/lint"
	"proofd/internal/logging"
	"proofd/internal/otel"
)

// Strategy identifies which cascade step performed the write.
type Strategy int

const (
	StrategyNone      Strategy = 0 // all steps failed
	StrategyRange     Strategy = 1 // verified selection write
	StrategyWholeText Strategy = 2 // full-text substitute
	StrategyClipboard Strategy = 3 // clipboard paste fallback
)

// Request describes one correction. Owner may have gone stale since
// the snapshot; every strategy re-validates against the live field.
type Request struct {
	Owner       focus.Owner
	Span        lint.Span
	Original    string
	Replacement string
}

// Applier applies corrections. Apply must run on the foreground loop;
// only the deferred clipboard restore escapes to a timer goroutine,
// and it touches nothing but the clipboard.
type Applier struct {
	provider     focus.Provider
	clip         Clipboard
	paster       Paster
	restoreDelay time.Duration
	events       *otel.Logger
}

// NewApplier wires an Applier. paster may be nil, which disables the
// clipboard strategy (headless test rigs).
func NewApplier(provider focus.Provider, clip Clipboard, paster Paster, restoreDelay time.Duration, events *otel.Logger) *Applier {
	return &Applier{
		provider:     provider,
		clip:         clip,
		paster:       paster,
		restoreDelay: restoreDelay,
		events:       events,
	}
}

// Apply runs the cascade and reports which strategy succeeded.
// StrategyNone without error is a valid outcome: the pipeline
// re-analyzes and the finding reappears.
func (a *Applier) Apply(req Request) Strategy {
	if req.Replacement == "" || req.Original == "" {
		return StrategyNone
	}

	if a.applyRange(req) {
		a.emit(StrategyRange)
		return StrategyRange
	}
	if a.applyWholeText(req) {
		a.emit(StrategyWholeText)
		return StrategyWholeText
	}
	if a.applyClipboard(req) {
		a.emit(StrategyClipboard)
		return StrategyClipboard
	}

	a.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindCorrectFailed, Comp: "correct"})
	logging.Warn("correction failed, all strategies exhausted")
	return StrategyNone
}

// applyRange selects exactly the span, reads the selection back, and
// writes only if the selection equals the original text. The read-back
// is the pre-commit verification: a stale span selects the wrong
// characters, and we must never overwrite those.
func (a *Applier) applyRange(req Request) bool {
	if !a.provider.WriteSelection(req.Span, req.Owner) {
		return false
	}
	got, ok := a.provider.ReadSelection(req.Owner)
	if !ok || got != req.Original {
		return false
	}
	return a.provider.ReplaceSelection(req.Owner, req.Replacement)
}

// applyWholeText re-reads the entire field, locates the original text
// literally, and writes the whole value back. Robust against hosts
// whose elements ignore range selection.
func (a *Applier) applyWholeText(req Request) bool {
	text, ok := a.provider.LiveText(req.Owner)
	if !ok {
		return false
	}

	// Relocate against the live text so the occurrence nearest the
	// original span is replaced, not the first one in the document.
	span, found := lint.Relocate(text, lint.Finding{
		OriginalText: req.Original,
		Span:         req.Span,
	})
	if !found {
		return false
	}

	runes := []rune(text)
	var b strings.Builder
	b.WriteString(string(runes[:span.Start]))
	b.WriteString(req.Replacement)
	b.WriteString(string(runes[span.End:]))

	return a.provider.ReplaceWholeText(req.Owner, b.String())
}

// applyClipboard selects the (possibly stale) range, stages the
// replacement on the clipboard, synthesizes a paste, and schedules a
// restore of the prior contents. The restore is skipped if the change
// count moved in the meantime, meaning the user copied something.
func (a *Applier) applyClipboard(req Request) bool {
	if a.paster == nil || a.clip == nil {
		return false
	}
	if !a.provider.WriteSelection(req.Span, req.Owner) {
		return false
	}

	prior, hadPrior := a.clip.Read()
	if !a.clip.Write(req.Replacement) {
		return false
	}
	staged := a.clip.ChangeCount()

	if !a.paster.Paste() {
		// Paste failed; put the user's clipboard back immediately.
		if hadPrior {
			a.clip.Write(prior)
		}
		return false
	}

	if hadPrior {
		time.AfterFunc(a.restoreDelay, func() {
			if a.clip.ChangeCount() == staged {
				a.clip.Write(prior)
			}
		})
	}
	return true
}

func (a *Applier) emit(s Strategy) {
	a.events.Emit(otel.Event{Kind: otel.KindCorrectStrategy, Comp: "correct", Strategy: int(s)})
}
