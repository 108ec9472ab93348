// Package focus defines the contract with the text introspection
// service: reading the focused text of an external application, mapping
// character ranges to screen geometry, and writing text back.
//
// Implementations bridge to a platform accessibility layer and are
// supplied at wiring time; everything in this package must be called
// from the coordinator's foreground loop.
package focus

import "proofd/internal/lint"

// Owner is an opaque token identifying the external text element a
// snapshot was taken from. It is a lookup key, not an owned reference:
// the element may disappear at any time, and every later use must
// tolerate the provider reporting it invalid. Owners are comparable so
// the coordinator can detect focus changes.
type Owner string

// OwnerNone is the zero owner, reported when nothing has text focus.
const OwnerNone Owner = ""

// Snapshot is an immutable copy of the focused text taken at one
// instant. The pipeline never mutates it; a superseded snapshot is
// discarded wholesale together with its findings.
type Snapshot struct {
	Text      string
	Selection lint.Span
	Owner     Owner
}

// Rect is a screen rectangle in the provider's native coordinate space
// (bottom-left origin on some platforms; the spatial mapper converts).
type Rect struct {
	X, Y, W, H float64
}

// Area returns the rectangle's area, used as the descendant-search
// tie break.
func (r Rect) Area() float64 { return r.W * r.H }

// SignalKind tags an edit signal from the host application.
type SignalKind int

const (
	SignalKeystroke SignalKind = iota
	SignalFocusChanged
	SignalElementChanged
	SignalWindowMoved
	SignalScrolled
)

// String returns the signal name for logging.
func (k SignalKind) String() string {
	switch k {
	case SignalKeystroke:
		return "keystroke"
	case SignalFocusChanged:
		return "focus_changed"
	case SignalElementChanged:
		return "element_changed"
	case SignalWindowMoved:
		return "window_moved"
	case SignalScrolled:
		return "scrolled"
	default:
		return "unknown"
	}
}

// Signal is one edit event. AppID is set only for SignalFocusChanged.
type Signal struct {
	Kind  SignalKind
	AppID string
}

// Provider reads and writes text in the focused external application.
// All methods are synchronous and foreground-only. Boolean returns
// follow the comma-ok idiom: false means the operation could not be
// performed (element gone, attribute unsupported), never an error worth
// surfacing to the user.
type Provider interface {
	// ReadFocusedText snapshots the currently focused text element.
	// Returns nil when nothing with text focus exists.
	ReadFocusedText() *Snapshot

	// LiveText re-reads the current text of owner, which may have
	// diverged from an earlier snapshot.
	LiveText(owner Owner) (string, bool)

	// BoundsForRange maps a rune span of owner's text to a screen
	// rectangle. Many host applications do not support this.
	BoundsForRange(span lint.Span, owner Owner) (Rect, bool)

	// BoundsForOwner returns the full bounding box of the element.
	BoundsForOwner(owner Owner) (Rect, bool)

	// DescendantBounds searches owner's descendants, up to maxDepth
	// levels deep, for elements whose value contains text, and returns
	// the bounds of every match. The caller picks among them.
	DescendantBounds(owner Owner, text string, maxDepth int) []Rect

	// WriteSelection sets owner's selected range.
	WriteSelection(span lint.Span, owner Owner) bool

	// ReadSelection returns the text currently selected in owner.
	ReadSelection(owner Owner) (string, bool)

	// ReplaceSelection writes text into owner's current selection.
	ReplaceSelection(owner Owner, text string) bool

	// ReplaceWholeText replaces the element's entire value.
	ReplaceWholeText(owner Owner, text string) bool

	// ObserveSignals registers a callback invoked for every edit signal.
	// The callback must be cheap; it is called from the platform's
	// notification machinery and should only enqueue.
	ObserveSignals(fn func(Signal))

	// StopObserving removes the signal callback.
	StopObserving()
}
