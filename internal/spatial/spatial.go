// Package spatial converts finding spans into renderer-ready screen
// rectangles, degrading through coarser bounds sources when the host
// application cannot report precise per-character geometry.
package spatial

import (
	"proofd/internal/annotate"
	"proofd/internal/focus"
	"proofd/internal/lint"
	"proofd/internal/logging"
	"proofd/internal/otel"
)

// Display is one physical screen. Frame is in the provider's native
// coordinate space (origin bottom-left, y growing upward).
type Display struct {
	Frame   focus.Rect
	Primary bool
}

// Displays enumerates attached screens. Foreground-only, injected so
// tests can run against synthetic geometry.
type Displays interface {
	List() []Display
}

// Mapper computes annotation rectangles for one analysis pass. Create
// a fresh Mapper per pass: it tracks whether the whole-field fallback
// has already been spent for the current pass.
type Mapper struct {
	provider focus.Provider
	displays Displays
	events   *otel.Logger

	descendantDepth int
	fullBoxUsed     bool
}

// minAnnotationWidth and widthPerChar bound the clamped width of a
// rectangle: max(minAnnotationWidth, chars*widthPerChar).
const (
	minAnnotationWidth = 40.0
	widthPerChar       = 10.0
)

// NewMapper creates a per-pass mapper.
func NewMapper(provider focus.Provider, displays Displays, descendantDepth int, events *otel.Logger) *Mapper {
	return &Mapper{
		provider:        provider,
		displays:        displays,
		events:          events,
		descendantDepth: descendantDepth,
	}
}

// Map positions every finding it can, dropping the ones with no usable
// bounds. Must be called on the foreground loop.
func (m *Mapper) Map(owner focus.Owner, findings []lint.Finding) []annotate.Annotation {
	anns := make([]annotate.Annotation, 0, len(findings))
	for i, f := range findings {
		rect, ok := m.boundsFor(owner, f)
		if !ok {
			m.events.Emit(otel.Event{Kind: otel.KindMapDropped, Comp: "spatial", Count: 1})
			continue
		}
		rect = clampWidth(rect, f.Span.Len())
		anns = append(anns, annotate.Annotation{
			Rect:         m.toRendererSpace(rect),
			Color:        annotate.ColorFor(f.Category),
			FindingIndex: i,
		})
	}
	return anns
}

// boundsFor runs the three-step cascade: precise range bounds, then
// descendant search, then the owner's full box at most once per pass.
func (m *Mapper) boundsFor(owner focus.Owner, f lint.Finding) (focus.Rect, bool) {
	if r, ok := m.provider.BoundsForRange(f.Span, owner); ok {
		return r, true
	}

	if matches := m.provider.DescendantBounds(owner, f.OriginalText, m.descendantDepth); len(matches) > 0 {
		m.events.Emit(otel.Event{Kind: otel.KindMapFallback, Comp: "spatial", Msg: "descendant"})
		return pickSmallest(matches), true
	}

	// Whole-field box only once: several overlapping full-field
	// annotations would be worse than missing ones.
	if !m.fullBoxUsed {
		if r, ok := m.provider.BoundsForOwner(owner); ok {
			m.fullBoxUsed = true
			m.events.Emit(otel.Event{Kind: otel.KindMapFallback, Comp: "spatial", Msg: "owner_box"})
			return r, true
		}
	}

	return focus.Rect{}, false
}

// pickSmallest returns the match with the smallest area. The smallest
// containing element is usually the text run itself rather than a
// scroll area that happens to contain the same string. Observed
// behavior, not a proven rule; kept as the only tie-break for now.
func pickSmallest(rects []focus.Rect) focus.Rect {
	best := rects[0]
	for _, r := range rects[1:] {
		if r.Area() < best.Area() {
			best = r
		}
	}
	return best
}

// clampWidth caps rectangle width to max(40, charCount*10) px. Some
// host applications report wildly oversized range bounds.
func clampWidth(r focus.Rect, charCount int) focus.Rect {
	maxW := float64(charCount) * widthPerChar
	if maxW < minAnnotationWidth {
		maxW = minAnnotationWidth
	}
	if r.W > maxW {
		r.W = maxW
	}
	return r
}

// toRendererSpace resolves which display contains the rectangle and
// flips it into the renderer's top-left-origin convention, offset
// relative to that display's frame.
func (m *Mapper) toRendererSpace(r focus.Rect) focus.Rect {
	d := m.resolveDisplay(r)
	// Pure offset math against the display frame: native y measures up
	// from the frame's bottom, renderer y measures down from its top.
	return focus.Rect{
		X: r.X - d.Frame.X,
		Y: d.Frame.Y + d.Frame.H - (r.Y + r.H),
		W: r.W,
		H: r.H,
	}
}

// resolveDisplay finds the display whose frame entirely contains the
// rect, falling back to the primary display rather than dropping the
// annotation. A rect straddling two displays resolves to the primary.
func (m *Mapper) resolveDisplay(r focus.Rect) Display {
	var primary Display
	list := m.displays.List()
	for _, d := range list {
		if containsRect(d.Frame, r) {
			return d
		}
		if d.Primary {
			primary = d
		}
	}

	if len(list) == 0 {
		logging.Warn("no displays reported, using zero frame")
		return Display{}
	}
	if primary.Frame.W == 0 && primary.Frame.H == 0 {
		primary = list[0]
	}
	return primary
}

// containsRect reports whether inner lies entirely within outer.
func containsRect(outer, inner focus.Rect) bool {
	return inner.X >= outer.X && inner.Y >= outer.Y &&
		inner.X+inner.W <= outer.X+outer.W &&
		inner.Y+inner.H <= outer.Y+outer.H
}
