package spatial

import (
	"testing"

	"proofd/internal/annotate"
	"proofd/internal/focus"
	"proofd/internal/lint"
	"proofd/internal/otel"
)

// fakeProvider implements the bounds-related subset of focus.Provider.
type fakeProvider struct {
	rangeBounds      map[lint.Span]focus.Rect
	descendants      []focus.Rect
	ownerBounds      focus.Rect
	ownerBoundsOK    bool
	ownerBoundsCalls int
}

func (p *fakeProvider) ReadFocusedText() *focus.Snapshot           { return nil }
func (p *fakeProvider) LiveText(focus.Owner) (string, bool)        { return "", false }
func (p *fakeProvider) WriteSelection(lint.Span, focus.Owner) bool { return false }
func (p *fakeProvider) ReadSelection(focus.Owner) (string, bool)   { return "", false }
func (p *fakeProvider) ReplaceSelection(focus.Owner, string) bool  { return false }
func (p *fakeProvider) ReplaceWholeText(focus.Owner, string) bool  { return false }
func (p *fakeProvider) ObserveSignals(func(focus.Signal))          {}
func (p *fakeProvider) StopObserving()                             {}

func (p *fakeProvider) BoundsForRange(span lint.Span, _ focus.Owner) (focus.Rect, bool) {
	r, ok := p.rangeBounds[span]
	return r, ok
}

func (p *fakeProvider) DescendantBounds(_ focus.Owner, _ string, _ int) []focus.Rect {
	return p.descendants
}

func (p *fakeProvider) BoundsForOwner(focus.Owner) (focus.Rect, bool) {
	p.ownerBoundsCalls++
	return p.ownerBounds, p.ownerBoundsOK
}

type fakeDisplays struct{ displays []Display }

func (d *fakeDisplays) List() []Display { return d.displays }

// singleDisplay is a 1000x800 primary whose bottom-left sits at origin.
func singleDisplay() Displays {
	return &fakeDisplays{displays: []Display{
		{Frame: focus.Rect{X: 0, Y: 0, W: 1000, H: 800}, Primary: true},
	}}
}

func finding(start, end int, text string) lint.Finding {
	return lint.Finding{
		Category:     lint.Spelling,
		Span:         lint.Span{Start: start, End: end},
		OriginalText: text,
	}
}

func TestPreciseBoundsPreferred(t *testing.T) {
	span := lint.Span{Start: 10, End: 14}
	p := &fakeProvider{
		rangeBounds: map[lint.Span]focus.Rect{span: {X: 100, Y: 700, W: 38, H: 16}},
		descendants: []focus.Rect{{X: 0, Y: 0, W: 500, H: 500}},
	}
	m := NewMapper(p, singleDisplay(), 12, otel.NewNullLogger())

	anns := m.Map("owner", []lint.Finding{finding(10, 14, "tset")})
	if len(anns) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(anns))
	}
	// Flipped: renderer y = 800 - (700 + 16) = 84.
	if anns[0].Rect.Y != 84 {
		t.Errorf("expected flipped y=84, got %v", anns[0].Rect.Y)
	}
	if anns[0].Rect.X != 100 {
		t.Errorf("expected x=100, got %v", anns[0].Rect.X)
	}
}

func TestDescendantSmallestAreaWins(t *testing.T) {
	p := &fakeProvider{
		descendants: []focus.Rect{
			{X: 0, Y: 0, W: 800, H: 600},   // scroll area
			{X: 40, Y: 300, W: 60, H: 18},  // the text run
			{X: 20, Y: 280, W: 400, H: 90}, // paragraph block
		},
	}
	m := NewMapper(p, singleDisplay(), 12, otel.NewNullLogger())

	anns := m.Map("owner", []lint.Finding{finding(0, 4, "tset")})
	if len(anns) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(anns))
	}
	// Smallest area (60x18) at x=40 wins; width clamped to max(40, 4*10)=40.
	if anns[0].Rect.X != 40 || anns[0].Rect.W != 40 {
		t.Errorf("unexpected rect %+v", anns[0].Rect)
	}
}

func TestOwnerBoxUsedAtMostOncePerPass(t *testing.T) {
	p := &fakeProvider{
		ownerBounds:   focus.Rect{X: 10, Y: 10, W: 300, H: 200},
		ownerBoundsOK: true,
	}
	m := NewMapper(p, singleDisplay(), 12, otel.NewNullLogger())

	anns := m.Map("owner", []lint.Finding{
		finding(0, 4, "aaaa"),
		finding(10, 14, "bbbb"),
		finding(20, 24, "cccc"),
	})
	if len(anns) != 1 {
		t.Errorf("expected exactly 1 full-box annotation, got %d", len(anns))
	}
}

func TestWidthClamp(t *testing.T) {
	span := lint.Span{Start: 0, End: 4}
	p := &fakeProvider{
		rangeBounds: map[lint.Span]focus.Rect{span: {X: 0, Y: 0, W: 5000, H: 16}},
	}
	m := NewMapper(p, singleDisplay(), 12, otel.NewNullLogger())

	anns := m.Map("owner", []lint.Finding{finding(0, 4, "tset")})
	if len(anns) != 1 {
		t.Fatal("expected 1 annotation")
	}
	if anns[0].Rect.W != 40 {
		t.Errorf("expected width clamped to 40, got %v", anns[0].Rect.W)
	}
}

func TestMinimumWidthFloor(t *testing.T) {
	span := lint.Span{Start: 0, End: 2}
	p := &fakeProvider{
		rangeBounds: map[lint.Span]focus.Rect{span: {X: 0, Y: 0, W: 500, H: 16}},
	}
	m := NewMapper(p, singleDisplay(), 12, otel.NewNullLogger())

	anns := m.Map("owner", []lint.Finding{finding(0, 2, "ab")})
	// 2 chars * 10 = 20, floored at 40.
	if anns[0].Rect.W != 40 {
		t.Errorf("expected width floor 40, got %v", anns[0].Rect.W)
	}
}

func TestNoBoundsDropsFinding(t *testing.T) {
	p := &fakeProvider{} // nothing available
	m := NewMapper(p, singleDisplay(), 12, otel.NewNullLogger())

	anns := m.Map("owner", []lint.Finding{finding(0, 4, "tset")})
	if len(anns) != 0 {
		t.Errorf("expected finding dropped, got %d annotations", len(anns))
	}
}

func TestSecondaryDisplayResolution(t *testing.T) {
	span := lint.Span{Start: 0, End: 4}
	p := &fakeProvider{
		rangeBounds: map[lint.Span]focus.Rect{span: {X: 1200, Y: 100, W: 40, H: 16}},
	}
	displays := &fakeDisplays{displays: []Display{
		{Frame: focus.Rect{X: 0, Y: 0, W: 1000, H: 800}, Primary: true},
		{Frame: focus.Rect{X: 1000, Y: 0, W: 1000, H: 800}},
	}}
	m := NewMapper(p, displays, 12, otel.NewNullLogger())

	anns := m.Map("owner", []lint.Finding{finding(0, 4, "tset")})
	// Relative to the secondary display: x = 1200 - 1000 = 200.
	if anns[0].Rect.X != 200 {
		t.Errorf("expected x=200 on secondary display, got %v", anns[0].Rect.X)
	}
}

func TestStraddlingRectResolvesToPrimary(t *testing.T) {
	// The rect hangs over the edge between two displays; neither frame
	// contains it entirely, so the primary wins.
	span := lint.Span{Start: 0, End: 4}
	p := &fakeProvider{
		rangeBounds: map[lint.Span]focus.Rect{span: {X: 980, Y: 100, W: 40, H: 16}},
	}
	displays := &fakeDisplays{displays: []Display{
		{Frame: focus.Rect{X: 0, Y: 0, W: 1000, H: 800}, Primary: true},
		{Frame: focus.Rect{X: 1000, Y: 0, W: 1000, H: 800}},
	}}
	m := NewMapper(p, displays, 12, otel.NewNullLogger())

	anns := m.Map("owner", []lint.Finding{finding(0, 4, "tset")})
	if len(anns) != 1 {
		t.Fatal("expected 1 annotation")
	}
	// Relative to the primary display's frame, not the secondary's.
	if anns[0].Rect.X != 980 {
		t.Errorf("expected x=980 on the primary display, got %v", anns[0].Rect.X)
	}
}

func TestOffscreenFallsBackToPrimary(t *testing.T) {
	span := lint.Span{Start: 0, End: 4}
	p := &fakeProvider{
		rangeBounds: map[lint.Span]focus.Rect{span: {X: 9000, Y: 9000, W: 40, H: 16}},
	}
	m := NewMapper(p, singleDisplay(), 12, otel.NewNullLogger())

	anns := m.Map("owner", []lint.Finding{finding(0, 4, "tset")})
	if len(anns) != 1 {
		t.Fatal("expected annotation kept via primary-display fallback")
	}
}

func TestColorClasses(t *testing.T) {
	spellSpan := lint.Span{Start: 0, End: 4}
	gramSpan := lint.Span{Start: 10, End: 14}
	p := &fakeProvider{rangeBounds: map[lint.Span]focus.Rect{
		spellSpan: {X: 0, Y: 0, W: 40, H: 16},
		gramSpan:  {X: 50, Y: 0, W: 40, H: 16},
	}}
	m := NewMapper(p, singleDisplay(), 12, otel.NewNullLogger())

	g := finding(10, 14, "gram")
	g.Category = lint.Grammar
	anns := m.Map("owner", []lint.Finding{finding(0, 4, "tset"), g})
	if anns[0].Color != annotate.ColorSpelling || anns[1].Color != annotate.ColorGrammar {
		t.Errorf("unexpected colors %v %v", anns[0].Color, anns[1].Color)
	}
}
