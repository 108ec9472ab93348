package lint

import "testing"

func TestRelocateExactMatch(t *testing.T) {
	f := Finding{OriginalText: "tset", Span: Span{Start: 10, End: 14}}
	span, ok := Relocate("This is a tset", f)
	if !ok {
		t.Fatal("expected relocation to succeed")
	}
	if span != f.Span {
		t.Errorf("expected span unchanged, got %+v", span)
	}
}

func TestRelocateDriftedText(t *testing.T) {
	// Host app normalized a double space away, shifting everything left.
	f := Finding{OriginalText: "tset", Span: Span{Start: 11, End: 15}}
	span, ok := Relocate("This is a tset", f)
	if !ok {
		t.Fatal("expected relocation to succeed")
	}
	if span.Start != 10 || span.End != 14 {
		t.Errorf("expected span (10,14), got %+v", span)
	}
}

func TestRelocateNearestWins(t *testing.T) {
	// Two occurrences; the one closer to the reported offset is correct.
	text := "aa bb aa"
	f := Finding{OriginalText: "aa", Span: Span{Start: 5, End: 7}}
	span, ok := Relocate(text, f)
	if !ok {
		t.Fatal("expected relocation to succeed")
	}
	if span.Start != 6 {
		t.Errorf("expected nearest occurrence at 6, got %d", span.Start)
	}
}

func TestRelocateNotFound(t *testing.T) {
	f := Finding{OriginalText: "gone", Span: Span{Start: 3, End: 7}}
	if _, ok := Relocate("entirely different text", f); ok {
		t.Error("expected relocation to fail when the text is gone")
	}
}

func TestRelocateRespectsWindow(t *testing.T) {
	// Occurrence exists but far outside the +/-200 rune window.
	text := make([]rune, 0, 600)
	for i := 0; i < 500; i++ {
		text = append(text, 'x')
	}
	text = append(text, []rune("needle")...)
	f := Finding{OriginalText: "needle", Span: Span{Start: 0, End: 6}}
	if _, ok := Relocate(string(text), f); ok {
		t.Error("expected relocation to fail outside the search window")
	}
}

func TestRelocateUnicode(t *testing.T) {
	text := "café sérves naïve"
	f := Finding{OriginalText: "sérves", Span: Span{Start: 5, End: 11}}
	span, ok := Relocate(text, f)
	if !ok {
		t.Fatal("expected relocation to succeed")
	}
	if got := Substring(text, span); got != "sérves" {
		t.Errorf("expected substring %q, got %q", "sérves", got)
	}
}

func TestSubstringOutOfRange(t *testing.T) {
	if got := Substring("short", Span{Start: 2, End: 99}); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestNormalized(t *testing.T) {
	f := Finding{OriginalText: "  Kubectl "}
	if got := f.Normalized(); got != "kubectl" {
		t.Errorf("expected %q, got %q", "kubectl", got)
	}
}
