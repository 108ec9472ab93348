// Package lint defines the finding data model shared between the
// analysis engine and the coordination pipeline.
//
// A Finding is immutable once produced: the pipeline filters, relocates,
// and maps findings but never edits them in place. Spans are rune offsets
// into the snapshot text they were computed against.
package lint

import "strings"

// Category classifies a finding for coloring and stats.
type Category string

const (
	Spelling Category = "spelling"
	Grammar  Category = "grammar"
)

// Span is a half-open [Start, End) rune range.
type Span struct {
	Start int
	End   int
}

// Len returns the number of runes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Valid reports whether the span is non-empty and ordered.
func (s Span) Valid() bool { return s.Start >= 0 && s.End > s.Start }

// Finding is one issue reported by the analysis engine.
type Finding struct {
	Category     Category
	Message      string
	Span         Span
	Suggestions  []string
	OriginalText string
}

// Normalized returns the lowercased original text, the key used for
// session ignore matching and dictionary lookups.
func (f Finding) Normalized() string {
	return strings.ToLower(strings.TrimSpace(f.OriginalText))
}

// relocateWindow bounds the drift search around the original span.
const relocateWindow = 200

// Relocate verifies that text still contains f.OriginalText at f.Span.
// If the substring matches, the span is returned unchanged. On mismatch
// it searches up to relocateWindow runes on either side of the original
// offset and returns the nearest occurrence. Returns ok=false when the
// original text cannot be found, in which case the finding should be
// dropped for this pass.
func Relocate(text string, f Finding) (Span, bool) {
	runes := []rune(text)
	want := []rune(f.OriginalText)
	if len(want) == 0 {
		return Span{}, false
	}

	if matchAt(runes, want, f.Span.Start) {
		return f.Span, true
	}

	lo := f.Span.Start - relocateWindow
	if lo < 0 {
		lo = 0
	}
	hi := f.Span.Start + relocateWindow
	if hi > len(runes)-len(want) {
		hi = len(runes) - len(want)
	}

	// Scan outward from the original offset so the nearest match wins.
	for d := 1; ; d++ {
		left := f.Span.Start - d
		right := f.Span.Start + d
		if left < lo && right > hi {
			return Span{}, false
		}
		if left >= lo && matchAt(runes, want, left) {
			return Span{Start: left, End: left + len(want)}, true
		}
		if right <= hi && matchAt(runes, want, right) {
			return Span{Start: right, End: right + len(want)}, true
		}
	}
}

// matchAt reports whether want occurs in runes at offset.
func matchAt(runes, want []rune, offset int) bool {
	if offset < 0 || offset+len(want) > len(runes) {
		return false
	}
	for i, r := range want {
		if runes[offset+i] != r {
			return false
		}
	}
	return true
}

// Substring extracts the rune range s from text. Returns "" when the
// span falls outside the text.
func Substring(text string, s Span) string {
	runes := []rune(text)
	if s.Start < 0 || s.End > len(runes) || s.Start > s.End {
		return ""
	}
	return string(runes[s.Start:s.End])
}
