package wordlist

import (
	"os"
	"path/filepath"
	"testing"

	"proofd/internal/lint"
)

var baseWords = []string{
	"this", "is", "a", "test", "set", "the", "quick", "brown", "fox",
	"jumps", "over", "lazy", "dog", "hello", "world", "with", "have",
	"problem", "spelling",
}

func TestCleanTextNoFindings(t *testing.T) {
	e := NewFromWords(baseWords)
	if got := e.Lint("The quick brown fox jumps over the lazy dog"); len(got) != 0 {
		t.Errorf("expected no findings, got %v", got)
	}
}

func TestMisspellingFlaggedWithSuggestions(t *testing.T) {
	e := NewFromWords(baseWords)
	findings := e.Lint("This is a tset")
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Category != lint.Spelling {
		t.Errorf("expected spelling category, got %v", f.Category)
	}
	if f.Span.Start != 10 || f.Span.End != 14 {
		t.Errorf("expected span (10,14), got %+v", f.Span)
	}
	if f.OriginalText != "tset" {
		t.Errorf("expected original text 'tset', got %q", f.OriginalText)
	}
	wantAny := map[string]bool{"test": true, "set": true}
	found := false
	for _, s := range f.Suggestions {
		if wantAny[s] {
			found = true
		}
	}
	if !found {
		t.Errorf("expected 'test' or 'set' among suggestions, got %v", f.Suggestions)
	}
}

func TestEmptyText(t *testing.T) {
	e := NewFromWords(baseWords)
	if got := e.Lint(""); got != nil {
		t.Errorf("expected nil findings for empty text, got %v", got)
	}
}

func TestAddWordSuppressesFinding(t *testing.T) {
	e := NewFromWords(baseWords)
	if n := len(e.Lint("I have a speling problem")); n == 0 {
		t.Fatal("expected 'speling' to be flagged")
	}
	e.AddWord("speling")
	if got := e.Lint("I have a speling problem"); len(got) != 0 {
		t.Errorf("expected no findings after AddWord, got %v", got)
	}
	e.RemoveWord("speling")
	if got := e.Lint("I have a speling problem"); len(got) == 0 {
		t.Error("expected finding restored after RemoveWord")
	}
}

func TestAcronymsAndIdentifiersSkipped(t *testing.T) {
	e := NewFromWords(baseWords)
	if got := e.Lint("HTTP is a test"); len(got) != 0 {
		t.Errorf("expected acronym skipped, got %v", got)
	}
	if got := e.Lint("this is passwd123"); len(got) != 0 {
		t.Errorf("expected digit-adjacent token skipped, got %v", got)
	}
}

func TestTitleCasePreservedInSuggestions(t *testing.T) {
	e := NewFromWords(baseWords)
	findings := e.Lint("Tset the rig")
	var f *lint.Finding
	for i := range findings {
		if findings[i].OriginalText == "Tset" {
			f = &findings[i]
		}
	}
	if f == nil {
		t.Fatal("expected 'Tset' flagged")
	}
	for _, s := range f.Suggestions {
		if s[0] >= 'a' && s[0] <= 'z' {
			t.Errorf("expected Title-case suggestion, got %q", s)
		}
	}
}

func TestDegradedEngineIsInert(t *testing.T) {
	e, err := New(filepath.Join(t.TempDir(), "missing.txt"))
	if err != nil {
		t.Fatalf("degraded construction should not error: %v", err)
	}
	if !e.Degraded() {
		t.Fatal("expected degraded engine")
	}
	if got := e.Lint("anything at alll"); got != nil {
		t.Errorf("degraded engine should return nil, got %v", got)
	}
	// Add/remove must not panic.
	e.AddWord("word")
	e.RemoveWord("word")
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("alpha\nbeta\ngamma\n"), 0644); err != nil {
		t.Fatal(err)
	}
	e, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if e.Degraded() {
		t.Fatal("expected healthy engine")
	}
	if got := e.Lint("alpha beta gamma"); len(got) != 0 {
		t.Errorf("expected no findings, got %v", got)
	}
}

func TestEditDistance(t *testing.T) {
	cases := []struct {
		a, b  string
		limit int
		want  int
	}{
		{"tset", "test", 2, 2},
		{"tset", "set", 2, 1},
		{"abc", "abc", 2, 0},
		{"abc", "abd", 2, 1},
		{"short", "muchlongerword", 2, 3}, // overflow reported as limit+1
	}
	for _, c := range cases {
		if got := editDistance(c.a, c.b, c.limit); got != c.want {
			t.Errorf("editDistance(%q,%q,%d)=%d, want %d", c.a, c.b, c.limit, got, c.want)
		}
	}
}
