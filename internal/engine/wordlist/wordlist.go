// Package wordlist is the built-in reference analysis engine: a plain
// word-list spell checker with edit-distance suggestions. It exists so
// the daemon works end to end without an external linter plugged in.
package wordlist

import (
	"bufio"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode"

	"proofd/internal/lint"
	"proofd/internal/logging"
)

// maxSuggestions bounds suggestion generation; the pipeline trims
// further per config.
const maxSuggestions = 8

// wellKnownListPaths are tried in order when no explicit path is given.
var wellKnownListPaths = []string{
	"/usr/share/dict/words",
	"/usr/dict/words",
}

// Engine checks words against a base list merged with user-added
// words. Safe for use from a single goroutine (the engine host).
type Engine struct {
	mu       sync.RWMutex
	base     map[string]struct{}
	user     map[string]struct{}
	byLength map[int][]string // suggestion candidates bucketed by rune count
	degraded bool
}

// New loads the word list at path, or the first well-known system list
// when path is empty. A missing or empty list yields a degraded engine
// rather than an error: the daemon keeps running, findings stay empty.
func New(path string) (*Engine, error) {
	paths := wellKnownListPaths
	if path != "" {
		paths = []string{path}
	}

	for _, p := range paths {
		words, err := loadList(p)
		if err != nil {
			continue
		}
		e := &Engine{
			base:     words,
			user:     make(map[string]struct{}),
			byLength: bucketByLength(words),
		}
		logging.Info("word list loaded", "path", p, "words", len(words))
		return e, nil
	}

	logging.Warn("no word list available, engine degraded")
	return &Engine{degraded: true}, nil
}

// NewFromWords builds an engine from an in-memory list, for tests and
// embedded deployments.
func NewFromWords(words []string) *Engine {
	base := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			base[w] = struct{}{}
		}
	}
	return &Engine{
		base:     base,
		user:     make(map[string]struct{}),
		byLength: bucketByLength(base),
	}
}

func loadList(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	words := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w != "" {
			words[w] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, os.ErrInvalid
	}
	return words, nil
}

func bucketByLength(words map[string]struct{}) map[int][]string {
	buckets := make(map[int][]string)
	for w := range words {
		n := len([]rune(w))
		buckets[n] = append(buckets[n], w)
	}
	for _, b := range buckets {
		sort.Strings(b)
	}
	return buckets
}

// Degraded implements engine.Engine.
func (e *Engine) Degraded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.degraded
}

// AddWord implements engine.Engine.
func (e *Engine) AddWord(word string) {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.degraded {
		return
	}
	e.user[w] = struct{}{}
}

// RemoveWord implements engine.Engine.
func (e *Engine) RemoveWord(word string) {
	w := strings.ToLower(strings.TrimSpace(word))
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.user, w)
}

// Lint implements engine.Engine: tokenize, look up, suggest.
func (e *Engine) Lint(text string) []lint.Finding {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.degraded || text == "" {
		return nil
	}

	var findings []lint.Finding
	for _, tok := range tokenize(text) {
		if e.known(tok.word) {
			continue
		}
		findings = append(findings, lint.Finding{
			Category:     lint.Spelling,
			Message:      "Unknown word",
			Span:         tok.span,
			OriginalText: tok.word,
			Suggestions:  e.suggest(tok.word),
		})
	}
	return findings
}

// known accepts exact, lowercase, and words the user added.
func (e *Engine) known(word string) bool {
	w := strings.ToLower(word)
	if _, ok := e.base[w]; ok {
		return true
	}
	_, ok := e.user[w]
	return ok
}

type token struct {
	word string
	span lint.Span
}

// tokenize splits text into letter runs with rune-offset spans.
// Single letters, ALL-CAPS tokens (acronyms), and runs adjacent to
// digits are skipped.
func tokenize(text string) []token {
	runes := []rune(text)
	var toks []token
	i := 0
	for i < len(runes) {
		if !unicode.IsLetter(runes[i]) && runes[i] != '\'' {
			i++
			continue
		}
		start := i
		for i < len(runes) && (unicode.IsLetter(runes[i]) || runes[i] == '\'') {
			i++
		}
		end := i

		// Trim surrounding apostrophes, keeping the span aligned with
		// the word the finding will carry.
		for start < end && runes[start] == '\'' {
			start++
		}
		for end > start && runes[end-1] == '\'' {
			end--
		}
		word := string(runes[start:end])

		// Identifiers touching digits ("password123") are not prose.
		if (start > 0 && unicode.IsDigit(runes[start-1])) ||
			(i < len(runes) && unicode.IsDigit(runes[i])) {
			continue
		}
		if end-start < 2 || isAllUpper(word) {
			continue
		}
		toks = append(toks, token{word: word, span: lint.Span{Start: start, End: end}})
	}
	return toks
}

func isAllUpper(s string) bool {
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// suggest returns base-list words within edit distance 1, then 2,
// sorted, capped. Candidates are limited to nearby lengths so the scan
// stays proportional to the relevant buckets, not the whole list.
func (e *Engine) suggest(word string) []string {
	w := strings.ToLower(word)
	n := len([]rune(w))

	var near1, near2 []string
	for length := n - 2; length <= n+2; length++ {
		for _, cand := range e.byLength[length] {
			switch editDistance(w, cand, 2) {
			case 1:
				near1 = append(near1, cand)
			case 2:
				near2 = append(near2, cand)
			}
		}
	}

	out := append(near1, near2...)
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	// Preserve the original casing style for Title-case words.
	if isTitleCase(word) {
		for i, s := range out {
			out[i] = strings.ToUpper(s[:1]) + s[1:]
		}
	}
	return out
}

func isTitleCase(s string) bool {
	r := []rune(s)
	return len(r) > 1 && unicode.IsUpper(r[0]) && !isAllUpper(s)
}

// editDistance computes Levenshtein distance, bailing out early once
// the distance exceeds limit. Returns limit+1 on overflow.
func editDistance(a, b string, limit int) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if abs(la-lb) > limit {
		return limit + 1
	}

	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		cur[0] = i
		rowMin := cur[0]
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if cur[j] < rowMin {
				rowMin = cur[j]
			}
		}
		if rowMin > limit {
			return limit + 1
		}
		prev, cur = cur, prev
	}
	if prev[lb] > limit {
		return limit + 1
	}
	return prev[lb]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
