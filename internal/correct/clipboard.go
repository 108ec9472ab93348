package correct

import (
	"sync"

	"github.com/atotto/clipboard"

	"proofd/internal/logging"
)

// Clipboard abstracts the system pasteboard. ChangeCount is a
// monotonically increasing sequence number that advances whenever the
// clipboard's contents change, by us or anyone else; the restore step
// uses it to avoid clobbering something the user copied in the
// meantime.
type Clipboard interface {
	Read() (string, bool)
	Write(text string) bool
	ChangeCount() int64
}

// Paster synthesizes a paste keystroke into the focused application.
// Platform-specific; injected at wiring time.
type Paster interface {
	Paste() bool
}

// SystemClipboard adapts the system pasteboard. The underlying library
// exposes no native change sequence, so the count is tracked by
// observing content changes at Read/Write time: an approximation, but
// a conservative one (a missed external change reads as unchanged
// content, which restores identical data anyway).
type SystemClipboard struct {
	mu       sync.Mutex
	lastSeen string
	count    int64
}

// NewSystemClipboard returns a Clipboard backed by the OS pasteboard.
func NewSystemClipboard() *SystemClipboard {
	c := &SystemClipboard{}
	if s, err := clipboard.ReadAll(); err == nil {
		c.lastSeen = s
	}
	return c
}

// Read implements Clipboard.
func (c *SystemClipboard) Read() (string, bool) {
	s, err := clipboard.ReadAll()
	if err != nil {
		logging.Debug("clipboard read failed", "error", err)
		return "", false
	}
	c.mu.Lock()
	if s != c.lastSeen {
		c.lastSeen = s
		c.count++
	}
	c.mu.Unlock()
	return s, true
}

// Write implements Clipboard.
func (c *SystemClipboard) Write(text string) bool {
	if err := clipboard.WriteAll(text); err != nil {
		logging.Debug("clipboard write failed", "error", err)
		return false
	}
	c.mu.Lock()
	c.lastSeen = text
	c.count++
	c.mu.Unlock()
	return true
}

// ChangeCount implements Clipboard. Reading first keeps the count
// honest about external writes since our last access.
func (c *SystemClipboard) ChangeCount() int64 {
	c.Read()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
