// Package dict persists the user's personal word list: a plain text
// file, one word per line, case-preserved, written atomically.
package dict

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"proofd/internal/logging"
)

// Dictionary is the durable user word list. Safe for concurrent use.
// Duplicate detection is case-insensitive; stored casing is whatever
// the user first added.
type Dictionary struct {
	mu    sync.RWMutex
	path  string
	words map[string]string // lowercase -> stored casing

	watcher  *fsnotify.Watcher
	onReload func()
	done     chan struct{}
}

// Open loads or creates the dictionary at path.
func Open(path string) (*Dictionary, error) {
	d := &Dictionary{path: path, words: make(map[string]string)}
	if err := d.load(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dictionary) load() error {
	f, err := os.Open(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // empty dictionary until first Add
		}
		return fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	words := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w == "" {
			continue
		}
		words[strings.ToLower(w)] = w
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read dictionary: %w", err)
	}

	d.mu.Lock()
	d.words = words
	d.mu.Unlock()
	return nil
}

// Contains reports whether word is in the dictionary, ignoring case.
func (d *Dictionary) Contains(word string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.words[strings.ToLower(strings.TrimSpace(word))]
	return ok
}

// Add inserts word and persists. Idempotent: adding an existing word
// (any casing) is a no-op and does not rewrite the file.
func (d *Dictionary) Add(word string) error {
	w := strings.TrimSpace(word)
	if w == "" {
		return nil
	}

	d.mu.Lock()
	key := strings.ToLower(w)
	if _, exists := d.words[key]; exists {
		d.mu.Unlock()
		return nil
	}
	d.words[key] = w
	d.mu.Unlock()

	return d.persist()
}

// Remove deletes word (case-insensitive) and persists.
func (d *Dictionary) Remove(word string) error {
	key := strings.ToLower(strings.TrimSpace(word))

	d.mu.Lock()
	if _, exists := d.words[key]; !exists {
		d.mu.Unlock()
		return nil
	}
	delete(d.words, key)
	d.mu.Unlock()

	return d.persist()
}

// Words returns the stored words, sorted.
func (d *Dictionary) Words() []string {
	d.mu.RLock()
	out := make([]string, 0, len(d.words))
	for _, w := range d.words {
		out = append(out, w)
	}
	d.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Len returns the word count.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.words)
}

// persist writes atomically: temp file, sync, rename. A crash leaves
// either the old file or the new one, never a torn write.
func (d *Dictionary) persist() error {
	if err := os.MkdirAll(filepath.Dir(d.path), 0755); err != nil {
		return fmt.Errorf("create dictionary dir: %w", err)
	}

	tmp := d.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp dictionary: %w", err)
	}

	d.mu.RLock()
	words := make([]string, 0, len(d.words))
	for _, w := range d.words {
		words = append(words, w)
	}
	d.mu.RUnlock()
	sort.Strings(words)

	w := bufio.NewWriter(f)
	for _, word := range words {
		fmt.Fprintln(w, word)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write dictionary: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync dictionary: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close dictionary: %w", err)
	}

	if err := os.Rename(tmp, d.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename dictionary: %w", err)
	}
	return nil
}

// Watch reloads the dictionary when the file changes on disk (edited
// by hand, synced from another machine) and calls onReload afterward.
// The callback runs on the watcher goroutine and should only enqueue.
func (d *Dictionary) Watch(onReload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory: rename-based atomic writes (including our
	// own) replace the file inode, and watching the path directly
	// would silently detach.
	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		watcher.Close()
		return err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch dictionary dir: %w", err)
	}

	d.watcher = watcher
	d.onReload = onReload
	d.done = make(chan struct{})

	go d.watchLoop()
	return nil
}

func (d *Dictionary) watchLoop() {
	defer close(d.done)
	for {
		select {
		case ev, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != d.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := d.load(); err != nil {
				logging.Warn("dictionary reload failed", "error", err)
				continue
			}
			logging.Debug("dictionary reloaded", "words", d.Len())
			if d.onReload != nil {
				d.onReload()
			}
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("dictionary watcher error", "error", err)
		}
	}
}

// Close stops the watcher, if running.
func (d *Dictionary) Close() error {
	if d.watcher == nil {
		return nil
	}
	err := d.watcher.Close()
	<-d.done
	return err
}
