// Package history provides SQLite persistence for pipeline statistics:
// analysis passes, applied corrections, and engine health transitions.
//
// The store records counts, categories, and durations. It never stores
// the text being proofread or the user's words.
package history

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex // Protects all database operations
}

// Pass summarizes one completed analysis pass.
type Pass struct {
	Time       time.Time
	Generation uint64
	Spelling   int
	Grammar    int
	Dropped    int // findings that lost their spot on screen or in text
	Stale      bool
	Dur        time.Duration
}

// Correction records one write-back attempt.
type Correction struct {
	Time     time.Time
	Category string
	Strategy int // 1..3, or 0 when every strategy failed
	OK       bool
}

// EngineEvent records one lifecycle transition.
type EngineEvent struct {
	Time  time.Time
	State string
	Retry int
}

// Open creates a Store with the given database path.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so every pooled connection sees the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

// createTables creates the required tables and indexes if they don't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS passes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts DATETIME NOT NULL,
		generation INTEGER NOT NULL,
		spelling INTEGER DEFAULT 0,
		grammar INTEGER DEFAULT 0,
		dropped INTEGER DEFAULT 0,
		stale INTEGER DEFAULT 0,
		dur_ms REAL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_passes_ts ON passes(ts DESC);

	CREATE TABLE IF NOT EXISTS corrections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts DATETIME NOT NULL,
		category TEXT NOT NULL,
		strategy INTEGER NOT NULL,
		ok INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_corrections_ts ON corrections(ts DESC);

	CREATE TABLE IF NOT EXISTS engine_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts DATETIME NOT NULL,
		state TEXT NOT NULL,
		retry INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_engine_events_ts ON engine_events(ts DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// RecordPass stores one pass summary. Thread-safe: acquires write lock.
func (s *Store) RecordPass(p Pass) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Time.IsZero() {
		p.Time = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO passes (ts, generation, spelling, grammar, dropped, stale, dur_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.Time, p.Generation, p.Spelling, p.Grammar, p.Dropped, boolToInt(p.Stale),
		float64(p.Dur)/float64(time.Millisecond))
	return err
}

// RecordCorrection stores one correction outcome. Thread-safe.
func (s *Store) RecordCorrection(c Correction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Time.IsZero() {
		c.Time = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO corrections (ts, category, strategy, ok)
		VALUES (?, ?, ?, ?)
	`, c.Time, c.Category, c.Strategy, boolToInt(c.OK))
	return err
}

// RecordEngineEvent stores one lifecycle transition. Thread-safe.
func (s *Store) RecordEngineEvent(e EngineEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO engine_events (ts, state, retry)
		VALUES (?, ?, ?)
	`, e.Time, e.State, e.Retry)
	return err
}

// Summary aggregates pipeline activity since a cutoff.
type Summary struct {
	Passes         int
	StalePasses    int
	SpellingTotal  int
	GrammarTotal   int
	DroppedTotal   int
	Corrections    int
	CorrectionsOK  int
	StrategyCounts map[int]int
	AvgPassMs      float64
}

// Summarize computes totals since the cutoff. Thread-safe: read lock.
func (s *Store) Summarize(since time.Time) (*Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := &Summary{StrategyCounts: make(map[int]int)}

	row := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(stale), 0),
		       COALESCE(SUM(spelling), 0),
		       COALESCE(SUM(grammar), 0),
		       COALESCE(SUM(dropped), 0),
		       COALESCE(AVG(dur_ms), 0)
		FROM passes WHERE ts >= ?
	`, since)
	if err := row.Scan(&sum.Passes, &sum.StalePasses, &sum.SpellingTotal,
		&sum.GrammarTotal, &sum.DroppedTotal, &sum.AvgPassMs); err != nil {
		return nil, fmt.Errorf("summarize passes: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT strategy, ok, COUNT(*) FROM corrections
		WHERE ts >= ? GROUP BY strategy, ok
	`, since)
	if err != nil {
		return nil, fmt.Errorf("summarize corrections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var strategy, ok, count int
		if err := rows.Scan(&strategy, &ok, &count); err != nil {
			return nil, err
		}
		sum.Corrections += count
		if ok != 0 {
			sum.CorrectionsOK += count
		}
		sum.StrategyCounts[strategy] += count
	}
	return sum, rows.Err()
}

// RecentEngineEvents returns the latest lifecycle transitions, newest
// first. Thread-safe: read lock.
func (s *Store) RecentEngineEvents(limit int) ([]EngineEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT ts, state, retry FROM engine_events
		ORDER BY ts DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EngineEvent
	for rows.Next() {
		var e EngineEvent
		if err := rows.Scan(&e.Time, &e.State, &e.Retry); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
