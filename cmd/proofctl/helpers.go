package main

import (
	"log"
	"path/filepath"

	"proofd/internal/config"
	"proofd/internal/dict"
	"proofd/internal/history"
)

// eventLogPath returns the path to the daemon's JSONL event log.
func eventLogPath() string {
	return filepath.Join(config.DataDir(), "events.jsonl")
}

// openHistory opens the history store or fatals.
func openHistory() *history.Store {
	st, err := history.Open(filepath.Join(config.DataDir(), "history.db"))
	if err != nil {
		log.Fatalf("failed to open history database: %v", err)
	}
	return st
}

// openDict opens the user dictionary or fatals.
func openDict() *dict.Dictionary {
	d, err := dict.Open(filepath.Join(config.DataDir(), "dictionary.txt"))
	if err != nil {
		log.Fatalf("failed to open dictionary: %v", err)
	}
	return d
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}
