package history

import (
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndSummarizePasses(t *testing.T) {
	s := openTestStore(t)

	now := time.Now()
	passes := []Pass{
		{Time: now, Generation: 1, Spelling: 2, Grammar: 1, Dur: 12 * time.Millisecond},
		{Time: now, Generation: 2, Spelling: 1, Dropped: 1, Dur: 8 * time.Millisecond},
		{Time: now, Generation: 3, Stale: true, Dur: 20 * time.Millisecond},
	}
	for _, p := range passes {
		if err := s.RecordPass(p); err != nil {
			t.Fatalf("RecordPass: %v", err)
		}
	}

	sum, err := s.Summarize(now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.Passes != 3 {
		t.Errorf("Passes = %d, want 3", sum.Passes)
	}
	if sum.StalePasses != 1 {
		t.Errorf("StalePasses = %d, want 1", sum.StalePasses)
	}
	if sum.SpellingTotal != 3 {
		t.Errorf("SpellingTotal = %d, want 3", sum.SpellingTotal)
	}
	if sum.GrammarTotal != 1 {
		t.Errorf("GrammarTotal = %d, want 1", sum.GrammarTotal)
	}
	if sum.DroppedTotal != 1 {
		t.Errorf("DroppedTotal = %d, want 1", sum.DroppedTotal)
	}
	if sum.AvgPassMs < 13 || sum.AvgPassMs > 14 {
		t.Errorf("AvgPassMs = %f, want ~13.33", sum.AvgPassMs)
	}
}

func TestSummarizeCutoffExcludesOldRows(t *testing.T) {
	s := openTestStore(t)

	old := time.Now().Add(-2 * time.Hour)
	if err := s.RecordPass(Pass{Time: old, Generation: 1, Spelling: 5}); err != nil {
		t.Fatalf("RecordPass: %v", err)
	}
	if err := s.RecordPass(Pass{Generation: 2, Spelling: 1}); err != nil {
		t.Fatalf("RecordPass: %v", err)
	}

	sum, err := s.Summarize(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.Passes != 1 {
		t.Errorf("Passes = %d, want 1", sum.Passes)
	}
	if sum.SpellingTotal != 1 {
		t.Errorf("SpellingTotal = %d, want 1", sum.SpellingTotal)
	}
}

func TestRecordAndSummarizeCorrections(t *testing.T) {
	s := openTestStore(t)

	corrections := []Correction{
		{Category: "spelling", Strategy: 1, OK: true},
		{Category: "spelling", Strategy: 1, OK: true},
		{Category: "grammar", Strategy: 2, OK: true},
		{Category: "spelling", Strategy: 0, OK: false},
	}
	for _, c := range corrections {
		if err := s.RecordCorrection(c); err != nil {
			t.Fatalf("RecordCorrection: %v", err)
		}
	}

	sum, err := s.Summarize(time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.Corrections != 4 {
		t.Errorf("Corrections = %d, want 4", sum.Corrections)
	}
	if sum.CorrectionsOK != 3 {
		t.Errorf("CorrectionsOK = %d, want 3", sum.CorrectionsOK)
	}
	if sum.StrategyCounts[1] != 2 {
		t.Errorf("StrategyCounts[1] = %d, want 2", sum.StrategyCounts[1])
	}
	if sum.StrategyCounts[2] != 1 {
		t.Errorf("StrategyCounts[2] = %d, want 1", sum.StrategyCounts[2])
	}
}

func TestRecentEngineEvents(t *testing.T) {
	s := openTestStore(t)

	base := time.Now().Add(-time.Minute)
	events := []EngineEvent{
		{Time: base, State: "initializing"},
		{Time: base.Add(time.Second), State: "ready"},
		{Time: base.Add(2 * time.Second), State: "degraded(0)", Retry: 0},
		{Time: base.Add(3 * time.Second), State: "ready"},
	}
	for _, e := range events {
		if err := s.RecordEngineEvent(e); err != nil {
			t.Fatalf("RecordEngineEvent: %v", err)
		}
	}

	got, err := s.RecentEngineEvents(2)
	if err != nil {
		t.Fatalf("RecentEngineEvents: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].State != "ready" {
		t.Errorf("newest state = %q, want %q", got[0].State, "ready")
	}
	if got[1].State != "degraded(0)" {
		t.Errorf("second state = %q, want %q", got[1].State, "degraded(0)")
	}
}
