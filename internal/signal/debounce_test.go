package signal

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebounceCoalesces(t *testing.T) {
	var fired atomic.Int32
	d := New(50*time.Millisecond, func() { fired.Add(1) })
	defer d.Stop()

	// Burst of signals inside the quiet window.
	for i := 0; i < 10; i++ {
		d.Signal()
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("expected exactly 1 firing, got %d", got)
	}
}

func TestDebounceTimedFromLastSignal(t *testing.T) {
	var firedAt atomic.Int64
	d := New(60*time.Millisecond, func() { firedAt.Store(time.Now().UnixNano()) })
	defer d.Stop()

	d.Signal()
	time.Sleep(30 * time.Millisecond)
	last := time.Now()
	d.Signal()

	time.Sleep(120 * time.Millisecond)
	at := firedAt.Load()
	if at == 0 {
		t.Fatal("callback never fired")
	}
	elapsed := time.Unix(0, at).Sub(last)
	if elapsed < 55*time.Millisecond {
		t.Errorf("fired %v after last signal, want >= 60ms", elapsed)
	}
}

func TestFlushFiresImmediately(t *testing.T) {
	var fired atomic.Int32
	d := New(time.Hour, func() { fired.Add(1) })
	defer d.Stop()

	d.Signal()
	d.Flush()
	if got := fired.Load(); got != 1 {
		t.Errorf("expected 1 firing after flush, got %d", got)
	}

	// Flush with nothing pending is a no-op.
	d.Flush()
	if got := fired.Load(); got != 1 {
		t.Errorf("expected no extra firing, got %d", got)
	}
}

func TestCancelSuppressesFiring(t *testing.T) {
	var fired atomic.Int32
	d := New(30*time.Millisecond, func() { fired.Add(1) })
	defer d.Stop()

	d.Signal()
	d.Cancel()
	time.Sleep(80 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("expected no firing after cancel, got %d", got)
	}
}

func TestStopIgnoresLateSignals(t *testing.T) {
	var fired atomic.Int32
	d := New(20*time.Millisecond, func() { fired.Add(1) })

	d.Signal()
	d.Stop()
	d.Signal()
	time.Sleep(60 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("expected no firing after stop, got %d", got)
	}
}

func TestReentryWhilePending(t *testing.T) {
	var fired atomic.Int32
	d := New(40*time.Millisecond, func() { fired.Add(1) })
	defer d.Stop()

	d.Signal()
	time.Sleep(60 * time.Millisecond) // first quiet period elapses
	d.Signal()
	time.Sleep(60 * time.Millisecond) // second quiet period elapses

	if got := fired.Load(); got != 2 {
		t.Errorf("expected 2 firings across 2 quiet periods, got %d", got)
	}
}
