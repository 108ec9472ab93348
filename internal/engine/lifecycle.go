package engine

import (
	"fmt"
	"sync"
	"time"
)

// State is the coarse engine health observed by UI collaborators.
type State int

const (
	StateInitializing State = iota
	StateReady
	StateDegraded
	StateFailed
)

// String returns the state name; degraded states include the retry
// counter, e.g. "degraded(1)".
func (s Status) String() string {
	switch s.State {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateDegraded:
		return fmt.Sprintf("degraded(%d)", s.Retry)
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is a point-in-time snapshot of the lifecycle.
type Status struct {
	State State
	Retry int
}

// Lifecycle drives engine construction retries with bounded backoff.
//
//	Initializing -> Ready            (construction succeeded)
//	Initializing -> Degraded(0)      (construction failed)
//	Degraded(n)  -> retry after delays[n] -> Ready | Degraded(n+1)
//	Degraded(len(delays)-1) -> failure -> Failed (terminal)
//	Ready        -> Degraded(0)      (later engine fault)
//
// All transition methods must be called from the coordinator's
// foreground loop. The retry timer fires onRetry, which should enqueue
// a message back into that loop rather than acting directly.
type Lifecycle struct {
	mu      sync.Mutex
	status  Status
	delays  []time.Duration
	timer   *time.Timer
	onRetry func()
}

// NewLifecycle creates a lifecycle in StateInitializing. onRetry is
// invoked from a timer goroutine when a retry is due.
func NewLifecycle(delays []time.Duration, onRetry func()) *Lifecycle {
	if len(delays) == 0 {
		delays = []time.Duration{2 * time.Second, 5 * time.Second, 10 * time.Second}
	}
	return &Lifecycle{
		status:  Status{State: StateInitializing},
		delays:  delays,
		onRetry: onRetry,
	}
}

// Status returns the current state snapshot.
func (l *Lifecycle) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Ready reports whether lint results are currently meaningful.
func (l *Lifecycle) Ready() bool {
	return l.Status().State == StateReady
}

// ConstructionSucceeded transitions to Ready and clears any pending
// retry.
func (l *Lifecycle) ConstructionSucceeded() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopTimer()
	l.status = Status{State: StateReady}
}

// ConstructionFailed records a failed attempt. From Initializing it
// moves to Degraded(0) and schedules the first retry; from Degraded(n)
// it advances to Degraded(n+1) or, past the end of the schedule, to
// the terminal Failed state.
func (l *Lifecycle) ConstructionFailed() {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.status.State {
	case StateInitializing, StateReady:
		l.status = Status{State: StateDegraded, Retry: 0}
		l.schedule(0)
	case StateDegraded:
		next := l.status.Retry + 1
		if next < len(l.delays) {
			l.status = Status{State: StateDegraded, Retry: next}
			l.schedule(next)
		} else {
			l.stopTimer()
			l.status = Status{State: StateFailed}
		}
	case StateFailed:
		// Terminal; nothing to schedule.
	}
}

// Fault records an engine failure after it had been ready. The engine
// drops back to Degraded(0) with a fresh retry schedule.
func (l *Lifecycle) Fault() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopTimer()
	l.status = Status{State: StateDegraded, Retry: 0}
	l.schedule(0)
}

// Stop cancels any pending retry timer. Terminal for teardown: the
// state is left as-is but no further onRetry will fire.
func (l *Lifecycle) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopTimer()
	l.onRetry = nil
}

// schedule arms the retry timer for attempt n. Caller holds l.mu.
// One timer per attempt, never a chain: replacing the timer keeps
// teardown deterministic.
func (l *Lifecycle) schedule(n int) {
	l.stopTimer()
	l.timer = time.AfterFunc(l.delays[n], func() {
		l.mu.Lock()
		fn := l.onRetry
		l.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
}

// stopTimer cancels the pending timer, if any. Caller holds l.mu.
func (l *Lifecycle) stopTimer() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}
