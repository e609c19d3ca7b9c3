package track

import (
	"sync"
	"time"
)

// DefaultGrace is how long final statuses stay visible before the ledger
// is retired.
const DefaultGrace = 5 * time.Second

// AutoCloser retires the ledger once every job is terminal. The grace
// delay keeps final statuses on screen for a moment; a new job seeded
// before the delay elapses disarms the pending dismissal.
type AutoCloser struct {
	mu      sync.Mutex
	ledger  *Ledger
	grace   time.Duration
	timer   *time.Timer
	stopped bool
	onClose func()
}

// NewAutoCloser creates an auto-closer for the ledger. onClose runs once,
// after the ledger has been cleared; it may be nil.
func NewAutoCloser(ledger *Ledger, grace time.Duration, onClose func()) *AutoCloser {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &AutoCloser{ledger: ledger, grace: grace, onClose: onClose}
}

// Observe re-evaluates the ledger after a mutation. Wired as the ledger's
// change hook.
func (a *AutoCloser) Observe() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	if a.ledger.AllTerminal() {
		if a.timer == nil {
			a.timer = time.AfterFunc(a.grace, a.fire)
		}
		return
	}
	// Session active again (or still): disarm any pending dismissal.
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// Stop disarms the closer permanently. The onClose callback will not run
// after Stop returns unless it already fired.
func (a *AutoCloser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *AutoCloser) fire() {
	a.mu.Lock()
	if a.stopped || a.timer == nil {
		a.mu.Unlock()
		return
	}
	a.timer = nil
	a.stopped = true
	a.mu.Unlock()

	a.ledger.Clear()
	if a.onClose != nil {
		a.onClose()
	}
}
