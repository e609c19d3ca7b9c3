package track

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrDuplicateKey is returned when seeding a job whose key is already
// tracked.
var ErrDuplicateKey = errors.New("duplicate job key")

// Ledger is the set of jobs for one active ingestion session. It is the
// single owner of job state: submission adapters seed records and mark
// submission failures, the reconciler advances everything else. All access
// goes through one mutex so poll ticks and submissions serialize.
type Ledger struct {
	mu       sync.Mutex
	jobs     []Job
	index    map[string]int
	children map[string]map[string]struct{} // base URL → child keys
	onChange func()
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		index:    make(map[string]int),
		children: make(map[string]map[string]struct{}),
	}
}

// SetOnChange registers a hook invoked after every mutation, outside the
// ledger lock. Used by the auto-closer.
func (l *Ledger) SetOnChange(fn func()) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// Seed appends a new job. Fails if the key is already tracked.
func (l *Ledger) Seed(j Job) error {
	if j.Key == "" {
		return errors.New("job key must not be empty")
	}
	l.mu.Lock()
	if _, exists := l.index[j.Key]; exists {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateKey, j.Key)
	}
	l.index[j.Key] = len(l.jobs)
	l.jobs = append(l.jobs, j)
	l.trackChild(j)
	notify := l.onChange
	l.mu.Unlock()

	if notify != nil {
		notify()
	}
	return nil
}

// MarkError moves a job directly to the error state with the given detail.
// This is the submission adapters' path for kickoff failures, the only way
// a job becomes an error before any poll has run. Unknown keys and jobs
// already terminal are left alone.
func (l *Ledger) MarkError(key, detail string) {
	l.mu.Lock()
	i, ok := l.index[key]
	if !ok || l.jobs[i].Status.Terminal() {
		l.mu.Unlock()
		return
	}
	l.jobs[i].Status = StatusError
	l.jobs[i].ErrorDetail = detail
	notify := l.onChange
	l.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// Observe applies one reconciliation pass against the two snapshots and
// reports whether the in-progress view matched any tracked job.
func (l *Ledger) Observe(progress []ProgressEntry, completed []CompletedEntry) bool {
	l.mu.Lock()
	res := Reconcile(l.jobs, progress, completed)
	l.jobs = res.Jobs
	l.reindex()
	notify := l.onChange
	l.mu.Unlock()

	if notify != nil {
		notify()
	}
	return res.Active
}

// Jobs returns a copy of the tracked jobs in seed/discovery order.
func (l *Ledger) Jobs() []Job {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.jobs)
}

// Len returns the number of tracked jobs.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.jobs)
}

// ChildCount returns how many child jobs a crawl root has spawned so far.
func (l *Ledger) ChildCount(baseURL string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.children[baseURL])
}

// AllTerminal reports whether every tracked job has reached a terminal
// state. An empty ledger is not considered terminal.
func (l *Ledger) AllTerminal() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.jobs) == 0 {
		return false
	}
	for _, j := range l.jobs {
		if !j.Status.Terminal() {
			return false
		}
	}
	return true
}

// Clear drops all tracked jobs. Called when the session is dismissed.
func (l *Ledger) Clear() {
	l.mu.Lock()
	l.jobs = nil
	l.index = make(map[string]int)
	l.children = make(map[string]map[string]struct{})
	notify := l.onChange
	l.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// reindex rebuilds the key and parent→children indexes after a
// reconciliation pass. Caller holds the lock.
func (l *Ledger) reindex() {
	l.index = make(map[string]int, len(l.jobs))
	l.children = make(map[string]map[string]struct{})
	for i, j := range l.jobs {
		l.index[j.Key] = i
		l.trackChild(j)
	}
}

// trackChild records a crawl child in the parent index. Caller holds the
// lock.
func (l *Ledger) trackChild(j Job) {
	if j.BaseURL == "" || j.Root() {
		return
	}
	set, ok := l.children[j.BaseURL]
	if !ok {
		set = make(map[string]struct{})
		l.children[j.BaseURL] = set
	}
	set[j.Key] = struct{}{}
}
