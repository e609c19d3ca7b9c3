package track

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Result is the outcome of one reconciliation pass.
type Result struct {
	Jobs []Job

	// Active reports whether the in-progress snapshot contained at least
	// one entry matching a tracked job. It drives the poller's cadence.
	Active bool
}

// Reconcile merges the two latest backend snapshots into the next ledger
// state. It is a pure function: the input slice is never mutated, and the
// same inputs always produce the same result.
//
// Per job: terminal jobs are left untouched; a job seen in the in-progress
// view advances to ingesting; a job absent from in-progress but present in
// the completed view advances to complete; a job absent from both keeps its
// current status — absence is snapshot lag, not evidence of failure, so the
// reconciler never invents an error. Crawl roots complete once every
// discovered child is terminal and at least one completed.
//
// Snapshot entries whose base URL matches a tracked root but whose key is
// not yet in the ledger become new child jobs (fan-out). Entries with no
// matching root belong to some other session and are ignored.
func Reconcile(jobs []Job, progress []ProgressEntry, completed []CompletedEntry) Result {
	next := slices.Clone(jobs)

	index := make(map[string]int, len(next))
	roots := make(map[string]int)
	for i, j := range next {
		index[j.Key] = i
		if j.Root() {
			roots[j.BaseURL] = i
		}
	}

	inProg := make(map[string]struct{}, len(progress))
	for _, e := range progress {
		inProg[e.Key] = struct{}{}
	}
	done := make(map[string]struct{}, len(completed))
	for _, e := range completed {
		done[e.Key] = struct{}{}
	}

	active := lo.SomeBy(progress, func(e ProgressEntry) bool {
		if _, ok := index[e.Key]; ok {
			return true
		}
		_, ok := roots[e.BaseURL]
		return e.BaseURL != "" && ok
	})

	// Fan-out from the in-progress view. New children start at ingesting.
	for _, e := range progress {
		if e.BaseURL == "" {
			continue
		}
		ri, ok := roots[e.BaseURL]
		if !ok {
			continue
		}
		if _, exists := index[e.Key]; exists {
			continue
		}
		index[e.Key] = len(next)
		next = append(next, Job{
			Key:       e.Key,
			Kind:      next[ri].Kind,
			Status:    StatusIngesting,
			BaseURL:   e.BaseURL,
			SourceURL: e.SourceURL,
		})
	}

	// Fan-out from the completed view: a fast page can finish before it
	// was ever observed in progress. The completed view carries no
	// base_url, so children are matched to their root by URL prefix and
	// created directly as complete.
	for _, e := range completed {
		if _, exists := index[e.Key]; exists {
			continue
		}
		base := matchRootByPrefix(roots, e)
		if base == "" {
			continue
		}
		index[e.Key] = len(next)
		next = append(next, Job{
			Key:       e.Key,
			Kind:      next[roots[base]].Kind,
			Status:    StatusComplete,
			BaseURL:   base,
			SourceURL: e.SourceURL,
		})
	}

	// Per-key transitions for documents and crawl children.
	for i := range next {
		j := next[i]
		if j.Status.Terminal() || j.Root() {
			continue
		}
		if _, ok := inProg[j.Key]; ok {
			next[i].Status = advance(j.Status, StatusIngesting)
		} else if _, ok := done[j.Key]; ok {
			next[i].Status = advance(j.Status, StatusComplete)
		}
	}

	// Roots settle after their children. A childless root behaves like a
	// document on its own key.
	for _, ri := range roots {
		r := next[ri]
		if r.Status.Terminal() {
			continue
		}
		children := lo.Filter(next, func(j Job, _ int) bool {
			return j.BaseURL == r.BaseURL && j.Key != r.Key
		})
		if len(children) == 0 {
			if _, ok := inProg[r.Key]; ok {
				next[ri].Status = advance(r.Status, StatusIngesting)
			} else if _, ok := done[r.Key]; ok {
				next[ri].Status = advance(r.Status, StatusComplete)
			}
			continue
		}
		anyActive := lo.SomeBy(children, func(c Job) bool { return !c.Status.Terminal() })
		anyComplete := lo.SomeBy(children, func(c Job) bool { return c.Status == StatusComplete })
		switch {
		case anyActive:
			next[ri].Status = advance(r.Status, StatusIngesting)
		case anyComplete:
			next[ri].Status = advance(r.Status, StatusComplete)
		}
	}

	return Result{Jobs: next, Active: active}
}

// advance moves a status forward, never backward.
func advance(cur, to Status) Status {
	if to.rank() > cur.rank() {
		return to
	}
	return cur
}

// matchRootByPrefix finds the tracked root whose base URL is the longest
// prefix of the entry's URL. Returns "" when no root matches.
func matchRootByPrefix(roots map[string]int, e CompletedEntry) string {
	candidate := e.SourceURL
	if candidate == "" {
		candidate = e.Key
	}
	var best string
	for base := range roots {
		if underBase(candidate, base) && len(base) > len(best) {
			best = base
		}
	}
	return best
}

// underBase reports whether url lives under base. A bare string prefix is
// not enough: "https://x.com/docs-archive" must not match the root
// "https://x.com/docs", so the prefix has to end on a URL boundary.
func underBase(url, base string) bool {
	if !strings.HasPrefix(url, base) {
		return false
	}
	if len(url) == len(base) || strings.HasSuffix(base, "/") {
		return true
	}
	switch url[len(base)] {
	case '/', '?', '#':
		return true
	}
	return false
}
