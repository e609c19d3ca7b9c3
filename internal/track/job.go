// Package track implements the ingestion status reconciliation engine:
// the job ledger, the adaptive status poller, and the pure merge algorithm
// that turn the backend's two eventually-consistent read views into a
// monotonic per-job status for the user.
package track

import "strings"

// Kind classifies a job by its submission source.
type Kind string

const (
	KindDocument   Kind = "document"
	KindWebsite    Kind = "website"
	KindGithubRepo Kind = "githubRepo"
	KindLMSImport  Kind = "lmsImport"
)

// Crawl reports whether jobs of this kind fan out into child page jobs.
func (k Kind) Crawl() bool {
	return k == KindWebsite || k == KindGithubRepo || k == KindLMSImport
}

// Status is the lifecycle state of a job. Transitions only ever move
// forward: uploading → ingesting → {complete, error}.
type Status string

const (
	StatusUploading Status = "uploading"
	StatusIngesting Status = "ingesting"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
)

// Terminal reports whether no further transitions can occur.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// rank orders statuses along the lifecycle so the reconciler can refuse
// to regress a job.
func (s Status) rank() int {
	switch s {
	case StatusUploading:
		return 0
	case StatusIngesting:
		return 1
	case StatusComplete, StatusError:
		return 2
	}
	return 0
}

// Job is one trackable unit of ingestion work: an uploaded file, a crawl
// submission, or a crawled page discovered after the fact.
type Job struct {
	// Key identifies the job within its ledger: the sanitized file name
	// for documents, the page URL for crawl children. A crawl root's key
	// equals its BaseURL.
	Key    string
	Kind   Kind
	Status Status

	// BaseURL links crawl jobs to the submission that spawned them.
	// Empty for documents.
	BaseURL string

	// SourceURL is the external URL this job represents, when there is one.
	SourceURL string

	// ErrorDetail is set only when Status is StatusError.
	ErrorDetail string
}

// Root reports whether this job represents an entire crawl submission
// rather than a single discovered page.
func (j Job) Root() bool {
	return j.Kind.Crawl() && j.BaseURL != "" && j.Key == j.BaseURL
}

// ProgressEntry is one row of the backend's in-progress snapshot.
type ProgressEntry struct {
	Key       string
	BaseURL   string
	SourceURL string
}

// CompletedEntry is one row of the backend's completed snapshot. The
// completed view carries no base_url, so crawl children seen only here are
// matched to their root by URL prefix.
type CompletedEntry struct {
	Key       string
	SourceURL string
}

// SanitizeFileName normalizes an uploaded file's name into a stable job
// key. The backend applies the same mapping to readable_filename, so keys
// from the ledger and from snapshots line up.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
