package track

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Center-for-AI-Innovation/ingestctl/internal/metrics"
)

// CrawlRequest describes a website crawl kickoff.
type CrawlRequest struct {
	URL      string
	MaxURLs  int
	MaxDepth int
	Strategy string // "equal-and-below", "same-hostname", "all"
}

// CanvasRequest describes an LMS course import kickoff.
type CanvasRequest struct {
	CourseID    string
	Files       bool
	Pages       bool
	Modules     bool
	Syllabus    bool
	Assignments bool
	Discussions bool
}

// Backend is the collaborator surface the session needs: the two pollable
// read views plus one kickoff call per source kind. Implemented by
// client.Client.
type Backend interface {
	SnapshotSource

	// UploadDocument transfers one file and returns the readable
	// filename the backend will report it under.
	UploadDocument(ctx context.Context, project, filePath string) (string, error)
	CrawlWebsite(ctx context.Context, project string, req CrawlRequest) error
	ImportGithubRepo(ctx context.Context, project, repoURL string) error
	ImportCanvasCourse(ctx context.Context, project string, req CanvasRequest) error
}

// SessionConfig tunes one session's engine.
type SessionConfig struct {
	Poller PollerConfig
	Grace  time.Duration
	Log    *slog.Logger
	Stats  *metrics.Collector
}

// Session owns the ingestion state for one project visit: the ledger, the
// status poller, and the auto-closer. Submission adapters seed the ledger
// optimistically before the kickoff call and mark the record failed if the
// call itself errors; everything after that is the reconciler's job.
type Session struct {
	ID      string
	Project string

	backend Backend
	ledger  *Ledger
	poller  *Poller
	closer  *AutoCloser
	log     *slog.Logger
	stats   *metrics.Collector

	cancel context.CancelFunc
	closed chan struct{}
}

// NewSession creates a session for the project. Call Start to begin
// polling and Close on teardown.
func NewSession(backend Backend, project string, cfg SessionConfig) *Session {
	if cfg.Poller == (PollerConfig{}) {
		cfg.Poller = DefaultPollerConfig()
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Stats == nil {
		cfg.Stats = metrics.NewCollector()
	}

	s := &Session{
		ID:      uuid.New().String()[:8],
		Project: project,
		backend: backend,
		ledger:  NewLedger(),
		log:     cfg.Log.With("session", project),
		stats:   cfg.Stats,
		closed:  make(chan struct{}),
	}
	s.closer = NewAutoCloser(s.ledger, cfg.Grace, func() {
		s.log.Info("session retired, all jobs terminal")
		close(s.closed)
	})
	s.ledger.SetOnChange(s.closer.Observe)
	s.poller = NewPoller(backend, s.ledger, project, cfg.Poller, s.log, s.stats)
	return s
}

// Start launches the polling loop. The loop stops when ctx is cancelled
// or Close is called.
func (s *Session) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.poller.Run(ctx)
	s.log.Info("session started", "id", s.ID)
}

// Close tears the session down: the poller stops, in-flight fetches are
// discarded, and no further ledger mutation happens from polling.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	s.closer.Stop()
}

// Done is closed once the auto-closer has retired the ledger.
func (s *Session) Done() <-chan struct{} {
	return s.closed
}

// Jobs returns a snapshot of the tracked jobs.
func (s *Session) Jobs() []Job {
	return s.ledger.Jobs()
}

// ChildCount reports how many pages a crawl root has fanned out into.
func (s *Session) ChildCount(baseURL string) int {
	return s.ledger.ChildCount(baseURL)
}

// Stats returns the session's polling statistics.
func (s *Session) Stats() metrics.Snapshot {
	return s.stats.Snapshot()
}

// UploadDocuments submits files for ingestion. Each file is seeded as
// uploading before its transfer starts; a failed transfer marks only that
// record, the rest proceed.
func (s *Session) UploadDocuments(ctx context.Context, paths []string) error {
	var firstErr error
	for _, path := range paths {
		key := SanitizeFileName(filepath.Base(path))
		if err := s.ledger.Seed(Job{Key: key, Kind: KindDocument, Status: StatusUploading}); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		start := time.Now()
		name, err := s.backend.UploadDocument(ctx, s.Project, path)
		s.stats.RecordTiming(metrics.OpSubmit, time.Since(start))
		if err != nil {
			s.log.Error("upload failed", "file", key, "error", err)
			s.ledger.MarkError(key, err.Error())
			if firstErr == nil {
				firstErr = fmt.Errorf("upload %s: %w", path, err)
			}
			continue
		}
		s.log.Info("upload submitted", "file", name)
	}
	return firstErr
}

// CrawlWebsite kicks off a website crawl. The root job is keyed by the
// base URL; per-page child jobs appear as polling reveals them.
func (s *Session) CrawlWebsite(ctx context.Context, req CrawlRequest) error {
	root := Job{
		Key:       req.URL,
		Kind:      KindWebsite,
		Status:    StatusUploading,
		BaseURL:   req.URL,
		SourceURL: req.URL,
	}
	return s.submitCrawl(ctx, root, func() error {
		return s.backend.CrawlWebsite(ctx, s.Project, req)
	})
}

// ImportGithubRepo kicks off a GitHub repository import.
func (s *Session) ImportGithubRepo(ctx context.Context, repoURL string) error {
	root := Job{
		Key:       repoURL,
		Kind:      KindGithubRepo,
		Status:    StatusUploading,
		BaseURL:   repoURL,
		SourceURL: repoURL,
	}
	return s.submitCrawl(ctx, root, func() error {
		return s.backend.ImportGithubRepo(ctx, s.Project, repoURL)
	})
}

// ImportCanvasCourse kicks off an LMS course export import. The synthetic
// course URL keys the root; the backend reports exported materials under
// the same base URL.
func (s *Session) ImportCanvasCourse(ctx context.Context, req CanvasRequest) error {
	base := CanvasBaseURL(req.CourseID)
	root := Job{
		Key:       base,
		Kind:      KindLMSImport,
		Status:    StatusUploading,
		BaseURL:   base,
		SourceURL: base,
	}
	return s.submitCrawl(ctx, root, func() error {
		return s.backend.ImportCanvasCourse(ctx, s.Project, req)
	})
}

// submitCrawl seeds a crawl root and runs its kickoff call. Failures mark
// the root, never abort the session.
func (s *Session) submitCrawl(ctx context.Context, root Job, kickoff func() error) error {
	if err := s.ledger.Seed(root); err != nil {
		return err
	}

	start := time.Now()
	err := kickoff()
	s.stats.RecordTiming(metrics.OpSubmit, time.Since(start))
	if err != nil {
		s.log.Error("crawl kickoff failed", "key", root.Key, "error", err)
		s.ledger.MarkError(root.Key, err.Error())
		return fmt.Errorf("submit %s: %w", root.Key, err)
	}
	s.log.Info("crawl submitted", "key", root.Key, "kind", root.Kind)
	return nil
}

// CanvasBaseURL is the synthetic base URL under which a course's exported
// materials are tracked.
func CanvasBaseURL(courseID string) string {
	return "canvas://courses/" + courseID
}
