package track

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Center-for-AI-Innovation/ingestctl/internal/metrics"
)

// SnapshotSource fetches the backend's two eventually-consistent read
// views for a project.
type SnapshotSource interface {
	InProgress(ctx context.Context, project string) ([]ProgressEntry, error)
	Completed(ctx context.Context, project string) ([]CompletedEntry, error)
}

// PollerConfig controls the adaptive polling cadence.
type PollerConfig struct {
	// Slow is the starting interval before any activity is seen.
	Slow time.Duration
	// Fast is the floor interval used while tracked jobs are in progress.
	Fast time.Duration
	// Max caps backed-off intervals.
	Max time.Duration
	// Backoff multiplies the interval after EmptyLimit consecutive
	// ticks without matching activity.
	Backoff float64
	// EmptyLimit is the number of consecutive empty ticks tolerated
	// before backing off.
	EmptyLimit int
}

// DefaultPollerConfig returns the production cadence.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		Slow:       9 * time.Second,
		Fast:       time.Second,
		Max:        20 * time.Second,
		Backoff:    1.5,
		EmptyLimit: 3,
	}
}

// cadence tracks the adaptive interval between poll ticks. It is a value
// type so the schedule arithmetic stays independently testable.
type cadence struct {
	cfg        PollerConfig
	interval   time.Duration
	emptyTicks int
}

func newCadence(cfg PollerConfig) cadence {
	return cadence{cfg: cfg, interval: cfg.Slow}
}

// next advances the cadence after one tick. A tick with matching activity
// snaps to the fast floor and resets the empty counter; once EmptyLimit
// consecutive empty ticks accumulate, every further empty tick backs off
// up to the ceiling.
func (c cadence) next(active bool) cadence {
	if active {
		c.interval = c.cfg.Fast
		c.emptyTicks = 0
		return c
	}
	c.emptyTicks++
	if c.emptyTicks >= c.cfg.EmptyLimit {
		c.interval = min(time.Duration(float64(c.interval)*c.cfg.Backoff), c.cfg.Max)
	}
	return c
}

// Poller periodically fetches the two snapshots and hands them to the
// ledger's reconciler. Ticks never overlap: the next tick is scheduled
// only after the previous one finished. A fetch failure on either view
// skips that tick's reconciliation entirely; a failed fetch is never
// evidence of job failure.
type Poller struct {
	source  SnapshotSource
	ledger  *Ledger
	project string
	cad     cadence
	log     *slog.Logger
	stats   *metrics.Collector
}

// NewPoller creates a poller for one session. log and stats may be nil.
func NewPoller(source SnapshotSource, ledger *Ledger, project string, cfg PollerConfig, log *slog.Logger, stats *metrics.Collector) *Poller {
	if log == nil {
		log = slog.Default()
	}
	if stats == nil {
		stats = metrics.NewCollector()
	}
	return &Poller{
		source:  source,
		ledger:  ledger,
		project: project,
		cad:     newCadence(cfg),
		log:     log,
		stats:   stats,
	}
}

// Run polls until ctx is cancelled. After cancellation no further snapshot
// fetch is started and no tick result is applied to the ledger.
func (p *Poller) Run(ctx context.Context) {
	timer := time.NewTimer(p.cad.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		active, err := p.tick(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.log.Warn("poll tick skipped", "project", p.project, "error", err)
			p.stats.RecordTick(true)
			active = false
		} else {
			p.stats.RecordTick(false)
		}

		p.cad = p.cad.next(active)
		timer.Reset(p.cad.interval)
	}
}

// tick fetches both snapshots concurrently and applies one reconciliation
// pass. Returns whether the in-progress view matched any tracked job.
func (p *Poller) tick(ctx context.Context) (bool, error) {
	var (
		progress  []ProgressEntry
		completed []CompletedEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		var err error
		progress, err = p.source.InProgress(gctx, p.project)
		p.stats.RecordTiming(metrics.OpFetchInProgress, time.Since(start))
		return err
	})
	g.Go(func() error {
		start := time.Now()
		var err error
		completed, err = p.source.Completed(gctx, p.project)
		p.stats.RecordTiming(metrics.OpFetchCompleted, time.Since(start))
		return err
	})
	if err := g.Wait(); err != nil {
		return false, err
	}

	// The session may have been torn down while the fetches were in
	// flight; a cancelled tick must not touch the ledger.
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	return p.ledger.Observe(progress, completed), nil
}
