// Package metrics provides in-memory runtime statistics for the polling
// engine.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated timings for a single operation type.
type OperationMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64
}

// Snapshot represents the full engine statistics at a point in time.
type Snapshot struct {
	UptimeSeconds   float64
	Ticks           int64
	SkippedTicks    int64
	FetchInProgress *OperationSnapshot
	FetchCompleted  *OperationSnapshot
	Submit          *OperationSnapshot
}

// Operation names for the collector.
const (
	OpFetchInProgress = "fetch_in_progress"
	OpFetchCompleted  = "fetch_completed"
	OpSubmit          = "submit"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu           sync.RWMutex
	startTime    time.Time
	ticks        int64
	skippedTicks int64
	ops          map[string]*OperationMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// RecordTiming records timing for an operation.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// RecordTick counts one poll tick; skipped marks ticks whose
// reconciliation was dropped after a fetch failure.
func (c *Collector) RecordTick(skipped bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
	if skipped {
		c.skippedTicks++
	}
}

// snapshotOp computes display stats for one operation. Returns nil for
// operations that never ran.
func snapshotOp(m *OperationMetrics) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}
	return &OperationSnapshot{
		Count:       m.Count,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds:   time.Since(c.startTime).Seconds(),
		Ticks:           c.ticks,
		SkippedTicks:    c.skippedTicks,
		FetchInProgress: snapshotOp(c.ops[OpFetchInProgress]),
		FetchCompleted:  snapshotOp(c.ops[OpFetchCompleted]),
		Submit:          snapshotOp(c.ops[OpSubmit]),
	}
}
