package vectorize

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports vectorization progress to a writer. The total
// is unknown up front (the log is streamed), so it reports cumulative
// counts and rate. Reporting is observational only and never part of
// the durable contract.
type ProgressTracker struct {
	writer         io.Writer
	reportInterval int
	current        int
	resumedFrom    int
	lastReported   int
	startTime      time.Time
	started        bool
	mu             sync.Mutex
}

// NewProgressTracker creates a progress tracker.
// writer: where to write progress output (typically os.Stderr)
// reportInterval: report progress every N embeddings
func NewProgressTracker(writer io.Writer, reportInterval int) *ProgressTracker {
	return &ProgressTracker{
		writer:         writer,
		reportInterval: reportInterval,
	}
}

// Start begins tracking progress from the given starting count,
// typically the resumed cursor.
func (p *ProgressTracker) Start(from int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.current = from
	p.resumedFrom = from
	p.lastReported = from
}

// Increment adds delta processed embeddings.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.current += delta
	if p.current-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.current
	}
}

// Finish prints the final count.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}

	return time.Since(p.startTime)
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime)
	rate := float64(p.current-p.resumedFrom) / elapsed.Seconds()

	fmt.Fprintf(p.writer, "\rIndexed: %d embeddings - %.1f/s", p.current, rate)
}
