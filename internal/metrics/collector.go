package metrics

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"
)

// SessionCounter reports how many planning sessions are live
type SessionCounter interface {
	Len() int
}

// ArchiveCounter reports how many checklists are archived
type ArchiveCounter interface {
	Count(ctx context.Context) (int, error)
}

// Collector refreshes gauges that are sampled rather than counted
type Collector struct {
	metrics     *Metrics
	sessions    SessionCounter
	archive     ArchiveCounter
	storagePath string
	interval    time.Duration
	startTime   time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewCollector creates a new metrics collector. sessions and archive may be nil.
func NewCollector(m *Metrics, sessions SessionCounter, archive ArchiveCounter, storagePath string, interval time.Duration) *Collector {
	if interval == 0 {
		interval = 10 * time.Second
	}
	return &Collector{
		metrics:     m,
		sessions:    sessions,
		archive:     archive,
		storagePath: storagePath,
		interval:    interval,
		startTime:   time.Now(),
		stopCh:      make(chan struct{}),
	}
}

// Start begins sampling in the background
func (c *Collector) Start(ctx context.Context) {
	c.wg.Add(1)
	go c.loop(ctx)
}

// Stop stops sampling and waits for the loop to exit
func (c *Collector) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

func (c *Collector) loop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.Collect(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.Collect(ctx)
		}
	}
}

// Collect samples every gauge once
func (c *Collector) Collect(ctx context.Context) {
	c.metrics.UptimeSeconds.Set(time.Since(c.startTime).Seconds())
	c.metrics.Goroutines.Set(float64(runtime.NumGoroutine()))

	if c.storagePath != "" {
		if info, err := os.Stat(c.storagePath); err == nil {
			c.metrics.StorageUsedBytes.Set(float64(info.Size()))
		}
	}

	if c.sessions != nil {
		c.metrics.SessionsActive.Set(float64(c.sessions.Len()))
	}

	if c.archive != nil {
		if n, err := c.archive.Count(ctx); err == nil {
			c.metrics.ArchiveEntries.Set(float64(n))
		}
	}
}
