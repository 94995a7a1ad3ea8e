package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for node arenas.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentQueries is the maximum number of queries executing at once.
	// If 0, unlimited.
	MaxConcurrentQueries int64

	// QueriesPerSec is the sustained query rate.
	// If 0, unlimited.
	QueriesPerSec float64

	// QueryBurst is the token bucket size for QueriesPerSec.
	// If 0, defaults to 1.
	QueryBurst int
}

// Controller manages memory, query concurrency and query rate.
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Concurrency
	querySem *semaphore.Weighted // nil if unlimited

	// Rate
	queryLimiter *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.MaxConcurrentQueries > 0 {
		c.querySem = semaphore.NewWeighted(cfg.MaxConcurrentQueries)
	}

	if cfg.QueriesPerSec > 0 {
		burst := cfg.QueryBurst
		if burst <= 0 {
			burst = 1
		}
		c.queryLimiter = rate.NewLimiter(rate.Limit(cfg.QueriesPerSec), burst)
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireQuery waits for the rate limiter and a free query slot.
// Every successful call must be paired with ReleaseQuery.
func (c *Controller) AcquireQuery(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.queryLimiter != nil {
		if err := c.queryLimiter.Wait(ctx); err != nil {
			return err
		}
	}
	if c.querySem != nil {
		return c.querySem.Acquire(ctx, 1)
	}
	return nil
}

// TryAcquireQuery attempts to start a query without blocking.
func (c *Controller) TryAcquireQuery() bool {
	if c == nil {
		return true
	}
	if c.queryLimiter != nil && !c.queryLimiter.AllowN(time.Now(), 1) {
		return false
	}
	if c.querySem != nil {
		return c.querySem.TryAcquire(1)
	}
	return true
}

// ReleaseQuery releases a query slot.
func (c *Controller) ReleaseQuery() {
	if c == nil || c.querySem == nil {
		return
	}
	c.querySem.Release(1)
}
