package resource

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds remote access limits. Zero values mean unlimited.
type Config struct {
	// MaxConcurrentRequests bounds in-flight requests to the host.
	MaxConcurrentRequests int64

	// IOLimitBytesPerSec is the maximum download throughput.
	IOLimitBytesPerSec int64
}

// Controller enforces Config.
type Controller struct {
	cfg       Config
	reqSem    *semaphore.Weighted
	ioLimiter *rate.Limiter
}

// NewController creates a new controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}
	if cfg.MaxConcurrentRequests > 0 {
		c.reqSem = semaphore.NewWeighted(cfg.MaxConcurrentRequests)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// AcquireRequest blocks until a request slot is free.
func (c *Controller) AcquireRequest(ctx context.Context) error {
	if c == nil || c.reqSem == nil {
		return nil
	}
	return c.reqSem.Acquire(ctx, 1)
}

// TryAcquireRequest reserves a request slot without blocking.
func (c *Controller) TryAcquireRequest() bool {
	if c == nil || c.reqSem == nil {
		return true
	}
	return c.reqSem.TryAcquire(1)
}

// ReleaseRequest frees a slot taken by AcquireRequest.
func (c *Controller) ReleaseRequest() {
	if c == nil || c.reqSem == nil {
		return
	}
	c.reqSem.Release(1)
}

// AcquireIO waits until the IO limit allows n bytes. Requests larger than
// the bucket are split so they never fail with a burst error.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := c.ioLimiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
