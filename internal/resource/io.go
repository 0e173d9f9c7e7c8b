package resource

import (
	"context"
	"io"
)

// RateLimitedReader charges every read against the controller's IO budget.
type RateLimitedReader struct {
	r   io.ReadCloser
	rc  *Controller
	ctx context.Context
}

// NewRateLimitedReader wraps r. A nil controller returns r unchanged.
func NewRateLimitedReader(ctx context.Context, r io.ReadCloser, rc *Controller) io.ReadCloser {
	if rc == nil || rc.ioLimiter == nil {
		return r
	}
	return &RateLimitedReader{r: r, rc: rc, ctx: ctx}
}

func (r *RateLimitedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		if werr := r.rc.AcquireIO(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

func (r *RateLimitedReader) Close() error {
	return r.r.Close()
}
