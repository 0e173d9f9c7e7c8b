// Package resource throttles remote GDAC access.
//
// A Controller combines two limits:
//
//   - Requests: a weighted semaphore bounding concurrent HTTP or FTP requests
//   - IO: a token bucket limiting downloaded bytes per second
//
//	rc := resource.NewController(resource.Config{
//	    MaxConcurrentRequests: 4,
//	    IOLimitBytesPerSec:    10 << 20,
//	})
//
//	if err := rc.AcquireRequest(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseRequest()
//	body = resource.NewRateLimitedReader(ctx, body, rc)
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
