package resource

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Requests(t *testing.T) {
	c := NewController(Config{MaxConcurrentRequests: 2})

	require.NoError(t, c.AcquireRequest(t.Context()))
	require.NoError(t, c.AcquireRequest(t.Context()))
	assert.False(t, c.TryAcquireRequest())

	c.ReleaseRequest()
	assert.True(t, c.TryAcquireRequest())
}

func TestController_RequestCancelled(t *testing.T) {
	c := NewController(Config{MaxConcurrentRequests: 1})
	require.NoError(t, c.AcquireRequest(t.Context()))

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireRequest(ctx))
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	require.NoError(t, c.AcquireRequest(t.Context()))
	assert.True(t, c.TryAcquireRequest())
	c.ReleaseRequest()
	require.NoError(t, c.AcquireIO(t.Context(), 1<<30))
}

func TestController_Unlimited(t *testing.T) {
	c := NewController(Config{})
	for range 100 {
		require.NoError(t, c.AcquireRequest(t.Context()))
	}
	require.NoError(t, c.AcquireIO(t.Context(), 1<<30))
}

func TestController_IOLargerThanBurst(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1000})
	start := time.Now()
	// 1000 burst + 500 more at 1000/s.
	require.NoError(t, c.AcquireIO(t.Context(), 1500))
	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)
}

func TestRateLimitedReader(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	r := NewRateLimitedReader(t.Context(), io.NopCloser(strings.NewReader("payload")), c)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
	require.NoError(t, r.Close())
}

func TestRateLimitedReader_Passthrough(t *testing.T) {
	src := io.NopCloser(strings.NewReader("x"))
	assert.Equal(t, src, NewRateLimitedReader(t.Context(), src, nil))
}
