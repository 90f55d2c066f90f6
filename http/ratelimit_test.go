package http_test

import (
	"context"
	"testing"
	"time"

	metishttp "github.com/fwojciec/metis/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostLimiter(t *testing.T) {
	t.Parallel()

	t.Run("first request is immediate", func(t *testing.T) {
		t.Parallel()

		limiter := metishttp.NewHostLimiter(10, 1)

		start := time.Now()
		err := limiter.Wait(context.Background(), "https://mmbiz.qpic.cn/a.png")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("paces requests to the same host regardless of case and port", func(t *testing.T) {
		t.Parallel()

		limiter := metishttp.NewHostLimiter(10, 1)
		require.NoError(t, limiter.Wait(context.Background(), "https://CDN.example.com/a.png"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "https://cdn.example.com:443/b.png")

		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("burst allows back-to-back requests", func(t *testing.T) {
		t.Parallel()

		limiter := metishttp.NewHostLimiter(1, 3)

		start := time.Now()
		for range 3 {
			require.NoError(t, limiter.Wait(context.Background(), "https://cdn.example.com/x.png"))
		}

		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("hosts are independent", func(t *testing.T) {
		t.Parallel()

		limiter := metishttp.NewHostLimiter(10, 1)
		require.NoError(t, limiter.Wait(context.Background(), "https://a.example.com/1.png"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "https://b.example.com/1.png")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		limiter := metishttp.NewHostLimiter(1, 1)
		require.NoError(t, limiter.Wait(context.Background(), "https://cdn.example.com/a.png"))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		assert.Error(t, limiter.Wait(ctx, "https://cdn.example.com/a.png"))
	})
}
