package fetch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/metis"
	"github.com/fwojciec/metis/fetch"
	"github.com/fwojciec/metis/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tier returns a mock tier that appends its name to calls and either
// succeeds or fails.
func tier(name string, calls *[]string, ok bool) *mock.ContentFetcher {
	return &mock.ContentFetcher{
		NameFn: func() string { return name },
		FetchFn: func(_ context.Context, url string) (*metis.Content, error) {
			*calls = append(*calls, name)
			if !ok {
				return nil, errors.New(name + " failed")
			}
			return &metis.Content{URL: url, Title: name}, nil
		},
	}
}

func TestCoordinator_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns first success without trying later tiers", func(t *testing.T) {
		t.Parallel()

		var calls []string
		c := fetch.NewCoordinator([]metis.ContentFetcher{
			tier("firecrawl", &calls, false),
			tier("jina", &calls, true),
			tier("rod", &calls, true),
		})

		content, err := c.Fetch(context.Background(), "https://example.com/a")

		require.NoError(t, err)
		assert.Equal(t, "jina", content.Title)
		assert.Equal(t, []string{"firecrawl", "jina"}, calls)
	})

	t.Run("tries browser first for wechat", func(t *testing.T) {
		t.Parallel()

		var calls []string
		browser := tier("rod", &calls, true)
		c := fetch.NewCoordinator([]metis.ContentFetcher{
			tier("firecrawl", &calls, true),
			tier("jina", &calls, true),
			browser,
		}, fetch.WithBrowserTier(browser))

		content, err := c.Fetch(context.Background(), "https://mp.weixin.qq.com/s/xyz")

		require.NoError(t, err)
		assert.Equal(t, "rod", content.Title)
		assert.Equal(t, []string{"rod"}, calls)
	})

	t.Run("falls back to full order when browser fails for wechat", func(t *testing.T) {
		t.Parallel()

		var calls []string
		browser := tier("rod", &calls, false)
		c := fetch.NewCoordinator([]metis.ContentFetcher{
			tier("firecrawl", &calls, false),
			tier("jina", &calls, false),
			browser,
		}, fetch.WithBrowserTier(browser))

		_, err := c.Fetch(context.Background(), "https://mp.weixin.qq.com/s/xyz")

		require.Error(t, err)
		assert.Equal(t, []string{"rod", "firecrawl", "jina", "rod"}, calls)
	})

	t.Run("does not promote browser for other platforms", func(t *testing.T) {
		t.Parallel()

		var calls []string
		browser := tier("rod", &calls, true)
		c := fetch.NewCoordinator([]metis.ContentFetcher{
			tier("firecrawl", &calls, true),
			browser,
		}, fetch.WithBrowserTier(browser))

		_, err := c.Fetch(context.Background(), "https://zhuanlan.zhihu.com/p/1")

		require.NoError(t, err)
		assert.Equal(t, []string{"firecrawl"}, calls)
	})

	t.Run("reports ENOCONTENT when every tier fails", func(t *testing.T) {
		t.Parallel()

		var calls []string
		c := fetch.NewCoordinator([]metis.ContentFetcher{
			tier("firecrawl", &calls, false),
			tier("jina", &calls, false),
		})

		content, err := c.Fetch(context.Background(), "https://example.com/a")

		assert.Nil(t, content)
		assert.Equal(t, metis.ENOCONTENT, metis.ErrorCode(err))
		assert.Equal(t, "no content for https://example.com/a", metis.ErrorMessage(err))
	})

	t.Run("reports ENOCONTENT with no tiers", func(t *testing.T) {
		t.Parallel()

		_, err := fetch.NewCoordinator(nil).Fetch(context.Background(), "https://example.com/a")

		assert.Equal(t, metis.ENOCONTENT, metis.ErrorCode(err))
	})

	t.Run("reports each failure to hook", func(t *testing.T) {
		t.Parallel()

		var calls []string
		var failed []string
		c := fetch.NewCoordinator([]metis.ContentFetcher{
			tier("firecrawl", &calls, false),
			tier("jina", &calls, false),
			tier("rod", &calls, true),
		}, fetch.WithFailureHook(func(name string, err error) {
			failed = append(failed, name+": "+err.Error())
		}))

		_, err := c.Fetch(context.Background(), "https://example.com/a")

		require.NoError(t, err)
		assert.Equal(t, []string{"firecrawl: firecrawl failed", "jina: jina failed"}, failed)
	})

	t.Run("treats nil content as failure", func(t *testing.T) {
		t.Parallel()

		var calls []string
		empty := &mock.ContentFetcher{
			NameFn:  func() string { return "empty" },
			FetchFn: func(context.Context, string) (*metis.Content, error) { return nil, nil },
		}
		c := fetch.NewCoordinator([]metis.ContentFetcher{empty, tier("jina", &calls, true)})

		content, err := c.Fetch(context.Background(), "https://example.com/a")

		require.NoError(t, err)
		assert.Equal(t, "jina", content.Title)
	})

	t.Run("bounds each attempt with its own timeout", func(t *testing.T) {
		t.Parallel()

		var calls []string
		slow := &mock.ContentFetcher{
			NameFn: func() string { return "slow" },
			FetchFn: func(ctx context.Context, _ string) (*metis.Content, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
		}
		c := fetch.NewCoordinator(
			[]metis.ContentFetcher{slow, tier("jina", &calls, true)},
			fetch.WithAttemptTimeout(10*time.Millisecond),
		)

		content, err := c.Fetch(context.Background(), "https://example.com/a")

		require.NoError(t, err)
		assert.Equal(t, "jina", content.Title)
	})

	t.Run("stops on caller cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		var calls []string
		cancelling := &mock.ContentFetcher{
			NameFn: func() string { return "firecrawl" },
			FetchFn: func(context.Context, string) (*metis.Content, error) {
				cancel()
				return nil, errors.New("interrupted")
			},
		}
		c := fetch.NewCoordinator([]metis.ContentFetcher{cancelling, tier("jina", &calls, true)})

		_, err := c.Fetch(ctx, "https://example.com/a")

		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, calls)
	})
}
