package slog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/metis"
	"github.com/fwojciec/metis/mock"
	mslog "github.com/fwojciec/metis/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingContentFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs tier, platform and bytes", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		inner := &mock.ContentFetcher{
			NameFn: func() string { return "jina" },
			FetchFn: func(_ context.Context, url string) (*metis.Content, error) {
				return &metis.Content{URL: url, Markdown: "0123456789", Platform: metis.DetectPlatform(url)}, nil
			},
		}

		fetcher := mslog.NewLoggingContentFetcher(inner, logger)
		c, err := fetcher.Fetch(context.Background(), "https://zhuanlan.zhihu.com/p/1")

		require.NoError(t, err)
		assert.Equal(t, "0123456789", c.Markdown)
		assert.Equal(t, "jina", fetcher.Name())
		output := buf.String()
		assert.Contains(t, output, "msg=fetch")
		assert.Contains(t, output, "tier=jina")
		assert.Contains(t, output, "url=https://zhuanlan.zhihu.com/p/1")
		assert.Contains(t, output, "platform=zhihu")
		assert.Contains(t, output, "bytes=10")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		inner := &mock.ContentFetcher{
			NameFn: func() string { return "firecrawl" },
			FetchFn: func(context.Context, string) (*metis.Content, error) {
				return nil, errors.New("network error")
			},
		}

		_, err := mslog.NewLoggingContentFetcher(inner, logger).Fetch(context.Background(), "https://example.com")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"network error\"")
		assert.Contains(t, buf.String(), "bytes=0")
	})
}
