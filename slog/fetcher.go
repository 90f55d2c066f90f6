// Package slog provides log/slog decorators for metis services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/metis"
)

// Ensure LoggingContentFetcher implements metis.ContentFetcher.
var _ metis.ContentFetcher = (*LoggingContentFetcher)(nil)

// LoggingContentFetcher wraps a ContentFetcher with logging.
type LoggingContentFetcher struct {
	next   metis.ContentFetcher
	logger *slog.Logger
}

// NewLoggingContentFetcher creates a new LoggingContentFetcher.
func NewLoggingContentFetcher(next metis.ContentFetcher, logger *slog.Logger) *LoggingContentFetcher {
	return &LoggingContentFetcher{next: next, logger: logger}
}

// Name returns the wrapped fetcher's name.
func (f *LoggingContentFetcher) Name() string {
	return f.next.Name()
}

// Fetch delegates to the wrapped fetcher and logs the attempt.
func (f *LoggingContentFetcher) Fetch(ctx context.Context, url string) (c *metis.Content, err error) {
	defer func(begin time.Time) {
		var bytes int
		var platform string
		if c != nil {
			bytes = len(c.Markdown)
			platform = c.Platform.Name
		}
		f.logger.Debug("fetch",
			"tier", f.next.Name(),
			"url", url,
			"platform", platform,
			"bytes", bytes,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}
