package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/metis"
)

// Ensure LoggingDocumentStore implements metis.DocumentStore.
var _ metis.DocumentStore = (*LoggingDocumentStore)(nil)

// LoggingDocumentStore wraps a DocumentStore and logs every write.
// Reads are logged at debug level.
type LoggingDocumentStore struct {
	next   metis.DocumentStore
	logger *slog.Logger
}

// NewLoggingDocumentStore creates a new LoggingDocumentStore.
func NewLoggingDocumentStore(next metis.DocumentStore, logger *slog.Logger) *LoggingDocumentStore {
	return &LoggingDocumentStore{next: next, logger: logger}
}

func (s *LoggingDocumentStore) Locate(ctx context.Context, url string) (path string, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("locate record",
			"url", url,
			"path", path,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Locate(ctx, url)
}

func (s *LoggingDocumentStore) Create(ctx context.Context, c *metis.ProcessedContent, status metis.Status) (path string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("create record",
			"url", c.URL,
			"status", status,
			"path", path,
			"bytes", len(c.Markdown),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Create(ctx, c, status)
}

func (s *LoggingDocumentStore) Find(ctx context.Context, path string) (rec *metis.Record, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find record",
			"path", path,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Find(ctx, path)
}

func (s *LoggingDocumentStore) Update(ctx context.Context, path string, upd *metis.Fields) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("update record",
			"path", path,
			"fields", upd.Keys(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Update(ctx, path, upd)
}

func (s *LoggingDocumentStore) AppendBody(ctx context.Context, path, markdown string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("append body",
			"path", path,
			"bytes", len(markdown),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.AppendBody(ctx, path, markdown)
}

func (s *LoggingDocumentStore) List(ctx context.Context, filter metis.RecordFilter) (recs []*metis.Record, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("list records",
			"count", len(recs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.List(ctx, filter)
}
