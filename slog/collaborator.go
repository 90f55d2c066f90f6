package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/metis"
)

var (
	_ metis.MediaLocalizer = (*LoggingMediaLocalizer)(nil)
	_ metis.Summarizer     = (*LoggingSummarizer)(nil)
	_ metis.Translator     = (*LoggingTranslator)(nil)
)

// LoggingMediaLocalizer wraps a MediaLocalizer with logging.
type LoggingMediaLocalizer struct {
	next   metis.MediaLocalizer
	logger *slog.Logger
}

// NewLoggingMediaLocalizer creates a new LoggingMediaLocalizer.
func NewLoggingMediaLocalizer(next metis.MediaLocalizer, logger *slog.Logger) *LoggingMediaLocalizer {
	return &LoggingMediaLocalizer{next: next, logger: logger}
}

// Localize delegates to the wrapped localizer and logs how many files were saved.
func (l *LoggingMediaLocalizer) Localize(ctx context.Context, markdown, dir string) (out string, paths []string) {
	defer func(begin time.Time) {
		l.logger.Debug("localize media",
			"dir", dir,
			"count", len(paths),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return l.next.Localize(ctx, markdown, dir)
}

// LoggingSummarizer wraps a Summarizer with logging.
type LoggingSummarizer struct {
	next   metis.Summarizer
	logger *slog.Logger
}

// NewLoggingSummarizer creates a new LoggingSummarizer.
func NewLoggingSummarizer(next metis.Summarizer, logger *slog.Logger) *LoggingSummarizer {
	return &LoggingSummarizer{next: next, logger: logger}
}

// Summarize delegates to the wrapped summarizer and logs the call.
func (s *LoggingSummarizer) Summarize(ctx context.Context, text string) (summary string, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("summarize",
			"input", len(text),
			"bytes", len(summary),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Summarize(ctx, text)
}

// LoggingTranslator wraps a Translator with logging.
type LoggingTranslator struct {
	next   metis.Translator
	logger *slog.Logger
}

// NewLoggingTranslator creates a new LoggingTranslator.
func NewLoggingTranslator(next metis.Translator, logger *slog.Logger) *LoggingTranslator {
	return &LoggingTranslator{next: next, logger: logger}
}

// Translate delegates to the wrapped translator and logs the call.
func (t *LoggingTranslator) Translate(ctx context.Context, text, targetLang string) (out string, err error) {
	defer func(begin time.Time) {
		t.logger.Debug("translate",
			"lang", targetLang,
			"input", len(text),
			"bytes", len(out),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return t.next.Translate(ctx, text, targetLang)
}
