package mock

import (
	"context"

	"github.com/fwojciec/metis"
)

var (
	_ metis.MediaLocalizer = (*MediaLocalizer)(nil)
	_ metis.Summarizer     = (*Summarizer)(nil)
	_ metis.Translator     = (*Translator)(nil)
	_ metis.TokenCounter   = (*TokenCounter)(nil)
)

// MediaLocalizer is a mock implementation of metis.MediaLocalizer.
type MediaLocalizer struct {
	LocalizeFn func(ctx context.Context, markdown, dir string) (string, []string)
}

func (l *MediaLocalizer) Localize(ctx context.Context, markdown, dir string) (string, []string) {
	return l.LocalizeFn(ctx, markdown, dir)
}

// Summarizer is a mock implementation of metis.Summarizer.
type Summarizer struct {
	SummarizeFn func(ctx context.Context, text string) (string, error)
}

func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	return s.SummarizeFn(ctx, text)
}

// Translator is a mock implementation of metis.Translator.
type Translator struct {
	TranslateFn func(ctx context.Context, text, targetLang string) (string, error)
}

func (t *Translator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	return t.TranslateFn(ctx, text, targetLang)
}

// TokenCounter is a mock implementation of metis.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (c *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return c.CountTokensFn(ctx, text)
}
