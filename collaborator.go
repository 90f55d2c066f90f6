package metis

import "context"

// ProcessedContent is acquired content after media localization and
// normalization, ready to be stored.
type ProcessedContent struct {
	URL      string
	Title    string
	Markdown string

	// Images lists the localized media paths in first-appearance order.
	Images   []string
	Platform string

	// Summary is optional and may stay empty.
	Summary string
}

// MediaLocalizer downloads remote media referenced by markdown into dir and
// rewrites the references to local paths. Failed downloads are skipped.
type MediaLocalizer interface {
	Localize(ctx context.Context, markdown, dir string) (string, []string)
}

// Summarizer produces a short summary of an article.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Translator translates text into the target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// TokenCounter counts tokens in text for a specific model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
