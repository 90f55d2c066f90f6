// Package ingest turns a URL into a stored, summarized and, for English
// articles, translated document.
package ingest

import (
	"context"
	"log/slog"
	"slices"

	"github.com/fwojciec/metis"
	"github.com/fwojciec/metis/workflow"
)

// DefaultTargetLanguage is the translation target for English articles.
const DefaultTargetLanguage = "zh"

// TranslationHeading separates the original body from its translation.
const TranslationHeading = "\n\n---\n\n## Translation\n\n"

// processed lists statuses Sync treats as already done.
var processed = []metis.Status{
	metis.StatusExtracted,
	metis.StatusRead,
	metis.StatusValuable,
	metis.StatusArchived,
	metis.StatusCreating,
	metis.StatusKnowledgeBase,
}

// Result describes one ingested article.
type Result struct {
	Path     string
	Title    string
	Platform string
	Images   []string
	Bytes    int
	Tokens   int
	Summary  string

	English    bool
	Translated bool
}

// SyncProgress reports progress while syncing a URL list.
type SyncProgress struct {
	URL       string
	Completed int
	Total     int
	Skipped   bool
	Result    *Result
	Error     error
}

// SyncProgressFunc is called after each URL is handled.
type SyncProgressFunc func(SyncProgress)

// SyncStats counts the outcomes of a sync run.
type SyncStats struct {
	Total     int
	Processed int
	Skipped   int
	Failed    int
}

// Pipeline wires acquisition, media localization, normalization,
// summarization, storage and translation.
type Pipeline struct {
	fetcher    metis.ContentFetcher
	localizer  metis.MediaLocalizer
	store      metis.DocumentStore
	machine    *workflow.Machine
	summarizer metis.Summarizer
	translator metis.Translator
	tokens     metis.TokenCounter
	mediaDir   string
	targetLang string
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSummarizer enables summaries.
func WithSummarizer(s metis.Summarizer) Option {
	return func(p *Pipeline) {
		p.summarizer = s
	}
}

// WithTranslator enables translation of English articles.
func WithTranslator(t metis.Translator) Option {
	return func(p *Pipeline) {
		p.translator = t
	}
}

// WithTokenCounter enables token counts in results.
func WithTokenCounter(c metis.TokenCounter) Option {
	return func(p *Pipeline) {
		p.tokens = c
	}
}

// WithMediaDir sets the folder downloaded media is written to.
func WithMediaDir(dir string) Option {
	return func(p *Pipeline) {
		p.mediaDir = dir
	}
}

// WithTargetLanguage sets the translation target language.
func WithTargetLanguage(lang string) Option {
	return func(p *Pipeline) {
		p.targetLang = lang
	}
}

// WithLogger sets the logger for degraded steps.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// NewPipeline creates a Pipeline.
func NewPipeline(
	fetcher metis.ContentFetcher,
	localizer metis.MediaLocalizer,
	store metis.DocumentStore,
	machine *workflow.Machine,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		fetcher:    fetcher,
		localizer:  localizer,
		store:      store,
		machine:    machine,
		mediaDir:   "media",
		targetLang: DefaultTargetLanguage,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process acquires the URL, localizes its media and normalizes the markup
// without storing anything. When no tier yields content and a record for
// the URL exists, the record is stamped failed.
func (p *Pipeline) Process(ctx context.Context, url string) (*metis.ProcessedContent, error) {
	content, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		if metis.ErrorCode(err) == metis.ENOCONTENT {
			p.markFailed(ctx, url)
		}
		return nil, err
	}

	markdown, images := p.localizer.Localize(ctx, content.Markdown, p.mediaDir)
	if images == nil {
		images = []string{}
	}

	return &metis.ProcessedContent{
		URL:      content.URL,
		Title:    content.Title,
		Markdown: metis.Normalize(markdown),
		Images:   images,
		Platform: content.Platform.Name,
	}, nil
}

// Ingest processes the URL and stores it as extracted. A record already past
// pending keeps its status. English articles are flagged and, when a
// translator is configured and the record has no translation yet, get a
// translation section. Summary, token and translation failures degrade the
// result instead of failing it.
func (p *Pipeline) Ingest(ctx context.Context, url string) (*Result, error) {
	pc, err := p.Process(ctx, url)
	if err != nil {
		return nil, err
	}
	pc.Summary = p.summarize(ctx, pc.Markdown)

	status := metis.StatusExtracted
	existing := p.existing(ctx, url)
	if existing != nil && existing.Status().Valid() && existing.Status() != metis.StatusPending {
		status = existing.Status()
	}

	path, err := p.store.Create(ctx, pc, status)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Path:     path,
		Title:    pc.Title,
		Platform: pc.Platform,
		Images:   pc.Images,
		Bytes:    len(pc.Markdown),
		Tokens:   p.countTokens(ctx, pc.Markdown),
		Summary:  pc.Summary,
	}

	if !metis.IsEnglish(pc.Markdown) {
		return result, nil
	}
	if err := p.machine.MarkEnglish(ctx, path); err != nil {
		return nil, err
	}
	result.English = true

	if existing != nil && existing.Fields.Text(metis.FieldHasTranslation) == "true" {
		result.Translated = true
		return result, nil
	}

	translated, ok := p.translate(ctx, pc.Markdown)
	if !ok {
		return result, nil
	}
	if err := p.store.AppendBody(ctx, path, TranslationHeading+translated); err != nil {
		return nil, err
	}
	if err := p.machine.MarkTranslated(ctx, path); err != nil {
		return nil, err
	}
	result.Translated = true
	return result, nil
}

// Sync ingests each URL in order, skipping URLs whose record has moved past
// pending. Individual failures are counted and reported through progress;
// only cancellation stops the run.
func (p *Pipeline) Sync(ctx context.Context, urls []string, progress SyncProgressFunc) (SyncStats, error) {
	stats := SyncStats{Total: len(urls)}

	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		ev := SyncProgress{URL: url, Completed: i + 1, Total: len(urls)}
		if p.done(ctx, url) {
			stats.Skipped++
			ev.Skipped = true
		} else {
			ev.Result, ev.Error = p.Ingest(ctx, url)
			if ev.Error != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return stats, ctxErr
				}
				stats.Failed++
			} else {
				stats.Processed++
			}
		}

		if progress != nil {
			progress(ev)
		}
	}

	return stats, nil
}

func (p *Pipeline) done(ctx context.Context, url string) bool {
	rec := p.existing(ctx, url)
	return rec != nil && slices.Contains(processed, rec.Status())
}

// existing returns the stored record for url, or nil when there is none.
func (p *Pipeline) existing(ctx context.Context, url string) *metis.Record {
	path, err := p.store.Locate(ctx, url)
	if err != nil {
		return nil
	}
	rec, err := p.store.Find(ctx, path)
	if err != nil {
		return nil
	}
	return rec
}

func (p *Pipeline) markFailed(ctx context.Context, url string) {
	path, err := p.store.Locate(ctx, url)
	if err != nil {
		return
	}
	if err := p.machine.MarkFailed(ctx, path); err != nil {
		p.logger.Warn("mark failed", "url", url, "err", err)
	}
}

func (p *Pipeline) summarize(ctx context.Context, text string) string {
	if p.summarizer == nil {
		return ""
	}
	summary, err := p.summarizer.Summarize(ctx, text)
	if err != nil {
		p.logger.Warn("summary unavailable", "err", err)
		return ""
	}
	return summary
}

func (p *Pipeline) countTokens(ctx context.Context, text string) int {
	if p.tokens == nil {
		return 0
	}
	n, err := p.tokens.CountTokens(ctx, text)
	if err != nil {
		p.logger.Warn("token count unavailable", "err", err)
		return 0
	}
	return n
}

func (p *Pipeline) translate(ctx context.Context, text string) (string, bool) {
	if p.translator == nil {
		return "", false
	}
	translated, err := p.translator.Translate(ctx, text, p.targetLang)
	if err != nil {
		p.logger.Warn("translation unavailable", "err", err)
		return "", false
	}
	return translated, true
}
