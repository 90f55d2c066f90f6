package ingest_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/metis"
	"github.com/fwojciec/metis/fs"
	"github.com/fwojciec/metis/ingest"
	"github.com/fwojciec/metis/mock"
	"github.com/fwojciec/metis/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

const chineseBody = "# 标题\n\n来源：某网站\n\n这是一篇中文文章的正文内容。\n\n\n\n![图](https://cdn.example.com/a.png)\n"

const englishBody = "An English article body that talks about software design at length."

type fixture struct {
	store    *fs.DocumentStore
	machine  *workflow.Machine
	fetcher  *mock.ContentFetcher
	local    *mock.MediaLocalizer
	fetchErr error
	markdown string
}

func newFixture(t *testing.T, markdown string) *fixture {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	store := fs.NewDocumentStore(filepath.Join(t.TempDir(), "inbox"), fs.WithNow(clock))
	f := &fixture{
		store:    store,
		machine:  workflow.NewMachine(store, workflow.WithClock(clock)),
		markdown: markdown,
	}
	f.fetcher = &mock.ContentFetcher{
		NameFn: func() string { return "mock" },
		FetchFn: func(_ context.Context, url string) (*metis.Content, error) {
			if f.fetchErr != nil {
				return nil, f.fetchErr
			}
			return &metis.Content{
				URL:      url,
				Title:    "测试文章",
				Markdown: f.markdown,
				Platform: metis.DetectPlatform(url),
			}, nil
		},
	}
	f.local = &mock.MediaLocalizer{
		LocalizeFn: func(_ context.Context, markdown, dir string) (string, []string) {
			return strings.ReplaceAll(markdown, "https://cdn.example.com/a.png", "media/img_1.png"), []string{"media/img_1.png"}
		},
	}
	return f
}

func (f *fixture) pipeline(opts ...ingest.Option) *ingest.Pipeline {
	return ingest.NewPipeline(f.fetcher, f.local, f.store, f.machine, opts...)
}

func TestPipeline_Process(t *testing.T) {
	t.Parallel()

	// Given a fetched article with metadata lines and a remote image
	f := newFixture(t, chineseBody)

	// When it is processed
	pc, err := f.pipeline().Process(context.Background(), "https://mp.weixin.qq.com/s/abc")

	// Then media is localized and the markup normalized
	require.NoError(t, err)
	assert.Equal(t, "# 标题\n\n这是一篇中文文章的正文内容。\n\n![图](media/img_1.png)", pc.Markdown)
	assert.Equal(t, []string{"media/img_1.png"}, pc.Images)
	assert.Equal(t, metis.PlatformWeChat, pc.Platform)
	assert.Equal(t, "测试文章", pc.Title)
}

func TestPipeline_Ingest(t *testing.T) {
	t.Parallel()

	t.Run("stores extracted record with summary", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, chineseBody)
		p := f.pipeline(
			ingest.WithSummarizer(&mock.Summarizer{SummarizeFn: func(context.Context, string) (string, error) {
				return "一句话摘要", nil
			}}),
			ingest.WithTokenCounter(&mock.TokenCounter{CountTokensFn: func(context.Context, string) (int, error) {
				return 42, nil
			}}),
			ingest.WithTranslator(&mock.Translator{TranslateFn: func(context.Context, string, string) (string, error) {
				t.Fatal("chinese article must not be translated")
				return "", nil
			}}),
		)

		result, err := p.Ingest(context.Background(), "https://mp.weixin.qq.com/s/abc")

		require.NoError(t, err)
		assert.Equal(t, "一句话摘要", result.Summary)
		assert.Equal(t, 42, result.Tokens)
		assert.False(t, result.English)
		rec, err := f.store.Find(context.Background(), result.Path)
		require.NoError(t, err)
		assert.Equal(t, metis.StatusExtracted, rec.Status())
		assert.Equal(t, "一句话摘要", rec.Fields.Text(metis.FieldSummary))
		assert.Equal(t, len(rec.Body), result.Bytes)
	})

	t.Run("continues without summary when summarizer fails", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, chineseBody)
		p := f.pipeline(ingest.WithSummarizer(&mock.Summarizer{SummarizeFn: func(context.Context, string) (string, error) {
			return "", errors.New("quota")
		}}))

		result, err := p.Ingest(context.Background(), "https://mp.weixin.qq.com/s/abc")

		require.NoError(t, err)
		assert.Empty(t, result.Summary)
		rec, err := f.store.Find(context.Background(), result.Path)
		require.NoError(t, err)
		assert.False(t, rec.Fields.Has(metis.FieldSummary))
	})

	t.Run("appends translation for english articles", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, englishBody)
		var gotLang string
		p := f.pipeline(
			ingest.WithTargetLanguage("zh"),
			ingest.WithTranslator(&mock.Translator{TranslateFn: func(_ context.Context, text, lang string) (string, error) {
				gotLang = lang
				return "一篇关于软件设计的英文文章。", nil
			}}),
		)

		result, err := p.Ingest(context.Background(), "https://example.com/post")

		require.NoError(t, err)
		assert.Equal(t, "zh", gotLang)
		assert.True(t, result.English)
		assert.True(t, result.Translated)
		data, err := os.ReadFile(result.Path)
		require.NoError(t, err)
		text := string(data)
		assert.Contains(t, text, "is_english: true\n")
		assert.Contains(t, text, "has_translation: true\n")
		assert.True(t, strings.HasSuffix(text, englishBody+"\n\n---\n\n## Translation\n\n一篇关于软件设计的英文文章。"))
	})

	t.Run("keeps english article untranslated when translator fails", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, englishBody)
		p := f.pipeline(ingest.WithTranslator(&mock.Translator{TranslateFn: func(context.Context, string, string) (string, error) {
			return "", errors.New("unavailable")
		}}))

		result, err := p.Ingest(context.Background(), "https://example.com/post")

		require.NoError(t, err)
		assert.True(t, result.English)
		assert.False(t, result.Translated)
		data, err := os.ReadFile(result.Path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "## Translation")
		assert.NotContains(t, string(data), "has_translation")
	})

	t.Run("keeps lifecycle status of a record fetched again", func(t *testing.T) {
		t.Parallel()

		// Given an archived record
		f := newFixture(t, chineseBody)
		ctx := context.Background()
		path, err := f.store.Create(ctx, &metis.ProcessedContent{
			URL: "https://example.com/post", Title: "Post", Platform: "unknown",
		}, metis.StatusArchived)
		require.NoError(t, err)

		// When it is ingested again
		result, err := f.pipeline().Ingest(ctx, "https://example.com/post")

		// Then the same record stays archived
		require.NoError(t, err)
		assert.Equal(t, path, result.Path)
		rec, err := f.store.Find(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, metis.StatusArchived, rec.Status())
	})

	t.Run("translates an english article only once", func(t *testing.T) {
		t.Parallel()

		// Given an english article ingested with a translator
		f := newFixture(t, englishBody)
		ctx := context.Background()
		var calls int
		p := f.pipeline(ingest.WithTranslator(&mock.Translator{TranslateFn: func(context.Context, string, string) (string, error) {
			calls++
			return "译文", nil
		}}))
		first, err := p.Ingest(ctx, "https://example.com/post")
		require.NoError(t, err)

		// When it is ingested again
		second, err := p.Ingest(ctx, "https://example.com/post")

		// Then the translator ran once and one section exists
		require.NoError(t, err)
		assert.Equal(t, first.Path, second.Path)
		assert.True(t, second.Translated)
		assert.Equal(t, 1, calls)
		data, err := os.ReadFile(first.Path)
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(string(data), "## Translation"))
	})

	t.Run("marks existing record failed when no tier yields content", func(t *testing.T) {
		t.Parallel()

		// Given a stored pending record
		f := newFixture(t, chineseBody)
		path, err := f.store.Create(context.Background(), &metis.ProcessedContent{
			URL: "https://example.com/post", Title: "Post", Platform: "unknown",
		}, metis.StatusPending)
		require.NoError(t, err)
		f.fetchErr = metis.Errorf(metis.ENOCONTENT, "no content for https://example.com/post")

		// When ingesting fails
		_, err = f.pipeline().Ingest(context.Background(), "https://example.com/post")

		// Then the error is returned and the record is stamped
		assert.Equal(t, metis.ENOCONTENT, metis.ErrorCode(err))
		rec, err := f.store.Find(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "2024-01-02T03:04:05Z", rec.Fields.Text(metis.FieldFailedAt))
		assert.Equal(t, metis.StatusPending, rec.Status())
	})
}

func TestPipeline_Sync(t *testing.T) {
	t.Parallel()

	t.Run("skips processed urls and counts outcomes", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, chineseBody)
		_, err := f.store.Create(context.Background(), &metis.ProcessedContent{
			URL: "https://example.com/done", Title: "Done", Platform: "unknown",
		}, metis.StatusRead)
		require.NoError(t, err)
		_, err = f.store.Create(context.Background(), &metis.ProcessedContent{
			URL: "https://example.com/pending", Title: "Pending", Platform: "unknown",
		}, metis.StatusPending)
		require.NoError(t, err)

		fetched := []string{}
		inner := f.fetcher.FetchFn
		f.fetcher.FetchFn = func(ctx context.Context, url string) (*metis.Content, error) {
			fetched = append(fetched, url)
			if url == "https://example.com/broken" {
				return nil, metis.Errorf(metis.ENOCONTENT, "no content for %s", url)
			}
			return inner(ctx, url)
		}

		var events []ingest.SyncProgress
		stats, err := f.pipeline().Sync(context.Background(), []string{
			"https://example.com/done",
			"https://example.com/pending",
			"https://example.com/broken",
			"https://example.com/new",
		}, func(p ingest.SyncProgress) { events = append(events, p) })

		require.NoError(t, err)
		assert.Equal(t, ingest.SyncStats{Total: 4, Processed: 2, Skipped: 1, Failed: 1}, stats)
		assert.Equal(t, []string{"https://example.com/pending", "https://example.com/broken", "https://example.com/new"}, fetched)
		require.Len(t, events, 4)
		assert.True(t, events[0].Skipped)
		assert.Equal(t, 4, events[3].Completed)
		assert.Equal(t, metis.ENOCONTENT, metis.ErrorCode(events[2].Error))
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, chineseBody)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		stats, err := f.pipeline().Sync(ctx, []string{"https://example.com/a"}, nil)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, stats.Processed)
	})
}
