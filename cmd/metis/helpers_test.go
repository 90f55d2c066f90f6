package main_test

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/metis"
	main "github.com/fwojciec/metis/cmd/metis"
	"github.com/fwojciec/metis/fs"
	"github.com/fwojciec/metis/ingest"
	"github.com/fwojciec/metis/mock"
	"github.com/fwojciec/metis/workflow"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

const articleBody = "这是一篇用于测试的中文文章正文。"

// testEnv bundles a vault in a temp directory with an fs store over it.
type testEnv struct {
	deps   *main.Dependencies
	store  *fs.DocumentStore
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := main.DefaultConfig()
	cfg.Vault = t.TempDir()
	cfg.Media = filepath.Join(cfg.Vault, "media")
	require.NoError(t, cfg.EnsureDirs())

	clock := func() time.Time { return fixedNow }
	store := fs.NewDocumentStore(cfg.CollectionDir(), fs.WithNow(clock))

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &testEnv{
		deps: &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  stderr,
			Logger:  slog.New(slog.DiscardHandler),
			Config:  cfg,
			Store:   store,
			Machine: workflow.NewMachine(store, workflow.WithClock(clock)),
			Now:     clock,
		},
		store:  store,
		stdout: stdout,
		stderr: stderr,
	}
}

// withFetcher wires a pipeline over fetcher with a pass-through localizer.
func (e *testEnv) withFetcher(fetcher metis.ContentFetcher) *testEnv {
	localizer := &mock.MediaLocalizer{
		LocalizeFn: func(_ context.Context, markdown, _ string) (string, []string) {
			return markdown, nil
		},
	}
	e.deps.Pipeline = ingest.NewPipeline(fetcher, localizer, e.deps.Store, e.deps.Machine,
		ingest.WithMediaDir(e.deps.Config.Media),
	)
	return e
}

// seed stores an article for url with the given status.
func (e *testEnv) seed(t *testing.T, url, title string, status metis.Status) string {
	t.Helper()
	path, err := e.store.Create(context.Background(), &metis.ProcessedContent{
		URL:      url,
		Title:    title,
		Markdown: articleBody,
		Platform: metis.DetectPlatform(url).Name,
	}, status)
	require.NoError(t, err)
	return path
}

func articleFetcher(title string) *mock.ContentFetcher {
	return &mock.ContentFetcher{
		NameFn: func() string { return "mock" },
		FetchFn: func(_ context.Context, url string) (*metis.Content, error) {
			return &metis.Content{
				URL:      url,
				Title:    title,
				Markdown: articleBody,
				Platform: metis.DetectPlatform(url),
			}, nil
		},
	}
}
