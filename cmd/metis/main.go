package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/metis"
	"github.com/fwojciec/metis/fetch"
	"github.com/fwojciec/metis/firecrawl"
	"github.com/fwojciec/metis/fs"
	"github.com/fwojciec/metis/gemini"
	"github.com/fwojciec/metis/htmltomarkdown"
	metishttp "github.com/fwojciec/metis/http"
	"github.com/fwojciec/metis/ingest"
	"github.com/fwojciec/metis/jina"
	"github.com/fwojciec/metis/readability"
	"github.com/fwojciec/metis/rod"
	mslog "github.com/fwojciec/metis/slog"
	"github.com/fwojciec/metis/sqlite"
	"github.com/fwojciec/metis/trafilatura"
	"github.com/fwojciec/metis/workflow"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Getenv reads environment overrides. Set before calling Run().
	Getenv func(string) string

	// SQLite database, open when the sqlite store is configured.
	DB *sqlite.DB

	// Browser shared by the headless tier.
	Browser *rod.BrowserManager
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Getenv: os.Getenv,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var err error
	if m.Browser != nil {
		err = m.Browser.Close()
	}
	if m.DB != nil {
		if dbErr := m.DB.Close(); err == nil {
			err = dbErr
		}
	}
	return err
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Login:  rod.InteractiveLogin,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("metis"),
		kong.Description("Save web articles to an Obsidian vault as markdown"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'metis --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	cfg, err := LoadConfig(cli.Config, m.Getenv)
	if err != nil {
		return err
	}
	deps.Config = cfg
	deps.Logger = newLogger(stderr, cli.Verbose)

	if cmd == "config" || cmd == "auth-status" || cmd == "auth-login" {
		return kongCtx.Run(deps)
	}

	if err := cfg.EnsureDirs(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	store, err := m.openStore(cfg)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Set METIS_DB to use a different database path")
		return err
	}
	defer m.Close()

	deps.Store = mslog.NewLoggingDocumentStore(store, deps.Logger)
	deps.Machine = workflow.NewMachine(deps.Store)

	switch cmd {
	case "fetch", "sync", "schedule":
		deps.Pipeline, err = m.newPipeline(ctx, cfg, deps)
		if err != nil {
			return err
		}
	case "summarize":
		client, err := newGeminiClient(ctx, cfg)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Set GEMINI_API_KEY. Get a key at https://aistudio.google.com/apikey")
			return err
		}
		deps.Summarizer = mslog.NewLoggingSummarizer(newSummarizer(client, cfg), deps.Logger)
	}

	return kongCtx.Run(deps)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (m *Main) openStore(cfg *Config) (metis.DocumentStore, error) {
	if cfg.Store != StoreSQLite {
		return fs.NewDocumentStore(cfg.CollectionDir()), nil
	}
	m.DB = sqlite.NewDB(cfg.DB)
	if err := m.DB.Open(); err != nil {
		m.DB = nil
		return nil, fmt.Errorf("failed to open database at %q: %w", cfg.DB, err)
	}
	return sqlite.NewDocumentStore(m.DB), nil
}

// newPipeline wires the acquisition tiers, media localizer and language
// model collaborators. Gemini collaborators are skipped without an API key.
func (m *Main) newPipeline(ctx context.Context, cfg *Config, deps *Dependencies) (*ingest.Pipeline, error) {
	logger := deps.Logger
	conv := htmltomarkdown.NewConverter()

	m.Browser = rod.NewBrowserManager()
	browser := rod.NewFetcher(m.Browser,
		rod.WithConverter(conv),
		rod.WithStatePath(cfg.StatePath),
		rod.WithUserAgent(cfg.UserAgent),
	)
	extractor := trafilatura.NewExtractor(trafilatura.WithFallback(readability.NewExtractor()))

	tiers := []metis.ContentFetcher{
		firecrawl.NewFetcher(cfg.FirecrawlAPIKey, firecrawl.WithHTMLFallback(extractor, conv)),
		jina.NewFetcher(),
		browser,
	}
	for i, tier := range tiers {
		tiers[i] = mslog.NewLoggingContentFetcher(tier, logger)
	}
	fetcher := fetch.NewCoordinator(tiers,
		fetch.WithBrowserTier(tiers[len(tiers)-1]),
		fetch.WithFailureHook(func(tier string, err error) {
			logger.Info("tier failed", "tier", tier, "err", metis.ErrorMessage(err))
		}),
	)

	localizer := metishttp.NewLocalizer(
		metishttp.WithUserAgent(cfg.UserAgent),
		metishttp.WithLinkPrefix(cfg.MediaLink()),
		metishttp.WithRateLimit(2),
		metishttp.WithRetryDelays(metishttp.DefaultRetryDelays()),
		metishttp.WithLogFunc(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		}),
	)

	opts := []ingest.Option{
		ingest.WithMediaDir(cfg.Media),
		ingest.WithTargetLanguage(cfg.TargetLanguage),
		ingest.WithLogger(logger),
	}

	tokens, err := gemini.NewTokenCounter(cfg.Model)
	if err != nil {
		logger.Warn("token counting disabled", "err", err)
	} else {
		opts = append(opts, ingest.WithTokenCounter(tokens))
	}

	if cfg.GeminiAPIKey != "" {
		client, err := newGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			ingest.WithSummarizer(mslog.NewLoggingSummarizer(newSummarizer(client, cfg), logger)),
			ingest.WithTranslator(mslog.NewLoggingTranslator(gemini.NewTranslator(client, cfg.Model), logger)),
		)
	} else {
		logger.Debug("GEMINI_API_KEY not set, skipping summaries and translation")
	}

	return ingest.NewPipeline(
		fetcher,
		mslog.NewLoggingMediaLocalizer(localizer, logger),
		deps.Store,
		deps.Machine,
		opts...,
	), nil
}

func newGeminiClient(ctx context.Context, cfg *Config) (*genai.Client, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, metis.Errorf(metis.EINVALID, "GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}
	return client, nil
}

func newSummarizer(client *genai.Client, cfg *Config) *gemini.Summarizer {
	var opts []gemini.SummarizerOption
	if cfg.SummaryPrompt != "" {
		opts = append(opts, gemini.WithPrompt(cfg.SummaryPrompt))
	}
	return gemini.NewSummarizer(client, cfg.Model, opts...)
}

// printError writes err to stderr in the CLI's error format and returns it.
func printError(deps *Dependencies, err error) error {
	fmt.Fprintf(deps.Stderr, "error: %s\n", metis.ErrorMessage(err))
	return err
}
