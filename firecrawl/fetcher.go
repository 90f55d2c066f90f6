// Package firecrawl implements the hosted extraction tier over the
// Firecrawl scrape API.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/metis"
)

// Defaults for the Firecrawl API.
const (
	DefaultBaseURL = "https://api.firecrawl.dev"
	DefaultTimeout = 30 * time.Second
)

// Ensure Fetcher implements metis.ContentFetcher at compile time.
var _ metis.ContentFetcher = (*Fetcher)(nil)

// Fetcher asks Firecrawl to scrape a URL into markdown.
type Fetcher struct {
	client    *http.Client
	apiKey    string
	baseURL   string
	timeout   time.Duration
	extractor metis.Extractor
	converter metis.Converter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(f *Fetcher) {
		f.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithTimeout sets the request timeout.
// Defaults to DefaultTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithHTMLFallback derives markdown from the returned HTML when the API
// returns none.
func WithHTMLFallback(e metis.Extractor, c metis.Converter) Option {
	return func(f *Fetcher) {
		f.extractor = e
		f.converter = c
	}
}

// NewFetcher creates a Fetcher. An empty apiKey disables the tier.
func NewFetcher(apiKey string, opts ...Option) *Fetcher {
	f := &Fetcher{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client = &http.Client{Timeout: f.timeout}
	return f
}

// Name identifies the tier.
func (f *Fetcher) Name() string { return "firecrawl" }

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Markdown string         `json:"markdown"`
		HTML     string         `json:"html"`
		Metadata map[string]any `json:"metadata"`
	} `json:"data"`
}

// Fetch scrapes url through the API.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*metis.Content, error) {
	if f.apiKey == "" {
		return nil, metis.Errorf(metis.EINVALID, "firecrawl api key not configured")
	}

	body, err := json.Marshal(scrapeRequest{URL: url, Formats: []string{"markdown", "html"}})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+f.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("firecrawl: HTTP %d for %s", resp.StatusCode, url)
	}

	var out scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("firecrawl: decoding response: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("firecrawl: scrape failed: %s", out.Error)
	}

	markdown := out.Data.Markdown
	if strings.TrimSpace(markdown) == "" && out.Data.HTML != "" {
		markdown, err = f.fromHTML(out.Data.HTML)
		if err != nil {
			return nil, err
		}
	}
	if err := metis.CheckContent(markdown); err != nil {
		return nil, err
	}

	return &metis.Content{
		URL:      url,
		Title:    ExtractTitle(markdown, out.Data.Metadata),
		Markdown: markdown,
		Platform: metis.DetectPlatform(url),
		RawHTML:  out.Data.HTML,
		Metadata: out.Data.Metadata,
	}, nil
}

func (f *Fetcher) fromHTML(html string) (string, error) {
	if f.extractor == nil || f.converter == nil {
		return "", metis.Errorf(metis.EINVALID, "firecrawl returned no markdown")
	}
	result, err := f.extractor.Extract(html)
	if err != nil {
		return "", err
	}
	return f.converter.Convert(result.ContentHTML)
}

// ExtractTitle picks a title from provider metadata, then the first H1
// within the first 30 lines, then the first plain text line that looks like
// a sentence.
func ExtractTitle(markdown string, metadata map[string]any) string {
	if title, ok := metadata["title"].(string); ok && strings.TrimSpace(title) != "" {
		return metis.TruncateTitle(title)
	}

	lines := strings.Split(markdown, "\n")
	lines = lines[:min(len(lines), 30)]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return metis.TruncateTitle(line[2:])
		}
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") || strings.HasPrefix(line, "[") {
			continue
		}
		if len([]rune(line)) <= 10 || strings.Contains(line, "http") || isUpper(line) {
			continue
		}
		return metis.TruncateTitle(line)
	}
	return metis.UntitledTitle
}

// isUpper reports whether s has cased letters and all of them are upper case.
func isUpper(s string) bool {
	return strings.ToUpper(s) == s && strings.ToLower(s) != s
}
