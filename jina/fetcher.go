// Package jina implements the readability proxy tier over the Jina Reader
// service, which returns any page as markdown.
package jina

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/metis"
)

// Defaults for the reader proxy.
const (
	DefaultBaseURL = "https://r.jina.ai"
	DefaultTimeout = 30 * time.Second
)

// Ensure Fetcher implements metis.ContentFetcher at compile time.
var _ metis.ContentFetcher = (*Fetcher)(nil)

// Fetcher reads pages through the reader proxy.
type Fetcher struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL overrides the proxy endpoint.
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

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
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
func (f *Fetcher) Name() string { return "jina" }

// Fetch reads url through the proxy.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*metis.Content, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/"+url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/markdown")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jina: HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	markdown := string(body)
	if n := utf8.RuneCountInString(markdown); n <= metis.MinContentLength {
		return nil, metis.Errorf(metis.EINVALID, "jina: response too short: %d characters", n)
	}
	if err := metis.CheckContent(markdown); err != nil {
		return nil, err
	}

	return &metis.Content{
		URL:      url,
		Title:    ExtractTitle(markdown),
		Markdown: markdown,
		Platform: metis.DetectPlatform(url),
	}, nil
}

// ExtractTitle picks a title from the proxy's "Title: " preamble line, then
// the first plain text line, within the first 10 lines.
func ExtractTitle(markdown string) string {
	lines := strings.Split(markdown, "\n")
	lines = lines[:min(len(lines), 10)]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if title, ok := strings.CutPrefix(line, "Title: "); ok {
			title = strings.TrimSpace(strings.TrimSuffix(title, " / X"))
			if title != "" {
				return metis.TruncateTitle(title)
			}
		}
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[") {
			continue
		}
		if utf8.RuneCountInString(line) <= 5 || strings.Contains(line, "http") {
			continue
		}
		return metis.TruncateTitle(line)
	}
	return metis.UntitledTitle
}
