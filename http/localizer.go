package http

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/metis"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of media downloads run in parallel.
const DefaultConcurrency = 4

var imagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`!\[.*?\]\((.*?)\)`),
	regexp.MustCompile(`<img[^>]+src="([^"]+)"`),
	regexp.MustCompile(`https://[^'"\s()]+\.xiaohongshu\.com[^\s'"<>()]+`),
	regexp.MustCompile(`https://[^'"\s()]+\.feishu\.cn[^\s'"<>()]+`),
}

// Ensure Localizer implements metis.MediaLocalizer at compile time.
var _ metis.MediaLocalizer = (*Localizer)(nil)

// Localizer downloads the images referenced by markdown and rewrites the
// references to the downloaded files. Files are named after a hash of the
// source URL, so repeated runs map a URL to the same file.
type Localizer struct {
	downloader  *Downloader
	limiter     *HostLimiter
	userAgent   string
	linkPrefix  string
	concurrency int
	retryDelays []time.Duration
	logf        LogFunc
}

// LocalizerOption configures a Localizer.
type LocalizerOption func(*Localizer)

// WithDownloader sets the downloader used for media requests.
func WithDownloader(d *Downloader) LocalizerOption {
	return func(l *Localizer) {
		l.downloader = d
	}
}

// WithUserAgent sets the user agent sent to hosts without a platform-specific one.
func WithUserAgent(ua string) LocalizerOption {
	return func(l *Localizer) {
		l.userAgent = ua
	}
}

// WithLinkPrefix sets the path prepended to filenames in rewritten references.
func WithLinkPrefix(prefix string) LocalizerOption {
	return func(l *Localizer) {
		l.linkPrefix = prefix
	}
}

// WithConcurrency sets how many downloads run at once.
func WithConcurrency(n int) LocalizerOption {
	return func(l *Localizer) {
		l.concurrency = n
	}
}

// WithRateLimit limits requests per second to each image host.
func WithRateLimit(rps float64) LocalizerOption {
	return func(l *Localizer) {
		l.limiter = NewHostLimiter(rps, 2)
	}
}

// WithRetryDelays retries failed downloads after each of the given delays.
func WithRetryDelays(delays []time.Duration) LocalizerOption {
	return func(l *Localizer) {
		l.retryDelays = delays
	}
}

// WithLogFunc sets a function that receives retry messages.
func WithLogFunc(fn LogFunc) LocalizerOption {
	return func(l *Localizer) {
		l.logf = fn
	}
}

// NewLocalizer creates a Localizer.
func NewLocalizer(opts ...LocalizerOption) *Localizer {
	l := &Localizer{
		userAgent:   metis.DefaultUserAgent,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.downloader == nil {
		l.downloader = NewDownloader()
	}
	return l
}

// Localize downloads every http(s) image in markdown into dir and returns
// the rewritten markdown with the references to the downloaded files, in
// order of first appearance. Images that fail to download keep their
// remote reference.
func (l *Localizer) Localize(ctx context.Context, markdown, dir string) (string, []string) {
	var urls []string
	for _, u := range ExtractImageURLs(markdown) {
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		return markdown, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return markdown, nil
	}

	names := make([]string, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(l.concurrency, 1))
	for i, u := range urls {
		g.Go(func() error {
			name, err := l.download(ctx, u, dir)
			if err == nil {
				names[i] = name
			}
			return nil
		})
	}
	_ = g.Wait()

	var (
		refs    []string
		rewrite []string
		pairs   [][2]string
	)
	for i, u := range urls {
		if names[i] == "" {
			continue
		}
		ref := path.Join(l.linkPrefix, names[i])
		refs = append(refs, ref)
		pairs = append(pairs, [2]string{u, ref})
	}
	if len(pairs) == 0 {
		return markdown, nil
	}

	// Longest first, so a URL that prefixes another never splits it.
	sort.SliceStable(pairs, func(i, j int) bool {
		return len(pairs[i][0]) > len(pairs[j][0])
	})
	for _, p := range pairs {
		rewrite = append(rewrite, p[0], p[1])
	}
	return strings.NewReplacer(rewrite...).Replace(markdown), refs
}

func (l *Localizer) download(ctx context.Context, rawURL, dir string) (string, error) {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx, rawURL); err != nil {
			return "", err
		}
	}

	p := metis.DetectPlatform(rawURL)
	header := http.Header{}
	header.Set("User-Agent", p.UserAgent(l.userAgent))
	if p.Referer != "" {
		header.Set("Referer", p.Referer)
	}

	get := func(ctx context.Context, url string) ([]byte, error) {
		return l.downloader.Download(ctx, url, header)
	}
	data, err := DownloadWithRetry(ctx, rawURL, get, l.logf, l.retryDelays)
	if err != nil {
		return "", err
	}

	name := "img_" + metis.ComputeHash(rawURL) + GuessExtension(rawURL, data)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return "", err
	}
	return name, nil
}

// ExtractImageURLs finds image references in markdown: markdown image
// targets, HTML img sources and bare CDN links. Results are de-duplicated in
// order of first appearance per pattern.
func ExtractImageURLs(markdown string) []string {
	var urls []string
	seen := make(map[string]bool)
	for _, re := range imagePatterns {
		for _, m := range re.FindAllStringSubmatch(markdown, -1) {
			u := m[len(m)-1]
			if u == "" || seen[u] {
				continue
			}
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}

// GuessExtension picks a file extension from the data's magic bytes, then
// from the URL, defaulting to .jpg.
func GuessExtension(rawURL string, data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return ".jpg"
	case bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}):
		return ".png"
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return ".gif"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return ".webp"
	}

	lower := strings.ToLower(rawURL)
	switch {
	case strings.Contains(lower, ".jpg"), strings.Contains(lower, ".jpeg"):
		return ".jpg"
	case strings.Contains(lower, ".png"):
		return ".png"
	case strings.Contains(lower, ".gif"):
		return ".gif"
	case strings.Contains(lower, ".webp"):
		return ".webp"
	}
	return ".jpg"
}
