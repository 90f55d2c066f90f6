// Package http downloads remote media referenced by articles and rewrites
// those references to local files.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultDownloadTimeout bounds a single media download.
const DefaultDownloadTimeout = 30 * time.Second

// Downloader retrieves raw bytes over HTTP.
type Downloader struct {
	client  *http.Client
	timeout time.Duration
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithDownloadTimeout sets the per-request timeout.
// Defaults to DefaultDownloadTimeout (30s) if not specified.
func WithDownloadTimeout(d time.Duration) DownloaderOption {
	return func(dl *Downloader) {
		dl.timeout = d
	}
}

// WithHTTPClient sets the client used for requests. The client's own
// timeout applies instead of WithDownloadTimeout.
func WithHTTPClient(c *http.Client) DownloaderOption {
	return func(dl *Downloader) {
		dl.client = c
	}
}

// NewDownloader creates a new Downloader.
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		timeout: DefaultDownloadTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.client == nil {
		d.client = &http.Client{
			Timeout: d.timeout,
		}
	}

	return d
}

// StatusError reports a response status other than 200.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.Status, e.URL)
}

// Temporary reports whether a later attempt may succeed: server errors,
// request timeouts and rate limiting.
func (e *StatusError) Temporary() bool {
	return e.Status >= 500 || e.Status == http.StatusRequestTimeout || e.Status == http.StatusTooManyRequests
}

// Download fetches url with the given request headers. Any status other
// than 200 is a *StatusError.
func (d *Downloader) Download(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, Status: resp.StatusCode}
	}

	return io.ReadAll(resp.Body)
}
