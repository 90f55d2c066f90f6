package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/metis"
	metishttp "github.com/fwojciec/metis/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func TestLocalizer_DeduplicatesAcrossPatterns(t *testing.T) {
	t.Parallel()

	// Given a server with one image
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(pngBytes)
	}))
	defer server.Close()

	// And markdown that references it twice in different syntaxes
	img := server.URL + "/a.jpg"
	markdown := "![img](" + img + ")\n\n<img src=\"" + img + "\">\n"
	dir := t.TempDir()

	// When I localize it
	got, paths := metishttp.NewLocalizer().Localize(context.Background(), markdown, dir)

	// Then one file is downloaded, named by URL hash and magic bytes
	name := "img_" + metis.ComputeHash(img) + ".png"
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, []string{name}, paths)
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)

	// And both references point at it
	assert.Equal(t, "![img]("+name+")\n\n<img src=\""+name+"\">\n", got)
}

func TestLocalizer_SkipsFailedDownloads(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("not an image"))
	}))
	defer server.Close()

	good := server.URL + "/ok.gif"
	bad := server.URL + "/missing.png"
	markdown := "![a](" + bad + ") ![b](" + good + ")"

	got, paths := metishttp.NewLocalizer().Localize(context.Background(), markdown, t.TempDir())

	name := "img_" + metis.ComputeHash(good) + ".gif"
	assert.Equal(t, []string{name}, paths)
	assert.Equal(t, "![a]("+bad+") ![b]("+name+")", got)
}

func TestLocalizer_IgnoresNonHTTPReferences(t *testing.T) {
	t.Parallel()

	markdown := "![local](media/a.png) ![data](data:image/png;base64,AAAA)"

	got, paths := metishttp.NewLocalizer().Localize(context.Background(), markdown, t.TempDir())

	assert.Equal(t, markdown, got)
	assert.Empty(t, paths)
}

func TestLocalizer_SendsPlatformHeaders(t *testing.T) {
	t.Parallel()

	var ua, referer atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua.Store(r.Header.Get("User-Agent"))
		referer.Store(r.Header.Get("Referer"))
		_, _ = w.Write(pngBytes)
	}))
	defer server.Close()

	l := metishttp.NewLocalizer(metishttp.WithUserAgent("test-agent"))
	_, paths := l.Localize(context.Background(), "![x]("+server.URL+"/x.png)", t.TempDir())

	require.Len(t, paths, 1)
	assert.Equal(t, "test-agent", ua.Load())
	assert.Equal(t, "", referer.Load())
}

func TestLocalizer_LinkPrefix(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngBytes)
	}))
	defer server.Close()

	img := server.URL + "/p.png"
	got, paths := metishttp.NewLocalizer(metishttp.WithLinkPrefix("media")).
		Localize(context.Background(), "![p]("+img+")", t.TempDir())

	want := "media/img_" + metis.ComputeHash(img) + ".png"
	assert.Equal(t, []string{want}, paths)
	assert.Equal(t, "![p]("+want+")", got)
}

func TestLocalizer_RetriesFailedDownload(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write(pngBytes)
	}))
	defer server.Close()

	l := metishttp.NewLocalizer(metishttp.WithRetryDelays([]time.Duration{time.Millisecond}))
	_, paths := l.Localize(context.Background(), "![r]("+server.URL+"/r.png)", t.TempDir())

	assert.Len(t, paths, 1)
	assert.Equal(t, int32(2), hits.Load())
}

func TestLocalizer_PrefersLongerURLWhenOneIsPrefix(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngBytes)
	}))
	defer server.Close()

	short := server.URL + "/a.png"
	long := server.URL + "/a.png?size=large"
	markdown := "![s](" + short + ") ![l](" + long + ")"

	got, paths := metishttp.NewLocalizer().Localize(context.Background(), markdown, t.TempDir())

	require.Len(t, paths, 2)
	assert.Equal(t, "![s]("+paths[0]+") ![l]("+paths[1]+")", got)
	assert.False(t, strings.Contains(got, "?size=large"))
}

// rerouteTransport sends every request to target, keeping the path.
type rerouteTransport struct {
	target string
}

func (rt rerouteTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = "http"
	r.URL.Host = rt.target
	return http.DefaultTransport.RoundTrip(r)
}

func TestLocalizer_CDNImageInMarkdownDownloadsOnce(t *testing.T) {
	t.Parallel()

	// Given a CDN host serving one image
	var (
		hits  atomic.Int32
		paths []string
		mu    sync.Mutex
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		_, _ = w.Write(pngBytes)
	}))
	defer server.Close()
	client := &http.Client{Transport: rerouteTransport{target: strings.TrimPrefix(server.URL, "http://")}}
	localizer := metishttp.NewLocalizer(
		metishttp.WithDownloader(metishttp.NewDownloader(metishttp.WithHTTPClient(client))),
	)

	// And markdown embedding a CDN URL that the bare-link scan also matches
	img := "https://ci.xiaohongshu.com/abc123"
	markdown := "![photo](" + img + ")\n\nafter"

	// When I localize it
	got, refs := localizer.Localize(context.Background(), markdown, t.TempDir())

	// Then the image is fetched once and the closing paren survives
	name := "img_" + metis.ComputeHash(img) + ".png"
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, []string{"/abc123"}, paths)
	assert.Equal(t, []string{name}, refs)
	assert.Equal(t, "![photo]("+name+")\n\nafter", got)
}

func TestExtractImageURLs(t *testing.T) {
	t.Parallel()

	markdown := `![a](https://cdn.example.com/a.jpg)
<img class="x" src="https://cdn.example.com/b.png">
see https://sns-img.xiaohongshu.com/photo/123 and https://p3.feishu.cn/img/456 here
![a again](https://cdn.example.com/a.jpg)
![c](https://ci.xiaohongshu.com/abc) (https://p3.feishu.cn/img/456)`

	got := metishttp.ExtractImageURLs(markdown)

	assert.Equal(t, []string{
		"https://cdn.example.com/a.jpg",
		"https://ci.xiaohongshu.com/abc",
		"https://cdn.example.com/b.png",
		"https://sns-img.xiaohongshu.com/photo/123",
		"https://p3.feishu.cn/img/456",
	}, got)
}

func TestGuessExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		data []byte
		want string
	}{
		{"jpeg magic", "https://x/y", []byte{0xFF, 0xD8, 0xFF, 0xE0}, ".jpg"},
		{"png magic", "https://x/y.jpg", pngBytes, ".png"},
		{"gif87a magic", "https://x/y", []byte("GIF87a...."), ".gif"},
		{"gif89a magic", "https://x/y", []byte("GIF89a...."), ".gif"},
		{"webp magic", "https://x/y", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), ".webp"},
		{"url suffix", "https://x/y.webp", []byte("????"), ".webp"},
		{"url query format", "https://x/y?fmt=.png", nil, ".png"},
		{"default", "https://x/y", []byte("????"), ".jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, metishttp.GuessExtension(tt.url, tt.data))
		})
	}
}
