// Package rod implements the headless browser tier with go-rod.
package rod

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/fwojciec/metis"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Browser tier timeouts.
const (
	DefaultNavigationTimeout = 30 * time.Second
	DefaultVerifyTimeout     = 15 * time.Second

	verifyButtonText   = "去验证"
	verifySearchWindow = 3 * time.Second
)

// verifySelectors are searched in order for the verification button, most
// specific first so the click lands on the control and not its container.
var verifySelectors = []string{"a", "button", "span", "div"}

// Ensure Fetcher implements metis.ContentFetcher at compile time.
var _ metis.ContentFetcher = (*Fetcher)(nil)

// Fetcher renders pages in headless Chrome and extracts article content.
// Every fetch runs in its own incognito context.
type Fetcher struct {
	manager           *BrowserManager
	converter         metis.Converter
	statePath         string
	userAgent         string
	navigationTimeout time.Duration
	verifyTimeout     time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithConverter renders WeChat article HTML as markdown.
func WithConverter(c metis.Converter) Option {
	return func(f *Fetcher) {
		f.converter = c
	}
}

// WithStatePath injects cookies from a saved authentication state file
// into every context. A missing file is ignored.
func WithStatePath(path string) Option {
	return func(f *Fetcher) {
		f.statePath = path
	}
}

// WithUserAgent sets the user agent for platforms without a dedicated one.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithNavigationTimeout bounds navigation and the wait for network idle.
func WithNavigationTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.navigationTimeout = d
	}
}

// WithVerifyTimeout bounds the wait after clicking through a verification page.
func WithVerifyTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.verifyTimeout = d
	}
}

// NewFetcher creates a Fetcher drawing browsers from manager.
func NewFetcher(manager *BrowserManager, opts ...Option) *Fetcher {
	f := &Fetcher{
		manager:           manager,
		userAgent:         metis.DefaultUserAgent,
		navigationTimeout: DefaultNavigationTimeout,
		verifyTimeout:     DefaultVerifyTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name identifies the tier.
func (f *Fetcher) Name() string { return "rod" }

// Fetch renders the URL and extracts its article.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*metis.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	platform := metis.DetectPlatform(url)
	html, err := f.render(ctx, url, platform)
	if err != nil {
		return nil, err
	}

	return NewContent(url, platform, html, f.converter)
}

// render loads the page in a fresh incognito context and returns its HTML,
// clicking through one verification challenge if it appears.
func (f *Fetcher) render(ctx context.Context, url string, platform metis.Platform) (string, error) {
	cookies, err := f.cookies()
	if err != nil {
		return "", err
	}

	browser, err := f.manager.Incognito()
	if err != nil {
		return "", err
	}
	defer browser.Close()

	if len(cookies) > 0 {
		if err := browser.SetCookies(cookies); err != nil {
			return "", err
		}
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent: platform.UserAgent(f.userAgent),
	}); err != nil {
		return "", err
	}

	nav := page.Timeout(f.navigationTimeout)
	waitIdle := nav.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	if err := nav.Navigate(url); err != nil {
		return "", err
	}
	waitIdle()
	if err := ctx.Err(); err != nil {
		return "", err
	}

	html, err := page.HTML()
	if err != nil {
		return "", err
	}
	if !isChallenge(html) {
		return html, nil
	}

	if err := f.passChallenge(page); err != nil {
		return "", err
	}
	html, err = page.HTML()
	if err != nil {
		return "", err
	}
	if isChallenge(html) {
		return "", metis.Errorf(metis.EINVALID, "verification page")
	}
	return html, nil
}

// passChallenge clicks the verification button once and waits for the page
// to settle.
func (f *Fetcher) passChallenge(page *rod.Page) error {
	var button *rod.Element
	for _, sel := range verifySelectors {
		el, err := page.Timeout(verifySearchWindow).ElementR(sel, verifyButtonText)
		if err == nil {
			button = el.CancelTimeout()
			break
		}
	}
	if button == nil {
		return metis.Errorf(metis.EINVALID, "verification page")
	}

	waitIdle := page.Timeout(f.verifyTimeout).WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	waitIdle()
	return page.GetContext().Err()
}

func (f *Fetcher) cookies() ([]*proto.NetworkCookieParam, error) {
	if f.statePath == "" {
		return nil, nil
	}
	cookies, err := LoadCookies(f.statePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return cookies, err
}
