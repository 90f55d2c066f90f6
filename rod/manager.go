package rod

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/metis"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxContexts is the default number of browsing contexts opened before
// the browser process is recycled.
const DefaultMaxContexts = 50

// BrowserManager owns a headless Chrome process and hands out isolated
// incognito contexts on it. Chrome is launched on first use, so commands that
// never reach the browser tier never start it. The process is replaced after
// maxContexts contexts because Chrome's memory baseline only grows.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	browser      *rod.Browser
	launcher     *launcher.Launcher
	contextCount int64
	maxContexts  int64
	mu           sync.Mutex
	closed       atomic.Bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxContexts sets how many contexts are opened before the browser is
// recycled.
func WithMaxContexts(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxContexts = n
	}
}

// NewBrowserManager creates a BrowserManager. Close must be called when the
// manager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) *BrowserManager {
	bm := &BrowserManager{
		maxContexts: DefaultMaxContexts,
	}
	for _, opt := range opts {
		opt(bm)
	}
	return bm
}

// Incognito returns a fresh incognito context. The caller owns the context
// and must Close it, which discards its cookies and storage.
func (bm *BrowserManager) Incognito() (*rod.Browser, error) {
	browser, err := bm.Browser()
	if err != nil {
		return nil, err
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("creating incognito context: %w", err)
	}
	atomic.AddInt64(&bm.contextCount, 1)
	return incognito, nil
}

// Browser returns the running browser, launching it on first use and
// recycling it once the context budget is spent.
func (bm *BrowserManager) Browser() (*rod.Browser, error) {
	if bm.closed.Load() {
		return nil, metis.Errorf(metis.EINVALID, "browser manager closed")
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.browser == nil {
		if err := bm.start(); err != nil {
			return nil, err
		}
		return bm.browser, nil
	}
	if atomic.LoadInt64(&bm.contextCount) >= bm.maxContexts {
		bm.recycle()
	}
	return bm.browser, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	return bm.stop()
}

// LauncherPID returns the process ID of the browser launcher, or zero when
// no browser is running.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}

// start launches a browser. Must be called with mu held.
func (bm *BrowserManager) start() error {
	browser, lnchr, err := launch(true)
	if err != nil {
		return err
	}
	bm.browser = browser
	bm.launcher = lnchr
	atomic.StoreInt64(&bm.contextCount, 0)
	return nil
}

// stop shuts down the current browser and launcher. Must be called with mu held.
func (bm *BrowserManager) stop() error {
	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
		bm.browser = nil
	}
	if bm.launcher != nil {
		bm.launcher.Kill()
		bm.launcher = nil
	}
	return err
}

// recycle swaps in a fresh browser. The old one is kept if the launch fails.
// Must be called with mu held.
func (bm *BrowserManager) recycle() {
	oldBrowser, oldLauncher := bm.browser, bm.launcher

	if err := bm.start(); err != nil {
		bm.browser, bm.launcher = oldBrowser, oldLauncher
		return
	}

	_ = oldBrowser.Close()
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
}

func launch(headless bool) (*rod.Browser, *launcher.Launcher, error) {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled").
		Leakless(true).
		Headless(headless)

	u, err := lnchr.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return nil, nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return browser, lnchr, nil
}
