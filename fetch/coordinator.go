// Package fetch runs acquisition tiers as an ordered fallback chain.
package fetch

import (
	"context"
	"time"

	"github.com/fwojciec/metis"
)

// DefaultAttemptTimeout bounds a single tier attempt.
const DefaultAttemptTimeout = 60 * time.Second

// FailureFunc is called with the tier name and error after every failed attempt.
type FailureFunc func(tier string, err error)

// Ensure Coordinator implements metis.ContentFetcher at compile time.
var _ metis.ContentFetcher = (*Coordinator)(nil)

// Coordinator tries tiers one at a time and returns the first success.
// Platforms that prefer a browser get the browser tier first.
type Coordinator struct {
	tiers          []metis.ContentFetcher
	browser        metis.ContentFetcher
	attemptTimeout time.Duration
	onFailure      FailureFunc
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithBrowserTier sets the tier tried first for platforms that prefer a
// rendered page. It is usually also present in the regular order.
func WithBrowserTier(f metis.ContentFetcher) Option {
	return func(c *Coordinator) {
		c.browser = f
	}
}

// WithAttemptTimeout bounds each tier attempt.
func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		c.attemptTimeout = d
	}
}

// WithFailureHook reports individual tier failures.
func WithFailureHook(fn FailureFunc) Option {
	return func(c *Coordinator) {
		c.onFailure = fn
	}
}

// NewCoordinator creates a Coordinator trying tiers in the given order.
func NewCoordinator(tiers []metis.ContentFetcher, opts ...Option) *Coordinator {
	c := &Coordinator{
		tiers:          tiers,
		attemptTimeout: DefaultAttemptTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the chain.
func (c *Coordinator) Name() string { return "chain" }

// Fetch returns content from the first tier that succeeds. When every tier
// fails the error has code ENOCONTENT. Cancellation of ctx stops the chain
// and returns ctx.Err().
func (c *Coordinator) Fetch(ctx context.Context, url string) (*metis.Content, error) {
	attempts := c.tiers
	if c.browser != nil && metis.DetectPlatform(url).PrefersBrowser() {
		attempts = append([]metis.ContentFetcher{c.browser}, c.tiers...)
	}

	for _, tier := range attempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := c.attempt(ctx, tier, url)
		if err == nil {
			return content, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if c.onFailure != nil {
			c.onFailure(tier.Name(), err)
		}
	}

	return nil, metis.Errorf(metis.ENOCONTENT, "no content for %s", url)
}

func (c *Coordinator) attempt(ctx context.Context, tier metis.ContentFetcher, url string) (*metis.Content, error) {
	ctx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	content, err := tier.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, metis.Errorf(metis.EINTERNAL, "%s returned no content", tier.Name())
	}
	return content, nil
}
