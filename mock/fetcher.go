package mock

import (
	"context"

	"github.com/fwojciec/metis"
)

var _ metis.ContentFetcher = (*ContentFetcher)(nil)

// ContentFetcher is a mock implementation of metis.ContentFetcher.
type ContentFetcher struct {
	NameFn  func() string
	FetchFn func(ctx context.Context, url string) (*metis.Content, error)
}

func (f *ContentFetcher) Name() string {
	return f.NameFn()
}

func (f *ContentFetcher) Fetch(ctx context.Context, url string) (*metis.Content, error) {
	return f.FetchFn(ctx, url)
}
