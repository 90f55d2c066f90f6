package mock

import (
	"context"

	"github.com/fwojciec/metis"
)

var _ metis.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is a mock implementation of metis.DocumentStore.
type DocumentStore struct {
	LocateFn     func(ctx context.Context, url string) (string, error)
	CreateFn     func(ctx context.Context, c *metis.ProcessedContent, status metis.Status) (string, error)
	FindFn       func(ctx context.Context, path string) (*metis.Record, error)
	UpdateFn     func(ctx context.Context, path string, upd *metis.Fields) error
	AppendBodyFn func(ctx context.Context, path, markdown string) error
	ListFn       func(ctx context.Context, filter metis.RecordFilter) ([]*metis.Record, error)
}

func (s *DocumentStore) Locate(ctx context.Context, url string) (string, error) {
	return s.LocateFn(ctx, url)
}

func (s *DocumentStore) Create(ctx context.Context, c *metis.ProcessedContent, status metis.Status) (string, error) {
	return s.CreateFn(ctx, c, status)
}

func (s *DocumentStore) Find(ctx context.Context, path string) (*metis.Record, error) {
	return s.FindFn(ctx, path)
}

func (s *DocumentStore) Update(ctx context.Context, path string, upd *metis.Fields) error {
	return s.UpdateFn(ctx, path, upd)
}

func (s *DocumentStore) AppendBody(ctx context.Context, path, markdown string) error {
	return s.AppendBodyFn(ctx, path, markdown)
}

func (s *DocumentStore) List(ctx context.Context, filter metis.RecordFilter) ([]*metis.Record, error) {
	return s.ListFn(ctx, filter)
}
