package mock

import "github.com/fwojciec/metis"

var _ metis.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of metis.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*metis.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*metis.ExtractResult, error) {
	return e.ExtractFn(html)
}
