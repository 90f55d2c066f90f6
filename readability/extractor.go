// Package readability isolates article content with go-readability, the
// port of Mozilla's reader-mode algorithm.
package readability

import (
	"strings"

	"github.com/fwojciec/metis"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements metis.Extractor at compile time.
var _ metis.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract an article from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the article title and body HTML.
// Returns EINVALID when the page holds no readable article.
func (e *Extractor) Extract(rawHTML string) (*metis.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, metis.Errorf(metis.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(article.Content) == "" {
		return nil, metis.Errorf(metis.EINVALID, "no readable article")
	}

	return &metis.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: article.Content,
	}, nil
}
