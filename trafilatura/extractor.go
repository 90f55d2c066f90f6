// Package trafilatura isolates article content with go-trafilatura.
package trafilatura

import (
	"bytes"
	"errors"
	"strings"

	"github.com/fwojciec/metis"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements metis.Extractor at compile time.
var _ metis.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML, keeping
// images and links so the media localizer can find them.
type Extractor struct {
	fallback metis.Extractor
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithFallback sets an extractor used when trafilatura finds no content.
func WithFallback(e metis.Extractor) Option {
	return func(x *Extractor) {
		x.fallback = e
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*metis.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, errors.New("empty HTML input")
	}

	result, err := e.extract(rawHTML)
	if err == nil && strings.TrimSpace(result.ContentHTML) != "" {
		return result, nil
	}
	if e.fallback == nil {
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	fb, fbErr := e.fallback.Extract(rawHTML)
	if fbErr != nil {
		return nil, errors.Join(err, fbErr)
	}
	if fb.Title == "" && result != nil {
		fb.Title = result.Title
	}
	return fb, nil
}

func (e *Extractor) extract(rawHTML string) (*metis.ExtractResult, error) {
	opts := trafilatura.Options{
		EnableFallback: true,
		IncludeImages:  true,
		IncludeLinks:   true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &metis.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
