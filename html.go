package metis

// ExtractResult holds the main content extracted from an HTML page.
type ExtractResult struct {
	// Title is the page title taken from metadata.
	Title string

	// ContentHTML is the article body with navigation, footers and ads removed.
	ContentHTML string
}

// Extractor isolates the main content of an HTML page.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	Convert(html string) (string, error)
}
