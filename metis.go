// Package metis reads articles from arbitrary web URLs, localizes their media
// and files them as Markdown documents whose header block doubles as the
// record of the document's reading lifecycle.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, sqlite/, gemini/).
package metis
