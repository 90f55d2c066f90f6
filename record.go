package metis

import (
	"context"
	"strings"
	"time"
)

// Header keys of a stored document.
const (
	FieldTitle          = "title"
	FieldURL            = "url"
	FieldPlatform       = "platform"
	FieldCreated        = "created"
	FieldStatus         = "status"
	FieldTags           = "tags"
	FieldSummary        = "summary"
	FieldFailedAt       = "failed_at"
	FieldIsEnglish      = "is_english"
	FieldHasTranslation = "has_translation"
	FieldNotes          = "notes"
	FieldFile           = "file"
)

// CollectionTag is added to the tags of every stored document.
const CollectionTag = "metis"

// Record is a stored document: its header fields and its body.
type Record struct {
	// Path locates the record within its store.
	Path   string
	Fields *Fields
	Body   string
}

// URL returns the record's identity.
func (r *Record) URL() string { return r.Fields.Text(FieldURL) }

// Title returns the record's title.
func (r *Record) Title() string { return r.Fields.Text(FieldTitle) }

// Platform returns the platform name the record was acquired from.
func (r *Record) Platform() string { return r.Fields.Text(FieldPlatform) }

// Status returns the record's lifecycle status.
func (r *Record) Status() Status { return Status(r.Fields.Text(FieldStatus)) }

// Created returns the creation timestamp as stored.
func (r *Record) Created() string { return r.Fields.Text(FieldCreated) }

// RecordFilter represents a filter passed to List.
type RecordFilter struct {
	Status *Status

	Limit int
}

// DocumentStore persists processed content as records keyed by URL.
// Records are never deleted.
type DocumentStore interface {
	// Locate returns the path of the record for url.
	// Returns ENOTFOUND if no record exists.
	Locate(ctx context.Context, url string) (string, error)

	// Create stores content with the given status and returns its path.
	// If a record for the URL already exists only its status is updated.
	Create(ctx context.Context, c *ProcessedContent, status Status) (string, error)

	// Find reads the record at path.
	// Returns ENOTFOUND if it does not exist.
	Find(ctx context.Context, path string) (*Record, error)

	// Update merges upd into the record's header, leaving the body untouched.
	// Returns EINVALID if the header cannot be parsed.
	Update(ctx context.Context, path string, upd *Fields) error

	// AppendBody appends markdown to the record's body.
	AppendBody(ctx context.Context, path, markdown string) error

	// List returns records newest first.
	List(ctx context.Context, filter RecordFilter) ([]*Record, error)
}

// CleanTitle strips an attribution prefix such as "Jane on X:" from a title.
func CleanTitle(title string) string {
	if _, rest, ok := strings.Cut(title, ":"); ok {
		if rest = strings.TrimSpace(rest); rest != "" {
			return rest
		}
	}
	return title
}

// NewRecordFields builds the header of a newly created record.
func NewRecordFields(c *ProcessedContent, status Status, created time.Time) *Fields {
	f := NewFields().
		Set(FieldTitle, StringValue(CleanTitle(c.Title))).
		Set(FieldURL, StringValue(c.URL)).
		Set(FieldPlatform, StringValue(c.Platform)).
		Set(FieldCreated, TimeValue(created)).
		Set(FieldStatus, StringValue(string(status))).
		Set(FieldTags, ListValue(c.Platform, CollectionTag))
	if c.Summary != "" {
		f.Set(FieldSummary, StringValue(c.Summary))
	}
	return f
}
