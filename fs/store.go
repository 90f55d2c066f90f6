package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/metis"
)

// Ensure DocumentStore implements metis.DocumentStore at compile time.
var _ metis.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements metis.DocumentStore over a folder of markdown
// files. The header block of each file is the record; the URL field, not the
// filename, is its identity. There is no locking: concurrent writers to the
// same record race and the last rewrite wins.
type DocumentStore struct {
	dir string
	now func() time.Time
}

// Option configures a DocumentStore.
type Option func(*DocumentStore)

// WithNow sets the clock used to stamp created timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *DocumentStore) {
		s.now = now
	}
}

// NewDocumentStore creates a store over the collection folder dir.
func NewDocumentStore(dir string, opts ...Option) *DocumentStore {
	s := &DocumentStore{
		dir: dir,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the collection folder.
func (s *DocumentStore) Dir() string {
	return s.dir
}

// Locate returns the first document, in filename order, whose raw text
// contains url either verbatim or in its quoted header form.
func (s *DocumentStore) Locate(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", metis.Errorf(metis.EINVALID, "url required")
	}
	needles := []string{url}
	if quoted := strconv.Quote(url); quoted[1:len(quoted)-1] != url {
		needles = append(needles, quoted[1:len(quoted)-1])
	}
	paths, err := s.documents()
	if err != nil {
		return "", err
	}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		for _, needle := range needles {
			if strings.Contains(string(data), needle) {
				return path, nil
			}
		}
	}
	return "", metis.Errorf(metis.ENOTFOUND, "no record for %s", url)
}

// Create writes a new document for c, or updates the status of the existing
// document for the same URL.
func (s *DocumentStore) Create(ctx context.Context, c *metis.ProcessedContent, status metis.Status) (string, error) {
	if c.URL == "" {
		return "", metis.Errorf(metis.EINVALID, "url required")
	}
	if !status.Valid() {
		return "", metis.Errorf(metis.EINVALID, "unknown status %q", status)
	}

	path, err := s.Locate(ctx, c.URL)
	switch {
	case err == nil:
		upd := metis.NewFields().Set(metis.FieldStatus, metis.StringValue(string(status)))
		if err := s.Update(ctx, path, upd); err != nil {
			return "", err
		}
		return path, nil
	case metis.ErrorCode(err) != metis.ENOTFOUND:
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", err
	}
	path, err = s.freePath(SanitizeFilename(c.Title))
	if err != nil {
		return "", err
	}
	content := FormatDocument(metis.NewRecordFields(c, status, s.now().UTC()), c.Markdown)
	if err := writeFileAtomic(path, []byte(content)); err != nil {
		return "", err
	}
	return path, nil
}

// freePath returns dir/stem.md, or the first of stem-2.md, stem-3.md, ...
// that does not exist yet.
func (s *DocumentStore) freePath(stem string) (string, error) {
	for i := 1; ; i++ {
		name := stem + ".md"
		if i > 1 {
			name = fmt.Sprintf("%s-%d.md", stem, i)
		}
		path := filepath.Join(s.dir, name)
		_, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		} else if err != nil {
			return "", err
		}
	}
}

// Find reads and parses the document at path.
func (s *DocumentStore) Find(ctx context.Context, path string) (*metis.Record, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, metis.Errorf(metis.ENOTFOUND, "record not found: %s", path)
	} else if err != nil {
		return nil, err
	}
	return parseRecord(path, string(data))
}

func parseRecord(path, data string) (*metis.Record, error) {
	header, rest, ok := SplitDocument(data)
	if !ok {
		return nil, metis.Errorf(metis.EINVALID, "missing header: %s", path)
	}
	fields, err := ParseHeader(header)
	if err != nil {
		return nil, err
	}
	return &metis.Record{
		Path:   path,
		Fields: fields,
		Body:   strings.TrimPrefix(rest, "\n"),
	}, nil
}

// Update merges upd into the header of the document at path. The body bytes
// are written back untouched. A missing or malformed header leaves the file
// unchanged.
func (s *DocumentStore) Update(ctx context.Context, path string, upd *metis.Fields) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return metis.Errorf(metis.ENOTFOUND, "record not found: %s", path)
	} else if err != nil {
		return err
	}
	header, rest, ok := SplitDocument(string(data))
	if !ok {
		return metis.Errorf(metis.EINVALID, "missing header: %s", path)
	}
	fields, err := ParseHeader(header)
	if err != nil {
		return err
	}
	fields.Merge(upd)

	content := Delimiter + "\n" + FormatHeader(fields) + Delimiter + "\n" + rest
	return writeFileAtomic(path, []byte(content))
}

// AppendBody appends markdown to the end of the document at path.
func (s *DocumentStore) AppendBody(ctx context.Context, path, markdown string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return metis.Errorf(metis.ENOTFOUND, "record not found: %s", path)
	} else if err != nil {
		return err
	}
	if _, _, ok := SplitDocument(string(data)); !ok {
		return metis.Errorf(metis.EINVALID, "missing header: %s", path)
	}
	return writeFileAtomic(path, append(data, markdown...))
}

// List parses every document that carries a url field, newest first.
// Unparseable documents are skipped.
func (s *DocumentStore) List(ctx context.Context, filter metis.RecordFilter) ([]*metis.Record, error) {
	paths, err := s.documents()
	if err != nil {
		return nil, err
	}

	var records []*metis.Record
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		r, err := parseRecord(path, string(data))
		if err != nil || r.URL() == "" {
			continue
		}
		if filter.Status != nil && r.Status() != *filter.Status {
			continue
		}
		records = append(records, r)
	}

	// Created timestamps are fixed-width RFC 3339, so string order is time order.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Created() > records[j].Created()
	})

	if filter.Limit > 0 && len(records) > filter.Limit {
		records = records[:filter.Limit]
	}
	return records, nil
}

// documents returns the markdown files of the collection in name order.
func (s *DocumentStore) documents() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, e.Name()))
	}
	return paths, nil
}

// writeFileAtomic writes data to a temp file in the target's folder and
// renames it over the target.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
