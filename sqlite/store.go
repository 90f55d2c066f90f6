package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/metis"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ metis.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements metis.DocumentStore using SQLite. Record paths
// are row IDs.
type DocumentStore struct {
	db  *DB
	now func() time.Time
}

// Option configures a DocumentStore.
type Option func(*DocumentStore)

// WithNow sets the clock used for created and updated timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *DocumentStore) {
		s.now = now
	}
}

// NewDocumentStore creates a new DocumentStore.
func NewDocumentStore(db *DB, opts ...Option) *DocumentStore {
	s := &DocumentStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Locate returns the ID of the record for url.
func (s *DocumentStore) Locate(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", metis.Errorf(metis.EINVALID, "url required")
	}
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM records WHERE url = ?`, url).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", metis.Errorf(metis.ENOTFOUND, "no record for %s", url)
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// Create inserts a record, or updates the status of the existing record for
// the same URL.
func (s *DocumentStore) Create(ctx context.Context, c *metis.ProcessedContent, status metis.Status) (string, error) {
	if c.URL == "" {
		return "", metis.Errorf(metis.EINVALID, "url required")
	}
	if !status.Valid() {
		return "", metis.Errorf(metis.EINVALID, "unknown status %q", status)
	}

	id, err := s.Locate(ctx, c.URL)
	switch {
	case err == nil:
		upd := metis.NewFields().Set(metis.FieldStatus, metis.StringValue(string(status)))
		if err := s.Update(ctx, id, upd); err != nil {
			return "", err
		}
		return id, nil
	case metis.ErrorCode(err) != metis.ENOTFOUND:
		return "", err
	}

	now := s.now().UTC()
	f := metis.NewRecordFields(c, status, now)
	fields, err := encodeFields(f)
	if err != nil {
		return "", err
	}

	id = uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (id, url, status, created, fields, body, content_hash, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, c.URL, string(status), f.Text(metis.FieldCreated), fields, c.Markdown,
		metis.ComputeHash(c.Markdown), now.Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return id, nil
}

// Find retrieves a record by ID.
func (s *DocumentStore) Find(ctx context.Context, id string) (*metis.Record, error) {
	var fields, body string
	err := s.db.QueryRowContext(ctx, `SELECT fields, body FROM records WHERE id = ?`, id).Scan(&fields, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, metis.Errorf(metis.ENOTFOUND, "record not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	f, err := decodeFields(fields)
	if err != nil {
		return nil, err
	}
	return &metis.Record{Path: id, Fields: f, Body: body}, nil
}

// Update merges upd into the record's fields in one transaction and keeps
// the status and created columns in step.
func (s *DocumentStore) Update(ctx context.Context, id string, upd *metis.Fields) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var data string
	err = tx.QueryRowContext(ctx, `SELECT fields FROM records WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return metis.Errorf(metis.ENOTFOUND, "record not found: %s", id)
	}
	if err != nil {
		return err
	}

	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	f.Merge(upd)
	fields, err := encodeFields(f)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE records SET fields = ?, status = ?, created = ?, updated_at = ?
		WHERE id = ?
	`, fields, f.Text(metis.FieldStatus), f.Text(metis.FieldCreated),
		s.now().UTC().Format(time.RFC3339), id); err != nil {
		return err
	}
	return tx.Commit()
}

// AppendBody appends markdown to the record's body.
func (s *DocumentStore) AppendBody(ctx context.Context, id, markdown string) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var body string
	err = tx.QueryRowContext(ctx, `SELECT body FROM records WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return metis.Errorf(metis.ENOTFOUND, "record not found: %s", id)
	}
	if err != nil {
		return err
	}

	body += markdown
	if _, err := tx.ExecContext(ctx, `
		UPDATE records SET body = ?, content_hash = ?, updated_at = ? WHERE id = ?
	`, body, metis.ComputeHash(body), s.now().UTC().Format(time.RFC3339), id); err != nil {
		return err
	}
	return tx.Commit()
}

// List returns records newest first, optionally filtered by status.
func (s *DocumentStore) List(ctx context.Context, filter metis.RecordFilter) ([]*metis.Record, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, fields, body FROM records`)
	if filter.Status != nil {
		query.WriteString(` WHERE status = ?`)
		args = append(args, string(*filter.Status))
	}
	query.WriteString(` ORDER BY created DESC, rowid DESC`)
	appendLimit(&query, &args, filter.Limit)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*metis.Record
	for rows.Next() {
		var id, fields, body string
		if err := rows.Scan(&id, &fields, &body); err != nil {
			return nil, err
		}
		f, err := decodeFields(fields)
		if err != nil {
			return nil, err
		}
		records = append(records, &metis.Record{Path: id, Fields: f, Body: body})
	}
	return records, rows.Err()
}
