// Package workflow applies lifecycle transitions and record annotations
// through a metis.DocumentStore.
package workflow

import (
	"context"
	"time"

	"github.com/fwojciec/metis"
)

// Machine moves stored documents through the reading workflow. Every
// operation is a single store Update, so a failed call leaves the record as
// it was.
type Machine struct {
	store metis.DocumentStore
	now   func() time.Time
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock sets the time source for timestamp fields.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// NewMachine creates a Machine over store.
func NewMachine(store metis.DocumentStore, opts ...Option) *Machine {
	m := &Machine{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Transition moves the record at path to status to and returns the status
// it left. Returns ETRANSITION if the lifecycle does not allow the move.
func (m *Machine) Transition(ctx context.Context, path string, to metis.Status) (metis.Status, error) {
	if !to.Valid() {
		return "", metis.Errorf(metis.EINVALID, "unknown status %q", to)
	}

	rec, err := m.store.Find(ctx, path)
	if err != nil {
		return "", err
	}
	from := rec.Status()

	upd, err := metis.TransitionFields(from, to, m.now())
	if err != nil {
		return "", err
	}
	if err := m.store.Update(ctx, path, upd); err != nil {
		return "", err
	}
	return from, nil
}

// TransitionURL locates the record for url and transitions it.
// It returns the record path and the status it left.
func (m *Machine) TransitionURL(ctx context.Context, url string, to metis.Status) (string, metis.Status, error) {
	path, err := m.store.Locate(ctx, url)
	if err != nil {
		return "", "", err
	}
	from, err := m.Transition(ctx, path, to)
	if err != nil {
		return "", "", err
	}
	return path, from, nil
}

// MarkFailed stamps failed_at. The status is left unchanged.
func (m *Machine) MarkFailed(ctx context.Context, path string) error {
	return m.set(ctx, path, metis.FieldFailedAt, metis.TimeValue(m.now()))
}

// MarkEnglish flags the record as English-language content.
func (m *Machine) MarkEnglish(ctx context.Context, path string) error {
	return m.set(ctx, path, metis.FieldIsEnglish, metis.BoolValue(true))
}

// MarkTranslated flags that a translation section was appended.
func (m *Machine) MarkTranslated(ctx context.Context, path string) error {
	return m.set(ctx, path, metis.FieldHasTranslation, metis.BoolValue(true))
}

// AddNote sets the record's note, replacing any previous one.
func (m *Machine) AddNote(ctx context.Context, path, note string) error {
	return m.set(ctx, path, metis.FieldNotes, metis.StringValue(note))
}

// SetFile records where the article's working files live.
func (m *Machine) SetFile(ctx context.Context, path, file string) error {
	return m.set(ctx, path, metis.FieldFile, metis.StringValue(file))
}

func (m *Machine) set(ctx context.Context, path, key string, v metis.Value) error {
	return m.store.Update(ctx, path, metis.NewFields().Set(key, v))
}
