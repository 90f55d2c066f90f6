package metis

import (
	"slices"
	"time"
)

// Status is the reading-workflow stage of a stored document.
type Status string

// Lifecycle statuses.
const (
	StatusPending       Status = "pending"
	StatusExtracted     Status = "extracted"
	StatusRead          Status = "read"
	StatusValuable      Status = "valuable"
	StatusArchived      Status = "archived"
	StatusCreating      Status = "creating"
	StatusKnowledgeBase Status = "knowledge_base"
)

// Statuses lists every lifecycle status in workflow order.
var Statuses = []Status{
	StatusPending,
	StatusExtracted,
	StatusRead,
	StatusValuable,
	StatusArchived,
	StatusCreating,
	StatusKnowledgeBase,
}

var transitions = map[Status][]Status{
	StatusPending:   {StatusExtracted},
	StatusExtracted: {StatusRead},
	StatusRead:      {StatusValuable, StatusArchived},
	StatusValuable:  {StatusCreating, StatusKnowledgeBase},
}

// ParseStatus validates s as a lifecycle status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", Errorf(EINVALID, "unknown status %q", s)
	}
	return st, nil
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Next returns the statuses reachable from s in one step.
func (s Status) Next() []Status {
	return slices.Clone(transitions[s])
}

// TimestampField is the header key stamped when a document enters s.
func (s Status) TimestampField() string {
	return string(s) + "_at"
}

// CanTransition reports whether from may move directly to to.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// TransitionFields returns the header update for moving a document from one
// status to another: the new status plus its timestamp stamp.
func TransitionFields(from, to Status, now time.Time) (*Fields, error) {
	if !CanTransition(from, to) {
		return nil, Errorf(ETRANSITION, "cannot transition from %q to %q", from, to)
	}
	return NewFields().
		Set(FieldStatus, StringValue(string(to))).
		Set(to.TimestampField(), TimeValue(now)), nil
}
