package metis

import (
	"slices"
	"strings"
	"time"
)

// ValueKind identifies how a header value is typed and serialized.
type ValueKind int

// Header value kinds.
const (
	// KindString is a quoted string.
	KindString ValueKind = iota
	// KindRaw is an unquoted scalar such as a timestamp.
	KindRaw
	// KindBool is rendered as lowercase true or false.
	KindBool
	// KindList is a bracketed list of quoted strings.
	KindList
)

// Value is a single header value.
type Value struct {
	Kind ValueKind
	Str  string
	Bool bool
	List []string
}

// StringValue returns a quoted string value.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// RawValue returns an unquoted scalar value.
func RawValue(s string) Value { return Value{Kind: KindRaw, Str: s} }

// BoolValue returns a boolean value.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// ListValue returns a list value. The list is never nil.
func ListValue(items ...string) Value {
	return Value{Kind: KindList, List: append([]string{}, items...)}
}

// TimeValue returns t as an unquoted RFC 3339 timestamp.
func TimeValue(t time.Time) Value { return RawValue(t.Format(time.RFC3339)) }

// Text returns the value as display text.
func (v Value) Text() string {
	switch v.Kind {
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindList:
		return strings.Join(v.List, ", ")
	default:
		return v.Str
	}
}

// Fields is an ordered mapping of header keys to values. Keys keep their
// first insertion position.
type Fields struct {
	keys   []string
	values map[string]Value
}

// NewFields returns an empty field set.
func NewFields() *Fields {
	return &Fields{values: make(map[string]Value)}
}

// Set assigns a value, keeping the key's position if it already exists.
func (f *Fields) Set(key string, v Value) *Fields {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = v
	return f
}

// Get returns the value for key.
func (f *Fields) Get(key string) (Value, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Text returns the display text of key, or "" when absent.
func (f *Fields) Text(key string) string {
	if f == nil {
		return ""
	}
	return f.values[key].Text()
}

// Has reports whether key is present.
func (f *Fields) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// Keys returns the keys in order.
func (f *Fields) Keys() []string {
	return slices.Clone(f.keys)
}

// Len returns the number of fields.
func (f *Fields) Len() int {
	return len(f.keys)
}

// Merge overwrites existing keys in place and appends new keys in the order
// they appear in upd.
func (f *Fields) Merge(upd *Fields) *Fields {
	if upd == nil {
		return f
	}
	for _, k := range upd.keys {
		f.Set(k, upd.values[k])
	}
	return f
}

// Clone returns a deep copy.
func (f *Fields) Clone() *Fields {
	c := NewFields()
	for _, k := range f.keys {
		v := f.values[k]
		if v.Kind == KindList {
			v.List = slices.Clone(v.List)
		}
		c.Set(k, v)
	}
	return c
}
