// Package fs stores records as markdown files whose header block holds the
// record's fields.
package fs

import (
	"strconv"
	"strings"

	"github.com/fwojciec/metis"
)

// Delimiter opens and closes a document header.
const Delimiter = "---"

// SplitDocument separates a document into its header text and the bytes
// after the closing delimiter line. ok is false when the document does not
// start with a complete header.
func SplitDocument(data string) (header, rest string, ok bool) {
	first, after, found := strings.Cut(data, "\n")
	if !found || strings.TrimRight(first, " \t\r") != Delimiter {
		return "", "", false
	}
	offset := 0
	for {
		line, tail, more := strings.Cut(after[offset:], "\n")
		if strings.TrimRight(line, " \t\r") == Delimiter {
			return after[:offset], tail, true
		}
		if !more {
			return "", "", false
		}
		offset += len(line) + 1
	}
}

// ParseHeader parses header lines of the form "key: value". A key with no
// value followed by indented "- item" lines is a block list, as written by
// Obsidian's property editor. Other lines without a colon are skipped.
// Returns EINVALID for a line with a colon but no key.
func ParseHeader(header string) (*metis.Fields, error) {
	f := metis.NewFields()
	var blockKey string
	for _, line := range strings.Split(header, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if item, ok := blockItem(line); ok && blockKey != "" {
			v, _ := f.Get(blockKey)
			f.Set(blockKey, metis.ListValue(append(v.List, item)...))
			continue
		}
		blockKey = ""
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, metis.Errorf(metis.EINVALID, "malformed header line %q", line)
		}
		value = strings.TrimSpace(value)
		if value == "" {
			blockKey = key
		}
		f.Set(key, parseValue(value))
	}
	return f, nil
}

// blockItem reports whether line is a "- item" entry of a block list and
// returns the unquoted item.
func blockItem(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed != "-" && !strings.HasPrefix(trimmed, "- ") {
		return "", false
	}
	item := strings.TrimSpace(strings.TrimPrefix(trimmed, "-"))
	if isQuoted(item, '"') || isQuoted(item, '\'') {
		item = unquote(item)
	}
	return item, true
}

func parseValue(s string) metis.Value {
	switch {
	case len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']':
		return metis.ListValue(splitList(s[1 : len(s)-1])...)
	case isQuoted(s, '"'), isQuoted(s, '\''):
		return metis.StringValue(unquote(s))
	case s == "true":
		return metis.BoolValue(true)
	case s == "false":
		return metis.BoolValue(false)
	default:
		return metis.RawValue(s)
	}
}

func isQuoted(s string, q byte) bool {
	return len(s) >= 2 && s[0] == q && s[len(s)-1] == q
}

func unquote(s string) string {
	if s[0] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return strings.ReplaceAll(s[1:len(s)-1], `\"`, `"`)
	}
	return s[1 : len(s)-1]
}

// splitList splits comma-separated list items. Commas inside quoted items
// do not separate.
func splitList(inner string) []string {
	var (
		items []string
		cur   strings.Builder
		quote byte
	)
	emit := func() {
		item := strings.TrimSpace(cur.String())
		cur.Reset()
		if item == "" {
			return
		}
		if isQuoted(item, '"') || isQuoted(item, '\'') {
			item = unquote(item)
		}
		items = append(items, item)
	}
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		switch {
		case quote != 0 && c == '\\' && quote == '"' && i+1 < len(inner):
			cur.WriteByte(c)
			i++
			c = inner[i]
		case quote != 0 && c == quote:
			quote = 0
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
		case quote == 0 && c == ',':
			emit()
			continue
		}
		cur.WriteByte(c)
	}
	emit()
	return items
}

// FormatHeader serializes fields one per line in order, without delimiters.
func FormatHeader(f *metis.Fields) string {
	var b strings.Builder
	for _, key := range f.Keys() {
		v, _ := f.Get(key)
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(formatValue(v))
		b.WriteString("\n")
	}
	return b.String()
}

func formatValue(v metis.Value) string {
	switch v.Kind {
	case metis.KindRaw:
		return v.Str
	case metis.KindBool:
		return strconv.FormatBool(v.Bool)
	case metis.KindList:
		quoted := make([]string, len(v.List))
		for i, item := range v.List {
			quoted[i] = strconv.Quote(item)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return strconv.Quote(v.Str)
	}
}

// FormatDocument renders a complete document: header block, blank line, body.
func FormatDocument(f *metis.Fields, body string) string {
	return Delimiter + "\n" + FormatHeader(f) + Delimiter + "\n\n" + body
}
