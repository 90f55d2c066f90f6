package fs

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/metis"
)

// MaxFilenameLength caps the length of a derived filename stem in characters.
const MaxFilenameLength = 50

var (
	unsafeChars    = regexp.MustCompile(`[<>:"/\\|?*]`)
	disallowedName = regexp.MustCompile(`[^\p{L}\p{N}_\-]`)
)

// SanitizeFilename derives a filename stem from a title. The attribution
// prefix is stripped, spaces become hyphens, and only letters, digits,
// hyphens and underscores are kept.
func SanitizeFilename(title string) string {
	name := metis.CleanTitle(title)
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.ReplaceAll(name, " ", "-")
	name = disallowedName.ReplaceAllString(name, "")
	if utf8.RuneCountInString(name) > MaxFilenameLength {
		name = string([]rune(name)[:MaxFilenameLength])
	}
	if name == "" {
		return "untitled"
	}
	return name
}
