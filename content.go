package metis

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Content quality thresholds shared by every acquisition tier.
const (
	// MinContentLength is the body length, in characters, an article must exceed.
	MinContentLength = 100

	// MaxTitleLength is the longest title, in characters, kept by a tier.
	MaxTitleLength = 200

	// UntitledTitle is used when no title can be derived.
	UntitledTitle = "Untitled"

	verificationPrefixLength = 500
)

// Content is article content produced by one successful acquisition attempt.
// It is never modified after creation.
type Content struct {
	URL      string
	Title    string
	Markdown string
	Platform Platform

	// RawHTML is the source markup, when the tier saw it.
	RawHTML string

	// Metadata carries tier-specific extras such as author or image lists.
	Metadata map[string]any
}

// ContentFetcher is one acquisition strategy in the fetch fallback chain.
// Any returned error means the tier yielded nothing for the URL.
type ContentFetcher interface {
	// Name identifies the tier in logs.
	Name() string

	// Fetch acquires article content for the URL.
	Fetch(ctx context.Context, url string) (*Content, error)
}

// IsVerificationPage reports whether text looks like an anti-bot challenge
// instead of an article.
func IsVerificationPage(text string) bool {
	if strings.Contains(text, "环境异常") {
		return true
	}
	return strings.Contains(truncateRunes(text, verificationPrefixLength), "完成验证")
}

// CheckContent applies the quality gate every tier runs before accepting an
// article body.
func CheckContent(markdown string) error {
	if n := utf8.RuneCountInString(markdown); n <= MinContentLength {
		return Errorf(EINVALID, "content too short: %d characters", n)
	}
	if IsVerificationPage(markdown) {
		return Errorf(EINVALID, "verification page")
	}
	return nil
}

// TruncateTitle trims whitespace and caps the title at MaxTitleLength characters.
func TruncateTitle(title string) string {
	return truncateRunes(strings.TrimSpace(title), MaxTitleLength)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
