package metis

import (
	"regexp"
	"strings"
)

// metadataLabels prefix the noise lines Chinese platforms put around article
// bodies: source, author, publish time, and engagement counters.
var metadataLabels = []string{
	"来源：",
	"作者：",
	"发布时间：",
	"阅读：",
	"点赞：",
	"收藏：",
	"分享：",
}

var (
	headingLine       = regexp.MustCompile(`^#{1,6}\s`)
	emptyListItemLine = regexp.MustCompile(`^(-|\d+\.)$`)
)

// Normalize strips platform metadata lines and tidies markdown whitespace.
// It is total and deterministic.
func Normalize(markdown string) string {
	return CleanMarkdown(StripMetadataLines(markdown))
}

// StripMetadataLines drops lines that start with a platform metadata label.
func StripMetadataLines(markdown string) string {
	lines := strings.Split(markdown, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !isMetadataLine(strings.TrimSpace(line)) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func isMetadataLine(line string) bool {
	for _, label := range metadataLabels {
		if strings.HasPrefix(line, label) {
			return true
		}
	}
	return false
}

// CleanMarkdown right-trims lines, removes empty list items, puts blank lines
// around headings and collapses blank runs. Fenced code is left as is.
func CleanMarkdown(markdown string) string {
	markdown = strings.ReplaceAll(markdown, "\r\n", "\n")

	var (
		out          []string
		inFence      bool
		afterHeading bool
	)
	blank := func() {
		if len(out) > 0 && out[len(out)-1] != "" {
			out = append(out, "")
		}
	}

	for _, line := range strings.Split(markdown, "\n") {
		if inFence {
			out = append(out, line)
			if isFence(line) {
				inFence = false
			}
			continue
		}

		line = strings.TrimRight(line, " \t")
		switch {
		case line == "":
			blank()
			afterHeading = false
			continue
		case emptyListItemLine.MatchString(line):
			continue
		}

		if afterHeading {
			blank()
			afterHeading = false
		}
		if headingLine.MatchString(line) {
			blank()
			afterHeading = true
		}
		if isFence(line) {
			inFence = true
		}
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

func isFence(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "```") || strings.HasPrefix(t, "~~~")
}
