package metis

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitChunks splits text into pieces of at most maxLen characters,
// breaking at paragraph boundaries and, for oversized paragraphs, at sentence
// boundaries. A single sentence longer than maxLen is kept whole.
func SplitChunks(text string, maxLen int) []string {
	var (
		chunks  []string
		current string
	)
	flush := func() {
		if current != "" {
			chunks = append(chunks, strings.TrimSpace(current))
			current = ""
		}
	}
	length := utf8.RuneCountInString

	for _, para := range strings.Split(text, "\n\n") {
		switch {
		case length(para) > maxLen:
			flush()
			for _, s := range splitSentences(para) {
				if current != "" && length(current)+length(s)+2 > maxLen {
					flush()
				}
				if current != "" {
					current += " "
				}
				current += s
			}
		case length(current)+length(para)+2 <= maxLen:
			if current != "" {
				current += "\n\n"
			}
			current += para
		default:
			flush()
			current = para
		}
	}
	flush()
	return chunks
}

// splitSentences splits after '.', '!' or '?' followed by whitespace.
func splitSentences(text string) []string {
	var (
		sentences []string
		start     int
	)
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if !strings.ContainsRune(".!?", runes[i]) {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j == i+1 || j == len(runes) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = j
		i = j - 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
