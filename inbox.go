package metis

import "regexp"

var (
	markdownLinkURL = regexp.MustCompile(`\[[^\]]+\]\((https?://[^)]+)\)`)
	bareURL         = regexp.MustCompile(`https?://[^\s)>\]]+`)
)

// ExtractURLs finds every URL in an inbox file: markdown link targets first,
// then bare http(s) tokens. Results are de-duplicated in order of first appearance.
func ExtractURLs(text string) []string {
	var urls []string
	seen := make(map[string]bool)
	add := func(u string) {
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}
	for _, m := range markdownLinkURL.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, u := range bareURL.FindAllString(text, -1) {
		add(u)
	}
	return urls
}
