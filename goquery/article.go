// Package goquery extracts article fields from rendered HTML using goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/metis"
	"golang.org/x/net/html"
)

// Article holds the fields pulled out of a rendered page.
type Article struct {
	Title       string
	Author      string
	PublishTime string
	// Text is the visible text of the content root, one block per line.
	Text string
	// ContentHTML is the inner HTML of the content root. For WeChat pages
	// lazy-loaded images have data-src promoted to src.
	ContentHTML string
	Images      []string
}

// ExtractWeChat reads a WeChat official-account article.
func ExtractWeChat(rawHTML string) (*Article, error) {
	doc, err := parse(rawHTML)
	if err != nil {
		return nil, err
	}

	content := doc.Find("#js_content").First()
	a := &Article{
		Title:       strings.TrimSpace(visibleText(doc.Find("#activity-name").First())),
		Author:      strings.TrimSpace(visibleText(doc.Find("#js_name").First())),
		PublishTime: strings.TrimSpace(visibleText(doc.Find("#publish_time").First())),
	}
	if content.Length() == 0 {
		return a, nil
	}

	content.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := img.AttrOr("data-src", "")
		if src == "" {
			src = img.AttrOr("src", "")
		} else {
			img.SetAttr("src", src)
		}
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}
		a.Images = append(a.Images, src)
	})

	a.Text = strings.TrimSpace(visibleText(content))
	a.ContentHTML, err = content.Html()
	if err != nil {
		return nil, metis.Errorf(metis.EINTERNAL, "failed to render content: %v", err)
	}
	return a, nil
}

// ExtractGeneric reads the document title and the visible text of the body.
func ExtractGeneric(rawHTML string) (*Article, error) {
	doc, err := parse(rawHTML)
	if err != nil {
		return nil, err
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		body = doc.Selection
	}
	body.Find("script, style, noscript").Remove()

	a := &Article{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Text:  strings.TrimSpace(visibleText(body)),
	}
	a.ContentHTML, err = body.Html()
	if err != nil {
		return nil, metis.Errorf(metis.EINTERNAL, "failed to render body: %v", err)
	}
	return a, nil
}

func parse(rawHTML string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, metis.Errorf(metis.EINVALID, "failed to parse HTML: %v", err)
	}
	return doc, nil
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"div": true, "dl": true, "dt": true, "dd": true, "figcaption": true,
	"figure": true, "footer": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true,
	"li": true, "main": true, "nav": true, "ol": true, "p": true,
	"pre": true, "section": true, "table": true, "tr": true, "ul": true,
}

var hiddenElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
}

// visibleText approximates innerText: block elements and <br> start new
// lines, runs of blank lines collapse and each line is trimmed.
func visibleText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeText(&b, n)
	}

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if hiddenElements[n.Data] {
			return
		}
		if n.Data == "br" {
			b.WriteByte('\n')
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if block {
		b.WriteByte('\n')
	}
}
