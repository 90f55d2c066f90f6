package rod

import (
	"strings"

	"github.com/fwojciec/metis"
	"github.com/fwojciec/metis/goquery"
)

// challengeMarkers identify WeChat's environment check anywhere in the
// rendered markup.
var challengeMarkers = []string{"环境异常", "完成验证"}

func isChallenge(html string) bool {
	for _, m := range challengeMarkers {
		if strings.Contains(html, m) {
			return true
		}
	}
	return false
}

// NewContent builds article content from a rendered page. WeChat articles
// are read from their dedicated DOM nodes and rendered as markdown with conv
// when it is set; other platforms yield the page title and visible text.
func NewContent(rawURL string, platform metis.Platform, html string, conv metis.Converter) (*metis.Content, error) {
	if platform.Name == metis.PlatformWeChat {
		return newWeChatContent(rawURL, platform, html, conv)
	}

	a, err := goquery.ExtractGeneric(html)
	if err != nil {
		return nil, err
	}
	if err := metis.CheckContent(a.Text); err != nil {
		return nil, err
	}

	return &metis.Content{
		URL:      rawURL,
		Title:    titleOrUntitled(a.Title),
		Markdown: a.Text,
		Platform: platform,
		RawHTML:  a.ContentHTML,
	}, nil
}

func newWeChatContent(rawURL string, platform metis.Platform, html string, conv metis.Converter) (*metis.Content, error) {
	a, err := goquery.ExtractWeChat(html)
	if err != nil {
		return nil, err
	}
	if err := metis.CheckContent(a.Text); err != nil {
		return nil, err
	}

	body := a.Text
	if conv != nil && a.ContentHTML != "" {
		if md, err := conv.Convert(a.ContentHTML); err == nil && strings.TrimSpace(md) != "" {
			body = md
		}
	}

	images := a.Images
	if images == nil {
		images = []string{}
	}

	return &metis.Content{
		URL:      rawURL,
		Title:    titleOrUntitled(a.Title),
		Markdown: FormatWeChat(a.Title, a.Author, a.PublishTime, body),
		Platform: platform,
		RawHTML:  a.ContentHTML,
		Metadata: map[string]any{
			"author":      a.Author,
			"publishTime": a.PublishTime,
			"images":      images,
			"imageCount":  len(images),
		},
	}, nil
}

// FormatWeChat lays out a WeChat article: heading, optional author and
// publish time lines, a rule, then the body.
func FormatWeChat(title, author, publishTime, body string) string {
	if title == "" {
		title = metis.UntitledTitle
	}

	lines := []string{"# " + title}
	if author != "" || publishTime != "" {
		lines = append(lines, "")
	}
	if author != "" {
		lines = append(lines, "**作者**: "+author)
	}
	if publishTime != "" {
		lines = append(lines, "**发布时间**: "+publishTime)
	}
	lines = append(lines, "", "---", "", body)
	return strings.Join(lines, "\n")
}

func titleOrUntitled(title string) string {
	if t := metis.TruncateTitle(title); t != "" {
		return t
	}
	return metis.UntitledTitle
}
