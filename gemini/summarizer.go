package gemini

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/metis"
	"google.golang.org/genai"
)

// DefaultSummaryPrompt asks for a short Chinese summary. ContentPlaceholder
// marks where the article goes.
const DefaultSummaryPrompt = "请为以下文章生成一个简洁的中文摘要,不超过200字,概括文章的主要内容和核心观点:\n\n{{content}}\n\n摘要:"

// ContentPlaceholder is replaced by the article text in a summary prompt.
const ContentPlaceholder = "{{content}}"

// MaxSummaryInput is the number of characters of an article sent for
// summarization.
const MaxSummaryInput = 6000

// Ensure Summarizer implements metis.Summarizer at compile time.
var _ metis.Summarizer = (*Summarizer)(nil)

// Summarizer implements metis.Summarizer using Google Gemini.
type Summarizer struct {
	client *genai.Client
	model  string
	prompt string
}

// SummarizerOption configures a Summarizer.
type SummarizerOption func(*Summarizer)

// WithPrompt sets the prompt template. It should contain ContentPlaceholder.
func WithPrompt(prompt string) SummarizerOption {
	return func(s *Summarizer) {
		if prompt != "" {
			s.prompt = prompt
		}
	}
}

// NewSummarizer creates a new Summarizer.
func NewSummarizer(client *genai.Client, model string, opts ...SummarizerOption) *Summarizer {
	s := &Summarizer{client: client, model: model, prompt: DefaultSummaryPrompt}
	if s.model == "" {
		s.model = DefaultModel
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize returns a summary of text.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", metis.Errorf(metis.EINVALID, "text required")
	}
	return generate(ctx, s.client, s.model, BuildSummaryPrompt(s.prompt, text), nil)
}

// BuildSummaryPrompt fills template with text cut to MaxSummaryInput characters.
func BuildSummaryPrompt(template, text string) string {
	if utf8.RuneCountInString(text) > MaxSummaryInput {
		text = string([]rune(text)[:MaxSummaryInput])
	}
	return strings.ReplaceAll(template, ContentPlaceholder, text)
}
