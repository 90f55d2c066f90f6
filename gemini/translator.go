package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/metis"
	"google.golang.org/genai"
)

// MaxChunkLength is the largest piece of text, in characters, sent in one
// translation request.
const MaxChunkLength = 4500

var languageNames = map[string]string{
	"zh":    "Simplified Chinese",
	"zh-CN": "Simplified Chinese",
	"zh-TW": "Traditional Chinese",
	"en":    "English",
	"ja":    "Japanese",
	"ko":    "Korean",
}

// Ensure Translator implements metis.Translator at compile time.
var _ metis.Translator = (*Translator)(nil)

// Translator implements metis.Translator using Google Gemini.
type Translator struct {
	client *genai.Client
	model  string
}

// NewTranslator creates a new Translator.
func NewTranslator(client *genai.Client, model string) *Translator {
	if model == "" {
		model = DefaultModel
	}
	return &Translator{client: client, model: model}
}

// Translate translates text chunk by chunk and joins the pieces with blank
// lines. A chunk that comes back empty is kept in the original.
func (t *Translator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if targetLang == "" {
		return "", metis.Errorf(metis.EINVALID, "target language required")
	}

	chunks := metis.SplitChunks(text, MaxChunkLength)
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			out = append(out, chunk)
			continue
		}
		translated, err := generate(ctx, t.client, t.model, BuildTranslationPrompt(chunk, targetLang), BuildTranslationConfig())
		if err != nil {
			return "", err
		}
		if translated == "" {
			translated = chunk
		}
		out = append(out, translated)
	}
	return strings.Join(out, "\n\n"), nil
}

// BuildTranslationConfig returns the GenerateContentConfig for translation calls.
func BuildTranslationConfig() *genai.GenerateContentConfig {
	temp := float32(0.2)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a translator. Reply with the translation only. Keep Markdown structure, links and image references unchanged.",
			}},
		},
		Temperature: &temp,
	}
}

// BuildTranslationPrompt builds the user prompt for one chunk.
func BuildTranslationPrompt(chunk, targetLang string) string {
	name, ok := languageNames[targetLang]
	if !ok {
		name = targetLang
	}
	return fmt.Sprintf("Translate the following text into %s:\n\n%s", name, chunk)
}
