package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/metis"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

// DefaultTokenizerModel is a model the local tokenizer supports. It stands
// in for generation models the tokenizer does not know yet.
const DefaultTokenizerModel = "gemini-2.5-flash"

var _ metis.TokenCounter = (*TokenCounter)(nil)

// TokenCounter estimates article size in model tokens without calling the API.
type TokenCounter struct {
	local *tokenizer.LocalTokenizer
	model string
}

// NewTokenCounter creates a TokenCounter for model, falling back to
// DefaultTokenizerModel when the local tokenizer does not support it.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = DefaultTokenizerModel
	}
	local, err := tokenizer.NewLocalTokenizer(model)
	if err != nil && model != DefaultTokenizerModel {
		model = DefaultTokenizerModel
		local, err = tokenizer.NewLocalTokenizer(model)
	}
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	return &TokenCounter{local: local, model: model}, nil
}

// Model returns the model whose vocabulary is used.
func (c *TokenCounter) Model() string {
	return c.model
}

// CountTokens returns the number of tokens text occupies as a user turn.
func (c *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	res, err := c.local.CountTokens([]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, nil)
	if err != nil {
		return 0, err
	}
	return int(res.TotalTokens), nil
}
