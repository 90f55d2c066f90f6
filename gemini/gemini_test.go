package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// fakeGemini serves generateContent requests, answering each prompt with
// reply and recording the prompts it saw.
type fakeGemini struct {
	mu      sync.Mutex
	prompts []string
	paths   []string
}

func (f *fakeGemini) recorded() ([]string, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...), append([]string(nil), f.paths...)
}

func newClient(t *testing.T, reply func(prompt string) string) (*genai.Client, *fakeGemini) {
	t.Helper()

	fake := &fakeGemini{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var prompt strings.Builder
		for _, c := range req.Contents {
			for _, p := range c.Parts {
				prompt.WriteString(p.Text)
			}
		}

		fake.mu.Lock()
		fake.prompts = append(fake.prompts, prompt.String())
		fake.paths = append(fake.paths, r.URL.Path)
		fake.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": reply(prompt.String())}},
				},
			}},
		})
	}))
	t.Cleanup(srv.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL + "/"},
	})
	require.NoError(t, err)
	return client, fake
}
