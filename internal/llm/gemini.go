package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider calls the Gemini REST API.
type GeminiProvider struct {
	Model     string
	APIKey    string
	MaxTokens int
	BaseURL   string
	client    *http.Client
}

// NewGeminiProvider creates a Gemini provider reading the key from the
// given environment variable.
func NewGeminiProvider(model, apiKeyEnv string, maxTokens int) *GeminiProvider {
	return &GeminiProvider{
		Model:     model,
		APIKey:    os.Getenv(apiKeyEnv),
		MaxTokens: maxTokens,
		BaseURL:   geminiBaseURL,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

// IsConfigured checks if the API key is set.
func (g *GeminiProvider) IsConfigured() bool {
	return g.APIKey != ""
}

// Chat sends a system+user prompt to Gemini and returns the response text.
// Gemini has no separate system role here; the prompts are concatenated.
func (g *GeminiProvider) Chat(ctx context.Context, system, user string) (string, error) {
	if g.APIKey == "" {
		return "", fmt.Errorf("gemini: %w", ErrUnavailable)
	}

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": system + "\n\n" + user}}},
		},
		"generationConfig": map[string]any{
			"temperature":     0.2,
			"maxOutputTokens": g.MaxTokens,
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.BaseURL, g.Model, g.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("gemini: %w", ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Candidates []struct {
			FinishReason string `json:"finishReason"`
			Content      struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason"`
		} `json:"promptFeedback"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if result.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini prompt blocked (%s): %w", result.PromptFeedback.BlockReason, ErrBlocked)
	}
	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("gemini: no candidates: %w", ErrInvalidResponse)
	}

	cand := result.Candidates[0]
	if cand.FinishReason == "SAFETY" {
		return "", fmt.Errorf("gemini candidate blocked: %w", ErrBlocked)
	}

	var parts []string
	for _, p := range cand.Content.Parts {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		return "", fmt.Errorf("gemini: empty completion: %w", ErrInvalidResponse)
	}
	return text, nil
}
