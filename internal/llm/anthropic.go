package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider calls the Anthropic Messages API via the official SDK.
type AnthropicProvider struct {
	Model     string
	APIKey    string
	MaxTokens int
}

// NewAnthropicProvider creates an Anthropic provider reading the key from
// the given environment variable.
func NewAnthropicProvider(model, apiKeyEnv string, maxTokens int) *AnthropicProvider {
	return &AnthropicProvider{
		Model:     model,
		APIKey:    os.Getenv(apiKeyEnv),
		MaxTokens: maxTokens,
	}
}

// IsConfigured checks if the API key is set.
func (a *AnthropicProvider) IsConfigured() bool {
	return a.APIKey != ""
}

// Chat sends a system+user prompt and returns the concatenated text blocks.
func (a *AnthropicProvider) Chat(ctx context.Context, system, user string) (string, error) {
	if a.APIKey == "" {
		return "", fmt.Errorf("anthropic: %w", ErrUnavailable)
	}

	client := anthropic.NewClient(option.WithAPIKey(a.APIKey))
	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.Model),
		MaxTokens: int64(a.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		if strings.Contains(err.Error(), "429") {
			return "", fmt.Errorf("anthropic: %w", ErrRateLimited)
		}
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var parts []string
	for _, block := range message.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		return "", fmt.Errorf("anthropic: empty completion: %w", ErrInvalidResponse)
	}
	return text, nil
}
