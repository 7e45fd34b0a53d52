// Package llm provides chat providers behind a single interface with a
// uniform error taxonomy, so callers never branch on provider specifics.
package llm

import (
	"context"
	"errors"
	"log"
	"strings"
)

// Sentinel errors shared by all providers.
var (
	// ErrUnavailable means the provider is not configured or not reachable.
	ErrUnavailable = errors.New("llm: provider unavailable")
	// ErrRateLimited means the provider rejected the request for quota reasons.
	ErrRateLimited = errors.New("llm: rate limited")
	// ErrInvalidResponse means the provider answered but the payload was unusable.
	ErrInvalidResponse = errors.New("llm: invalid response")
	// ErrBlocked means a safety filter suppressed the completion.
	ErrBlocked = errors.New("llm: blocked by safety filter")
)

// Provider is the chat capability. Implementations carry their own model
// and credentials; Chat is a single synchronous round trip.
type Provider interface {
	Chat(ctx context.Context, system, user string) (string, error)
	IsConfigured() bool
}

// Options configures provider construction.
type Options struct {
	Provider        string // "gemini", "openai", "anthropic", or "" for auto
	GeminiModel     string
	GeminiKeyEnv    string
	OpenAIModel     string
	OpenAIKeyEnv    string
	AnthropicModel  string
	AnthropicKeyEnv string
	MaxTokens       int
}

// CreateProvider builds a chat provider from configuration. The preferred
// provider is tried first, then the others in a fixed order. Returns nil when
// nothing is configured; callers treat nil as "enhancement unavailable".
func CreateProvider(opts Options) Provider {
	gemini := NewGeminiProvider(opts.GeminiModel, opts.GeminiKeyEnv, opts.MaxTokens)
	openai := NewOpenAIProvider(opts.OpenAIModel, opts.OpenAIKeyEnv, opts.MaxTokens)
	anthropic := NewAnthropicProvider(opts.AnthropicModel, opts.AnthropicKeyEnv, opts.MaxTokens)

	var candidates []Provider
	switch strings.ToLower(opts.Provider) {
	case "openai":
		candidates = []Provider{openai, gemini, anthropic}
	case "anthropic":
		candidates = []Provider{anthropic, gemini, openai}
	default:
		candidates = []Provider{gemini, openai, anthropic}
	}

	for _, p := range candidates {
		if p.IsConfigured() {
			return p
		}
	}
	log.Println("No chat provider configured; AI features disabled")
	return nil
}
