// Package llm sends classification prompts to a chat-completion provider
// and turns the free-form response into a validated verdict.
package llm

import (
	"context"
	"fmt"
	"os"
)

// Verdict is the classifier's judgment for one failure case.
type Verdict struct {
	PrimaryCategory string `json:"primary_category"`
	SubCategory     string `json:"sub_category"`
	Explanation     string `json:"explanation"`
}

// Client performs one classification call and returns the raw response
// text. Provider selection happens at construction time so the taxonomy and
// prompt logic never see a vendor's request shape.
type Client interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// DefaultModels maps provider name to the model used when none is
// configured.
var DefaultModels = map[string]string{
	"anthropic": "claude-sonnet-4-5-20250929",
	"openai":    "gpt-4o",
}

// New builds a client for the named provider. The API key is read from the
// provider's environment variable and its absence is an error here, not at
// call time.
func New(provider, model string, maxTokens int) (Client, error) {
	if model == "" {
		model = DefaultModels[provider]
	}
	if maxTokens <= 0 {
		maxTokens = 300
	}
	switch provider {
	case "anthropic":
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		return &anthropicClient{apiKey: key, model: model, maxTokens: maxTokens}, nil
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		return &openaiClient{apiKey: key, model: model, maxTokens: maxTokens}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (use anthropic or openai)", provider)
	}
}
