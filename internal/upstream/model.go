package upstream

import (
	"context"
	"fmt"

	"github.com/tbourn/go-salesbot-backend/internal/config"
)

// Message is one turn sent to a model.
type Message struct {
	Role    string `json:"role"    example:"user"`
	Content string `json:"content" example:"Hello"`
}

// CompletionRequest is a provider-neutral chat completion request.
// MaxTokens of 0 uses the client's configured default.
type CompletionRequest struct {
	System    string
	Messages  []Message
	MaxTokens int
}

// Completion is the first text block of a model response. Text may be empty
// when the model returned no text content.
type Completion struct {
	Text       string `json:"text"`
	Model      string `json:"model,omitempty"`
	StopReason string `json:"stopReason,omitempty"`
}

// ModelClient sends completion requests to a language-model gateway.
type ModelClient interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
	// Configured reports whether a credential is present.
	Configured() bool
	Name() string
}

// NewModelClient builds the client selected by cfg.Provider. A missing
// credential is not an error here; the client reports ErrNotConfigured on
// every call instead.
func NewModelClient(ctx context.Context, cfg config.ModelConfig) (ModelClient, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic, "":
		return NewAnthropic(AnthropicConfig{
			APIKey:     cfg.ClaudeAPIKey,
			Model:      cfg.ClaudeModel,
			BaseURL:    cfg.ClaudeBaseURL,
			MaxTokens:  cfg.ClaudeMaxTokens,
			HTTPClient: NewHTTPClient(cfg.Timeout),
		}), nil
	case config.ProviderBedrock:
		return NewBedrock(ctx, BedrockConfig{
			ModelID:   cfg.BedrockModelID,
			Region:    cfg.AWSRegion,
			MaxTokens: cfg.ClaudeMaxTokens,
			Timeout:   cfg.Timeout,
		})
	case config.ProviderGemini:
		return NewGemini(ctx, GeminiConfig{
			APIKey:    cfg.GeminiAPIKey,
			Model:     cfg.GeminiModel,
			MaxTokens: cfg.ClaudeMaxTokens,
			Timeout:   cfg.Timeout,
		})
	default:
		return nil, fmt.Errorf("upstream: unknown model provider %q", cfg.Provider)
	}
}
