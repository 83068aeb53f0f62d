package llm

import (
	"context"
)

// Purpose tags a completion with the enrichment step that issued it
type Purpose string

const (
	PurposeBatch     Purpose = "batch"
	PurposeScore     Purpose = "score"
	PurposeAnalysis  Purpose = "analysis"
	PurposeTranslate Purpose = "translate"
	PurposeSummary   Purpose = "summary"
	PurposeProbe     Purpose = "probe"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one prompt and returns the first choice's text
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains the input for a single completion
type CompletionRequest struct {
	Purpose Purpose

	// System is an optional system prompt
	System string

	Prompt string

	// Model overrides the configured model when set
	Model string

	// Temperature of 0 uses the configured default
	Temperature float32

	// MaxTokens of 0 uses the configured default
	MaxTokens int
}

// CompletionResponse contains the backend output
type CompletionResponse struct {
	// Text is the trimmed content of the first choice
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "volcengine_ark", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// EndpointID is the ARK inference endpoint, sent as the model name
	EndpointID string

	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	Temperature float32

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "volcengine_ark",
		Model:       "deepseek-v3",
		Timeout:     60,
		Temperature: 0.3,
		MaxTokens:   2000,
	}
}

func (c Config) model(override, fallback string) string {
	if override != "" {
		return override
	}
	if c.Model != "" {
		return c.Model
	}
	return fallback
}

func (c Config) temperature(override float32) float32 {
	if override > 0 {
		return override
	}
	return c.Temperature
}

func (c Config) maxTokens(override int) int {
	if override > 0 {
		return override
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 1000
}
