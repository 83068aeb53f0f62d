package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/aidaily/internal/model"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "volcengine_ark", "ark":
		return NewArkProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, fmt.Errorf("AI provider is not configured (ai.provider)")

	default:
		return nil, fmt.Errorf("unknown AI provider: %s (supported: openai, volcengine_ark, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts the application config into an llm.Config
func ConfigFromModel(ai model.AIConfig, httpCfg model.HTTPConfig) Config {
	return Config{
		Provider:    ai.Provider,
		Model:       ai.Model,
		EndpointID:  ai.EndpointID,
		APIKey:      ai.APIKey,
		BaseURL:     ai.BaseURL,
		Timeout:     ai.Timeout,
		Temperature: ai.Temperature,
		MaxTokens:   ai.MaxTokens,
		HTTPProxy:   httpCfg.HTTPProxy,
		HTTPSProxy:  httpCfg.HTTPSProxy,
		NoProxy:     httpCfg.NoProxy,
	}
}
