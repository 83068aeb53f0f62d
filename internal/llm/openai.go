package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/aidaily/internal/util"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ArkBaseURL is the Volcengine ARK OpenAI-compatible endpoint
const ArkBaseURL = "https://ark.cn-beijing.volces.com/api/v3"

// OpenAIProvider implements the Provider interface for OpenAI-compatible chat completion APIs
type OpenAIProvider struct {
	client *openai.Client
	config Config
	name   string
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return newChatProvider("openai", config, config.BaseURL), nil
}

// NewArkProvider creates a provider for Volcengine ARK.
// The endpoint id, when set, is sent as the model name.
func NewArkProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("volcengine ARK API key is required")
	}
	if config.EndpointID != "" {
		config.Model = config.EndpointID
	}
	if config.Model == "" {
		return nil, fmt.Errorf("volcengine ARK endpoint id is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = ArkBaseURL
	}
	return newChatProvider("volcengine_ark", config, baseURL), nil
}

func newChatProvider(name string, config Config, baseURL string) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if baseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		name:   name,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable checks if the provider is properly configured.
// ARK does not list models, so it is probed with a tiny completion.
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	var err error
	if p.name == "volcengine_ark" {
		_, err = p.Complete(ctx, CompletionRequest{Purpose: PurposeProbe, Prompt: "ping", MaxTokens: 1})
	} else {
		_, err = p.client.ListModels(ctx)
	}
	if err != nil {
		zap.L().Warn("AI backend check failed", zap.String("provider", p.name), zap.Error(err))
		return false
	}
	return true
}

// Complete sends the prompt through the Chat Completions API
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := p.config.model(req.Model, openai.GPT4oMini)

	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   p.config.maxTokens(req.MaxTokens),
		Temperature: p.config.temperature(req.Temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: %w", p.name, ErrEmptyResponse)
	}

	zap.L().Debug("completion finished",
		zap.String("provider", p.name),
		zap.String("purpose", string(req.Purpose)),
		zap.Int("tokens", resp.Usage.TotalTokens),
	)

	return &CompletionResponse{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
