package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/aidaily/internal/model"
	"go.uber.org/zap"
)

const (
	summaryMaxTokens = 500

	// NoProductsSummary is used when there is nothing to summarize
	NoProductsSummary = "No AI-related products were published today."
)

// Summarizer writes the daily trend summary
type Summarizer struct {
	provider Provider
	model    string
	language string
}

// NewSummarizer creates a summarizer; a nil provider always yields the fallback text
func NewSummarizer(provider Provider, model, language string) *Summarizer {
	if language == "" {
		language = "Simplified Chinese"
	}
	return &Summarizer{provider: provider, model: model, language: language}
}

// GenerateSummary never fails; backend errors produce a count-based text
func (s *Summarizer) GenerateSummary(ctx context.Context, items []model.Item) string {
	if len(items) == 0 {
		return NoProductsSummary
	}

	fallback := fallbackSummary(len(items))
	if s.provider == nil {
		return fallback
	}

	resp, err := s.provider.Complete(ctx, CompletionRequest{
		Purpose:   PurposeSummary,
		Prompt:    buildSummaryPrompt(items, s.language),
		Model:     s.model,
		MaxTokens: summaryMaxTokens,
	})
	if err != nil {
		zap.L().Warn("trend summary failed, using fallback", zap.Error(err))
		return fallback
	}
	if resp.Text == "" {
		return fallback
	}
	return resp.Text
}

func fallbackSummary(n int) string {
	return fmt.Sprintf("Found %d AI-related products today across multiple application areas.", n)
}
