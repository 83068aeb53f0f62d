package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/aidaily/internal/model"
	"github.com/ppiankov/aidaily/internal/worker"
	"go.uber.org/zap"
)

var (
	// ErrEmptyResponse is returned when the backend produced no text
	ErrEmptyResponse = errors.New("empty response from AI backend")

	// ErrMissingProductsKey is returned when a batch response lacks the products list
	ErrMissingProductsKey = errors.New("batch response has no products key")

	// ErrNoBatchMatches is returned when no batch entry maps onto an input item
	ErrNoBatchMatches = errors.New("batch response matched no items")
)

const (
	batchTokensBase    = 600
	batchTokensPerItem = 550
	scoreMaxTokens     = 10
	translateMaxTokens = 1000

	enrichTemperature float32 = 0.1
)

var (
	scoreExpr = regexp.MustCompile(`(?:^|\s)(0?\.\d+|1\.0|0|1)(?:\s|$)`)

	insightKeywords = []string{
		"founder", "solve", "problem", "motivation", "approach", "idea",
		"创始人", "解决", "问题", "动机", "方法", "理念",
	}
)

// EnricherConfig tunes the enrichment calls
type EnricherConfig struct {
	Model          string
	TargetLanguage string
	MaxTokens      int     // Per-item analysis ceiling
	BatchMaxTokens int     // Upper bound for the batch ceiling
	FallbackRPS    float64 // Pacing for per-item calls; 0 disables pacing
}

// Enricher scores, translates and analyzes items.
// One batch call covers every item; per-item calls run only when the batch fails.
type Enricher struct {
	provider Provider
	cfg      EnricherConfig
	limiter  *worker.Limiter
}

// NewEnricher creates an enricher backed by provider
func NewEnricher(provider Provider, cfg EnricherConfig) *Enricher {
	if cfg.TargetLanguage == "" {
		cfg.TargetLanguage = "Simplified Chinese"
	}
	if cfg.BatchMaxTokens <= 0 {
		cfg.BatchMaxTokens = 8000
	}
	return &Enricher{
		provider: provider,
		cfg:      cfg,
		limiter:  worker.NewLimiter(cfg.FallbackRPS, 1),
	}
}

// EnricherConfigFromModel builds an EnricherConfig from the application config
func EnricherConfigFromModel(ai model.AIConfig) EnricherConfig {
	m := ai.Model
	if ai.EndpointID != "" {
		m = ai.EndpointID
	}
	return EnricherConfig{
		Model:          m,
		TargetLanguage: ai.TargetLanguage,
		MaxTokens:      ai.MaxTokens,
		BatchMaxTokens: ai.BatchMaxTokens,
		FallbackRPS:    ai.FallbackRPS,
	}
}

// Enrich returns the enriched items in input order.
// Items the backend could not enrich are left out.
func (e *Enricher) Enrich(ctx context.Context, items []model.Item) []model.Item {
	if len(items) == 0 {
		return []model.Item{}
	}

	zap.L().Info("starting batch enrichment", zap.Int("items", len(items)))

	enriched, err := e.enrichBatch(ctx, items)
	if err == nil {
		zap.L().Info("batch enrichment finished", zap.Int("enriched", len(enriched)))
		return enriched
	}

	zap.L().Warn("batch enrichment failed, falling back to per-item calls", zap.Error(err))
	return e.enrichEach(ctx, items)
}

func (e *Enricher) batchTokens(n int) int {
	tokens := batchTokensBase + batchTokensPerItem*n
	if tokens > e.cfg.BatchMaxTokens {
		tokens = e.cfg.BatchMaxTokens
	}
	return tokens
}

// batchNumber accepts JSON numbers and numeric strings such as "1" or " 0.8 "
type batchNumber float64

func (n *batchNumber) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = batchNumber(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("not a number: %s", data)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	*n = batchNumber(f)
	return nil
}

type batchEntry struct {
	Index                 *batchNumber `json:"index"`
	AIRelevanceScore      *batchNumber `json:"ai_relevance_score"`
	TranslatedDescription *string      `json:"translated_description"`
	ApplicationScenarios  []string     `json:"application_scenarios"`
	FounderInsights       *string      `json:"founder_insights"`
}

func (b batchEntry) enrichment(item model.Item) model.Enrichment {
	out := model.Enrichment{
		TranslatedDescription: item.Description,
		ApplicationScenarios:  b.ApplicationScenarios,
		FounderInsights:       model.NoFounderInsights,
	}
	if b.AIRelevanceScore != nil {
		out.AIRelevanceScore = float64(*b.AIRelevanceScore)
	}
	if b.TranslatedDescription != nil && strings.TrimSpace(*b.TranslatedDescription) != "" {
		out.TranslatedDescription = *b.TranslatedDescription
	}
	if b.FounderInsights != nil && strings.TrimSpace(*b.FounderInsights) != "" {
		out.FounderInsights = *b.FounderInsights
	}
	return out
}

// position converts the 1-based index into a bounds-checked 0-based position
func (b batchEntry) position(n int) (int, bool) {
	if b.Index == nil {
		return 0, false
	}
	idx := float64(*b.Index)
	if idx != math.Trunc(idx) {
		return 0, false
	}
	pos := int(idx) - 1
	return pos, pos >= 0 && pos < n
}

func (e *Enricher) enrichBatch(ctx context.Context, items []model.Item) ([]model.Item, error) {
	resp, err := e.provider.Complete(ctx, CompletionRequest{
		Purpose:     PurposeBatch,
		Prompt:      buildBatchPrompt(items, e.cfg.TargetLanguage),
		Model:       e.cfg.Model,
		Temperature: enrichTemperature,
		MaxTokens:   e.batchTokens(len(items)),
	})
	if err != nil {
		return nil, fmt.Errorf("batch completion: %w", err)
	}

	text := stripCodeFence(resp.Text)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("decode batch response: %w", err)
	}
	raw, ok := doc["products"]
	if !ok {
		return nil, ErrMissingProductsKey
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	// A mistyped entry fails the whole batch so the per-item path can take over
	matched := make([]*batchEntry, len(items))
	found := 0
	for i, r := range entries {
		var entry batchEntry
		if err := json.Unmarshal(r, &entry); err != nil {
			return nil, fmt.Errorf("decode batch entry %d: %w", i+1, err)
		}
		pos, ok := entry.position(len(items))
		if !ok {
			zap.L().Warn("skipping batch entry with out-of-range index", zap.ByteString("entry", r))
			continue
		}
		if matched[pos] != nil {
			continue
		}
		matched[pos] = &entry
		found++
	}
	if found == 0 {
		return nil, ErrNoBatchMatches
	}

	out := make([]model.Item, 0, len(items))
	for i, item := range items {
		if matched[i] == nil {
			zap.L().Warn("batch response omitted item, dropping it",
				zap.Int("index", i+1),
				zap.String("name", item.Name),
			)
			continue
		}
		enriched := item.WithEnrichment(matched[i].enrichment(item))
		zap.L().Info("enriched item",
			zap.String("name", enriched.Name),
			zap.Float64("ai_relevance", enriched.AIRelevanceScore),
		)
		out = append(out, enriched)
	}
	return out, nil
}

// enrichEach runs the per-item path sequentially in input order
func (e *Enricher) enrichEach(ctx context.Context, items []model.Item) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, item := range items {
		if ctx.Err() != nil {
			zap.L().Warn("enrichment cancelled", zap.Int("remaining", len(items)-len(out)), zap.Error(ctx.Err()))
			break
		}

		enriched, err := e.enrichOne(ctx, item)
		if err != nil {
			zap.L().Error("failed to enrich item, skipping", zap.String("name", item.Name), zap.Error(err))
			continue
		}

		zap.L().Info("enriched item",
			zap.String("name", enriched.Name),
			zap.Float64("ai_relevance", enriched.AIRelevanceScore),
		)
		out = append(out, enriched)
	}
	return out
}

func (e *Enricher) enrichOne(ctx context.Context, item model.Item) (model.Item, error) {
	score := e.score(ctx, item)

	analysis, err := e.analyze(ctx, item)
	if err != nil {
		return model.Item{}, err
	}
	analysis.AIRelevanceScore = score

	return item.WithEnrichment(analysis), nil
}

// complete paces and issues one per-item call
func (e *Enricher) complete(ctx context.Context, req CompletionRequest) (string, error) {
	if err := e.limiter.Wait(ctx, e.provider.Name()); err != nil {
		return "", err
	}
	if req.Model == "" {
		req.Model = e.cfg.Model
	}
	resp, err := e.provider.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Text, nil
}

// score returns the relevance score; failures score 0
func (e *Enricher) score(ctx context.Context, item model.Item) float64 {
	text, err := e.complete(ctx, CompletionRequest{
		Purpose:     PurposeScore,
		Prompt:      buildScorePrompt(item),
		Temperature: enrichTemperature,
		MaxTokens:   scoreMaxTokens,
	})
	if err != nil {
		zap.L().Warn("relevance scoring failed", zap.String("name", item.Name), zap.Error(err))
		return 0
	}
	return parseScore(text)
}

func parseScore(text string) float64 {
	m := scoreExpr.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return model.ClampScore(v)
}

type analysisResult struct {
	TranslatedDescription *string  `json:"translated_description"`
	ApplicationScenarios  []string `json:"application_scenarios"`
	FounderInsights       *string  `json:"founder_insights"`
}

// analyze produces translation, scenarios and insights for one item
func (e *Enricher) analyze(ctx context.Context, item model.Item) (model.Enrichment, error) {
	text, err := e.complete(ctx, CompletionRequest{
		Purpose:     PurposeAnalysis,
		Prompt:      buildAnalysisPrompt(item, e.cfg.TargetLanguage),
		Temperature: enrichTemperature,
		MaxTokens:   e.cfg.MaxTokens,
	})
	if err != nil {
		zap.L().Warn("item analysis failed, translating only", zap.String("name", item.Name), zap.Error(err))
		translated, terr := e.translate(ctx, item.Description)
		if terr != nil {
			return model.Enrichment{}, fmt.Errorf("analysis: %w; translate: %w", err, terr)
		}
		return model.Enrichment{
			TranslatedDescription: translated,
			FounderInsights:       model.NoFounderInsights,
		}, nil
	}

	var result analysisResult
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &result); err != nil {
		zap.L().Warn("item analysis was not valid JSON, using heuristics", zap.String("name", item.Name), zap.Error(err))
		translated, terr := e.translate(ctx, item.Description)
		if terr != nil {
			translated = item.Description
		}
		return model.Enrichment{
			TranslatedDescription: translated,
			FounderInsights:       extractInsights(text, item),
		}, nil
	}

	out := model.Enrichment{
		TranslatedDescription: item.Description,
		ApplicationScenarios:  result.ApplicationScenarios,
		FounderInsights:       model.NoFounderInsights,
	}
	if result.TranslatedDescription != nil && strings.TrimSpace(*result.TranslatedDescription) != "" {
		out.TranslatedDescription = *result.TranslatedDescription
	}
	if result.FounderInsights != nil && strings.TrimSpace(*result.FounderInsights) != "" {
		out.FounderInsights = *result.FounderInsights
	}
	return out, nil
}

// translate returns text in the target language; empty input is returned as-is
func (e *Enricher) translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	return e.complete(ctx, CompletionRequest{
		Purpose:     PurposeTranslate,
		Prompt:      buildTranslatePrompt(text, e.cfg.TargetLanguage),
		Temperature: enrichTemperature,
		MaxTokens:   translateMaxTokens,
	})
}

// extractInsights pulls insight lines out of a free-text analysis,
// falling back to the maker comment itself
func extractInsights(response string, item model.Item) string {
	if !item.HasMakerComment() {
		return model.NoFounderInsights
	}

	if len([]rune(response)) > 20 {
		var insights []string
		for _, line := range strings.Split(response, "\n") {
			if containsKeyword(line) {
				insights = append(insights, strings.TrimSpace(line))
				if len(insights) == 3 {
					break
				}
			}
		}
		if len(insights) > 0 {
			return strings.Join(insights, " ")
		}
	}

	comment := []rune(item.MakerComment)
	if len(comment) > 100 {
		return "The founder shared the background and vision of the product: " + string(comment[:min(len(comment), 150)]) + "..."
	}
	return item.MakerComment
}

func containsKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, k := range insightKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
