package model

import (
	"encoding/json"
	"math"
	"os"
	"strings"
	"testing"
	"time"
)

func TestClampScore(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.7, 1},
		{-0.3, 0},
		{0.42, 0.42},
		{0, 0},
		{1, 1},
		{math.NaN(), 0},
		{math.Inf(1), 1},
	}

	for _, tt := range tests {
		if got := ClampScore(tt.in); got != tt.want {
			t.Errorf("ClampScore(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestItem_WithEnrichment_OnlyOnce(t *testing.T) {
	item := Item{Name: "Pokecut", Description: "thumbnails"}

	first := item.WithEnrichment(Enrichment{AIRelevanceScore: 1.7, TranslatedDescription: "first"})
	if first.AIRelevanceScore != 1 {
		t.Errorf("expected clamped score 1, got %v", first.AIRelevanceScore)
	}
	if first.ApplicationScenarios == nil {
		t.Error("expected non-nil scenarios slice")
	}
	if item.Enriched() {
		t.Error("original item must not be mutated")
	}

	second := first.WithEnrichment(Enrichment{TranslatedDescription: "second"})
	if second.TranslatedDescription != "first" {
		t.Errorf("enrichment must only be applied once, got %q", second.TranslatedDescription)
	}
}

func TestItem_HasMakerComment(t *testing.T) {
	tests := []struct {
		comment string
		want    bool
	}{
		{"", false},
		{"   ", false},
		{"none", false},
		{"None", false},
		{"We built this because...", true},
	}

	for _, tt := range tests {
		item := Item{MakerComment: tt.comment}
		if got := item.HasMakerComment(); got != tt.want {
			t.Errorf("HasMakerComment(%q) = %v, want %v", tt.comment, got, tt.want)
		}
	}
}

func TestNewReport_DerivesRelevantCount(t *testing.T) {
	at := time.Date(2025, 6, 1, 9, 0, 0, 123456789, time.UTC)
	items := []Item{{Name: "a"}, {Name: "b"}}

	report := NewReport(at, items, "summary", 1)

	if report.RelevantCount != 2 {
		t.Errorf("expected relevant count 2, got %d", report.RelevantCount)
	}
	if report.TotalAnalyzed != 2 {
		t.Errorf("expected total analyzed raised to 2, got %d", report.TotalAnalyzed)
	}
	if report.GeneratedAt.Nanosecond() != 0 {
		t.Errorf("expected timestamp truncated to seconds, got %v", report.GeneratedAt)
	}

	items[0].Name = "mutated"
	if report.Items[0].Name != "a" {
		t.Error("report must hold its own copy of items")
	}
}

func TestReport_UnmarshalJSON_RecomputesRelevantCount(t *testing.T) {
	data := `{
		"date": "2025-06-01T09:00:00+08:00",
		"products": [{"name": "a"}, {"name": "b"}, {"name": "c"}],
		"summary": "s",
		"total_products_analyzed": 5,
		"ai_relevant_products": 99
	}`

	var report Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if report.RelevantCount != 3 {
		t.Errorf("expected recomputed relevant count 3, got %d", report.RelevantCount)
	}
	if report.TotalAnalyzed != 5 {
		t.Errorf("expected total analyzed 5, got %d", report.TotalAnalyzed)
	}
}

func TestReport_JSONFieldNames(t *testing.T) {
	item := Item{Name: "a", SourceURL: "https://a.example", OriginalSourceURL: "https://ph.example/a"}
	item = item.WithEnrichment(Enrichment{AIRelevanceScore: 0.5, FounderInsights: "x"})
	report := NewReport(time.Unix(1700000000, 0).UTC(), []Item{item}, "s", 1)

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	for _, key := range []string{`"date"`, `"products"`, `"ai_relevant_products"`, `"original_url"`, `"ai_relevance_score"`, `"founder_insights"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("expected %s in %s", key, data)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	issues := cfg.Validate()
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues for empty credentials, got %d: %v", len(issues), issues)
	}

	cfg.AI.APIKey = "key"
	cfg.AI.EndpointID = "ep-1"
	cfg.Feishu.WebhookURL = "https://open.feishu.cn/hook/x"
	if issues := cfg.Validate(); len(issues) != 0 {
		t.Errorf("expected valid config, got %v", issues)
	}

	cfg.AI.Provider = "ollama"
	cfg.AI.APIKey = ""
	if issues := cfg.Validate(); len(issues) != 0 {
		t.Errorf("ollama needs no key, got %v", issues)
	}

	cfg.AI.Provider = "mystery"
	if issues := cfg.Validate(); len(issues) != 1 {
		t.Errorf("expected unsupported provider issue, got %v", issues)
	}
}

func TestConfig_ApplyRuntime(t *testing.T) {
	env := map[string]string{}
	getenv := func(k string) string { return env[k] }

	cfg := DefaultConfig()
	cfg.ApplyRuntime(getenv)
	if cfg.Output.Dir != "reports" {
		t.Errorf("expected default output dir, got %q", cfg.Output.Dir)
	}

	env["AWS_LAMBDA_FUNCTION_NAME"] = "aidaily"
	cfg.ApplyRuntime(getenv)
	if cfg.Output.Dir != os.TempDir() {
		t.Errorf("expected temp dir on serverless, got %q", cfg.Output.Dir)
	}
}
