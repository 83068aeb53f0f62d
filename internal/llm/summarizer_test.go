package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/ppiankov/aidaily/internal/model"
)

func TestSummarizer_GenerateSummary_Empty(t *testing.T) {
	stub := &stubProvider{handler: func(req CompletionRequest) (string, error) { return "unused", nil }}

	got := NewSummarizer(stub, "m", "").GenerateSummary(context.Background(), nil)

	if got != NoProductsSummary {
		t.Errorf("expected fixed empty text, got %q", got)
	}
	if len(stub.requests) != 0 {
		t.Error("expected no backend call for empty input")
	}
}

func TestSummarizer_GenerateSummary_Success(t *testing.T) {
	stub := &stubProvider{handler: func(req CompletionRequest) (string, error) {
		return "Agents dominate today.", nil
	}}
	items := []model.Item{{Name: "Pokecut", Tagline: "AI thumbnails"}, {Name: "Notedly", Tagline: "AI notes"}}

	got := NewSummarizer(stub, "m", "English").GenerateSummary(context.Background(), items)

	if got != "Agents dominate today." {
		t.Errorf("unexpected summary %q", got)
	}
	req := stub.last(PurposeSummary)
	if req.MaxTokens != 500 {
		t.Errorf("expected 500 tokens, got %d", req.MaxTokens)
	}
	if !strings.Contains(req.Prompt, "1. Pokecut: AI thumbnails") || !strings.Contains(req.Prompt, "in English") {
		t.Errorf("unexpected prompt:\n%s", req.Prompt)
	}
}

func TestSummarizer_GenerateSummary_Failure(t *testing.T) {
	stub := &stubProvider{handler: func(req CompletionRequest) (string, error) { return "", errBackend }}
	items := []model.Item{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	got := NewSummarizer(stub, "m", "").GenerateSummary(context.Background(), items)

	want := "Found 3 AI-related products today across multiple application areas."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSummarizer_NilProvider(t *testing.T) {
	s := NewSummarizer(nil, "", "")

	if got := s.GenerateSummary(context.Background(), []model.Item{{Name: "a"}}); !strings.HasPrefix(got, "Found 1 ") {
		t.Errorf("expected fallback text, got %q", got)
	}
}
