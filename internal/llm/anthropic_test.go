package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAnthropicProvider_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header test-key, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("Expected anthropic-version header 2023-06-01, got %s", r.Header.Get("anthropic-version"))
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.System != "sys" || req.MaxTokens != 500 || req.Model != "claude-3-5-sonnet-20241022" {
			t.Errorf("unexpected request %+v", req)
		}

		resp := anthropicResponse{
			ID:      "msg_123",
			Type:    "message",
			Role:    "assistant",
			Content: []anthropicContent{{Type: "text", Text: " Trends today. "}},
			Model:   "claude-3-5-sonnet-20241022",
			Usage:   anthropicUsage{InputTokens: 50, OutputTokens: 50},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "claude-3-5-sonnet-20241022",
		Timeout: 5,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		Purpose:   PurposeSummary,
		System:    "sys",
		Prompt:    "Summarize",
		MaxTokens: 500,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Text != "Trends today." {
		t.Errorf("Unexpected text: %q", resp.Text)
	}
	if resp.TokensUsed != 100 {
		t.Errorf("Expected 100 tokens, got %d", resp.TokensUsed)
	}
}

func TestAnthropicProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "authentication_error", "message": "invalid x-api-key"}}`))
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "bad-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "authentication_error") {
		t.Errorf("Expected error to carry the API error type, got %v", err)
	}
}

func TestAnthropicProvider_Complete_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "msg", "content": []}`))
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "hi"}); err == nil {
		t.Fatal("Expected error for empty content")
	}
}

func TestAnthropicProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "Hello"}]}`))
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}

	if _, err := NewAnthropicProvider(Config{}); err == nil {
		t.Error("Expected error for missing API key")
	}
}
