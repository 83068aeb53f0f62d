package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var errBackend = errors.New("backend unavailable")

// stubProvider answers completions through a per-call handler and records every request
type stubProvider struct {
	mu       sync.Mutex
	requests []CompletionRequest
	handler  func(req CompletionRequest) (string, error)
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) IsAvailable(ctx context.Context) bool { return true }

func (s *stubProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	text, err := s.handler(req)
	if err != nil {
		return nil, err
	}
	return &CompletionResponse{Text: text, Model: "stub"}, nil
}

func (s *stubProvider) calls(p Purpose) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Purpose == p {
			n++
		}
	}
	return n
}

func (s *stubProvider) last(p Purpose) CompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Purpose == p {
			return s.requests[i]
		}
	}
	return CompletionRequest{}
}

func promptMentions(req CompletionRequest, name string) bool {
	return strings.Contains(req.Prompt, "Name: "+name+"\n")
}
