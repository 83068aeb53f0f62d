package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/aidaily/internal/llm"
	"github.com/ppiankov/aidaily/internal/model"
	"github.com/ppiankov/aidaily/internal/report"
	"github.com/ppiankov/aidaily/internal/source"
)

var fixedNow = time.Date(2025, 6, 1, 1, 30, 0, 0, time.UTC)

type recordingSender struct {
	mu       sync.Mutex
	texts    []string
	cards    []any
	failures []string
	ok       bool
}

func (s *recordingSender) Send(_ context.Context, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, content)
	return s.ok
}

func (s *recordingSender) SendCard(_ context.Context, card any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards = append(s.cards, card)
	return s.ok
}

func (s *recordingSender) SendErrorNotification(_ context.Context, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, message)
	return true
}

// scriptedProvider answers each purpose with a handler
type scriptedProvider struct {
	mu      sync.Mutex
	counts  map[llm.Purpose]int
	handler func(req llm.CompletionRequest) (string, error)
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) IsAvailable(context.Context) bool { return true }

func (p *scriptedProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	if p.counts == nil {
		p.counts = map[llm.Purpose]int{}
	}
	p.counts[req.Purpose]++
	p.mu.Unlock()

	text, err := p.handler(req)
	if err != nil {
		return nil, err
	}
	return &llm.CompletionResponse{Text: text}, nil
}

func (p *scriptedProvider) count(purpose llm.Purpose) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[purpose]
}

var errBackend = errors.New("backend unavailable")

// fallbackProvider fails the batch call and every call about Smart Analytics Dashboard
func fallbackProvider() *scriptedProvider {
	return &scriptedProvider{handler: func(req llm.CompletionRequest) (string, error) {
		switch req.Purpose {
		case llm.PurposeBatch:
			return "", errBackend
		case llm.PurposeScore:
			return "0.9", nil
		case llm.PurposeAnalysis:
			if strings.Contains(req.Prompt, "Name: Smart Analytics Dashboard\n") {
				return "", errBackend
			}
			return `{"translated_description":"译文","application_scenarios":["办公"],"founder_insights":"洞察"}`, nil
		case llm.PurposeTranslate:
			if strings.Contains(req.Prompt, "Ranking: 2") {
				return "", errBackend
			}
			return "译文", nil
		case llm.PurposeSummary:
			return "今日趋势", nil
		}
		return "", errBackend
	}}
}

type fixedCollector struct {
	items []model.Item
	tier  source.Tier
	calls int
	block chan struct{}
}

func (c *fixedCollector) Collect(ctx context.Context, maxItems int) []model.Item {
	c.calls++
	if c.block != nil {
		<-c.block
	}
	return c.items
}

func (c *fixedCollector) LastTier() source.Tier { return c.tier }

type passEnricher struct{}

func (passEnricher) Enrich(_ context.Context, items []model.Item) []model.Item { return items }

type fixedSummarizer string

func (s fixedSummarizer) GenerateSummary(context.Context, []model.Item) string { return string(s) }

func testCompiler(t *testing.T) *report.Compiler {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return report.NewCompiler("aidaily", loc).WithClock(func() time.Time { return fixedNow })
}

func TestRunOnce_PlaceholderFallbackEndToEnd(t *testing.T) {
	cfg := model.DefaultConfig()
	compiler := testCompiler(t)
	provider := fallbackProvider()
	sender := &recordingSender{ok: true}
	dir := t.TempDir()

	p := New(Deps{
		Collector:  source.NewCollector(cfg.Source, nil, nil, nil, 0),
		Enricher:   llm.NewEnricher(provider, llm.EnricherConfig{FallbackRPS: 0}),
		Summarizer: llm.NewSummarizer(provider, "", ""),
		Compiler:   compiler,
		Sender:     sender,
		Store:      NewStore(dir, compiler),
		Config:     cfg,
	})

	r, err := p.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	if provider.count(llm.PurposeBatch) != 1 {
		t.Errorf("expected 1 batch call, got %d", provider.count(llm.PurposeBatch))
	}
	if provider.count(llm.PurposeAnalysis) != 3 {
		t.Errorf("expected 3 analysis calls, got %d", provider.count(llm.PurposeAnalysis))
	}
	if r.RelevantCount != 2 || len(r.Items) != 2 {
		t.Fatalf("expected 2 relevant items, got %d", r.RelevantCount)
	}
	if r.TotalAnalyzed != 3 {
		t.Errorf("expected 3 analyzed, got %d", r.TotalAnalyzed)
	}
	for _, item := range r.Items {
		if item.Name == "Smart Analytics Dashboard" {
			t.Errorf("item failing both analysis and translation must be dropped")
		}
		if item.AIRelevanceScore != 0.9 {
			t.Errorf("expected score 0.9 for %s, got %v", item.Name, item.AIRelevanceScore)
		}
	}
	if r.Summary != "今日趋势" {
		t.Errorf("unexpected summary %q", r.Summary)
	}

	if len(sender.texts) != 1 {
		t.Fatalf("expected one text delivery, got %d", len(sender.texts))
	}
	if !strings.Contains(sender.texts[0], "AI Assistant Pro") {
		t.Errorf("delivered text missing item: %s", sender.texts[0])
	}

	for _, ext := range []string{"markdown", "json"} {
		path := filepath.Join(dir, "ai_daily_report_20250601."+ext)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s to be written: %v", path, err)
		}
	}

	st := p.Status()
	if st.LastTier != string(source.TierPlaceholder) {
		t.Errorf("expected placeholder tier, got %q", st.LastTier)
	}
	if st.Delivered == nil || !*st.Delivered {
		t.Error("expected delivered status")
	}
	if st.ReportItems != 2 || st.ReportFromDisk {
		t.Errorf("unexpected report status %+v", st)
	}
}

func TestReport_CollectsWhenCacheEmpty(t *testing.T) {
	collector := &fixedCollector{items: []model.Item{{Name: "A", Ranking: 1}, {Name: "a", Ranking: 2}}}
	sender := &recordingSender{ok: true}
	p := New(Deps{
		Collector:  collector,
		Enricher:   passEnricher{},
		Summarizer: fixedSummarizer("s"),
		Compiler:   testCompiler(t),
		Sender:     sender,
	})

	r, err := p.Report(context.Background())
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if collector.calls != 1 {
		t.Errorf("expected one collection, got %d", collector.calls)
	}
	if r.RelevantCount != 1 {
		t.Errorf("expected duplicates removed, got %d", r.RelevantCount)
	}

	if _, err := p.Report(context.Background()); err != nil {
		t.Fatalf("second Report failed: %v", err)
	}
	if collector.calls != 1 {
		t.Errorf("cached items must be reused, got %d collections", collector.calls)
	}
}

func TestReport_CardFormat(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Feishu.Format = "card"
	sender := &recordingSender{ok: true}
	p := New(Deps{
		Collector:  &fixedCollector{items: []model.Item{{Name: "A"}}},
		Enricher:   passEnricher{},
		Summarizer: fixedSummarizer("s"),
		Compiler:   testCompiler(t),
		Sender:     sender,
		Config:     cfg,
	})

	if _, err := p.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if len(sender.cards) != 1 || len(sender.texts) != 0 {
		t.Fatalf("expected one card and no text, got %d cards %d texts", len(sender.cards), len(sender.texts))
	}
	if _, ok := sender.cards[0].(report.Card); !ok {
		t.Errorf("expected report.Card, got %T", sender.cards[0])
	}
}

func TestReport_NoItems(t *testing.T) {
	sender := &recordingSender{ok: true}
	p := New(Deps{
		Collector:  &fixedCollector{},
		Enricher:   passEnricher{},
		Summarizer: fixedSummarizer("s"),
		Compiler:   testCompiler(t),
		Sender:     sender,
	})

	_, err := p.RunOnce(context.Background())
	if !errors.Is(err, ErrNoItems) {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
	if len(sender.failures) != 1 {
		t.Errorf("expected an error notification, got %d", len(sender.failures))
	}
	if p.LatestReport() != nil {
		t.Error("no report should be cached")
	}
}

func TestReport_DeliveryFailure(t *testing.T) {
	sender := &recordingSender{ok: false}
	p := New(Deps{
		Collector:  &fixedCollector{items: []model.Item{{Name: "A"}}},
		Enricher:   passEnricher{},
		Summarizer: fixedSummarizer("s"),
		Compiler:   testCompiler(t),
		Sender:     sender,
	})

	r, err := p.RunOnce(context.Background())
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
	if r == nil || p.LatestReport() == nil {
		t.Fatal("report must still be compiled and cached")
	}
	if len(sender.failures) != 1 {
		t.Errorf("expected an error notification, got %d", len(sender.failures))
	}

	st := p.Status()
	if st.Delivered == nil || *st.Delivered {
		t.Error("expected undelivered status")
	}
	if st.LastError == "" {
		t.Error("expected last error recorded")
	}
}

func TestRun_RejectsOverlap(t *testing.T) {
	collector := &fixedCollector{items: []model.Item{{Name: "A"}}, block: make(chan struct{})}
	p := New(Deps{
		Collector:  collector,
		Enricher:   passEnricher{},
		Summarizer: fixedSummarizer("s"),
		Compiler:   testCompiler(t),
		Sender:     &recordingSender{ok: true},
	})

	done := make(chan error, 1)
	go func() {
		_, err := p.Collect(context.Background())
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !p.Status().Running {
		if time.Now().After(deadline) {
			t.Fatal("first run never started")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := p.RunOnce(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("expected ErrRunInProgress, got %v", err)
	}
	if _, err := p.Report(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("expected ErrRunInProgress, got %v", err)
	}

	close(collector.block)
	if err := <-done; err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if got := len(p.LatestItems()); got != 1 {
		t.Errorf("expected 1 cached item, got %d", got)
	}
}

func TestStore_SaveAndLoadLatest(t *testing.T) {
	compiler := testCompiler(t)
	store := NewStore(t.TempDir(), compiler)

	if _, err := store.LoadLatest(); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist on empty dir, got %v", err)
	}

	older := model.NewReport(time.Date(2025, 5, 30, 9, 0, 0, 0, time.UTC), []model.Item{{Name: "old"}}, "s", 1)
	newer := model.NewReport(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), []model.Item{{Name: "a"}, {Name: "b"}}, "s", 4)

	for _, r := range []model.Report{older, newer} {
		paths, err := store.Save(r)
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if len(paths) != 2 {
			t.Fatalf("expected 2 files written, got %v", paths)
		}
	}

	loaded, err := store.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest failed: %v", err)
	}
	if loaded.RelevantCount != 2 || loaded.TotalAnalyzed != 4 {
		t.Errorf("expected newest report, got %+v", loaded)
	}
}

func TestStatus_FallsBackToPersistedReport(t *testing.T) {
	compiler := testCompiler(t)
	store := NewStore(t.TempDir(), compiler)
	r := model.NewReport(fixedNow, []model.Item{{Name: "a"}}, "s", 1)
	if _, err := store.Save(r); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	p := New(Deps{
		Collector:  &fixedCollector{tier: source.TierLive},
		Enricher:   passEnricher{},
		Summarizer: fixedSummarizer("s"),
		Compiler:   compiler,
		Store:      store,
	})

	st := p.Status()
	if !st.ReportFromDisk || st.ReportItems != 1 {
		t.Errorf("expected persisted report in status, got %+v", st)
	}
	if st.LastTier != "live" {
		t.Errorf("expected live tier, got %q", st.LastTier)
	}
	if st.Running || st.LastRunAt != nil {
		t.Errorf("unexpected run state %+v", st)
	}
}
