package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ppiankov/aidaily/internal/dedupe"
	"github.com/ppiankov/aidaily/internal/deliver"
	"github.com/ppiankov/aidaily/internal/model"
	"github.com/ppiankov/aidaily/internal/report"
	"github.com/ppiankov/aidaily/internal/source"
	"go.uber.org/zap"
)

var (
	// ErrRunInProgress is returned when a trigger arrives while a run is in flight
	ErrRunInProgress = errors.New("a pipeline run is already in progress")

	// ErrNoItems is returned when nothing survived collection and enrichment
	ErrNoItems = errors.New("no items available for the report")

	// ErrDeliveryFailed is returned when the report could not be delivered.
	// The report is still compiled, cached and persisted.
	ErrDeliveryFailed = errors.New("report delivery failed")
)

// Collector produces raw listings
type Collector interface {
	Collect(ctx context.Context, maxItems int) []model.Item
}

// Enricher fills in the AI-derived fields
type Enricher interface {
	Enrich(ctx context.Context, items []model.Item) []model.Item
}

// Summarizer writes the trend summary
type Summarizer interface {
	GenerateSummary(ctx context.Context, items []model.Item) string
}

type tierReporter interface {
	LastTier() source.Tier
}

// Deps are the stages the pipeline runs, in order
type Deps struct {
	Collector  Collector
	Enricher   Enricher
	Summarizer Summarizer
	Compiler   *report.Compiler
	Sender     deliver.Sender
	Store      *Store // nil disables persistence
	Config     *model.Config
}

// Pipeline runs collect, dedupe, enrich, compile and deliver.
// Runs never overlap; the cached items and report are replaced only
// after a stage completes.
type Pipeline struct {
	deps Deps

	running atomic.Bool

	mu           sync.Mutex
	latestItems  []model.Item
	analyzed     int
	latestReport *model.Report
	delivered    *bool
	lastRunAt    time.Time
	lastError    string
}

// New creates a pipeline from explicit dependencies
func New(deps Deps) *Pipeline {
	if deps.Config == nil {
		deps.Config = model.DefaultConfig()
	}
	return &Pipeline{deps: deps}
}

func (p *Pipeline) begin() error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	return nil
}

func (p *Pipeline) end() {
	p.running.Store(false)
}

// Collect gathers, deduplicates and enriches listings, replacing the cached items
func (p *Pipeline) Collect(ctx context.Context) ([]model.Item, error) {
	if err := p.begin(); err != nil {
		return nil, err
	}
	defer p.end()

	return p.collect(ctx), nil
}

// Report compiles and delivers the daily report, collecting first when
// no items are cached
func (p *Pipeline) Report(ctx context.Context) (*model.Report, error) {
	if err := p.begin(); err != nil {
		return nil, err
	}
	defer p.end()

	p.mu.Lock()
	items := p.latestItems
	p.mu.Unlock()

	if len(items) == 0 {
		zap.L().Info("no cached items, collecting before report")
		items = p.collect(ctx)
	}
	return p.report(ctx, items)
}

// RunOnce runs a full collection followed by a report
func (p *Pipeline) RunOnce(ctx context.Context) (*model.Report, error) {
	if err := p.begin(); err != nil {
		return nil, err
	}
	defer p.end()

	items := p.collect(ctx)
	return p.report(ctx, items)
}

func (p *Pipeline) collect(ctx context.Context) []model.Item {
	cfg := p.deps.Config
	start := time.Now()

	raw := p.deps.Collector.Collect(ctx, cfg.Source.MaxItems)
	unique := dedupe.ByName(raw)
	enriched := p.deps.Enricher.Enrich(ctx, unique)

	p.mu.Lock()
	p.latestItems = enriched
	p.analyzed = len(unique)
	p.mu.Unlock()

	zap.L().Info("collection finished",
		zap.Int("collected", len(raw)),
		zap.Int("unique", len(unique)),
		zap.Int("enriched", len(enriched)),
		zap.Duration("duration", time.Since(start)),
	)
	return enriched
}

func (p *Pipeline) report(ctx context.Context, items []model.Item) (*model.Report, error) {
	if len(items) == 0 {
		p.recordRun(nil, ErrNoItems)
		p.notifyFailure(ctx, ErrNoItems.Error())
		return nil, ErrNoItems
	}

	p.mu.Lock()
	analyzed := p.analyzed
	p.mu.Unlock()

	summary := p.deps.Summarizer.GenerateSummary(ctx, items)
	r := p.deps.Compiler.Compile(items, summary, analyzed)

	p.mu.Lock()
	p.latestReport = &r
	p.mu.Unlock()

	if p.deps.Store != nil && p.deps.Config.Output.Persist {
		if _, err := p.deps.Store.Save(r); err != nil {
			zap.L().Error("failed to persist report", zap.Error(err))
		}
	}

	ok := p.deliver(ctx, r)
	delivered := ok
	var err error
	if !ok {
		err = ErrDeliveryFailed
		p.notifyFailure(ctx, "daily report generation or delivery failed")
	}
	p.recordRun(&delivered, err)

	zap.L().Info("report finished",
		zap.Int("items", r.RelevantCount),
		zap.Int("analyzed", r.TotalAnalyzed),
		zap.Bool("delivered", ok),
	)
	return &r, err
}

func (p *Pipeline) deliver(ctx context.Context, r model.Report) bool {
	if p.deps.Sender == nil {
		zap.L().Warn("no sender configured, skipping delivery")
		return false
	}
	if p.deps.Config.Feishu.Format == "card" {
		return p.deps.Sender.SendCard(ctx, p.deps.Compiler.RenderCard(r))
	}
	return p.deps.Sender.Send(ctx, p.deps.Compiler.RenderMarkdown(r))
}

func (p *Pipeline) notifyFailure(ctx context.Context, message string) {
	if p.deps.Sender == nil {
		return
	}
	if !p.deps.Sender.SendErrorNotification(ctx, message) {
		zap.L().Warn("error notification could not be delivered")
	}
}

func (p *Pipeline) recordRun(delivered *bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delivered = delivered
	p.lastRunAt = time.Now()
	p.lastError = ""
	if err != nil {
		p.lastError = err.Error()
	}
}

// LatestItems returns a copy of the cached enriched items
func (p *Pipeline) LatestItems() []model.Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Item, len(p.latestItems))
	copy(out, p.latestItems)
	return out
}

// LatestReport returns the most recently compiled report, or nil
func (p *Pipeline) LatestReport() *model.Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latestReport
}
