package cli

import (
	"fmt"

	"github.com/ppiankov/aidaily/internal/cache"
	"github.com/ppiankov/aidaily/internal/deliver"
	"github.com/ppiankov/aidaily/internal/llm"
	"github.com/ppiankov/aidaily/internal/model"
	"github.com/ppiankov/aidaily/internal/pipeline"
	"github.com/ppiankov/aidaily/internal/report"
	"github.com/ppiankov/aidaily/internal/source"
	"github.com/ppiankov/aidaily/internal/util"
	"go.uber.org/zap"
)

// app holds the wired components shared by the subcommands
type app struct {
	cfg      *model.Config
	pipeline *pipeline.Pipeline
	sender   *deliver.FeishuSender
	provider llm.Provider // nil when aiErr is set
	aiErr    error
}

func newApp(cfg *model.Config) *app {
	compiler := report.NewCompiler(cfg.App.Name, cfg.Location())

	fetcher := source.NewFetcher(
		cfg.HTTP.Timeout,
		cfg.HTTP.UserAgent,
		cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.InsecureTLS,
		cfg.HTTP.HTTPProxy,
		cfg.HTTP.HTTPSProxy,
		cfg.HTTP.NoProxy,
	)

	var robots *util.RobotsChecker
	if cfg.Source.RespectRobots {
		robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
	}

	var snapshots cache.Cache
	if cfg.Cache.Enabled {
		snapshots = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	sender := deliver.NewFeishuSender(cfg.Feishu, cfg.App)

	deps := pipeline.Deps{
		Collector: source.NewCollector(cfg.Source, fetcher, robots, snapshots, cfg.Cache.DiskTTL),
		Compiler:  compiler,
		Sender:    sender,
		Config:    cfg,
	}
	if cfg.Output.Persist {
		deps.Store = pipeline.NewStore(cfg.Output.Dir, compiler)
	}

	a := &app{cfg: cfg, sender: sender}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.AI, cfg.HTTP))
	if err != nil {
		a.aiErr = err
		zap.L().Warn("AI backend not available", zap.String("provider", cfg.AI.Provider), zap.Error(err))
	} else {
		a.provider = provider
		enricherCfg := llm.EnricherConfigFromModel(cfg.AI)
		deps.Enricher = llm.NewEnricher(provider, enricherCfg)
		deps.Summarizer = llm.NewSummarizer(provider, enricherCfg.Model, cfg.AI.TargetLanguage)
	}

	a.pipeline = pipeline.New(deps)
	return a
}

// requireAI returns an error when the pipeline cannot enrich items
func (a *app) requireAI() error {
	if a.aiErr != nil {
		return fmt.Errorf("AI backend %q: %w", a.cfg.AI.Provider, a.aiErr)
	}
	return nil
}
