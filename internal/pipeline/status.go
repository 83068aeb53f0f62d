package pipeline

import (
	"time"

	"github.com/ppiankov/aidaily/internal/model"
	"go.uber.org/zap"
)

// Status summarizes configuration and the latest run
type Status struct {
	AppName          string     `json:"app_name"`
	Version          string     `json:"version"`
	Timezone         string     `json:"timezone"`
	AIProvider       string     `json:"ai_provider"`
	AIConfigured     bool       `json:"ai_configured"`
	FeishuConfigured bool       `json:"feishu_configured"`
	Running          bool       `json:"running"`
	CachedItems      int        `json:"cached_items"`
	LastTier         string     `json:"last_tier,omitempty"`
	ReportDate       *time.Time `json:"report_date,omitempty"`
	ReportItems      int        `json:"report_items"`
	ReportFromDisk   bool       `json:"report_from_disk"`
	Delivered        *bool      `json:"delivered,omitempty"`
	LastRunAt        *time.Time `json:"last_run_at,omitempty"`
	LastError        string     `json:"last_error,omitempty"`
}

// Status reports the pipeline state; without an in-memory report it
// falls back to the newest persisted one
func (p *Pipeline) Status() Status {
	cfg := p.deps.Config

	st := Status{
		AppName:          cfg.App.Name,
		Version:          cfg.App.Version,
		Timezone:         cfg.App.Timezone,
		AIProvider:       cfg.AI.Provider,
		AIConfigured:     aiConfigured(cfg),
		FeishuConfigured: cfg.WebhookConfigured(),
		Running:          p.running.Load(),
	}

	if tr, ok := p.deps.Collector.(tierReporter); ok {
		st.LastTier = string(tr.LastTier())
	}

	p.mu.Lock()
	st.CachedItems = len(p.latestItems)
	r := p.latestReport
	st.Delivered = p.delivered
	st.LastError = p.lastError
	if !p.lastRunAt.IsZero() {
		at := p.lastRunAt
		st.LastRunAt = &at
	}
	p.mu.Unlock()

	if r == nil && p.deps.Store != nil {
		loaded, err := p.deps.Store.LoadLatest()
		if err != nil {
			zap.L().Debug("no persisted report", zap.Error(err))
		} else {
			r = loaded
			st.ReportFromDisk = true
		}
	}

	if r != nil {
		date := r.GeneratedAt
		st.ReportDate = &date
		st.ReportItems = r.RelevantCount
	}
	return st
}

func aiConfigured(cfg *model.Config) bool {
	if cfg.AI.Provider == "ollama" {
		return true
	}
	return cfg.AI.APIKey != ""
}
