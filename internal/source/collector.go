package source

import (
	"context"
	"sync"
	"time"

	"github.com/ppiankov/aidaily/internal/cache"
	"github.com/ppiankov/aidaily/internal/model"
	"github.com/ppiankov/aidaily/internal/util"
	"go.uber.org/zap"
)

// Tier names the fallback level that produced a collection
type Tier string

const (
	TierNone        Tier = ""
	TierLive        Tier = "live"
	TierSnapshot    Tier = "snapshot"    // Last successful live fetch from the cache
	TierReference   Tier = "reference"   // Fixed set of previously known listings
	TierPlaceholder Tier = "placeholder" // Synthetic listings
)

const defaultMaxItems = 10

// Collector fetches listings with tiered fallback: live, cached or
// reference data, then synthetic placeholders. It never fails.
type Collector struct {
	cfg         model.SourceConfig
	fetcher     *Fetcher
	robots      *util.RobotsChecker // nil skips the robots.txt gate
	snapshots   cache.Cache         // nil disables the snapshot tier
	snapshotTTL time.Duration

	mu       sync.Mutex
	lastTier Tier
}

// NewCollector creates a collector for the configured source
func NewCollector(cfg model.SourceConfig, fetcher *Fetcher, robots *util.RobotsChecker, snapshots cache.Cache, snapshotTTL time.Duration) *Collector {
	return &Collector{
		cfg:         cfg,
		fetcher:     fetcher,
		robots:      robots,
		snapshots:   snapshots,
		snapshotTTL: snapshotTTL,
	}
}

type snapshot struct {
	FetchedAt time.Time    `json:"fetched_at"`
	Items     []model.Item `json:"items"`
}

// Collect returns up to maxItems listings in source order.
// Rankings are reassigned 1..N after truncation.
func (c *Collector) Collect(ctx context.Context, maxItems int) []model.Item {
	if maxItems <= 0 {
		maxItems = c.cfg.MaxItems
	}
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}

	live, recognized := c.fetchLive(ctx)
	if len(live) > 0 {
		c.storeSnapshot(live)
		return c.finish(live, maxItems, TierLive)
	}

	if snap := c.loadSnapshot(); len(snap) > 0 {
		return c.finish(snap, maxItems, TierSnapshot)
	}

	if recognized {
		zap.L().Warn("source page recognized but not parseable, using reference listings")
		return c.finish(Reference(), maxItems, TierReference)
	}

	zap.L().Warn("source unavailable, using placeholder listings")
	return c.finish(Placeholder(), maxItems, TierPlaceholder)
}

// LastTier reports which tier produced the most recent collection
func (c *Collector) LastTier() Tier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastTier
}

// fetchLive returns parsed listings and whether the page was recognized as the source
func (c *Collector) fetchLive(ctx context.Context) ([]model.Item, bool) {
	if c.fetcher == nil || c.cfg.URL == "" {
		return nil, false
	}

	if c.robots != nil && c.cfg.RespectRobots {
		allowed, _, err := c.robots.CanFetch(ctx, c.cfg.URL)
		if err != nil || !allowed {
			zap.L().Warn("robots.txt disallows source fetch", zap.String("url", c.cfg.URL), zap.Error(err))
			return nil, false
		}
	}

	zap.L().Info("fetching source", zap.String("url", c.cfg.URL))
	result, err := c.fetcher.FetchWithRetry(ctx, c.cfg.URL)
	if err != nil {
		zap.L().Warn("source fetch failed", zap.String("url", c.cfg.URL), zap.Error(err))
		return nil, false
	}

	if result.Bytes < c.cfg.MinBodyBytes {
		zap.L().Warn("source response too small, probably blocked",
			zap.Int("bytes", result.Bytes),
			zap.Int("min_bytes", c.cfg.MinBodyBytes),
		)
		return nil, false
	}

	page, err := ParsePage(result.HTML, result.FinalURL, c.cfg.Brand)
	if err != nil {
		zap.L().Warn("source parse failed", zap.Error(err))
		return nil, false
	}

	zap.L().Info("source page parsed",
		zap.String("title", page.Title),
		zap.Bool("recognized", page.Recognized),
		zap.Int("items", len(page.Items)),
	)
	return page.Items, page.Recognized
}

func (c *Collector) storeSnapshot(items []model.Item) {
	if c.snapshots == nil {
		return
	}
	snap := snapshot{FetchedAt: time.Now().UTC(), Items: items}
	if err := cache.SetJSON(c.snapshots, cache.CacheKey(c.cfg.URL), snap, c.snapshotTTL); err != nil {
		zap.L().Warn("failed to store source snapshot", zap.Error(err))
	}
}

func (c *Collector) loadSnapshot() []model.Item {
	if c.snapshots == nil {
		return nil
	}
	var snap snapshot
	if !cache.GetJSON(c.snapshots, cache.CacheKey(c.cfg.URL), &snap) {
		return nil
	}
	zap.L().Info("using cached source snapshot",
		zap.Time("fetched_at", snap.FetchedAt),
		zap.Int("items", len(snap.Items)),
	)
	return snap.Items
}

func (c *Collector) finish(items []model.Item, maxItems int, tier Tier) []model.Item {
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	out := make([]model.Item, len(items))
	for i, item := range items {
		item.Ranking = i + 1
		if item.Tags == nil {
			item.Tags = []string{}
		}
		out[i] = item
	}

	c.mu.Lock()
	c.lastTier = tier
	c.mu.Unlock()

	zap.L().Info("collected listings", zap.String("tier", string(tier)), zap.Int("count", len(out)))
	return out
}
