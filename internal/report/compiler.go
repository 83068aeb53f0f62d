// Package report compiles enriched items into a daily report and renders it.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ppiankov/aidaily/internal/model"
)

// Compiler builds reports stamped in the configured time zone
type Compiler struct {
	appName string
	loc     *time.Location
	now     func() time.Time
}

// NewCompiler creates a compiler; a nil location means UTC
func NewCompiler(appName string, loc *time.Location) *Compiler {
	if loc == nil {
		loc = time.UTC
	}
	return &Compiler{appName: appName, loc: loc, now: time.Now}
}

// WithClock replaces the clock, for tests
func (c *Compiler) WithClock(now func() time.Time) *Compiler {
	c.now = now
	return c
}

// Compile orders items by ranking and builds the report.
// RelevantCount always equals the number of items.
func (c *Compiler) Compile(items []model.Item, summary string, totalAnalyzed int) model.Report {
	sorted := make([]model.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Ranking < sorted[j].Ranking
	})

	return model.NewReport(c.now().In(c.loc), sorted, summary, totalAnalyzed)
}

// RenderJSON serializes the report with indentation
func RenderJSON(r model.Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

func (c *Compiler) title(r model.Report) string {
	return fmt.Sprintf("🌈 %s AI Daily - %s", c.appName, r.GeneratedAt.In(c.loc).Format("2006-01-02"))
}
