package model

import (
	"encoding/json"
	"time"
)

// Report represents one compiled daily report
// It is never mutated after NewReport returns it.
type Report struct {
	GeneratedAt   time.Time `json:"date"`
	Items         []Item    `json:"products"`
	Summary       string    `json:"summary"`
	TotalAnalyzed int       `json:"total_products_analyzed"`
	RelevantCount int       `json:"ai_relevant_products"` // Always len(Items)
}

// NewReport builds a report; RelevantCount is derived from items
func NewReport(at time.Time, items []Item, summary string, totalAnalyzed int) Report {
	copied := make([]Item, len(items))
	copy(copied, items)

	if totalAnalyzed < len(copied) {
		totalAnalyzed = len(copied)
	}

	return Report{
		GeneratedAt:   at.Truncate(time.Second),
		Items:         copied,
		Summary:       summary,
		TotalAnalyzed: totalAnalyzed,
		RelevantCount: len(copied),
	}
}

// UnmarshalJSON decodes a report and recomputes RelevantCount from the items
func (r *Report) UnmarshalJSON(data []byte) error {
	type rawReport Report
	var raw rawReport
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = NewReport(raw.GeneratedAt, raw.Items, raw.Summary, raw.TotalAnalyzed)
	return nil
}
