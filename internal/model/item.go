package model

import (
	"math"
	"strings"
)

// NoMakerComment is the explicit "absent" marker some sources use for the maker comment
const NoMakerComment = "none"

// NoFounderInsights is stored when there is no maker commentary to analyze
const NoFounderInsights = "No founder commentary available"

// Item represents one product listing flowing through the pipeline
type Item struct {
	Name              string `json:"name"`         // Deduplication key after normalization
	SourceURL         string `json:"url"`          // Product website
	OriginalSourceURL string `json:"original_url"` // Canonical listing page on the source

	Tagline     string   `json:"tagline"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`

	Ranking int `json:"ranking"` // 1-based position assigned by the source
	Votes   int `json:"votes"`

	MakerComment string `json:"maker_comment,omitempty"`

	Enrichment
}

// Enrichment holds the AI-derived fields for an item
// These are only ever written by the enrichment engine
type Enrichment struct {
	AIRelevanceScore      float64  `json:"ai_relevance_score"`
	TranslatedDescription string   `json:"translated_description"`
	ApplicationScenarios  []string `json:"application_scenarios"`
	FounderInsights       string   `json:"founder_insights"`
}

// IsZero reports whether no enrichment field has been set
func (e Enrichment) IsZero() bool {
	return e.AIRelevanceScore == 0 &&
		e.TranslatedDescription == "" &&
		len(e.ApplicationScenarios) == 0 &&
		e.FounderInsights == ""
}

// Enriched reports whether the item already carries enrichment output
func (i Item) Enriched() bool {
	return !i.Enrichment.IsZero()
}

// WithEnrichment returns a copy of the item carrying e.
// Items that were already enriched are returned unchanged.
func (i Item) WithEnrichment(e Enrichment) Item {
	if i.Enriched() {
		return i
	}
	e.AIRelevanceScore = ClampScore(e.AIRelevanceScore)
	if e.ApplicationScenarios == nil {
		e.ApplicationScenarios = []string{}
	}
	i.Enrichment = e
	return i
}

// NormalizedName returns the deduplication key for the item
func (i Item) NormalizedName() string {
	return strings.ToLower(strings.TrimSpace(i.Name))
}

// HasMakerComment reports whether the item carries real maker commentary
func (i Item) HasMakerComment() bool {
	c := strings.TrimSpace(i.MakerComment)
	return c != "" && !strings.EqualFold(c, NoMakerComment)
}

// ClampScore forces a relevance score into [0,1]
func ClampScore(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
