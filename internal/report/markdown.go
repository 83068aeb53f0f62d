package report

import (
	"fmt"
	"strings"

	"github.com/ppiankov/aidaily/internal/model"
)

// Sentinels rendered in place of missing fields
const (
	NoDescription  = "No description available"
	NoScenarios    = "No scenarios identified"
	NoMakerComment = "No maker comment"
	NoWebsite      = "No website link"
)

// RenderMarkdown renders the human-readable report.
// Every field label is always present; missing values use their sentinel.
func (c *Compiler) RenderMarkdown(r model.Report) string {
	var b strings.Builder

	b.WriteString(c.title(r))
	b.WriteString("\n\n")

	if summary := strings.TrimSpace(r.Summary); summary != "" {
		for _, line := range strings.Split(summary, "\n") {
			b.WriteString("> ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	for _, item := range r.Items {
		writeItem(&b, item)
		b.WriteString("\n\n")
	}

	return b.String()
}

func writeItem(b *strings.Builder, item model.Item) {
	description := firstNonEmpty(item.Description, item.Tagline, NoDescription)

	scenarios := NoScenarios
	if len(item.ApplicationScenarios) > 0 {
		scenarios = strings.Join(item.ApplicationScenarios, ", ")
	}

	comment := NoMakerComment
	if item.HasMakerComment() {
		comment = item.MakerComment
	}

	website := firstNonEmpty(item.SourceURL, NoWebsite)

	fmt.Fprintf(b, "# %s - %s\n", item.Name, item.Tagline)
	fmt.Fprintf(b, "- Ranking: #%d\n", item.Ranking)
	fmt.Fprintf(b, "- Name: %s\n", item.Name)
	fmt.Fprintf(b, "- Description: %s\n", description)
	fmt.Fprintf(b, "- Scenarios: %s\n", scenarios)
	fmt.Fprintf(b, "- Maker comment: %s\n", comment)
	fmt.Fprintf(b, "- Website: %s\n", website)
	fmt.Fprintf(b, "- Listing: %s", item.OriginalSourceURL)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
