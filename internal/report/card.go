package report

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/aidaily/internal/model"
)

// CardItemLimit is the number of items shown on the chat card
const CardItemLimit = 5

// Card is a Feishu interactive message card
type Card struct {
	Config   CardConfig    `json:"config"`
	Header   *CardHeader   `json:"header,omitempty"`
	Elements []CardElement `json:"elements"`
}

type CardConfig struct {
	WideScreenMode bool `json:"wide_screen_mode"`
}

type CardHeader struct {
	Title    CardText `json:"title"`
	Template string   `json:"template,omitempty"`
}

type CardElement struct {
	Tag  string    `json:"tag"`
	Text *CardText `json:"text,omitempty"`
}

type CardText struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

func markdownDiv(content string) CardElement {
	return CardElement{Tag: "div", Text: &CardText{Tag: "lark_md", Content: content}}
}

func divider() CardElement {
	return CardElement{Tag: "hr"}
}

// RenderCard renders the first CardItemLimit items as an interactive card
func (c *Compiler) RenderCard(r model.Report) Card {
	const stamp = "2006-01-02 15:04:05"

	card := Card{
		Config: CardConfig{WideScreenMode: true},
		Header: &CardHeader{
			Title:    CardText{Tag: "plain_text", Content: c.title(r)},
			Template: "blue",
		},
	}

	card.Elements = append(card.Elements,
		markdownDiv(fmt.Sprintf("📊 **Overview**\n- Products analyzed: %d\n- AI-related products: %d\n- Generated at: %s",
			r.TotalAnalyzed, r.RelevantCount, r.GeneratedAt.In(c.loc).Format(stamp))),
		markdownDiv("🤖 **AI trends**\n"+r.Summary),
		divider(),
	)

	shown := r.Items
	if len(shown) > CardItemLimit {
		shown = shown[:CardItemLimit]
	}
	for i, item := range shown {
		card.Elements = append(card.Elements, markdownDiv(cardItem(item, i+1)))
		if i < len(shown)-1 {
			card.Elements = append(card.Elements, divider())
		}
	}

	if extra := len(r.Items) - CardItemLimit; extra > 0 {
		card.Elements = append(card.Elements, markdownDiv(fmt.Sprintf("... %d more products, see the full report", extra)))
	}

	card.Elements = append(card.Elements,
		divider(),
		markdownDiv(fmt.Sprintf("*Generated automatically by %s | %s*", c.appName, c.now().In(c.loc).Format(stamp))),
	)

	return card
}

func cardItem(item model.Item, position int) string {
	scenarios := "General AI applications"
	if len(item.ApplicationScenarios) > 0 {
		scenarios = strings.Join(item.ApplicationScenarios, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%d. %s** - %s\n", position, item.Name, item.Tagline)
	fmt.Fprintf(&b, "🏆 Ranking: #%d | 🗳️ Votes: %d\n", item.Ranking, item.Votes)
	fmt.Fprintf(&b, "🎯 **Scenarios**: %s\n", scenarios)
	fmt.Fprintf(&b, "💡 **AI relevance**: %.1f/1.0\n", item.AIRelevanceScore)
	fmt.Fprintf(&b, "🔗 [View listing](%s)", item.OriginalSourceURL)

	if d := item.TranslatedDescription; d != "" && utf8.RuneCountInString(d) < 150 {
		fmt.Fprintf(&b, "\n📝 **About**: %s", d)
	}
	if f := item.FounderInsights; f != "" && f != model.NoFounderInsights && utf8.RuneCountInString(f) < 200 {
		fmt.Fprintf(&b, "\n👨‍💼 **Founder's view**: %s", f)
	}

	return b.String()
}
