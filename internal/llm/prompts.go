package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/aidaily/internal/model"
)

const relevanceRubric = `- 0.9-1.0: core AI product (models, machine learning platforms, intelligent assistants)
- 0.7-0.8: heavy use of AI (generated content, intelligent analysis)
- 0.5-0.6: light AI features (partial AI functions, smart recommendations)
- 0.3-0.4: indirectly related (training data, developer tooling)
- 0.0-0.2: unrelated or only mentions AI`

func tagsOrNone(tags []string) string {
	if len(tags) == 0 {
		return "none"
	}
	return strings.Join(tags, ", ")
}

func commentOrNone(item model.Item) string {
	if !item.HasMakerComment() {
		return "none"
	}
	return item.MakerComment
}

// buildBatchPrompt asks for all items in one response keyed by 1-based index
func buildBatchPrompt(items []model.Item, language string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze the following %d Product Hunt products in one pass.\n\n", len(items))
	for i, item := range items {
		fmt.Fprintf(&b, "Product %d:\n", i+1)
		fmt.Fprintf(&b, "- Name: %s\n", item.Name)
		fmt.Fprintf(&b, "- Tagline: %s\n", item.Tagline)
		fmt.Fprintf(&b, "- Description: %s\n", item.Description)
		fmt.Fprintf(&b, "- Tags: %s\n", tagsOrNone(item.Tags))
		fmt.Fprintf(&b, "- Maker comment: %s\n\n", commentOrNone(item))
	}

	fmt.Fprintf(&b, `Return exactly this JSON shape, one object per product:

{
  "products": [
    {
      "index": 1,
      "ai_relevance_score": 0.8,
      "translated_description": "description translated into %[1]s",
      "application_scenarios": ["scenario 1", "scenario 2", "scenario 3"],
      "founder_insights": "analysis of the maker comment"
    }
  ]
}

Requirements:
1. ai_relevance_score: AI relevance between 0 and 1
%[2]s
2. translated_description: translate the description into %[1]s, keeping it accurate and professional
3. application_scenarios: three concrete use cases in %[1]s, each under 15 words, grounded in what the product does
4. founder_insights: if there is a maker comment, analyze the motivation, the problem being solved and the approach; otherwise return %[3]q

Return valid JSON only, without markdown code fences.`, language, relevanceRubric, model.NoFounderInsights)

	return b.String()
}

func buildScorePrompt(item model.Item) string {
	return fmt.Sprintf(`Rate how related this product is to AI on a scale from 0 to 1.

Name: %s
Tagline: %s
Description: %s
Tags: %s

Scale:
%s

Reply with the number only.`, item.Name, item.Tagline, item.Description, tagsOrNone(item.Tags), relevanceRubric)
}

func buildAnalysisPrompt(item model.Item, language string) string {
	return fmt.Sprintf(`Analyze this product:

Name: %[1]s
Tagline: %[2]s
Description: %[3]s
Maker comment: %[4]s

Return exactly this JSON and nothing else:

{
  "translated_description": "description translated into %[5]s",
  "application_scenarios": ["scenario 1", "scenario 2", "scenario 3"],
  "founder_insights": "analysis of the maker comment"
}

Requirements:
- translated_description: translate the description into %[5]s, keeping it accurate and professional
- application_scenarios: three concrete use cases in %[5]s, each under 15 words
- founder_insights: if there is a maker comment, analyze the motivation, the problem being solved and the approach; otherwise return %[6]q

Return valid JSON only, without markdown code fences.`, item.Name, item.Tagline, item.Description, commentOrNone(item), language, model.NoFounderInsights)
}

func buildTranslatePrompt(text, language string) string {
	return fmt.Sprintf(`Translate the following text into %s.
1. Keep the meaning and the professional tone
2. Return only the translation, with no notes or explanations
3. Use concise, natural wording

Text: %s`, language, text)
}

func buildSummaryPrompt(items []model.Item, language string) string {
	var list strings.Builder
	for i, item := range items {
		fmt.Fprintf(&list, "%d. %s: %s\n", i+1, item.Name, item.Tagline)
	}

	return fmt.Sprintf(`Write a short trend analysis, in %s, of today's AI-related products on Product Hunt.

Today's products:
%s
Cover:
1. Main trends and directions
2. Technical characteristics
3. Distribution of application areas
4. Highlights worth watching`, language, list.String())
}

// stripCodeFence removes a surrounding markdown code fence, if any
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
