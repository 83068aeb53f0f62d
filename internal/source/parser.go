package source

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ppiankov/aidaily/internal/model"
)

var (
	leadingRank = regexp.MustCompile(`^\s*\d+\.\s*`)
	digitsExpr  = regexp.MustCompile(`\d[\d,]*`)
)

// Page is a parsed listing page
type Page struct {
	Title      string
	Recognized bool // The page belongs to the configured source, even if no items parsed
	Items      []model.Item
}

// ParsePage extracts listings from a source page.
// Item sections are read first; JSON-LD ItemList blocks are the fallback.
func ParsePage(html, baseURL, brand string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	page := &Page{
		Title:      title,
		Recognized: recognized(doc, title, brand),
	}

	page.Items = parseSections(doc, baseURL)
	if len(page.Items) == 0 {
		page.Items = parseJSONLD(doc, baseURL)
	}

	return page, nil
}

func recognized(doc *goquery.Document, title, brand string) bool {
	if brand == "" {
		return true
	}
	brand = strings.ToLower(brand)
	if strings.Contains(strings.ToLower(title), brand) {
		return true
	}
	if content, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok {
		return strings.Contains(strings.ToLower(content), brand)
	}
	return false
}

func parseSections(doc *goquery.Document, baseURL string) []model.Item {
	var items []model.Item

	doc.Find(`[data-test^="post-item"]`).Each(func(_ int, s *goquery.Selection) {
		name := cleanName(s.Find(`[data-test^="post-name"]`).First().Text())
		if name == "" {
			return
		}

		link, _ := s.Find(`a[href^="/posts/"], a[href^="/products/"]`).First().Attr("href")

		tagline := collapse(s.Find(`[data-test^="post-tagline"]`).First().Text())
		if tagline == "" {
			s.Find(`a[href^="/posts/"], a[href^="/products/"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
				text := cleanName(a.Text())
				if text != "" && text != name {
					tagline = text
					return false
				}
				return true
			})
		}

		var tags []string
		s.Find(`a[href^="/topics/"]`).Each(func(_ int, a *goquery.Selection) {
			if t := collapse(a.Text()); t != "" {
				tags = append(tags, t)
			}
		})

		website, _ := s.Find(`a[data-test="website-link"]`).First().Attr("href")

		items = append(items, model.Item{
			Name:              name,
			Tagline:           tagline,
			Description:       tagline,
			SourceURL:         website,
			OriginalSourceURL: absolute(baseURL, link),
			Tags:              nonNil(tags),
			Votes:             parseVotes(s.Find(`[data-test="vote-button"]`).First().Text()),
		})
	})

	return items
}

type ldItemList struct {
	Type            any             `json:"@type"`
	ItemListElement []ldListElement `json:"itemListElement"`
}

type ldListElement struct {
	Position    int     `json:"position"`
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	Description string  `json:"description"`
	Item        *ldItem `json:"item"`
}

type ldItem struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

func parseJSONLD(doc *goquery.Document, baseURL string) []model.Item {
	var items []model.Item

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var list ldItemList
		if err := json.Unmarshal([]byte(s.Text()), &list); err != nil {
			return true
		}
		if !isItemList(list.Type) {
			return true
		}

		for _, el := range list.ItemListElement {
			name, link, desc := el.Name, el.URL, el.Description
			if el.Item != nil {
				name, link, desc = firstNonEmpty(el.Item.Name, name), firstNonEmpty(el.Item.URL, link), firstNonEmpty(el.Item.Description, desc)
			}
			name = cleanName(name)
			if name == "" {
				continue
			}
			items = append(items, model.Item{
				Name:              name,
				Tagline:           collapse(desc),
				Description:       collapse(desc),
				OriginalSourceURL: absolute(baseURL, link),
				Tags:              []string{},
			})
		}
		return len(items) == 0
	})

	return items
}

func isItemList(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "ItemList"
	case []any:
		for _, x := range v {
			if s, ok := x.(string); ok && s == "ItemList" {
				return true
			}
		}
	}
	return false
}

func cleanName(s string) string {
	return collapse(leadingRank.ReplaceAllString(collapse(s), ""))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func parseVotes(s string) int {
	m := digitsExpr.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0
	}
	return n
}

func absolute(baseURL, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
