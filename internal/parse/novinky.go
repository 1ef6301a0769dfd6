package parse

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/newsharvest/internal/domain"
)

// NovinkyParser parses novinky.cz. Article URLs follow the pattern
// /clanek/<category>-<slug>-<id>; the category label is derived from the URL
// because listing cards do not carry one.
type NovinkyParser struct{}

// Ensure NovinkyParser implements Parser.
var _ Parser = (*NovinkyParser)(nil)

// novinkyArticlePath matches the category segment of a novinky article URL.
var novinkyArticlePath = regexp.MustCompile(`/clanek/([^/]+)`)

// novinkyCategories maps URL category slugs to display labels. Slugs not in
// the map fall back to the raw slug segment.
var novinkyCategories = map[string]string{
	"stalo":      "Stalo se",
	"domaci":     "Domácí",
	"volby":      "Volby",
	"zahranicni": "Zahraniční",
	"valka":      "Válka na Ukrajině",
	"krimi":      "Krimi",
	"ekonomika":  "Ekonomika",
	"sport":      "Sport",
	"kultura":    "Kultura",
}

// ParseListing returns the distinct /clanek/ article links on the page.
func (p *NovinkyParser) ParseListing(doc *goquery.Document, base *url.URL) []string {
	collector := newURLCollector()

	doc.Find("a[href*='/clanek/']").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists {
			return
		}
		collector.add(resolveURL(base, href))
	})

	return collector.urls
}

// ParseDetail extracts a raw article from a novinky.cz detail page.
func (p *NovinkyParser) ParseDetail(doc *goquery.Document, pageURL string) (*domain.RawArticle, error) {
	if !looksLikeHTML(doc) {
		return nil, malformed(pageURL, nil)
	}

	title := firstText(doc, "h1")
	if title == "" {
		title = metaContent(doc, "og:title")
	}
	if title == "" {
		return nil, missingField(pageURL, "title")
	}

	summary := firstText(doc, "div.perex", "p.perex", "p.q_il", "div.g_iT")
	if summary == "" {
		summary = metaContent(doc, "og:description")
	}
	// Listing-style perex blocks prefix the text with a date separated by
	// an interpunct.
	if idx := strings.Index(summary, "·"); idx >= 0 {
		summary = strings.TrimSpace(summary[idx+len("·"):])
	}

	raw := &domain.RawArticle{
		URL:         pageURL,
		Title:       title,
		Summary:     summary,
		BodyBlocks:  textBlocks(doc, "div.articleBody p", "article p"),
		ImageURL:    imageFrom(doc, "picture img", "figure img"),
		PublishedAt: timestampFrom(doc, "time[datetime]", "meta[property='article:published_time']"),
	}
	if raw.ImageURL == "" {
		raw.ImageURL = metaContent(doc, "og:image")
	}

	if label := novinkyCategoryFromURL(pageURL); label != "" {
		raw.Labels = []string{label}
	}

	return raw, nil
}

// novinkyCategoryFromURL derives the category label from the first segment
// of the article slug.
func novinkyCategoryFromURL(pageURL string) string {
	match := novinkyArticlePath.FindStringSubmatch(pageURL)
	if match == nil {
		return ""
	}

	slug, _, _ := strings.Cut(match[1], "-")
	if slug == "" {
		return ""
	}

	if label, known := novinkyCategories[slug]; known {
		return label
	}
	return slug
}
