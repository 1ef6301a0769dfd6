package parse

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/newsharvest/internal/domain"
)

// GuardianParser parses theguardian.com. Section fronts link articles from
// fc-item containers and faux-block overlays; article URLs embed a
// /yyyy/mon/dd/ date path.
type GuardianParser struct{}

// Ensure GuardianParser implements Parser.
var _ Parser = (*GuardianParser)(nil)

// guardianArticlePath matches the date segment of a Guardian article URL,
// e.g. /world/2026/aug/28/some-story.
var guardianArticlePath = regexp.MustCompile(`/\d{4}/[a-z]{3}/\d{2}/`)

// guardianListingSelectors are the link patterns tried on a section front.
var guardianListingSelectors = []string{
	"div.fc-item a.fc-item__link",
	"a.u-faux-block-link__overlay",
	"div[data-link-name*='article'] a[href]",
	"a[href]",
}

// ParseListing returns the distinct article links on a Guardian section
// front. Non-article links (section fronts, live blogs hubs, external
// domains) are filtered by the URL date pattern.
func (p *GuardianParser) ParseListing(doc *goquery.Document, base *url.URL) []string {
	collector := newURLCollector()

	for _, selector := range guardianListingSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			href, exists := sel.Attr("href")
			if !exists {
				return
			}

			resolved := resolveURL(base, href)
			if resolved == "" || !guardianArticlePath.MatchString(resolved) {
				return
			}
			if !strings.Contains(resolved, "theguardian.com") {
				return
			}
			collector.add(resolved)
		})

		if len(collector.urls) > 0 {
			break
		}
	}

	return collector.urls
}

// ParseDetail extracts a raw article from a Guardian article page.
func (p *GuardianParser) ParseDetail(doc *goquery.Document, pageURL string) (*domain.RawArticle, error) {
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

	summary := firstText(doc, "div[data-gu-name='standfirst'] p", "div.standfirst p")
	if summary == "" {
		summary = metaContent(doc, "description")
	}

	raw := &domain.RawArticle{
		URL:        pageURL,
		Title:      title,
		Summary:    summary,
		BodyBlocks: textBlocks(doc, "div#maincontent p", "div.article-body-commercial-selector p", "article p"),
		ImageURL:   imageFrom(doc, "figure img", "picture img"),
		PublishedAt: timestampFrom(doc,
			"meta[property='article:published_time']",
			"time[datetime]",
		),
		Labels: guardianLabels(doc),
	}
	if raw.ImageURL == "" {
		raw.ImageURL = metaContent(doc, "og:image")
	}

	return raw, nil
}

// guardianLabels derives category labels from the article section metadata.
func guardianLabels(doc *goquery.Document) []string {
	if section := metaContent(doc, "article:section"); section != "" {
		return []string{section}
	}

	var labels []string
	doc.Find("a[data-link-name='article section']").Each(func(_ int, sel *goquery.Selection) {
		if text := trimmedText(sel); text != "" {
			labels = append(labels, text)
		}
	})

	return labels
}
