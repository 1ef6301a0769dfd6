package parse

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/newsharvest/internal/domain"
)

// PravdaParser parses pravda.com.ua. Listing teasers are marked with
// data-vr-contentbox attributes; detail pages carry the body, tags, and
// publication time, none of which appear on the listing.
type PravdaParser struct{}

// Ensure PravdaParser implements Parser.
var _ Parser = (*PravdaParser)(nil)

// ParseListing returns the distinct article links found in the
// data-vr-contentbox teaser containers.
func (p *PravdaParser) ParseListing(doc *goquery.Document, base *url.URL) []string {
	collector := newURLCollector()

	doc.Find("div[data-vr-contentbox]").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("data-vr-contentbox-url")
		if !exists || href == "" {
			href, _ = sel.Find("a[href]").First().Attr("href")
		}
		collector.add(resolveURL(base, href))
	})

	return collector.urls
}

// ParseDetail extracts a raw article from a pravda.com.ua detail page.
// Pravda supplies no summary; the normalizer tags such records so the
// presentation layer can fall back to the body's lead paragraph.
func (p *PravdaParser) ParseDetail(doc *goquery.Document, pageURL string) (*domain.RawArticle, error) {
	if !looksLikeHTML(doc) {
		return nil, malformed(pageURL, nil)
	}

	title := firstText(doc, "h1.post_title", "h1")
	if title == "" {
		title = metaContent(doc, "og:title")
	}
	if title == "" {
		return nil, missingField(pageURL, "title")
	}

	raw := &domain.RawArticle{
		URL:        pageURL,
		Title:      title,
		BodyBlocks: textBlocks(doc, "div.post_text p", "article p"),
		ImageURL:   imageFrom(doc, "div.post_photo img", "picture img", "picture source"),
		PublishedAt: timestampFrom(doc,
			"meta[property='article:published_time']",
			"time[datetime]",
			"div.post_time",
		),
		Labels: pravdaTags(doc),
	}
	if raw.ImageURL == "" {
		raw.ImageURL = metaContent(doc, "og:image")
	}

	return raw, nil
}

// pravdaTags collects the tag links shown under the article body.
func pravdaTags(doc *goquery.Document) []string {
	var labels []string
	doc.Find("div.post_tags a, span.post_tags_item a").Each(func(_ int, sel *goquery.Selection) {
		if text := trimmedText(sel); text != "" {
			labels = append(labels, text)
		}
	})

	return labels
}
