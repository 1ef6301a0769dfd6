package parse

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"github.com/jonesrussell/newsharvest/internal/domain"
)

// ListingParser extracts candidate detail URLs from a listing page.
type ListingParser interface {
	// ParseListing returns the distinct candidate detail URLs found in the
	// document, resolved to absolute form against base, each URL exactly
	// once, in document order.
	ParseListing(doc *goquery.Document, base *url.URL) []string
}

// DetailParser extracts a raw article record from a detail page.
type DetailParser interface {
	// ParseDetail extracts the raw article from the document. The title is
	// required; a malformed timestamp yields a nil PublishedAt rather than
	// an error.
	ParseDetail(doc *goquery.Document, pageURL string) (*domain.RawArticle, error)
}

// Parser is the per-source capability pair.
type Parser interface {
	ListingParser
	DetailParser
}

// ForSource returns the parser registered for the given source slug.
func ForSource(slug string) (Parser, error) {
	switch slug {
	case SlugNovinky:
		return &NovinkyParser{}, nil
	case SlugPravda:
		return &PravdaParser{}, nil
	case SlugGuardian:
		return &GuardianParser{}, nil
	default:
		return nil, fmt.Errorf("no parser registered for source %q", slug)
	}
}

// Source slugs with registered parsers.
const (
	SlugNovinky  = "novinky"
	SlugPravda   = "pravda"
	SlugGuardian = "guardian"
)

// NewDocument parses raw page bytes into a goquery document.
func NewDocument(body []byte, pageURL string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, malformed(pageURL, err)
	}
	return doc, nil
}

// resolveURL resolves href against base, returning an empty string for
// unusable links (empty, fragment-only, or unparseable).
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(ref)
	if !resolved.IsAbs() || resolved.Host == "" {
		return ""
	}

	resolved.Fragment = ""
	return resolved.String()
}

// urlCollector accumulates candidate URLs, keeping each distinct URL once
// in first-seen order. Listing pages routinely link the same article from
// several teaser blocks.
type urlCollector struct {
	seen map[string]struct{}
	urls []string
}

func newURLCollector() *urlCollector {
	return &urlCollector{seen: make(map[string]struct{})}
}

func (c *urlCollector) add(candidate string) {
	if candidate == "" {
		return
	}
	if _, dup := c.seen[candidate]; dup {
		return
	}

	c.seen[candidate] = struct{}{}
	c.urls = append(c.urls, candidate)
}

// parseTimestamp parses a timestamp string leniently. A malformed value
// returns nil: a bad date must not discard an otherwise valid article.
func parseTimestamp(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	parsed, err := dateparse.ParseAny(value)
	if err != nil {
		return nil
	}
	return &parsed
}

// timestampFrom tries each selector in order, reading the datetime
// attribute first and the element text second.
func timestampFrom(doc *goquery.Document, selectors ...string) *time.Time {
	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}

		if attr, exists := sel.Attr("datetime"); exists {
			if ts := parseTimestamp(attr); ts != nil {
				return ts
			}
		}
		if attr, exists := sel.Attr("content"); exists {
			if ts := parseTimestamp(attr); ts != nil {
				return ts
			}
		}
		if ts := parseTimestamp(sel.Text()); ts != nil {
			return ts
		}
	}

	return nil
}

// metaContent returns the content attribute of the first matching meta tag.
func metaContent(doc *goquery.Document, property string) string {
	selector := fmt.Sprintf("meta[property='%s'], meta[name='%s']", property, property)
	if content, exists := doc.Find(selector).First().Attr("content"); exists {
		return strings.TrimSpace(content)
	}
	return ""
}

// imageFrom tries each selector in order, reading src, data-src, and
// srcset-style attributes. srcset values yield their first URL.
func imageFrom(doc *goquery.Document, selectors ...string) string {
	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}

		for _, attr := range []string{"src", "data-src", "srcset", "data-srcset"} {
			value, exists := sel.Attr(attr)
			if !exists || strings.TrimSpace(value) == "" {
				continue
			}
			if attr == "srcset" || attr == "data-srcset" {
				value = strings.Fields(value)[0]
			}
			return strings.TrimSpace(value)
		}
	}

	return ""
}

// textBlocks collects non-empty trimmed text of every element matching the
// first selector that yields any, preserving document order.
func textBlocks(doc *goquery.Document, selectors ...string) []string {
	for _, selector := range selectors {
		var blocks []string
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				blocks = append(blocks, text)
			}
		})
		if len(blocks) > 0 {
			return blocks
		}
	}

	return nil
}

// firstText returns the trimmed text of the first element matching any of
// the selectors, tried in order.
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, selector := range selectors {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// trimmedText returns the whitespace-trimmed text of a selection.
func trimmedText(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}

// looksLikeHTML reports whether the parsed document has any element
// structure at all. Parsers use it to distinguish an unrecognizable
// document from a page that merely lacks a field.
func looksLikeHTML(doc *goquery.Document) bool {
	return doc.Find("body *").Length() > 0
}
