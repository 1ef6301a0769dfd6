// Package normalize converts raw parsed records into the canonical article
// shape. It is pure transformation: no I/O, no storage access.
package normalize

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonesrussell/newsharvest/internal/domain"
)

// minParagraphRunes is the shortest paragraph kept after splitting. Blocks
// of one character are stray markup artifacts, not content.
const minParagraphRunes = 2

// whitespaceRun matches any run of whitespace, newlines included.
var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalizer applies the normalization rules. The clock is injectable so
// tests can pin the timestamp-defaulting behavior.
type Normalizer struct {
	now func() time.Time
}

// New creates a normalizer using the wall clock.
func New() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewWithClock creates a normalizer with a fixed clock for tests.
func NewWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// Normalize converts a raw record into a canonical article owned by the
// given source. Rules, in order: collapse whitespace; absolutize the
// article and image URLs against the source base; split the body into
// paragraphs and drop sub-minimum ones; tag the content mode; default a
// missing published time to the ingestion clock, flagged as an estimate.
func (n *Normalizer) Normalize(src *domain.Source, raw *domain.RawArticle) (*domain.Article, error) {
	base, err := url.Parse(src.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("source %q has invalid base URL: %w", src.Slug, err)
	}

	canonicalURL, err := absolutize(base, raw.URL)
	if err != nil {
		return nil, fmt.Errorf("article URL %q: %w", raw.URL, err)
	}

	article := &domain.Article{
		URL:        canonicalURL,
		Title:      CollapseWhitespace(raw.Title),
		Summary:    CollapseWhitespace(raw.Summary),
		Paragraphs: SplitParagraphs(raw.BodyBlocks),
		SourceSlug: src.Slug,
	}

	if raw.ImageURL != "" {
		// A broken image link degrades the record, it does not fail it.
		if imageURL, imgErr := absolutize(base, raw.ImageURL); imgErr == nil {
			article.ImageURL = imageURL
		}
	}

	article.ContentMode = contentMode(article)

	if raw.PublishedAt != nil {
		article.PublishedAt = *raw.PublishedAt
	} else {
		article.PublishedAt = n.now()
		article.PublishedEstimated = true
	}

	return article, nil
}

// contentMode tags how much content the article carries instead of letting
// consumers guess from empty fields.
func contentMode(article *domain.Article) domain.ContentMode {
	switch {
	case len(article.Paragraphs) > 0:
		return domain.ContentHasBody
	case article.Summary != "":
		return domain.ContentSummaryOnly
	default:
		return domain.ContentNone
	}
}

// CollapseWhitespace trims the string and collapses every whitespace run to
// a single space.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// SplitParagraphs turns raw text blocks into normalized paragraphs. Blocks
// are additionally split on blank-line boundaries, each paragraph is
// whitespace-collapsed, and paragraphs shorter than minParagraphRunes are
// dropped.
func SplitParagraphs(blocks []string) []string {
	var paragraphs []string
	for _, block := range blocks {
		for _, part := range strings.Split(block, "\n\n") {
			paragraph := CollapseWhitespace(part)
			if utf8.RuneCountInString(paragraph) < minParagraphRunes {
				continue
			}
			paragraphs = append(paragraphs, paragraph)
		}
	}

	return paragraphs
}

// absolutize resolves ref against base and validates the result.
func absolutize(base *url.URL, ref string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}

	resolved := base.ResolveReference(parsed)
	if !resolved.IsAbs() || resolved.Host == "" {
		return "", fmt.Errorf("cannot resolve %q to an absolute URL", ref)
	}

	resolved.Fragment = ""
	return resolved.String(), nil
}
