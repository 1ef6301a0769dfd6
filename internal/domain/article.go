package domain

import "time"

// ContentMode tags how much textual content an article carries after
// normalization, so consumers can render appropriately instead of relying
// on implicit fallback chains.
type ContentMode string

// Content modes, from richest to poorest.
const (
	// ContentHasBody means the article has normalized body paragraphs.
	ContentHasBody ContentMode = "has_body"
	// ContentSummaryOnly means only the summary carries text.
	ContentSummaryOnly ContentMode = "summary_only"
	// ContentNone means neither body nor summary survived normalization.
	ContentNone ContentMode = "no_content"
)

// Article represents a normalized news article in the catalog. The canonical
// URL is the sole identity: two fetches of the same URL resolve to the same
// logical article regardless of content drift.
type Article struct {
	// Unique identifier for the article row
	ID string `json:"id" db:"id"`
	// Canonical absolute URL, unique across the whole catalog
	URL string `json:"url" db:"url"`
	// Title of the article (always present)
	Title string `json:"title" db:"title"`
	// Short summary, empty when the source provides none
	Summary string `json:"summary,omitempty" db:"summary"`
	// Body as an ordered sequence of normalized paragraphs
	Paragraphs []string `json:"paragraphs,omitempty"`
	// How much content the article carries (body, summary only, none)
	ContentMode ContentMode `json:"content_mode" db:"content_mode"`
	// Absolute URL of the lead image, if any
	ImageURL string `json:"image_url,omitempty" db:"image_url"`
	// Publication time; the ingestion clock when the source gave none
	PublishedAt time.Time `json:"published_at" db:"published_at"`
	// True when PublishedAt is an ingestion-time estimate
	PublishedEstimated bool `json:"published_estimated" db:"published_estimated"`
	// Slug of the owning source
	SourceSlug string `json:"source_slug" db:"source_slug"`
	// Resolved canonical categories
	Categories []Category `json:"categories,omitempty"`
	// Record creation timestamp
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	// Record update timestamp
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RawArticle is the intermediate record a detail parser extracts from one
// page, before normalization. Fields hold the source markup's values as-is;
// cross-field substitution policy belongs to the normalizer.
type RawArticle struct {
	// URL the detail page was fetched from
	URL string
	// Extracted title; required, parsers fail without one
	Title string
	// Raw summary text, if the markup supplies one
	Summary string
	// Ordered raw text blocks forming the body, if any
	BodyBlocks []string
	// Image URL, possibly relative
	ImageURL string
	// Published time, nil when missing or unparseable
	PublishedAt *time.Time
	// Raw category label strings as the site emits them
	Labels []string
}
