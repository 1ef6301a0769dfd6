package domain

import "time"

// Stage identifies where in the pipeline a candidate or source failed.
type Stage string

// Pipeline stages, in processing order.
const (
	StageListingFetch Stage = "listing_fetch"
	StageListingParse Stage = "listing_parse"
	StageDetailFetch  Stage = "detail_fetch"
	StageParse        Stage = "parse"
	StageNormalize    Stage = "normalize"
	StageCategories   Stage = "categories"
	StageDedupe       Stage = "dedupe"
	StagePersist      Stage = "persist"
)

// Failure describes one failed candidate or source-level error in a run.
type Failure struct {
	SourceSlug string `json:"source_slug"`
	URL        string `json:"url,omitempty"`
	Stage      Stage  `json:"stage"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
}

// SourceReport aggregates the outcome of one source within a run.
type SourceReport struct {
	SourceSlug string    `json:"source_slug"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	// Candidates is the number of distinct detail URLs discovered.
	Candidates int `json:"candidates"`
	// Fetched counts detail pages retrieved successfully.
	Fetched int `json:"fetched"`
	// Parsed counts detail pages that yielded a raw article.
	Parsed  int `json:"parsed"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	// Skipped counts duplicates with unchanged content.
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	// Success is false when the listing itself could not be processed.
	Success  bool      `json:"success"`
	Failures []Failure `json:"failures,omitempty"`
}

// RunReport is the summary of one ingestion pass across all selected
// sources. It is transient: produced per run and consumed by logging and
// the run history table.
type RunReport struct {
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt time.Time               `json:"finished_at"`
	Sources    map[string]*SourceReport `json:"sources"`
}

// NewRunReport creates an empty run report stamped with the current time.
func NewRunReport() *RunReport {
	return &RunReport{
		StartedAt: time.Now(),
		Sources:   make(map[string]*SourceReport),
	}
}

// TotalFailures returns the failure count across all sources.
func (r *RunReport) TotalFailures() int {
	total := 0
	for _, sr := range r.Sources {
		total += sr.Failed
	}

	return total
}

// TotalCreated returns the created-article count across all sources.
func (r *RunReport) TotalCreated() int {
	total := 0
	for _, sr := range r.Sources {
		total += sr.Created
	}

	return total
}

// TotalUpdated returns the updated-article count across all sources.
func (r *RunReport) TotalUpdated() int {
	total := 0
	for _, sr := range r.Sources {
		total += sr.Updated
	}

	return total
}
