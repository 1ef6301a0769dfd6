// Package ingest drives the per-source ingestion pipeline: listing fetch,
// candidate extraction, normalization, category resolution, deduplication,
// and persistence, with per-item fault isolation and a run report.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/jonesrussell/newsharvest/internal/categories"
	"github.com/jonesrussell/newsharvest/internal/dedup"
	"github.com/jonesrussell/newsharvest/internal/domain"
	"github.com/jonesrussell/newsharvest/internal/fetch"
	"github.com/jonesrussell/newsharvest/internal/logger"
	"github.com/jonesrussell/newsharvest/internal/normalize"
	"github.com/jonesrussell/newsharvest/internal/parse"
	"github.com/jonesrussell/newsharvest/internal/sources"
)

// defaultWorkers bounds candidate processing per source when the
// configuration does not say otherwise.
const defaultWorkers = 4

// Fetcher retrieves listing and detail pages.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, kind fetch.PageKind) (*fetch.Result, error)
}

// CategoryResolver maps raw labels to canonical categories.
type CategoryResolver interface {
	Resolve(ctx context.Context, src *domain.Source, rawLabels []string) ([]domain.Category, error)
}

// Decider makes the Create/Update/Skip decision for a candidate.
type Decider interface {
	Decide(ctx context.Context, candidate *domain.Article) (dedup.Decision, error)
}

// ArticleWriter is the write half of the article persistence contract. A
// single create or update commits the row and its category associations
// atomically.
type ArticleWriter interface {
	Create(ctx context.Context, article *domain.Article) error
	Update(ctx context.Context, id string, article *domain.Article) error
}

// RunRecorder persists per-source run summaries for operator diagnosis.
type RunRecorder interface {
	RecordRun(ctx context.Context, report *domain.SourceReport) error
}

// Config holds orchestrator configuration.
type Config struct {
	// Workers is the bounded candidate worker count per source.
	Workers int
}

// WithDefaults returns a copy of the config with defaults applied.
func (c Config) WithDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	return c
}

// Orchestrator runs ingestion passes. Sources are processed in parallel;
// candidates within a source by a fixed-size worker pool.
type Orchestrator struct {
	registry   *sources.Registry
	fetcher    Fetcher
	normalizer *normalize.Normalizer
	resolver   CategoryResolver
	decider    Decider
	articles   ArticleWriter
	runs       RunRecorder
	log        logger.Interface
	workers    int

	// parserFor selects the parser for a source slug. Overridable in tests.
	parserFor func(slug string) (parse.Parser, error)
}

// New creates an orchestrator.
func New(
	registry *sources.Registry,
	fetcher Fetcher,
	normalizer *normalize.Normalizer,
	resolver CategoryResolver,
	decider Decider,
	articles ArticleWriter,
	runs RunRecorder,
	log logger.Interface,
	cfg Config,
) *Orchestrator {
	cfg = cfg.WithDefaults()

	return &Orchestrator{
		registry:   registry,
		fetcher:    fetcher,
		normalizer: normalizer,
		resolver:   resolver,
		decider:    decider,
		articles:   articles,
		runs:       runs,
		log:        log.WithComponent("ingest"),
		workers:    cfg.Workers,
		parserFor:  parse.ForSource,
	}
}

// Run executes one ingestion pass over the selected sources (all active
// sources when slugs is empty). The only fatal condition is an empty or
// invalid selection; every failure past that point is recorded in the
// report and isolated to its source or candidate.
func (o *Orchestrator) Run(ctx context.Context, slugs ...string) (*domain.RunReport, error) {
	selected, err := o.registry.Select(slugs)
	if err != nil {
		return nil, fmt.Errorf("cannot start ingestion run: %w", err)
	}

	report := domain.NewRunReport()
	o.log.Info("ingestion run started", "sources", len(selected))

	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := range selected {
		src := selected[i]
		wg.Add(1)

		go func() {
			defer wg.Done()

			sourceReport := o.runSource(ctx, &src)

			mu.Lock()
			report.Sources[src.Slug] = sourceReport
			mu.Unlock()
		}()
	}

	wg.Wait()
	report.FinishedAt = time.Now()

	o.log.Info("ingestion run finished",
		"duration", report.FinishedAt.Sub(report.StartedAt),
		"created", report.TotalCreated(),
		"updated", report.TotalUpdated(),
		"failed", report.TotalFailures(),
	)

	return report, nil
}

// runSource processes one source end to end and returns its report. A
// listing-stage failure aborts only this source; candidate failures are
// recorded and processing continues.
func (o *Orchestrator) runSource(ctx context.Context, src *domain.Source) *domain.SourceReport {
	report := &domain.SourceReport{
		SourceSlug: src.Slug,
		StartedAt:  time.Now(),
		Success:    true,
	}
	log := o.log.With("source", src.Slug)

	parser, err := o.parserFor(src.Slug)
	if err != nil {
		o.failSource(report, domain.StageListingParse, err)
		log.Error("no parser for source", "error", err.Error())
		o.finishSource(ctx, report, log)
		return report
	}

	candidates, err := o.collectCandidates(ctx, src, parser, report)
	if err != nil {
		o.finishSource(ctx, report, log)
		return report
	}

	report.Candidates = len(candidates)
	log.Info("listing parsed", "candidates", len(candidates))

	o.processCandidates(ctx, src, parser, candidates, report, log)

	o.finishSource(ctx, report, log)
	return report
}

// collectCandidates fetches and parses the source's listing pages (base URL
// plus configured sections) and returns the distinct candidate URLs. An
// error means the source-level listing stage failed and was recorded.
func (o *Orchestrator) collectCandidates(
	ctx context.Context,
	src *domain.Source,
	parser parse.Parser,
	report *domain.SourceReport,
) ([]string, error) {
	base, err := url.Parse(src.BaseURL)
	if err != nil {
		o.failSource(report, domain.StageListingParse, err)
		return nil, err
	}

	listingURLs := append([]string{src.BaseURL}, src.Sections...)

	seen := make(map[string]struct{})
	var candidates []string

	for _, listingURL := range listingURLs {
		result, fetchErr := o.fetcher.Fetch(ctx, listingURL, fetch.KindListing)
		if fetchErr != nil {
			o.failSource(report, domain.StageListingFetch, fetchErr)
			return nil, fetchErr
		}

		doc, docErr := parse.NewDocument(result.Body, listingURL)
		if docErr != nil {
			o.failSource(report, domain.StageListingParse, docErr)
			return nil, docErr
		}

		// Cross-page dedup: sections routinely repeat the base page's
		// leads.
		for _, candidate := range parser.ParseListing(doc, base) {
			if _, dup := seen[candidate]; dup {
				continue
			}
			seen[candidate] = struct{}{}
			candidates = append(candidates, candidate)
		}
	}

	return candidates, nil
}

// processCandidates runs the per-candidate pipeline over a bounded worker
// pool. A storage-unavailable error stops feeding further candidates; every
// other failure affects only its candidate.
func (o *Orchestrator) processCandidates(
	ctx context.Context,
	src *domain.Source,
	parser parse.Parser,
	candidates []string,
	report *domain.SourceReport,
	log logger.Interface,
) {
	sourceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan string)
	outcomes := make(chan candidateOutcome)

	var workers sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for candidateURL := range jobs {
				outcomes <- o.processCandidate(sourceCtx, src, parser, candidateURL)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, candidateURL := range candidates {
			select {
			case <-sourceCtx.Done():
				return
			case jobs <- candidateURL:
			}
		}
	}()

	go func() {
		workers.Wait()
		close(outcomes)
	}()

	for outcome := range outcomes {
		applyOutcome(report, outcome)

		if outcome.failure != nil {
			log.Warn("candidate failed",
				"url", outcome.failure.URL,
				"stage", string(outcome.failure.Stage),
				"kind", outcome.failure.Kind,
			)
		}
		if outcome.storageDown {
			// Storage is down: abandon this source's remaining
			// candidates, other sources keep running on the parent
			// context.
			report.Success = false
			cancel()
		}
	}
}

// candidateOutcome is the result of one candidate's pipeline pass.
type candidateOutcome struct {
	fetched     bool
	parsed      bool
	action      dedup.Action
	failure     *domain.Failure
	storageDown bool
}

// applyOutcome folds one outcome into the source report.
func applyOutcome(report *domain.SourceReport, outcome candidateOutcome) {
	if outcome.fetched {
		report.Fetched++
	}
	if outcome.parsed {
		report.Parsed++
	}

	switch outcome.action {
	case dedup.ActionCreate:
		report.Created++
	case dedup.ActionUpdate:
		report.Updated++
	case dedup.ActionSkip:
		report.Skipped++
	}

	if outcome.failure != nil {
		report.Failed++
		report.Failures = append(report.Failures, *outcome.failure)
	}
}

// processCandidate runs one candidate through detail fetch, parse,
// normalize, category resolution, dedupe, and persist. There are no
// retries at this level; retries belong to the fetcher.
func (o *Orchestrator) processCandidate(
	ctx context.Context,
	src *domain.Source,
	parser parse.Parser,
	candidateURL string,
) candidateOutcome {
	outcome := candidateOutcome{}

	result, err := o.fetcher.Fetch(ctx, candidateURL, fetch.KindDetail)
	if err != nil {
		outcome.failure = newFailure(src.Slug, candidateURL, domain.StageDetailFetch, err)
		return outcome
	}
	outcome.fetched = true

	doc, err := parse.NewDocument(result.Body, candidateURL)
	if err != nil {
		outcome.failure = newFailure(src.Slug, candidateURL, domain.StageParse, err)
		return outcome
	}

	raw, err := parser.ParseDetail(doc, result.FinalURL)
	if err != nil {
		outcome.failure = newFailure(src.Slug, candidateURL, domain.StageParse, err)
		return outcome
	}
	outcome.parsed = true

	article, err := o.normalizer.Normalize(src, raw)
	if err != nil {
		outcome.failure = newFailure(src.Slug, candidateURL, domain.StageNormalize, err)
		return outcome
	}

	resolved, err := o.resolver.Resolve(ctx, src, raw.Labels)
	if err != nil {
		outcome.failure = newFailure(src.Slug, candidateURL, domain.StageCategories, err)
		outcome.storageDown = domain.IsPersistenceUnavailable(err)
		return outcome
	}
	article.Categories = resolved

	action, err := o.persist(ctx, article)
	if err != nil {
		stage := domain.StagePersist
		if errors.Is(err, errDecide) {
			stage = domain.StageDedupe
		}
		outcome.failure = newFailure(src.Slug, candidateURL, stage, err)
		outcome.storageDown = domain.IsPersistenceUnavailable(err)
		return outcome
	}

	outcome.action = action
	return outcome
}

// errDecide marks dedup-lookup failures so they report under the dedupe
// stage rather than persist.
var errDecide = errors.New("dedup decision failed")

// persist decides and executes the write for a normalized candidate. A
// create that loses a unique-URL race is re-read and retried as an update
// exactly once.
func (o *Orchestrator) persist(ctx context.Context, article *domain.Article) (dedup.Action, error) {
	decision, err := o.decider.Decide(ctx, article)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errDecide, err)
	}

	switch decision.Action {
	case dedup.ActionSkip:
		return dedup.ActionSkip, nil

	case dedup.ActionUpdate:
		if updateErr := o.articles.Update(ctx, decision.ExistingID, article); updateErr != nil {
			return "", updateErr
		}
		return dedup.ActionUpdate, nil

	case dedup.ActionCreate:
		createErr := o.articles.Create(ctx, article)
		if createErr == nil {
			return dedup.ActionCreate, nil
		}
		if !domain.IsPersistenceConflict(createErr) {
			return "", createErr
		}

		// Another worker created the row first; re-read and retry as an
		// update once.
		retry, retryErr := o.decider.Decide(ctx, article)
		if retryErr != nil {
			return "", fmt.Errorf("%w: %w", errDecide, retryErr)
		}
		if retry.Action == dedup.ActionSkip {
			return dedup.ActionSkip, nil
		}
		if updateErr := o.articles.Update(ctx, retry.ExistingID, article); updateErr != nil {
			return "", updateErr
		}
		return dedup.ActionUpdate, nil

	default:
		return "", fmt.Errorf("unknown dedup action %q", decision.Action)
	}
}

// failSource records a source-level failure and marks the report failed.
func (o *Orchestrator) failSource(report *domain.SourceReport, stage domain.Stage, err error) {
	report.Success = false
	report.Failed++
	report.Failures = append(report.Failures, *newFailure(report.SourceSlug, "", stage, err))
}

// finishSource stamps the report and persists the run summary. A summary
// write failure is logged, never fatal: the report still reaches the caller.
func (o *Orchestrator) finishSource(ctx context.Context, report *domain.SourceReport, log logger.Interface) {
	report.FinishedAt = time.Now()

	log.Info("source finished",
		"success", report.Success,
		"candidates", report.Candidates,
		"created", report.Created,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)

	if o.runs == nil {
		return
	}
	if err := o.runs.RecordRun(ctx, report); err != nil {
		log.Error("failed to record run summary", "error", err.Error())
	}
}

// newFailure builds a failure descriptor with a classified error kind.
func newFailure(sourceSlug, candidateURL string, stage domain.Stage, err error) *domain.Failure {
	return &domain.Failure{
		SourceSlug: sourceSlug,
		URL:        candidateURL,
		Stage:      stage,
		Kind:       classifyKind(err),
		Message:    err.Error(),
	}
}

// classifyKind maps an error to its taxonomy kind for the run report.
func classifyKind(err error) string {
	if kind := fetch.KindOf(err); kind != "" {
		return string(kind)
	}
	if kind := parse.KindOf(err); kind != "" {
		return string(kind)
	}

	var perr *domain.PersistenceError
	if errors.As(err, &perr) {
		return string(perr.Kind)
	}

	if errors.Is(err, context.Canceled) {
		return "canceled"
	}

	return "error"
}

// Ensure the concrete collaborators satisfy the pipeline contracts.
var (
	_ CategoryResolver = (*categories.Resolver)(nil)
	_ Decider          = (*dedup.Deduplicator)(nil)
)
