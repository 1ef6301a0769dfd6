package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsharvest/internal/dedup"
	"github.com/jonesrussell/newsharvest/internal/domain"
	"github.com/jonesrussell/newsharvest/internal/fetch"
	"github.com/jonesrussell/newsharvest/internal/ingest"
	"github.com/jonesrussell/newsharvest/internal/logger"
	"github.com/jonesrussell/newsharvest/internal/normalize"
	"github.com/jonesrussell/newsharvest/internal/sources"
)

// fakeFetcher serves canned pages keyed by URL. Pages are registered before
// the run, so concurrent reads need no locking.
type fakeFetcher struct {
	pages map[string]string
	errs  map[string]error
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string, _ fetch.PageKind) (*fetch.Result, error) {
	if err, bad := f.errs[rawURL]; bad {
		return nil, err
	}
	body, ok := f.pages[rawURL]
	if !ok {
		return nil, &fetch.Error{Kind: fetch.KindHTTPStatus, StatusCode: 404, URL: rawURL}
	}
	return &fetch.Result{Body: []byte(body), FinalURL: rawURL, StatusCode: 200}, nil
}

// memArticleStore is an in-memory article table serving both the dedup
// finder and the writer contracts.
type memArticleStore struct {
	mu        sync.Mutex
	byURL     map[string]*domain.Article
	nextID    int
	createErr error
}

func newMemArticleStore() *memArticleStore {
	return &memArticleStore{byURL: make(map[string]*domain.Article)}
}

func (s *memArticleStore) FindByURL(_ context.Context, url string) (*domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	article, ok := s.byURL[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *article
	return &clone, nil
}

func (s *memArticleStore) Create(_ context.Context, article *domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.byURL[article.URL]; exists {
		return &domain.PersistenceError{Kind: domain.PersistenceConflict}
	}

	s.nextID++
	clone := *article
	clone.ID = fmt.Sprintf("a%d", s.nextID)
	s.byURL[article.URL] = &clone
	return nil
}

func (s *memArticleStore) Update(_ context.Context, id string, article *domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for url, existing := range s.byURL {
		if existing.ID == id {
			clone := *article
			clone.ID = id
			s.byURL[url] = &clone
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *memArticleStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byURL)
}

// noLabelResolver resolves every label set to no categories.
type noLabelResolver struct{}

func (noLabelResolver) Resolve(context.Context, *domain.Source, []string) ([]domain.Category, error) {
	return nil, nil
}

// captureRecorder remembers the per-source summaries it was asked to store.
type captureRecorder struct {
	mu      sync.Mutex
	reports []*domain.SourceReport
}

func (r *captureRecorder) RecordRun(_ context.Context, report *domain.SourceReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
	return nil
}

func detailPage(title string, paragraphs ...string) string {
	page := "<html><body><h1>" + title + "</h1><article>"
	for _, p := range paragraphs {
		page += "<p>" + p + "</p>"
	}
	return page + "</article></body></html>"
}

const novinkyBase = "https://www.novinky.cz/"

func novinkyRegistry(t *testing.T) *sources.Registry {
	t.Helper()
	registry, err := sources.NewRegistry([]domain.Source{{
		Slug:    "novinky",
		Name:    "Novinky.cz",
		BaseURL: novinkyBase,
		Active:  true,
	}})
	require.NoError(t, err)
	return registry
}

func newOrchestrator(
	registry *sources.Registry,
	fetcher ingest.Fetcher,
	store *memArticleStore,
	recorder ingest.RunRecorder,
) *ingest.Orchestrator {
	return ingest.New(
		registry,
		fetcher,
		normalize.New(),
		noLabelResolver{},
		dedup.New(store),
		store,
		recorder,
		logger.NewNoop(),
		ingest.Config{Workers: 2},
	)
}

func TestRunCreatesThenSkips(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		novinkyBase: `<html><body>
<a href="/clanek/domaci-prvni-1">První</a>
<a href="/clanek/domaci-druha-2">Druhá</a>
<a href="/clanek/domaci-prvni-1">První (teaser)</a>
</body></html>`,
		novinkyBase + "clanek/domaci-prvni-1": detailPage("První zpráva", "Odstavec."),
		novinkyBase + "clanek/domaci-druha-2": detailPage("Druhá zpráva", "Odstavec."),
	}}

	store := newMemArticleStore()
	recorder := &captureRecorder{}
	orchestrator := newOrchestrator(novinkyRegistry(t), fetcher, store, recorder)

	first, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	report := first.Sources["novinky"]
	require.NotNil(t, report)
	assert.True(t, report.Success)
	assert.Equal(t, 2, report.Candidates, "duplicate listing links collapse")
	assert.Equal(t, 2, report.Created)
	assert.Zero(t, report.Failed)
	assert.Equal(t, 2, store.count())

	second, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	report = second.Sources["novinky"]
	assert.Zero(t, report.Created)
	assert.Equal(t, 2, report.Skipped, "unchanged content is skipped, not rewritten")
	assert.Equal(t, 2, store.count())

	require.Len(t, recorder.reports, 2, "each run records one summary per source")
}

func TestRunUpdatesChangedContent(t *testing.T) {
	listing := `<html><body><a href="/clanek/domaci-prvni-1">První</a></body></html>`
	detailURL := novinkyBase + "clanek/domaci-prvni-1"

	fetcher := &fakeFetcher{pages: map[string]string{
		novinkyBase: listing,
		detailURL:   detailPage("První zpráva", "Původní text."),
	}}

	store := newMemArticleStore()
	orchestrator := newOrchestrator(novinkyRegistry(t), fetcher, store, nil)

	_, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	fetcher.pages[detailURL] = detailPage("První zpráva", "Opravený text.")

	second, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	report := second.Sources["novinky"]
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, store.count())

	stored, err := store.FindByURL(context.Background(), detailURL)
	require.NoError(t, err)
	assert.Equal(t, []string{"Opravený text."}, stored.Paragraphs)
}

func TestRunIsolatesCandidateFailures(t *testing.T) {
	badURL := novinkyBase + "clanek/domaci-bez-titulku-2"
	fetcher := &fakeFetcher{pages: map[string]string{
		novinkyBase: `<html><body>
<a href="/clanek/domaci-prvni-1">První</a>
<a href="/clanek/domaci-bez-titulku-2">Bez titulku</a>
</body></html>`,
		novinkyBase + "clanek/domaci-prvni-1": detailPage("První zpráva", "Odstavec."),
		badURL:                               `<html><body><article><p>Jen text.</p></article></body></html>`,
	}}

	store := newMemArticleStore()
	orchestrator := newOrchestrator(novinkyRegistry(t), fetcher, store, nil)

	result, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	report := result.Sources["novinky"]
	assert.True(t, report.Success, "a candidate failure does not fail the source")
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Failed)

	require.Len(t, report.Failures, 1)
	failure := report.Failures[0]
	assert.Equal(t, domain.StageParse, failure.Stage)
	assert.Equal(t, "missing_required_field", failure.Kind)
	assert.Equal(t, badURL, failure.URL)
}

func TestRunListingFailureIsolatedToSource(t *testing.T) {
	registry, err := sources.NewRegistry([]domain.Source{
		{Slug: "novinky", Name: "Novinky.cz", BaseURL: novinkyBase, Active: true},
		{Slug: "pravda", Name: "Pravda.com.ua", BaseURL: "https://www.pravda.com.ua/", Active: true},
	})
	require.NoError(t, err)

	fetcher := &fakeFetcher{
		pages: map[string]string{
			"https://www.pravda.com.ua/": `<html><body>
<div data-vr-contentbox="" data-vr-contentbox-url="/news/2026/08/28/1/"><a href="/news/2026/08/28/1/">Новина</a></div>
</body></html>`,
			"https://www.pravda.com.ua/news/2026/08/28/1/": detailPage("Новина", "Абзац."),
		},
		errs: map[string]error{
			novinkyBase: &fetch.Error{Kind: fetch.KindTimeout, URL: novinkyBase, Err: context.DeadlineExceeded},
		},
	}

	store := newMemArticleStore()
	orchestrator := newOrchestrator(registry, fetcher, store, nil)

	result, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	novinky := result.Sources["novinky"]
	require.NotNil(t, novinky)
	assert.False(t, novinky.Success)
	require.Len(t, novinky.Failures, 1)
	assert.Equal(t, domain.StageListingFetch, novinky.Failures[0].Stage)
	assert.Equal(t, "timeout", novinky.Failures[0].Kind)

	pravda := result.Sources["pravda"]
	require.NotNil(t, pravda)
	assert.True(t, pravda.Success, "one source's outage never touches another")
	assert.Equal(t, 1, pravda.Created)
}

func TestRunStorageOutageAbandonsSource(t *testing.T) {
	pages := map[string]string{novinkyBase: `<html><body>
<a href="/clanek/domaci-a-1">A</a>
<a href="/clanek/domaci-b-2">B</a>
<a href="/clanek/domaci-c-3">C</a>
<a href="/clanek/domaci-d-4">D</a>
</body></html>`}
	for _, path := range []string{"clanek/domaci-a-1", "clanek/domaci-b-2", "clanek/domaci-c-3", "clanek/domaci-d-4"} {
		pages[novinkyBase+path] = detailPage("Zpráva "+path, "Odstavec.")
	}
	fetcher := &fakeFetcher{pages: pages}

	store := newMemArticleStore()
	store.createErr = &domain.PersistenceError{Kind: domain.PersistenceUnavailable, Err: errors.New("connection refused")}

	orchestrator := newOrchestrator(novinkyRegistry(t), fetcher, store, nil)

	result, err := orchestrator.Run(context.Background())
	require.NoError(t, err, "storage loss is reported, not fatal")

	report := result.Sources["novinky"]
	assert.False(t, report.Success)
	assert.Zero(t, report.Created)
	assert.GreaterOrEqual(t, report.Failed, 1)
	assert.Equal(t, string(domain.PersistenceUnavailable), report.Failures[0].Kind)
}

func TestRunCreateConflictRetriesAsUpdate(t *testing.T) {
	detailURL := novinkyBase + "clanek/domaci-prvni-1"
	fetcher := &fakeFetcher{pages: map[string]string{
		novinkyBase: `<html><body><a href="/clanek/domaci-prvni-1">První</a></body></html>`,
		detailURL:   detailPage("První zpráva", "Nový text."),
	}}

	store := newMemArticleStore()
	race := &racingStore{memArticleStore: store, url: detailURL}
	orchestrator := ingest.New(
		novinkyRegistry(t),
		fetcher,
		normalize.New(),
		noLabelResolver{},
		dedup.New(race),
		race,
		nil,
		logger.NewNoop(),
		ingest.Config{Workers: 1},
	)

	result, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	report := result.Sources["novinky"]
	assert.Equal(t, 1, report.Updated, "a lost create race retries as an update")
	assert.Zero(t, report.Created)
	assert.Zero(t, report.Failed)

	stored, err := store.FindByURL(context.Background(), detailURL)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nový text."}, stored.Paragraphs)
}

// racingStore simulates a concurrent writer winning the unique-URL race:
// the first Create conflicts after the racing row appears.
type racingStore struct {
	*memArticleStore
	url  string
	once sync.Once
}

func (s *racingStore) Create(ctx context.Context, article *domain.Article) error {
	var raced bool
	s.once.Do(func() {
		winner := *article
		winner.Title = "Starší verze"
		winner.Paragraphs = []string{"Starý text."}
		_ = s.memArticleStore.Create(ctx, &winner)
		raced = true
	})
	if raced {
		return &domain.PersistenceError{Kind: domain.PersistenceConflict}
	}
	return s.memArticleStore.Create(ctx, article)
}

func TestRunUnknownSourceIsFatal(t *testing.T) {
	store := newMemArticleStore()
	orchestrator := newOrchestrator(novinkyRegistry(t), &fakeFetcher{}, store, nil)

	_, err := orchestrator.Run(context.Background(), "typo")
	assert.ErrorIs(t, err, sources.ErrUnknownSource)
}
