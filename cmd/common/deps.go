// Package common provides shared dependency construction for commands.
package common

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/newsharvest/internal/categories"
	"github.com/jonesrussell/newsharvest/internal/config"
	"github.com/jonesrussell/newsharvest/internal/database"
	"github.com/jonesrussell/newsharvest/internal/dedup"
	"github.com/jonesrussell/newsharvest/internal/fetch"
	"github.com/jonesrussell/newsharvest/internal/ingest"
	"github.com/jonesrussell/newsharvest/internal/logger"
	"github.com/jonesrussell/newsharvest/internal/normalize"
	"github.com/jonesrussell/newsharvest/internal/sources"
)

// Deps holds the dependencies shared by all commands.
type Deps struct {
	Config   *config.Config
	Logger   logger.Interface
	Registry *sources.Registry
}

// NewDeps loads configuration, builds the logger, and loads the source
// registry file.
func NewDeps() (*Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Development: cfg.Logger.Development,
	})

	registry, err := sources.LoadFile(cfg.Ingest.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load source registry: %w", err)
	}

	return &Deps{Config: cfg, Logger: log, Registry: registry}, nil
}

// Pipeline holds a fully wired ingestion pipeline and its database handle.
type Pipeline struct {
	Orchestrator *ingest.Orchestrator
	DB           *sqlx.DB
}

// Close releases the pipeline's database connection.
func (p *Pipeline) Close() error {
	return p.DB.Close()
}

// NewPipeline connects to the database, applies the schema, syncs the
// registry sources into storage, and wires the orchestrator.
func NewPipeline(ctx context.Context, deps *Deps) (*Pipeline, error) {
	if err := deps.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := database.NewPostgresConnection(deps.Config.Database)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	sourceRepo := database.NewSourceRepository(db)
	for _, src := range deps.Registry.All() {
		if err = sourceRepo.Upsert(ctx, &src); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to sync source %q: %w", src.Slug, err)
		}
	}

	fetcher := fetch.NewClient(fetch.Config{
		Timeout:      deps.Config.Fetch.Timeout,
		MaxRetries:   deps.Config.Fetch.MaxRetries,
		MaxRedirects: deps.Config.Fetch.MaxRedirects,
		UserAgent:    deps.Config.Fetch.UserAgent,
		RatePerHost:  deps.Config.Fetch.RatePerHost,
		BurstPerHost: deps.Config.Fetch.BurstPerHost,
	}, deps.Logger)

	articleRepo := database.NewArticleRepository(db)

	orchestrator := ingest.New(
		deps.Registry,
		fetcher,
		normalize.New(),
		categories.NewResolver(database.NewCategoryRepository(db), deps.Logger),
		dedup.New(articleRepo),
		articleRepo,
		database.NewRunRepository(db),
		deps.Logger,
		ingest.Config{Workers: deps.Config.Ingest.Workers},
	)

	return &Pipeline{Orchestrator: orchestrator, DB: db}, nil
}
