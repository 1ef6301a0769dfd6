package database

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/newsharvest/internal/domain"
)

// SourceRepository handles database operations for sources.
type SourceRepository struct {
	db *sqlx.DB
}

// NewSourceRepository creates a new source repository.
func NewSourceRepository(db *sqlx.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// sourceRow is the flat database shape of a source.
type sourceRow struct {
	Slug     string `db:"slug"`
	Name     string `db:"name"`
	BaseURL  string `db:"base_url"`
	Language string `db:"language"`
	Active   bool   `db:"active"`
}

// FindBySlug returns the source with the given slug, or domain.ErrNotFound.
func (r *SourceRepository) FindBySlug(ctx context.Context, slug string) (*domain.Source, error) {
	var row sourceRow

	query := `SELECT slug, name, base_url, language, active FROM sources WHERE slug = $1`
	if err := r.db.GetContext(ctx, &row, query, slug); err != nil {
		return nil, classify(err)
	}

	return &domain.Source{
		Slug:     row.Slug,
		Name:     row.Name,
		BaseURL:  row.BaseURL,
		Language: row.Language,
		Active:   row.Active,
	}, nil
}

// Upsert creates or refreshes the row for a registry source. Run at
// startup so article foreign keys always have a matching source row.
func (r *SourceRepository) Upsert(ctx context.Context, src *domain.Source) error {
	query := `
		INSERT INTO sources (slug, name, base_url, language, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (slug)
		DO UPDATE SET
			name = EXCLUDED.name,
			base_url = EXCLUDED.base_url,
			language = EXCLUDED.language,
			active = EXCLUDED.active,
			updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, src.Slug, src.Name, src.BaseURL, src.Language, src.Active); err != nil {
		return classify(err)
	}

	return nil
}
