package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/newsharvest/internal/domain"
)

// CategoryRepository handles database operations for categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// FindBySlug returns the category with the given slug, or domain.ErrNotFound.
func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var category domain.Category

	query := `SELECT id, slug, name FROM categories WHERE slug = $1`
	if err := r.db.GetContext(ctx, &category, query, slug); err != nil {
		return nil, classify(err)
	}

	return &category, nil
}

// Create inserts a new category. Losing an insert race on the slug surfaces
// as a conflict persistence error; the resolver re-reads the winner.
func (r *CategoryRepository) Create(ctx context.Context, slug, name string) (*domain.Category, error) {
	category := domain.Category{
		ID:   uuid.New().String(),
		Slug: slug,
		Name: name,
	}

	query := `INSERT INTO categories (id, slug, name) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, category.ID, category.Slug, category.Name); err != nil {
		return nil, classify(err)
	}

	return &category, nil
}
