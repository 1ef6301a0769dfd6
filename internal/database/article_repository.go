package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/newsharvest/internal/domain"
)

// paragraphSeparator joins body paragraphs into the single text column and
// splits them back on read. Blank lines cannot survive normalization, so
// the separator is unambiguous.
const paragraphSeparator = "\n\n"

// ArticleRepository handles database operations for articles and their
// category associations.
type ArticleRepository struct {
	db *sqlx.DB
}

// NewArticleRepository creates a new article repository.
func NewArticleRepository(db *sqlx.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// articleRow is the flat database shape of an article.
type articleRow struct {
	ID                 string    `db:"id"`
	URL                string    `db:"url"`
	Title              string    `db:"title"`
	Summary            string    `db:"summary"`
	Body               string    `db:"body"`
	ContentMode        string    `db:"content_mode"`
	ImageURL           string    `db:"image_url"`
	PublishedAt        time.Time `db:"published_at"`
	PublishedEstimated bool      `db:"published_estimated"`
	SourceSlug         string    `db:"source_slug"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

// toDomain converts a row to the domain article, splitting the body back
// into paragraphs.
func (row *articleRow) toDomain() *domain.Article {
	article := &domain.Article{
		ID:                 row.ID,
		URL:                row.URL,
		Title:              row.Title,
		Summary:            row.Summary,
		ContentMode:        domain.ContentMode(row.ContentMode),
		ImageURL:           row.ImageURL,
		PublishedAt:        row.PublishedAt,
		PublishedEstimated: row.PublishedEstimated,
		SourceSlug:         row.SourceSlug,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}

	if row.Body != "" {
		article.Paragraphs = strings.Split(row.Body, paragraphSeparator)
	}

	return article
}

// FindByURL returns the article with the given canonical URL, including its
// categories, or domain.ErrNotFound.
func (r *ArticleRepository) FindByURL(ctx context.Context, url string) (*domain.Article, error) {
	var row articleRow

	query := `
		SELECT id, url, title, summary, body, content_mode, image_url,
		       published_at, published_estimated, source_slug, created_at, updated_at
		FROM articles
		WHERE url = $1
	`
	if err := r.db.GetContext(ctx, &row, query, url); err != nil {
		return nil, classify(err)
	}

	article := row.toDomain()

	cats, err := r.categoriesOf(ctx, article.ID)
	if err != nil {
		return nil, err
	}
	article.Categories = cats

	return article, nil
}

// categoriesOf loads the categories associated with an article.
func (r *ArticleRepository) categoriesOf(ctx context.Context, articleID string) ([]domain.Category, error) {
	var cats []domain.Category

	query := `
		SELECT c.id, c.slug, c.name
		FROM categories c
		JOIN article_categories ac ON ac.category_id = c.id
		WHERE ac.article_id = $1
		ORDER BY c.slug
	`
	if err := r.db.SelectContext(ctx, &cats, query, articleID); err != nil {
		return nil, classify(err)
	}

	return cats, nil
}

// Create inserts a new article and its category associations in one
// transaction. A unique-URL race surfaces as a conflict persistence error.
func (r *ArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	if article.ID == "" {
		article.ID = uuid.New().String()
	}

	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO articles (id, url, title, summary, body, content_mode, image_url,
			                      published_at, published_estimated, source_slug)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at, updated_at
		`
		err := tx.QueryRowContext(
			ctx,
			query,
			article.ID,
			article.URL,
			article.Title,
			article.Summary,
			strings.Join(article.Paragraphs, paragraphSeparator),
			string(article.ContentMode),
			article.ImageURL,
			article.PublishedAt,
			article.PublishedEstimated,
			article.SourceSlug,
		).Scan(&article.CreatedAt, &article.UpdatedAt)
		if err != nil {
			return err
		}

		return insertAssociations(ctx, tx, article.ID, article.Categories)
	})
}

// Update rewrites an existing article's content and replaces its category
// associations in one transaction.
func (r *ArticleRepository) Update(ctx context.Context, id string, article *domain.Article) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE articles
			SET title = $2, summary = $3, body = $4, content_mode = $5,
			    image_url = $6, published_at = $7, published_estimated = $8,
			    updated_at = NOW()
			WHERE id = $1
		`
		result, err := tx.ExecContext(
			ctx,
			query,
			id,
			article.Title,
			article.Summary,
			strings.Join(article.Paragraphs, paragraphSeparator),
			string(article.ContentMode),
			article.ImageURL,
			article.PublishedAt,
			article.PublishedEstimated,
		)
		if err != nil {
			return err
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotFound
		}

		if _, err = tx.ExecContext(ctx, `DELETE FROM article_categories WHERE article_id = $1`, id); err != nil {
			return err
		}

		return insertAssociations(ctx, tx, id, article.Categories)
	})
}

// insertAssociations links an article to its categories.
func insertAssociations(ctx context.Context, tx *sqlx.Tx, articleID string, cats []domain.Category) error {
	for _, category := range cats {
		query := `
			INSERT INTO article_categories (article_id, category_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, query, articleID, category.ID); err != nil {
			return err
		}
	}
	return nil
}

// inTx runs fn inside a transaction, classifying any resulting error into
// the gateway taxonomy.
func (r *ArticleRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return classify(err)
	}

	if fnErr := fn(tx); fnErr != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return classify(fmt.Errorf("%w (rollback failed: %w)", fnErr, rbErr))
		}
		if errors.Is(fnErr, domain.ErrNotFound) {
			return fnErr
		}
		return classify(fnErr)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return classify(commitErr)
	}

	return nil
}
