// Package categories maps raw, site-specific category labels to canonical
// category entities, creating new ones the first time a label is seen.
package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonesrussell/newsharvest/internal/domain"
	"github.com/jonesrussell/newsharvest/internal/logger"
	"github.com/jonesrussell/newsharvest/internal/normalize"
)

// Store is the persistence contract the resolver needs.
type Store interface {
	// FindBySlug returns the category with the given slug, or
	// domain.ErrNotFound.
	FindBySlug(ctx context.Context, slug string) (*domain.Category, error)
	// Create inserts a new category. A concurrent insert of the same slug
	// surfaces as a conflict persistence error, never as a duplicate row.
	Create(ctx context.Context, slug, name string) (*domain.Category, error)
}

// Resolver resolves raw labels to canonical categories, honoring each
// source's allowlist.
type Resolver struct {
	store Store
	log   logger.Interface
}

// NewResolver creates a category resolver.
func NewResolver(store Store, log logger.Interface) *Resolver {
	return &Resolver{
		store: store,
		log:   log.WithComponent("categories"),
	}
}

// Resolve maps the raw labels to categories. Labels outside a non-empty
// source allowlist are dropped silently: sources legitimately emit
// out-of-scope tags. Duplicate labels within one record resolve once.
func (r *Resolver) Resolve(
	ctx context.Context,
	src *domain.Source,
	rawLabels []string,
) ([]domain.Category, error) {
	var resolved []domain.Category
	seen := make(map[string]struct{}, len(rawLabels))

	for _, rawLabel := range rawLabels {
		label := normalize.CollapseWhitespace(rawLabel)
		if label == "" {
			continue
		}

		if !src.AllowsLabel(label) {
			r.log.Debug("dropping label outside source allowlist",
				"source", src.Slug,
				"label", label,
			)
			continue
		}

		slug := domain.Slugify(label)
		if slug == "" {
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}

		category, err := r.resolveOne(ctx, slug, label)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, *category)
	}

	return resolved, nil
}

// resolveOne finds or creates a single category. A creation race is
// resolved by re-reading: first writer wins, the second resolves to the
// now-existing row.
func (r *Resolver) resolveOne(ctx context.Context, slug, name string) (*domain.Category, error) {
	existing, err := r.store.FindBySlug(ctx, slug)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up category %q: %w", slug, err)
	}

	created, createErr := r.store.Create(ctx, slug, name)
	if createErr == nil {
		r.log.Info("created category", "slug", slug, "name", name)
		return created, nil
	}

	if domain.IsPersistenceConflict(createErr) {
		winner, lookupErr := r.store.FindBySlug(ctx, slug)
		if lookupErr != nil {
			return nil, fmt.Errorf("failed to re-read category %q after conflict: %w", slug, lookupErr)
		}
		return winner, nil
	}

	return nil, fmt.Errorf("failed to create category %q: %w", slug, createErr)
}
