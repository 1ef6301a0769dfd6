// Package dedup decides whether an extracted article already exists and
// whether it changed enough to warrant an update.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jonesrussell/newsharvest/internal/domain"
)

// Action is the outcome of a dedup decision.
type Action string

// Dedup actions.
const (
	// ActionCreate means no article exists for the canonical URL.
	ActionCreate Action = "create"
	// ActionUpdate means the article exists and its content changed.
	ActionUpdate Action = "update"
	// ActionSkip means the article exists with identical content.
	ActionSkip Action = "skip"
)

// Decision carries the action and, for updates, the existing row's id.
type Decision struct {
	Action     Action
	ExistingID string
}

// ArticleFinder is the persistence contract the deduplicator needs.
type ArticleFinder interface {
	// FindByURL returns the article with the given canonical URL, or
	// domain.ErrNotFound.
	FindByURL(ctx context.Context, url string) (*domain.Article, error)
}

// Deduplicator implements the Create/Update/Skip decision keyed by
// canonical URL.
type Deduplicator struct {
	finder ArticleFinder
}

// New creates a deduplicator.
func New(finder ArticleFinder) *Deduplicator {
	return &Deduplicator{finder: finder}
}

// Decide looks up the candidate by canonical URL and compares
// post-normalization content. Timestamp changes alone never trigger an
// update, so the estimate clock drifting between runs does not cause
// needless rewrites.
func (d *Deduplicator) Decide(ctx context.Context, candidate *domain.Article) (Decision, error) {
	existing, err := d.finder.FindByURL(ctx, candidate.URL)
	if errors.Is(err, domain.ErrNotFound) {
		return Decision{Action: ActionCreate}, nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("failed to look up article %q: %w", candidate.URL, err)
	}

	if ContentEqual(existing, candidate) {
		return Decision{Action: ActionSkip, ExistingID: existing.ID}, nil
	}

	return Decision{Action: ActionUpdate, ExistingID: existing.ID}, nil
}

// ContentEqual reports whether two articles carry materially identical
// content: title, summary, and the body paragraph sequence.
func ContentEqual(a, b *domain.Article) bool {
	return a.Title == b.Title &&
		a.Summary == b.Summary &&
		slices.Equal(a.Paragraphs, b.Paragraphs)
}
