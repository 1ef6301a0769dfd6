// Package sources manages the registry of configured news sources.
// The registry is an immutable catalog constructed once at process start;
// the orchestrator receives it by reference and never mutates it.
package sources

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/jonesrussell/newsharvest/internal/domain"
)

// Common errors returned by the registry.
var (
	// ErrNoSources is returned when the registry holds no sources.
	ErrNoSources = errors.New("no sources configured")
	// ErrUnknownSource is returned when a slug does not match any source.
	ErrUnknownSource = errors.New("unknown source")
)

// Registry is the read-only catalog of configured sources.
type Registry struct {
	ordered []domain.Source
	bySlug  map[string]domain.Source
}

// NewRegistry validates the given sources and builds a registry from them.
func NewRegistry(srcs []domain.Source) (*Registry, error) {
	if len(srcs) == 0 {
		return nil, ErrNoSources
	}

	r := &Registry{
		ordered: make([]domain.Source, 0, len(srcs)),
		bySlug:  make(map[string]domain.Source, len(srcs)),
	}

	for i := range srcs {
		src := srcs[i]
		if err := validate(&src); err != nil {
			return nil, fmt.Errorf("source %q: %w", src.Slug, err)
		}
		if _, exists := r.bySlug[src.Slug]; exists {
			return nil, fmt.Errorf("source %q: duplicate slug", src.Slug)
		}

		r.ordered = append(r.ordered, src)
		r.bySlug[src.Slug] = src
	}

	return r, nil
}

// validate checks a single source configuration.
func validate(src *domain.Source) error {
	if src.Slug == "" {
		return errors.New("slug is required")
	}
	if src.Name == "" {
		return errors.New("name is required")
	}

	parsed, err := url.Parse(src.BaseURL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return fmt.Errorf("base_url %q is not an absolute URL", src.BaseURL)
	}

	for _, section := range src.Sections {
		if _, secErr := url.Parse(section); secErr != nil {
			return fmt.Errorf("section %q is not a valid URL: %w", section, secErr)
		}
	}

	return nil
}

// All returns every registered source in registration order.
func (r *Registry) All() []domain.Source {
	out := make([]domain.Source, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Active returns the active sources in registration order.
func (r *Registry) Active() []domain.Source {
	out := make([]domain.Source, 0, len(r.ordered))
	for _, src := range r.ordered {
		if src.Active {
			out = append(out, src)
		}
	}
	return out
}

// Get returns the source with the given slug.
func (r *Registry) Get(slug string) (domain.Source, error) {
	src, exists := r.bySlug[slug]
	if !exists {
		return domain.Source{}, fmt.Errorf("%w: %q", ErrUnknownSource, slug)
	}
	return src, nil
}

// Select returns the active sources matching the given slugs, or all active
// sources when slugs is empty. Unknown slugs are an error so that a typo in
// an on-demand run surfaces before any fetching starts.
func (r *Registry) Select(slugs []string) ([]domain.Source, error) {
	if len(slugs) == 0 {
		active := r.Active()
		if len(active) == 0 {
			return nil, ErrNoSources
		}
		return active, nil
	}

	out := make([]domain.Source, 0, len(slugs))
	for _, slug := range slugs {
		src, err := r.Get(slug)
		if err != nil {
			return nil, err
		}
		if src.Active {
			out = append(out, src)
		}
	}

	if len(out) == 0 {
		return nil, ErrNoSources
	}

	return out, nil
}
