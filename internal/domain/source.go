// Package domain provides domain models used across the application.
package domain

import "strings"

// Source represents a configured external news site with its own parsing rules.
// Sources are registered once at startup and never mutated during a run.
type Source struct {
	// Slug is the unique, stable key for the source.
	Slug string `json:"slug" yaml:"slug"`
	// Name is the human-readable display name.
	Name string `json:"name" yaml:"name"`
	// BaseURL is the listing page URL; relative links resolve against it.
	BaseURL string `json:"base_url" yaml:"base_url"`
	// Language is the ISO 639-1 language code (e.g., "cs", "uk", "en").
	Language string `json:"language" yaml:"language"`
	// Active controls whether the source participates in ingestion runs.
	Active bool `json:"active" yaml:"active"`
	// Sections lists additional listing pages to walk beyond BaseURL.
	Sections []string `json:"sections,omitempty" yaml:"sections,omitempty"`
	// CategoryAllowlist restricts which raw category labels the source may
	// emit. Empty means all labels are accepted.
	CategoryAllowlist []string `json:"category_allowlist,omitempty" yaml:"category_allowlist,omitempty"`
}

// AllowsLabel reports whether the source accepts the given raw category
// label. Matching against the allowlist is case-insensitive; a source
// without an allowlist accepts every label.
func (s *Source) AllowsLabel(label string) bool {
	if len(s.CategoryAllowlist) == 0 {
		return true
	}

	for _, allowed := range s.CategoryAllowlist {
		if strings.EqualFold(allowed, label) {
			return true
		}
	}

	return false
}
