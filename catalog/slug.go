package catalog

import (
	"strings"

	"github.com/goliatone/go-slug"
)

// SlugNormalizer exposes the slug normalizer interface.
type SlugNormalizer = slug.Normalizer

// DefaultSlugNormalizer returns the default slug normalizer.
func DefaultSlugNormalizer() SlugNormalizer {
	return slug.Default()
}

// NormalizeSlug applies the default slug normalization rules after stripping
// the annotation sigil, so "@GetMapping" and "GetMapping" collapse to the
// same key.
func NormalizeSlug(value string) (string, error) {
	return slug.Normalize(StripSigil(value))
}

// IsValidSlug reports whether the slug matches the default rules.
func IsValidSlug(value string) bool {
	return slug.IsValid(value)
}

// StripSigil removes the leading "@" marker annotation names carry in notes.
func StripSigil(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "@")
}
