package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// CategoryUUID derives the stable identifier for a category slug.
func CategoryUUID(slug string) uuid.UUID {
	return UUID("go-annocat:category:" + strings.ToLower(strings.TrimSpace(slug)))
}

// AnnotationUUID derives the stable identifier for an annotation within a category.
func AnnotationUUID(categorySlug, annotationSlug string) uuid.UUID {
	return UUID("go-annocat:annotation:" + strings.ToLower(strings.TrimSpace(categorySlug)) + ":" + strings.ToLower(strings.TrimSpace(annotationSlug)))
}

// ThemeUUID derives the stable identifier for a site theme path.
func ThemeUUID(themePath string) uuid.UUID {
	return UUID("go-annocat:theme:" + strings.TrimSpace(themePath))
}
