package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Category is a human-assigned grouping for annotations (e.g. "validation",
// "data access"). Categories are derived from note headings and normalized
// by slug.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:cat"`

	ID          uuid.UUID      `bun:",pk,type:uuid"       json:"id"`
	Name        string         `bun:"name,notnull"        json:"name"`
	Slug        string         `bun:"slug,notnull,unique" json:"slug"`
	Description *string        `bun:"description"         json:"description,omitempty"`
	Metadata    map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Annotation is the canonical normalized record for a documented annotation.
// Name is unique within a category; duplicates across note files are merged
// into a single record with per-file provenance kept in Sources.
type Annotation struct {
	bun.BaseModel `bun:"table:annotations,alias:a"`

	ID              uuid.UUID      `bun:",pk,type:uuid"            json:"id"`
	CategoryID      uuid.UUID      `bun:"category_id,notnull,type:uuid" json:"category_id"`
	Name            string         `bun:"name,notnull"             json:"name"`
	Slug            string         `bun:"slug,notnull"             json:"slug"`
	Description     string         `bun:"description"              json:"description"`
	Example         string         `bun:"example"                  json:"example"`
	ExampleLanguage string         `bun:"example_language"         json:"example_language"`
	Sources         []Source       `bun:"sources,type:jsonb"       json:"sources,omitempty"`
	Conflicts       []string       `bun:"conflicts,type:jsonb"     json:"conflicts,omitempty"`
	Metadata        map[string]any `bun:"metadata,type:jsonb"      json:"metadata,omitempty"`
	DeletedAt       *time.Time     `bun:"deleted_at,nullzero"      json:"deleted_at,omitempty"`
	CreatedAt       time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Category *Category `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
}

// Source records where a catalog entry was observed: file path, content
// checksum, and whether the occurrence carried a full body or was a bare
// index listing.
type Source struct {
	Path     string    `json:"path"`
	Checksum string    `json:"checksum"`
	Line     int       `json:"line,omitempty"`
	Complete bool      `json:"complete"`
	SeenAt   time.Time `json:"seen_at"`
}

// Key is the merge identity for an annotation: category slug + annotation
// slug. It falls back to the bare annotation slug when the category relation
// is not loaded.
func (a *Annotation) Key() string {
	if a == nil {
		return ""
	}
	if a.Category != nil && a.Category.Slug != "" {
		return a.Category.Slug + "/" + a.Slug
	}
	return a.Slug
}

// HasDescription reports whether the record carries explanatory prose.
func (a *Annotation) HasDescription() bool {
	return a != nil && a.Description != ""
}

// HasExample reports whether the record carries a usage snippet.
func (a *Annotation) HasExample() bool {
	return a != nil && a.Example != ""
}
