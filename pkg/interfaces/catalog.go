package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CatalogService manages normalized annotation records. It is the stable
// contract consumed by the importer, lint, and the site generator; internal
// implementations persist through memory or bun-backed repositories.
type CatalogService interface {
	UpsertEntry(ctx context.Context, req EntryUpsertRequest) (*AnnotationRecord, error)
	GetByName(ctx context.Context, category, name string) (*AnnotationRecord, error)
	ListByCategory(ctx context.Context, category string) ([]*AnnotationRecord, error)
	List(ctx context.Context) ([]*AnnotationRecord, error)
	Categories(ctx context.Context) ([]*CategoryRecord, error)
	Delete(ctx context.Context, req EntryDeleteRequest) error
	Stats(ctx context.Context) (*CatalogStats, error)
}

// AnnotationRecord is the normalized catalog view of a single annotation.
type AnnotationRecord struct {
	ID              uuid.UUID
	Name            string
	Slug            string
	Category        string
	CategorySlug    string
	Description     string
	Example         string
	ExampleLanguage string
	Sources         []SourceRef
	// Conflicts lists descriptions that disagreed with the winning record
	// during merge, kept for lint reporting.
	Conflicts []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CategoryRecord groups annotations under a human-assigned heading.
type CategoryRecord struct {
	ID    uuid.UUID
	Name  string
	Slug  string
	Count int
}

// SourceRef captures per-file provenance for a catalog record.
type SourceRef struct {
	Path     string    `json:"path"`
	Checksum string    `json:"checksum"`
	Line     int       `json:"line,omitempty"`
	Complete bool      `json:"complete"`
	SeenAt   time.Time `json:"seen_at"`
}

// EntryUpsertRequest carries a merged entry into the catalog.
type EntryUpsertRequest struct {
	Name            string
	Category        string
	Description     string
	Example         string
	ExampleLanguage string
	Sources         []SourceRef
	Conflicts       []string
	DryRun          bool
}

// EntryDeleteRequest removes a catalog record, typically during orphan cleanup.
type EntryDeleteRequest struct {
	ID     uuid.UUID
	Reason string
}

// CatalogStats summarises catalog completeness for reporting.
type CatalogStats struct {
	Categories          int
	Annotations         int
	MissingDescriptions int
	MissingExamples     int
	Conflicted          int
}
