package generator

import (
	"strings"
	"time"

	"github.com/goliatone/go-annocat/pkg/interfaces"
	"github.com/google/uuid"
)

// PageKind distinguishes the page templates the generator emits.
type PageKind string

const (
	KindIndex      PageKind = "index"
	KindCategory   PageKind = "category"
	KindAnnotation PageKind = "annotation"
)

// TemplateContext captures the data contract passed to TemplateRenderer implementations.
type TemplateContext struct {
	Site    SiteMetadata
	Page    PageRenderingContext
	Build   BuildMetadata
	Theme   ThemeContext
	Helpers TemplateHelpers
}

// SiteMetadata exposes catalog-wide information required by templates.
type SiteMetadata struct {
	Title      string
	BaseURL    string
	Categories []*CategorySummary
	Stats      *interfaces.CatalogStats
	Metadata   map[string]any
}

// CategorySummary powers navigation menus without pulling full annotation lists.
type CategorySummary struct {
	Name  string
	Slug  string
	Count int
	URL   string
}

// BuildMetadata surfaces high level build information to templates.
type BuildMetadata struct {
	GeneratedAt time.Time
	Options     BuildOptions
}

// PageRenderingContext contains the resolved data for a single output page.
type PageRenderingContext struct {
	Kind        PageKind
	Title       string
	Route       string
	Category    *CategoryView
	Annotation  *AnnotationView
	Annotations []*AnnotationView
	Metadata    DependencyMetadata
}

// CategoryView is the template-facing projection of a category record.
type CategoryView struct {
	Record *interfaces.CategoryRecord
	Name   string
	Slug   string
	Count  int
	URL    string
}

// AnnotationView is the template-facing projection of an annotation record.
type AnnotationView struct {
	Record          *interfaces.AnnotationRecord
	Name            string
	Slug            string
	Category        string
	CategorySlug    string
	Description     string
	DescriptionHTML string
	Example         string
	ExampleLanguage string
	Conflicts       []string
	Sources         []interfaces.SourceRef
	URL             string
}

// DependencyMetadata tracks the inputs a page was rendered from so incremental
// builds can decide whether the output is stale.
type DependencyMetadata struct {
	Hash         string
	LastModified time.Time
}

// TemplateHelpers exposes convenience helpers for template authors.
type TemplateHelpers struct {
	baseURL string
}

func newTemplateHelpers(baseURL string) TemplateHelpers {
	return TemplateHelpers{baseURL: strings.TrimRight(baseURL, "/")}
}

// BaseURL returns the configured site base URL.
func (h TemplateHelpers) BaseURL() string {
	return h.baseURL
}

// WithBaseURL prefixes the provided path with the configured base URL.
func (h TemplateHelpers) WithBaseURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return h.baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if h.baseURL == "" {
		return path
	}
	return h.baseURL + path
}

// RenderedPage captures the rendered HTML output for a page.
type RenderedPage struct {
	PageID   uuid.UUID
	Kind     PageKind
	Route    string
	Output   string
	Template string
	HTML     string
	Metadata DependencyMetadata
	Duration time.Duration
	Checksum string
}

// RenderDiagnostic records rendering timing and errors for individual pages.
type RenderDiagnostic struct {
	PageID   uuid.UUID
	Kind     PageKind
	Route    string
	Template string
	Duration time.Duration
	Skipped  bool
	Err      error
}

type renderOutcome struct {
	page       RenderedPage
	diagnostic RenderDiagnostic
	err        error
	skipped    bool
}
