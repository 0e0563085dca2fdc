package catalog

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-annocat/catalog"
	"github.com/goliatone/go-annocat/internal/identity"
	"github.com/goliatone/go-annocat/pkg/interfaces"
)

// CategoryRepository abstracts storage operations for category entities.
type CategoryRepository interface {
	Create(ctx context.Context, record *catalog.Category) (*catalog.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error)
	GetBySlug(ctx context.Context, slug string) (*catalog.Category, error)
	List(ctx context.Context) ([]*catalog.Category, error)
	Update(ctx context.Context, record *catalog.Category) (*catalog.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AnnotationRepository abstracts storage operations for annotation entities.
type AnnotationRepository interface {
	Create(ctx context.Context, record *catalog.Annotation) (*catalog.Annotation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*catalog.Annotation, error)
	GetByCategoryAndSlug(ctx context.Context, categoryID uuid.UUID, slug string) (*catalog.Annotation, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*catalog.Annotation, error)
	List(ctx context.Context) ([]*catalog.Annotation, error)
	Update(ctx context.Context, record *catalog.Annotation) (*catalog.Annotation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithLogger attaches a logger for catalog mutations.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// service implements interfaces.CatalogService.
type service struct {
	categories  CategoryRepository
	annotations AnnotationRepository
	now         func() time.Time
	logger      interfaces.Logger
}

// NewService constructs a catalog service with the required repositories.
func NewService(categories CategoryRepository, annotations AnnotationRepository, opts ...ServiceOption) interfaces.CatalogService {
	s := &service{
		categories:  categories,
		annotations: annotations,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// UpsertEntry creates or replaces the catalog record identified by category
// and annotation name. Identifiers are derived deterministically from the
// slugs, so repeated runs over the same corpus converge on the same IDs.
func (s *service) UpsertEntry(ctx context.Context, req interfaces.EntryUpsertRequest) (*interfaces.AnnotationRecord, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, catalog.ErrNameRequired
	}
	if strings.TrimSpace(req.Category) == "" {
		return nil, catalog.ErrCategoryRequired
	}

	categorySlug, annotationSlug, err := entrySlugs(req.Category, name)
	if err != nil {
		return nil, err
	}

	if req.DryRun {
		return s.previewRecord(req, categorySlug, annotationSlug), nil
	}

	category, err := s.ensureCategory(ctx, req.Category, categorySlug)
	if err != nil {
		return nil, err
	}

	existing, err := s.annotations.GetByCategoryAndSlug(ctx, category.ID, annotationSlug)
	if err != nil && !catalog.IsNotFound(err) {
		return nil, err
	}

	now := s.now().UTC()

	if existing == nil {
		record := &catalog.Annotation{
			ID:              identity.AnnotationUUID(categorySlug, annotationSlug),
			CategoryID:      category.ID,
			Name:            name,
			Slug:            annotationSlug,
			Description:     req.Description,
			Example:         req.Example,
			ExampleLanguage: req.ExampleLanguage,
			Sources:         toModelSources(req.Sources),
			Conflicts:       append([]string(nil), req.Conflicts...),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		created, err := s.annotations.Create(ctx, record)
		if err != nil {
			return nil, err
		}
		if s.logger != nil {
			s.logger.Debug("catalog entry created", "category", categorySlug, "annotation", annotationSlug)
		}
		return s.toRecord(created, category), nil
	}

	existing.Name = name
	existing.Description = req.Description
	existing.Example = req.Example
	existing.ExampleLanguage = req.ExampleLanguage
	existing.Sources = toModelSources(req.Sources)
	existing.Conflicts = append([]string(nil), req.Conflicts...)
	existing.UpdatedAt = now

	updated, err := s.annotations.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Debug("catalog entry updated", "category", categorySlug, "annotation", annotationSlug)
	}
	return s.toRecord(updated, category), nil
}

// GetByName resolves a record by category and annotation name. Both values
// are normalized, so "@GetMapping" and "getmapping" hit the same record.
func (s *service) GetByName(ctx context.Context, category, name string) (*interfaces.AnnotationRecord, error) {
	categorySlug, annotationSlug, err := entrySlugs(category, name)
	if err != nil {
		return nil, err
	}

	cat, err := s.categories.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, err
	}

	record, err := s.annotations.GetByCategoryAndSlug(ctx, cat.ID, annotationSlug)
	if err != nil {
		return nil, err
	}
	return s.toRecord(record, cat), nil
}

func (s *service) ListByCategory(ctx context.Context, category string) ([]*interfaces.AnnotationRecord, error) {
	categorySlug, err := catalog.NormalizeSlug(category)
	if err != nil {
		return nil, catalog.ErrSlugInvalid
	}

	cat, err := s.categories.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, err
	}

	records, err := s.annotations.ListByCategory(ctx, cat.ID)
	if err != nil {
		return nil, err
	}

	out := make([]*interfaces.AnnotationRecord, 0, len(records))
	for _, record := range records {
		out = append(out, s.toRecord(record, cat))
	}
	return out, nil
}

// List returns every record ordered by category slug, then annotation slug.
func (s *service) List(ctx context.Context) ([]*interfaces.AnnotationRecord, error) {
	categories, err := s.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.annotations.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*interfaces.AnnotationRecord, 0, len(records))
	for _, record := range records {
		out = append(out, s.toRecord(record, categories[record.CategoryID]))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CategorySlug != out[j].CategorySlug {
			return out[i].CategorySlug < out[j].CategorySlug
		}
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}

func (s *service) Categories(ctx context.Context) ([]*interfaces.CategoryRecord, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*interfaces.CategoryRecord, 0, len(categories))
	for _, cat := range categories {
		annotations, err := s.annotations.ListByCategory(ctx, cat.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, &interfaces.CategoryRecord{
			ID:    cat.ID,
			Name:  cat.Name,
			Slug:  cat.Slug,
			Count: len(annotations),
		})
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, req interfaces.EntryDeleteRequest) error {
	if req.ID == uuid.Nil {
		return catalog.ErrEntryIDRequired
	}
	if err := s.annotations.Delete(ctx, req.ID); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Debug("catalog entry deleted", "id", req.ID.String(), "reason", req.Reason)
	}
	return nil
}

func (s *service) Stats(ctx context.Context) (*interfaces.CatalogStats, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.annotations.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &interfaces.CatalogStats{
		Categories:  len(categories),
		Annotations: len(records),
	}
	for _, record := range records {
		if !record.HasDescription() {
			stats.MissingDescriptions++
		}
		if !record.HasExample() {
			stats.MissingExamples++
		}
		if len(record.Conflicts) > 0 {
			stats.Conflicted++
		}
	}
	return stats, nil
}

func (s *service) ensureCategory(ctx context.Context, name, slug string) (*catalog.Category, error) {
	existing, err := s.categories.GetBySlug(ctx, slug)
	if err == nil {
		return existing, nil
	}
	if !catalog.IsNotFound(err) {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.categories.Create(ctx, &catalog.Category{
		ID:        identity.CategoryUUID(slug),
		Name:      strings.TrimSpace(name),
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Debug("category created", "category", slug)
	}
	return created, nil
}

func (s *service) categoryIndex(ctx context.Context) (map[uuid.UUID]*catalog.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[uuid.UUID]*catalog.Category, len(categories))
	for _, cat := range categories {
		index[cat.ID] = cat
	}
	return index, nil
}

func (s *service) previewRecord(req interfaces.EntryUpsertRequest, categorySlug, annotationSlug string) *interfaces.AnnotationRecord {
	return &interfaces.AnnotationRecord{
		ID:              identity.AnnotationUUID(categorySlug, annotationSlug),
		Name:            strings.TrimSpace(req.Name),
		Slug:            annotationSlug,
		Category:        strings.TrimSpace(req.Category),
		CategorySlug:    categorySlug,
		Description:     req.Description,
		Example:         req.Example,
		ExampleLanguage: req.ExampleLanguage,
		Sources:         append([]interfaces.SourceRef(nil), req.Sources...),
		Conflicts:       append([]string(nil), req.Conflicts...),
	}
}

func (s *service) toRecord(a *catalog.Annotation, cat *catalog.Category) *interfaces.AnnotationRecord {
	record := &interfaces.AnnotationRecord{
		ID:              a.ID,
		Name:            a.Name,
		Slug:            a.Slug,
		Description:     a.Description,
		Example:         a.Example,
		ExampleLanguage: a.ExampleLanguage,
		Sources:         toSourceRefs(a.Sources),
		Conflicts:       append([]string(nil), a.Conflicts...),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if cat != nil {
		record.Category = cat.Name
		record.CategorySlug = cat.Slug
	}
	return record
}

func entrySlugs(category, name string) (string, string, error) {
	categorySlug, err := catalog.NormalizeSlug(category)
	if err != nil || categorySlug == "" {
		return "", "", catalog.ErrSlugInvalid
	}
	annotationSlug, err := catalog.NormalizeSlug(name)
	if err != nil || annotationSlug == "" {
		return "", "", catalog.ErrSlugInvalid
	}
	return categorySlug, annotationSlug, nil
}

func toModelSources(refs []interfaces.SourceRef) []catalog.Source {
	out := make([]catalog.Source, 0, len(refs))
	for _, ref := range refs {
		out = append(out, catalog.Source{
			Path:     ref.Path,
			Checksum: ref.Checksum,
			Line:     ref.Line,
			Complete: ref.Complete,
			SeenAt:   ref.SeenAt,
		})
	}
	return out
}

func toSourceRefs(sources []catalog.Source) []interfaces.SourceRef {
	out := make([]interfaces.SourceRef, 0, len(sources))
	for _, src := range sources {
		out = append(out, interfaces.SourceRef{
			Path:     src.Path,
			Checksum: src.Checksum,
			Line:     src.Line,
			Complete: src.Complete,
			SeenAt:   src.SeenAt,
		})
	}
	return out
}
