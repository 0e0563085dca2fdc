package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-annocat/catalog"
)

// MemoryCategoryRepository is an in-memory implementation for scaffolding and tests.
type MemoryCategoryRepository struct {
	mu         sync.RWMutex
	categories map[uuid.UUID]*catalog.Category
	slugIndex  map[string]uuid.UUID
}

// NewMemoryCategoryRepository creates an empty in-memory category repository.
func NewMemoryCategoryRepository() *MemoryCategoryRepository {
	return &MemoryCategoryRepository{
		categories: make(map[uuid.UUID]*catalog.Category),
		slugIndex:  make(map[string]uuid.UUID),
	}
}

func (m *MemoryCategoryRepository) Create(_ context.Context, record *catalog.Category) (*catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneCategory(record)
	m.categories[copied.ID] = copied
	m.slugIndex[copied.Slug] = copied.ID
	return cloneCategory(copied), nil
}

func (m *MemoryCategoryRepository) GetByID(_ context.Context, id uuid.UUID) (*catalog.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.categories[id]
	if !ok {
		return nil, &catalog.NotFoundError{Resource: "category", Key: id.String()}
	}
	return cloneCategory(rec), nil
}

func (m *MemoryCategoryRepository) GetBySlug(_ context.Context, slug string) (*catalog.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugIndex[slug]
	if !ok {
		return nil, &catalog.NotFoundError{Resource: "category", Key: slug}
	}
	return cloneCategory(m.categories[id]), nil
}

func (m *MemoryCategoryRepository) List(_ context.Context) ([]*catalog.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*catalog.Category, 0, len(m.categories))
	for _, rec := range m.categories {
		out = append(out, cloneCategory(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (m *MemoryCategoryRepository) Update(_ context.Context, record *catalog.Category) (*catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[record.ID]; !ok {
		return nil, &catalog.NotFoundError{Resource: "category", Key: record.ID.String()}
	}
	copied := cloneCategory(record)
	m.categories[copied.ID] = copied
	m.slugIndex[copied.Slug] = copied.ID
	return cloneCategory(copied), nil
}

func (m *MemoryCategoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.categories[id]
	if !ok {
		return &catalog.NotFoundError{Resource: "category", Key: id.String()}
	}
	delete(m.slugIndex, rec.Slug)
	delete(m.categories, id)
	return nil
}

// MemoryAnnotationRepository stores annotations in-memory keyed by category and slug.
type MemoryAnnotationRepository struct {
	mu          sync.RWMutex
	annotations map[uuid.UUID]*catalog.Annotation
}

// NewMemoryAnnotationRepository creates an empty in-memory annotation repository.
func NewMemoryAnnotationRepository() *MemoryAnnotationRepository {
	return &MemoryAnnotationRepository{
		annotations: make(map[uuid.UUID]*catalog.Annotation),
	}
}

func (m *MemoryAnnotationRepository) Create(_ context.Context, record *catalog.Annotation) (*catalog.Annotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneAnnotation(record)
	m.annotations[copied.ID] = copied
	return cloneAnnotation(copied), nil
}

func (m *MemoryAnnotationRepository) GetByID(_ context.Context, id uuid.UUID) (*catalog.Annotation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.annotations[id]
	if !ok {
		return nil, &catalog.NotFoundError{Resource: "annotation", Key: id.String()}
	}
	return cloneAnnotation(rec), nil
}

func (m *MemoryAnnotationRepository) GetByCategoryAndSlug(_ context.Context, categoryID uuid.UUID, slug string) (*catalog.Annotation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.annotations {
		if rec.CategoryID == categoryID && rec.Slug == slug {
			return cloneAnnotation(rec), nil
		}
	}
	return nil, &catalog.NotFoundError{Resource: "annotation", Key: slug}
}

func (m *MemoryAnnotationRepository) ListByCategory(_ context.Context, categoryID uuid.UUID) ([]*catalog.Annotation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*catalog.Annotation
	for _, rec := range m.annotations {
		if rec.CategoryID == categoryID {
			out = append(out, cloneAnnotation(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (m *MemoryAnnotationRepository) List(_ context.Context) ([]*catalog.Annotation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*catalog.Annotation, 0, len(m.annotations))
	for _, rec := range m.annotations {
		out = append(out, cloneAnnotation(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (m *MemoryAnnotationRepository) Update(_ context.Context, record *catalog.Annotation) (*catalog.Annotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.annotations[record.ID]; !ok {
		return nil, &catalog.NotFoundError{Resource: "annotation", Key: record.ID.String()}
	}
	copied := cloneAnnotation(record)
	m.annotations[copied.ID] = copied
	return cloneAnnotation(copied), nil
}

func (m *MemoryAnnotationRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.annotations[id]; !ok {
		return &catalog.NotFoundError{Resource: "annotation", Key: id.String()}
	}
	delete(m.annotations, id)
	return nil
}

func cloneCategory(src *catalog.Category) *catalog.Category {
	if src == nil {
		return nil
	}
	copied := *src
	if src.Metadata != nil {
		copied.Metadata = cloneAnyMap(src.Metadata)
	}
	return &copied
}

func cloneAnnotation(src *catalog.Annotation) *catalog.Annotation {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Sources = append([]catalog.Source(nil), src.Sources...)
	copied.Conflicts = append([]string(nil), src.Conflicts...)
	if src.Metadata != nil {
		copied.Metadata = cloneAnyMap(src.Metadata)
	}
	copied.Category = cloneCategory(src.Category)
	return &copied
}

func cloneAnyMap(input map[string]any) map[string]any {
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
