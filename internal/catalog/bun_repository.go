package catalog

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-annocat/catalog"
)

// BunCategoryRepository implements CategoryRepository with optional caching.
type BunCategoryRepository struct {
	repo         repository.Repository[*catalog.Category]
	cacheService cache.CacheService
	cachePrefix  string
}

const categoryNamespace = "category"

// NewBunCategoryRepository creates a category repository without caching.
func NewBunCategoryRepository(db *bun.DB) *BunCategoryRepository {
	return NewBunCategoryRepositoryWithCache(db, nil, nil)
}

// NewBunCategoryRepositoryWithCache creates a category repository with caching services.
func NewBunCategoryRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunCategoryRepository {
	base := NewCategoryRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = cachePrefix(categoryNamespace)
	}
	return &BunCategoryRepository{repo: base, cacheService: svc, cachePrefix: prefix}
}

func (r *BunCategoryRepository) Create(ctx context.Context, category *catalog.Category) (*catalog.Category, error) {
	record, err := r.repo.Create(ctx, category)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "category", id.String())
	}
	return record, nil
}

func (r *BunCategoryRepository) GetBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	record, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, "category", slug)
	}
	return record, nil
}

func (r *BunCategoryRepository) List(ctx context.Context) ([]*catalog.Category, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.slug ASC")
		}),
	)
	return records, err
}

func (r *BunCategoryRepository) Update(ctx context.Context, category *catalog.Category) (*catalog.Category, error) {
	record, err := r.repo.Update(ctx, category)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &catalog.Category{ID: id})
}

func (r *BunCategoryRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

// BunAnnotationRepository implements AnnotationRepository with optional caching.
type BunAnnotationRepository struct {
	repo         repository.Repository[*catalog.Annotation]
	cacheService cache.CacheService
	cachePrefix  string
}

const annotationNamespace = "annotation"

// NewBunAnnotationRepository creates an annotation repository without caching.
func NewBunAnnotationRepository(db *bun.DB) *BunAnnotationRepository {
	return NewBunAnnotationRepositoryWithCache(db, nil, nil)
}

// NewBunAnnotationRepositoryWithCache creates an annotation repository with caching services.
func NewBunAnnotationRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunAnnotationRepository {
	base := NewAnnotationRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = cachePrefix(annotationNamespace)
	}
	return &BunAnnotationRepository{repo: base, cacheService: svc, cachePrefix: prefix}
}

func (r *BunAnnotationRepository) Create(ctx context.Context, annotation *catalog.Annotation) (*catalog.Annotation, error) {
	record, err := r.repo.Create(ctx, annotation)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunAnnotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Annotation, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "annotation", id.String())
	}
	return record, nil
}

// GetByCategoryAndSlug resolves an annotation inside one category. Annotation
// slugs are only unique per category, so the composite lookup is the primary
// read path for merge and lint.
func (r *BunAnnotationRepository) GetByCategoryAndSlug(ctx context.Context, categoryID uuid.UUID, slug string) (*catalog.Annotation, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.category_id = ?", categoryID).
				Where("?TableAlias.slug = ?", slug)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &catalog.NotFoundError{Resource: "annotation", Key: fmt.Sprintf("%s:%s", categoryID, slug)}
	}
	return records[0], nil
}

func (r *BunAnnotationRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*catalog.Annotation, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.category_id = ?", categoryID).
				OrderExpr("?TableAlias.slug ASC")
		}),
	)
	return records, err
}

func (r *BunAnnotationRepository) List(ctx context.Context) ([]*catalog.Annotation, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.slug ASC")
		}),
	)
	return records, err
}

func (r *BunAnnotationRepository) Update(ctx context.Context, annotation *catalog.Annotation) (*catalog.Annotation, error) {
	record, err := r.repo.Update(ctx, annotation)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunAnnotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &catalog.Annotation{ID: id})
}

func (r *BunAnnotationRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}

	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &catalog.NotFoundError{Resource: resource, Key: key}
	}

	return fmt.Errorf("%s repository error: %w", resource, err)
}

func cachePrefix(namespace string) string {
	if namespace == "" {
		return ""
	}
	return namespace + cache.KeySeparator
}
