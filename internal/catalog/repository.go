package catalog

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-annocat/catalog"
)

func NewCategoryRepository(db *bun.DB) repository.Repository[*catalog.Category] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*catalog.Category]{
		NewRecord: func() *catalog.Category { return &catalog.Category{} },
		GetID: func(c *catalog.Category) uuid.UUID {
			return c.ID
		},
		SetID: func(c *catalog.Category, id uuid.UUID) {
			c.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(c *catalog.Category) string {
			return c.Slug
		},
	})
}

func NewAnnotationRepository(db *bun.DB) repository.Repository[*catalog.Annotation] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*catalog.Annotation]{
		NewRecord: func() *catalog.Annotation { return &catalog.Annotation{} },
		GetID: func(a *catalog.Annotation) uuid.UUID {
			return a.ID
		},
		SetID: func(a *catalog.Annotation, id uuid.UUID) {
			a.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(a *catalog.Annotation) string {
			return a.Slug
		},
	})
}
