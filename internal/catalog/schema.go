package catalog

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-annocat/catalog"
)

// EnsureSchema creates the catalog tables when they do not exist yet. Hosts
// that manage their own database run the embedded SQL migrations instead;
// this path covers database handles the module opened itself.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*catalog.Category)(nil),
		(*catalog.Annotation)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("catalog schema: create table for %T: %w", model, err)
		}
	}

	if _, err := db.NewCreateIndex().
		Model((*catalog.Annotation)(nil)).
		Index("annotations_category_slug_idx").
		Unique().
		Column("category_id", "slug").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("catalog schema: create annotation index: %w", err)
	}
	return nil
}
