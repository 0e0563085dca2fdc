package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-annocat/catalog"
	"github.com/goliatone/go-annocat/pkg/interfaces"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestService() interfaces.CatalogService {
	return NewService(
		NewMemoryCategoryRepository(),
		NewMemoryAnnotationRepository(),
		WithClock(fixedClock),
	)
}

func TestUpsertEntryCreatesCategoryAndRecord(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	record, err := svc.UpsertEntry(ctx, interfaces.EntryUpsertRequest{
		Name:            "@Autowired",
		Category:        "Dependency Injection",
		Description:     "Injects dependencies by type.",
		Example:         "@Autowired\nprivate UserRepository repo;",
		ExampleLanguage: "java",
	})
	if err != nil {
		t.Fatalf("UpsertEntry returned error: %v", err)
	}

	if record.Slug != "autowired" {
		t.Fatalf("expected slug autowired, got %q", record.Slug)
	}
	if record.CategorySlug != "dependency-injection" {
		t.Fatalf("expected category slug dependency-injection, got %q", record.CategorySlug)
	}
	if record.CreatedAt != fixedClock() {
		t.Fatalf("expected clock timestamp, got %v", record.CreatedAt)
	}

	categories, err := svc.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories returned error: %v", err)
	}
	if len(categories) != 1 || categories[0].Count != 1 {
		t.Fatalf("expected one category with one record, got %+v", categories)
	}
}

func TestUpsertEntryIsDeterministic(t *testing.T) {
	svc := newTestService()
	other := newTestService()
	ctx := context.Background()

	req := interfaces.EntryUpsertRequest{Name: "@GetMapping", Category: "Web"}

	first, err := svc.UpsertEntry(ctx, req)
	if err != nil {
		t.Fatalf("UpsertEntry returned error: %v", err)
	}
	second, err := other.UpsertEntry(ctx, req)
	if err != nil {
		t.Fatalf("UpsertEntry returned error: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected deterministic IDs, got %s and %s", first.ID, second.ID)
	}
}

func TestUpsertEntryUpdatesExisting(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.UpsertEntry(ctx, interfaces.EntryUpsertRequest{
		Name: "@Autowired", Category: "Dependency Injection", Description: "Old.",
	})
	if err != nil {
		t.Fatalf("UpsertEntry returned error: %v", err)
	}

	updated, err := svc.UpsertEntry(ctx, interfaces.EntryUpsertRequest{
		Name: "@Autowired", Category: "Dependency Injection", Description: "Newer description.",
	})
	if err != nil {
		t.Fatalf("second UpsertEntry returned error: %v", err)
	}

	if updated.ID != created.ID {
		t.Fatalf("expected stable ID across upserts, got %s then %s", created.ID, updated.ID)
	}
	if updated.Description != "Newer description." {
		t.Fatalf("expected updated description, got %q", updated.Description)
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected single record after upsert, got %d", len(all))
	}
}

func TestUpsertEntryValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.UpsertEntry(ctx, interfaces.EntryUpsertRequest{Category: "Web"}); !errors.Is(err, catalog.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := svc.UpsertEntry(ctx, interfaces.EntryUpsertRequest{Name: "@GetMapping"}); !errors.Is(err, catalog.ErrCategoryRequired) {
		t.Fatalf("expected ErrCategoryRequired, got %v", err)
	}
}

func TestUpsertEntryDryRunDoesNotPersist(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	record, err := svc.UpsertEntry(ctx, interfaces.EntryUpsertRequest{
		Name: "@Autowired", Category: "Dependency Injection", DryRun: true,
	})
	if err != nil {
		t.Fatalf("UpsertEntry returned error: %v", err)
	}
	if record.Slug != "autowired" {
		t.Fatalf("expected preview record, got %+v", record)
	}

	if _, err := svc.GetByName(ctx, "Dependency Injection", "@Autowired"); !catalog.IsNotFound(err) {
		t.Fatalf("expected not found after dry run, got %v", err)
	}
}

func TestGetByNameNormalizesLookups(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.UpsertEntry(ctx, interfaces.EntryUpsertRequest{
		Name: "@GetMapping", Category: "Web MVC",
	}); err != nil {
		t.Fatalf("UpsertEntry returned error: %v", err)
	}

	for _, name := range []string{"@GetMapping", "GetMapping", "getmapping"} {
		record, err := svc.GetByName(ctx, "web-mvc", name)
		if err != nil {
			t.Fatalf("GetByName(%q) returned error: %v", name, err)
		}
		if record.Name != "@GetMapping" {
			t.Fatalf("GetByName(%q) resolved %q", name, record.Name)
		}
	}
}

func TestListOrdersByCategoryThenSlug(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	seeds := []interfaces.EntryUpsertRequest{
		{Name: "@Transactional", Category: "Data Access"},
		{Name: "@Autowired", Category: "Dependency Injection"},
		{Name: "@Entity", Category: "Data Access"},
	}
	for _, seed := range seeds {
		if _, err := svc.UpsertEntry(ctx, seed); err != nil {
			t.Fatalf("seed upsert %s: %v", seed.Name, err)
		}
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	var got []string
	for _, record := range all {
		got = append(got, record.CategorySlug+"/"+record.Slug)
	}
	want := []string{"data-access/entity", "data-access/transactional", "dependency-injection/autowired"}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v want %v", i, got, want)
		}
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	record, err := svc.UpsertEntry(ctx, interfaces.EntryUpsertRequest{
		Name: "@Deprecated", Category: "General",
	})
	if err != nil {
		t.Fatalf("UpsertEntry returned error: %v", err)
	}

	if err := svc.Delete(ctx, interfaces.EntryDeleteRequest{ID: record.ID}); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.GetByName(ctx, "General", "@Deprecated"); !catalog.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	if err := svc.Delete(ctx, interfaces.EntryDeleteRequest{}); !errors.Is(err, catalog.ErrEntryIDRequired) {
		t.Fatalf("expected ErrEntryIDRequired, got %v", err)
	}
}

func TestStatsCountsGaps(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	seeds := []interfaces.EntryUpsertRequest{
		{Name: "@Autowired", Category: "Dependency Injection", Description: "Injects.", Example: "@Autowired", ExampleLanguage: "java"},
		{Name: "@Qualifier", Category: "Dependency Injection", Description: "Selects a bean."},
		{Name: "@Primary", Category: "Dependency Injection", Conflicts: []string{"other text"}},
	}
	for _, seed := range seeds {
		if _, err := svc.UpsertEntry(ctx, seed); err != nil {
			t.Fatalf("seed upsert %s: %v", seed.Name, err)
		}
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}

	if stats.Categories != 1 || stats.Annotations != 3 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if stats.MissingDescriptions != 1 {
		t.Fatalf("expected 1 missing description, got %+v", stats)
	}
	if stats.MissingExamples != 2 {
		t.Fatalf("expected 2 missing examples, got %+v", stats)
	}
	if stats.Conflicted != 1 {
		t.Fatalf("expected 1 conflicted record, got %+v", stats)
	}
}
