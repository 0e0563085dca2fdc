package markdown

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-annocat/catalog"
	"github.com/goliatone/go-annocat/pkg/interfaces"
)

type stubCatalog struct {
	records map[string]*interfaces.AnnotationRecord
	upserts []interfaces.EntryUpsertRequest
	deletes []interfaces.EntryDeleteRequest
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{records: map[string]*interfaces.AnnotationRecord{}}
}

func (s *stubCatalog) key(category, name string) string {
	return strings.ToLower(catalog.StripSigil(category)) + "/" + strings.ToLower(catalog.StripSigil(name))
}

func (s *stubCatalog) UpsertEntry(_ context.Context, req interfaces.EntryUpsertRequest) (*interfaces.AnnotationRecord, error) {
	s.upserts = append(s.upserts, req)
	key := s.key(req.Category, req.Name)
	record, ok := s.records[key]
	if !ok {
		record = &interfaces.AnnotationRecord{ID: uuid.New()}
		s.records[key] = record
	}
	record.Name = req.Name
	record.Category = req.Category
	record.Description = req.Description
	record.Example = req.Example
	record.ExampleLanguage = req.ExampleLanguage
	record.Sources = req.Sources
	record.Conflicts = req.Conflicts
	return record, nil
}

func (s *stubCatalog) GetByName(_ context.Context, category, name string) (*interfaces.AnnotationRecord, error) {
	record, ok := s.records[s.key(category, name)]
	if !ok {
		return nil, &catalog.NotFoundError{Resource: "annotation", Key: name}
	}
	return record, nil
}

func (s *stubCatalog) ListByCategory(_ context.Context, category string) ([]*interfaces.AnnotationRecord, error) {
	var out []*interfaces.AnnotationRecord
	for _, record := range s.records {
		if strings.EqualFold(record.Category, category) {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *stubCatalog) List(_ context.Context) ([]*interfaces.AnnotationRecord, error) {
	out := make([]*interfaces.AnnotationRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	return out, nil
}

func (s *stubCatalog) Categories(context.Context) ([]*interfaces.CategoryRecord, error) {
	return nil, nil
}

func (s *stubCatalog) Delete(_ context.Context, req interfaces.EntryDeleteRequest) error {
	s.deletes = append(s.deletes, req)
	for key, record := range s.records {
		if record.ID == req.ID {
			delete(s.records, key)
			return nil
		}
	}
	return errors.New("stub catalog: record not found")
}

func (s *stubCatalog) Stats(context.Context) (*interfaces.CatalogStats, error) {
	return &interfaces.CatalogStats{Annotations: len(s.records)}, nil
}

func extractionFixture(path, category string, drafts ...interfaces.EntryDraft) *interfaces.Extraction {
	note := &interfaces.Note{FilePath: path, Checksum: []byte{0x01, 0x02}}
	for i := range drafts {
		drafts[i].SourcePath = path
		if drafts[i].Category == "" {
			drafts[i].Category = category
		}
	}
	return &interfaces.Extraction{Note: note, Entries: drafts}
}

func TestImporterCreatesEntries(t *testing.T) {
	cat := newStubCatalog()
	importer := NewImporter(ImporterConfig{Catalog: cat})

	extraction := extractionFixture("di.md", "Dependency Injection",
		interfaces.EntryDraft{Name: "@Autowired", Description: "Injects dependencies.", Example: "@Autowired", ExampleLanguage: "java", Line: 3},
	)

	result, err := importer.ImportExtractions(context.Background(), []*interfaces.Extraction{extraction}, interfaces.ImportOptions{})
	if err != nil {
		t.Fatalf("ImportExtractions returned error: %v", err)
	}

	if len(result.Created) != 1 {
		t.Fatalf("expected 1 created, got %+v", result)
	}
	if result.Created[0] != "dependency-injection/autowired" {
		t.Fatalf("unexpected created key %q", result.Created[0])
	}
	if len(cat.upserts) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(cat.upserts))
	}
}

func TestImporterMergesDuplicatesAcrossNotes(t *testing.T) {
	cat := newStubCatalog()
	importer := NewImporter(ImporterConfig{Catalog: cat})

	short := extractionFixture("a.md", "Dependency Injection",
		interfaces.EntryDraft{Name: "@Autowired", Description: "Injects.", Line: 2},
	)
	long := extractionFixture("b.md", "Dependency Injection",
		interfaces.EntryDraft{Name: "@Autowired", Description: "Injects dependencies automatically by type.", Example: "@Autowired", ExampleLanguage: "java", Line: 5},
	)

	result, err := importer.ImportExtractions(context.Background(), []*interfaces.Extraction{short, long}, interfaces.ImportOptions{})
	if err != nil {
		t.Fatalf("ImportExtractions returned error: %v", err)
	}

	if len(result.Created) != 1 {
		t.Fatalf("expected single merged record, got %+v", result)
	}

	req := cat.upserts[0]
	if req.Description != "Injects dependencies automatically by type." {
		t.Fatalf("expected longest description to win, got %q", req.Description)
	}
	if len(req.Conflicts) != 1 || req.Conflicts[0] != "Injects." {
		t.Fatalf("expected losing description recorded as conflict, got %v", req.Conflicts)
	}
	if len(req.Sources) != 2 {
		t.Fatalf("expected both sources recorded, got %v", req.Sources)
	}
	if req.Sources[0].Path != "a.md" || req.Sources[1].Path != "b.md" {
		t.Fatalf("expected sources ordered by path, got %v", req.Sources)
	}
}

func TestImporterMergePolicyFirstWins(t *testing.T) {
	cat := newStubCatalog()
	importer := NewImporter(ImporterConfig{
		Catalog: cat,
		Merge:   &MergePolicy{PreferLongestDescription: false, KeepConflicts: true},
	})

	first := extractionFixture("a.md", "Dependency Injection",
		interfaces.EntryDraft{Name: "@Autowired", Description: "Injects.", Line: 2},
	)
	longer := extractionFixture("b.md", "Dependency Injection",
		interfaces.EntryDraft{Name: "@Autowired", Description: "Injects dependencies automatically by type.", Line: 5},
	)

	_, err := importer.ImportExtractions(context.Background(), []*interfaces.Extraction{first, longer}, interfaces.ImportOptions{})
	if err != nil {
		t.Fatalf("ImportExtractions returned error: %v", err)
	}

	req := cat.upserts[0]
	if req.Description != "Injects." {
		t.Fatalf("expected first description in source order to win, got %q", req.Description)
	}
	if len(req.Conflicts) != 1 || req.Conflicts[0] != "Injects dependencies automatically by type." {
		t.Fatalf("expected later description recorded as conflict, got %v", req.Conflicts)
	}
}

func TestImporterMergePolicyDropsConflicts(t *testing.T) {
	cat := newStubCatalog()
	importer := NewImporter(ImporterConfig{
		Catalog: cat,
		Merge:   &MergePolicy{PreferLongestDescription: true, KeepConflicts: false},
	})

	short := extractionFixture("a.md", "Dependency Injection",
		interfaces.EntryDraft{Name: "@Autowired", Description: "Injects.", Line: 2},
	)
	long := extractionFixture("b.md", "Dependency Injection",
		interfaces.EntryDraft{Name: "@Autowired", Description: "Injects dependencies automatically by type.", Line: 5},
	)

	_, err := importer.ImportExtractions(context.Background(), []*interfaces.Extraction{short, long}, interfaces.ImportOptions{})
	if err != nil {
		t.Fatalf("ImportExtractions returned error: %v", err)
	}

	req := cat.upserts[0]
	if req.Description != "Injects dependencies automatically by type." {
		t.Fatalf("expected longest description to win, got %q", req.Description)
	}
	if len(req.Conflicts) != 0 {
		t.Fatalf("expected no conflicts recorded, got %v", req.Conflicts)
	}
}

func TestImporterDryRunSkips(t *testing.T) {
	cat := newStubCatalog()
	importer := NewImporter(ImporterConfig{Catalog: cat})

	extraction := extractionFixture("di.md", "Dependency Injection",
		interfaces.EntryDraft{Name: "@Autowired", Description: "Injects."},
	)

	result, err := importer.ImportExtractions(context.Background(), []*interfaces.Extraction{extraction}, interfaces.ImportOptions{DryRun: true})
	if err != nil {
		t.Fatalf("ImportExtractions returned error: %v", err)
	}
	if len(result.Skipped) != 1 || len(result.Created) != 0 {
		t.Fatalf("expected dry run to skip, got %+v", result)
	}
	if len(cat.upserts) != 0 {
		t.Fatalf("expected no upserts during dry run, got %d", len(cat.upserts))
	}
}

func TestImporterDefaultCategoryApplied(t *testing.T) {
	cat := newStubCatalog()
	importer := NewImporter(ImporterConfig{Catalog: cat})

	extraction := extractionFixture("misc.md", "",
		interfaces.EntryDraft{Name: "@Deprecated", Description: "Marks obsolete elements."},
	)

	result, err := importer.ImportExtractions(context.Background(), []*interfaces.Extraction{extraction}, interfaces.ImportOptions{DefaultCategory: "General"})
	if err != nil {
		t.Fatalf("ImportExtractions returned error: %v", err)
	}
	if len(result.Created) != 1 || result.Created[0] != "general/deprecated" {
		t.Fatalf("expected default category, got %+v", result)
	}
}

func TestImporterMissingCategoryFails(t *testing.T) {
	importer := NewImporter(ImporterConfig{Catalog: newStubCatalog()})

	extraction := extractionFixture("misc.md", "",
		interfaces.EntryDraft{Name: "@Deprecated"},
	)

	_, err := importer.ImportExtractions(context.Background(), []*interfaces.Extraction{extraction}, interfaces.ImportOptions{})
	if !errors.Is(err, ErrCategoryMissing) {
		t.Fatalf("expected ErrCategoryMissing, got %v", err)
	}
}

func TestSyncDeletesOrphanedRecords(t *testing.T) {
	cat := newStubCatalog()
	importer := NewImporter(ImporterConfig{Catalog: cat})

	// Seed a record that no note mentions anymore.
	if _, err := cat.UpsertEntry(context.Background(), interfaces.EntryUpsertRequest{
		Name: "@Legacy", Category: "Dependency Injection",
	}); err != nil {
		t.Fatalf("seed upsert: %v", err)
	}
	cat.upserts = nil

	extraction := extractionFixture("di.md", "Dependency Injection",
		interfaces.EntryDraft{Name: "@Autowired", Description: "Injects."},
	)

	result, err := importer.SyncExtractions(context.Background(), []*interfaces.Extraction{extraction}, interfaces.SyncOptions{
		DeleteOrphaned: true,
		UpdateExisting: true,
	})
	if err != nil {
		t.Fatalf("SyncExtractions returned error: %v", err)
	}

	if result.Created != 1 {
		t.Fatalf("expected 1 created, got %+v", result)
	}
	if result.Deleted != 1 {
		t.Fatalf("expected 1 deleted, got %+v", result)
	}
	if len(cat.deletes) != 1 {
		t.Fatalf("expected delete call, got %d", len(cat.deletes))
	}
}

func TestSyncSkipsUpdatesWhenDisabled(t *testing.T) {
	cat := newStubCatalog()
	importer := NewImporter(ImporterConfig{Catalog: cat})

	if _, err := cat.UpsertEntry(context.Background(), interfaces.EntryUpsertRequest{
		Name: "@Autowired", Category: "Dependency Injection", Description: "Old text.",
	}); err != nil {
		t.Fatalf("seed upsert: %v", err)
	}
	cat.upserts = nil

	extraction := extractionFixture("di.md", "Dependency Injection",
		interfaces.EntryDraft{Name: "@Autowired", Description: "New and longer description."},
	)

	result, err := importer.SyncExtractions(context.Background(), []*interfaces.Extraction{extraction}, interfaces.SyncOptions{})
	if err != nil {
		t.Fatalf("SyncExtractions returned error: %v", err)
	}
	if result.Skipped != 1 || result.Updated != 0 {
		t.Fatalf("expected update to be skipped, got %+v", result)
	}
	if len(cat.upserts) != 0 {
		t.Fatalf("expected no upserts, got %d", len(cat.upserts))
	}
}

func TestImporterRequiresCatalog(t *testing.T) {
	importer := NewImporter(ImporterConfig{})
	_, err := importer.ImportExtractions(context.Background(), nil, interfaces.ImportOptions{})
	if !errors.Is(err, ErrCatalogServiceRequired) {
		t.Fatalf("expected ErrCatalogServiceRequired, got %v", err)
	}
}
