package generator

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	internalcatalog "github.com/goliatone/go-annocat/internal/catalog"
	"github.com/goliatone/go-annocat/pkg/interfaces"
	"github.com/goliatone/go-annocat/pkg/storage"
)

func seededCatalog(t *testing.T, seeds ...interfaces.EntryUpsertRequest) interfaces.CatalogService {
	t.Helper()
	svc := internalcatalog.NewService(
		internalcatalog.NewMemoryCategoryRepository(),
		internalcatalog.NewMemoryAnnotationRepository(),
	)
	for _, seed := range seeds {
		if _, err := svc.UpsertEntry(context.Background(), seed); err != nil {
			t.Fatalf("seed upsert %s: %v", seed.Name, err)
		}
	}
	return svc
}

func fixtureSeeds() []interfaces.EntryUpsertRequest {
	seen := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)
	return []interfaces.EntryUpsertRequest{
		{
			Name:            "@Autowired",
			Category:        "Dependency Injection",
			Description:     "Injects a collaborator resolved from the container.",
			Example:         "@Autowired\nprivate UserService users;",
			ExampleLanguage: "java",
			Sources: []interfaces.SourceRef{
				{Path: "docs/di.md", Checksum: "aa11", Line: 12, Complete: true, SeenAt: seen},
			},
		},
		{
			Name:        "@Qualifier",
			Category:    "Dependency Injection",
			Description: "Narrows injection by bean name.",
			Sources: []interfaces.SourceRef{
				{Path: "docs/di.md", Checksum: "aa11", Line: 40, SeenAt: seen},
			},
		},
		{
			Name:            "@GetMapping",
			Category:        "Web MVC",
			Description:     "Maps HTTP GET requests onto a handler method.",
			Example:         "@GetMapping(\"/users\")",
			ExampleLanguage: "java",
			Sources: []interfaces.SourceRef{
				{Path: "docs/web.md", Checksum: "bb22", Line: 7, Complete: true, SeenAt: seen},
			},
		},
	}
}

func testService(t *testing.T, cfg Config, cat interfaces.CatalogService, provider interfaces.StorageProvider) *service {
	t.Helper()
	svc := NewService(cfg, Dependencies{
		Catalog:  cat,
		Renderer: NewDefaultRenderer(),
		Storage:  provider,
	}).(*service)
	svc.now = func() time.Time { return time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestBuild_RendersIndexCategoryAndAnnotationPages(t *testing.T) {
	provider := newRecordingStorage()
	svc := testService(t, Config{OutputDir: "dist", BaseURL: "https://annotations.example.com"}, seededCatalog(t, fixtureSeeds()...), provider)

	result, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// 1 index + 2 category pages + 3 annotation pages.
	if result.PagesBuilt != 6 {
		t.Fatalf("expected 6 pages built, got %d", result.PagesBuilt)
	}
	if len(result.Rendered) != 6 {
		t.Fatalf("expected 6 rendered pages, got %d", len(result.Rendered))
	}
	for _, page := range result.Rendered {
		if page.Output == "" || page.Checksum == "" {
			t.Fatalf("expected output and checksum for %s", page.Route)
		}
	}

	wantOutputs := []string{
		"dist/index.html",
		"dist/categories/dependency-injection/index.html",
		"dist/categories/web-mvc/index.html",
		"dist/annotations/dependency-injection/autowired/index.html",
		"dist/annotations/dependency-injection/qualifier/index.html",
		"dist/annotations/web-mvc/getmapping/index.html",
	}
	for _, want := range wantOutputs {
		if _, ok := provider.files[want]; !ok {
			t.Fatalf("expected output %s, have %v", want, provider.paths())
		}
	}

	home := string(provider.files["dist/index.html"])
	if !strings.Contains(home, "@Autowired") {
		t.Fatalf("expected index to list @Autowired:\n%s", home)
	}
	annotation := string(provider.files["dist/annotations/dependency-injection/autowired/index.html"])
	if !strings.Contains(annotation, `class="language-java"`) {
		t.Fatalf("expected fenced example with language class:\n%s", annotation)
	}
}

func TestBuild_WritesValidatedExportAndSitemap(t *testing.T) {
	provider := newRecordingStorage()
	cfg := Config{
		OutputDir:       "dist",
		BaseURL:         "https://annotations.example.com",
		GenerateSitemap: true,
		GenerateJSON:    true,
	}
	svc := testService(t, cfg, seededCatalog(t, fixtureSeeds()...), provider)

	result, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !result.ExportWritten {
		t.Fatal("expected export to be written")
	}

	raw, ok := provider.files["dist/catalog.json"]
	if !ok {
		t.Fatalf("expected catalog.json, have %v", provider.paths())
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	categories, ok := doc["categories"].([]any)
	if !ok || len(categories) != 2 {
		t.Fatalf("expected 2 export categories, got %v", doc["categories"])
	}

	sitemap, ok := provider.files["dist/sitemap.xml"]
	if !ok {
		t.Fatal("expected sitemap.xml")
	}
	if !strings.Contains(string(sitemap), "https://annotations.example.com/annotations/web-mvc/getmapping") {
		t.Fatalf("expected annotation URL in sitemap:\n%s", sitemap)
	}
}

func TestBuild_DryRunWritesNothing(t *testing.T) {
	provider := newRecordingStorage()
	svc := testService(t, Config{OutputDir: "dist", GenerateJSON: true}, seededCatalog(t, fixtureSeeds()...), provider)

	result, err := svc.Build(context.Background(), BuildOptions{DryRun: true})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.PagesBuilt != 6 {
		t.Fatalf("expected 6 pages built, got %d", result.PagesBuilt)
	}
	if len(provider.files) != 0 {
		t.Fatalf("expected no writes on dry run, got %v", provider.paths())
	}
}

func TestBuild_IncrementalSkipsUnchangedPages(t *testing.T) {
	provider := newRecordingStorage()
	cfg := Config{OutputDir: "dist", Incremental: true}
	cat := seededCatalog(t, fixtureSeeds()...)
	svc := testService(t, cfg, cat, provider)

	first, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	if first.PagesSkipped != 0 {
		t.Fatalf("expected no skips on first build, got %d", first.PagesSkipped)
	}
	if _, ok := provider.files["dist/.generator-manifest.json"]; !ok {
		t.Fatal("expected manifest to be persisted")
	}

	second, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if second.PagesBuilt != 0 {
		t.Fatalf("expected all pages skipped, got %d built", second.PagesBuilt)
	}
	if second.PagesSkipped != 6 {
		t.Fatalf("expected 6 skipped pages, got %d", second.PagesSkipped)
	}
}

func TestBuild_CategoryFilterSkipsIndex(t *testing.T) {
	provider := newRecordingStorage()
	svc := testService(t, Config{OutputDir: "dist"}, seededCatalog(t, fixtureSeeds()...), provider)

	result, err := svc.Build(context.Background(), BuildOptions{Categories: []string{"web-mvc"}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// Category page plus its single annotation.
	if result.PagesBuilt != 2 {
		t.Fatalf("expected 2 pages built, got %d", result.PagesBuilt)
	}
	if _, ok := provider.files["dist/index.html"]; ok {
		t.Fatal("expected index page to be skipped on filtered builds")
	}
	if _, ok := provider.files["dist/categories/web-mvc/index.html"]; !ok {
		t.Fatalf("expected web-mvc category page, have %v", provider.paths())
	}
}

func TestBuild_RequiresRenderer(t *testing.T) {
	svc := NewService(Config{OutputDir: "dist"}, Dependencies{
		Catalog: seededCatalog(t, fixtureSeeds()...),
	})
	if _, err := svc.Build(context.Background(), BuildOptions{}); err != errRendererRequired {
		t.Fatalf("expected errRendererRequired, got %v", err)
	}
}

func TestDisabledService(t *testing.T) {
	svc := NewDisabledService()
	if _, err := svc.Build(context.Background(), BuildOptions{}); err != ErrServiceDisabled {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
	if err := svc.Clean(context.Background()); err != ErrServiceDisabled {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
}

func TestBuildOutputPath(t *testing.T) {
	cases := []struct {
		route string
		want  string
	}{
		{"", "index.html"},
		{"/", "index.html"},
		{"/categories/web-mvc", "categories/web-mvc/index.html"},
		{"categories/web-mvc/", "categories/web-mvc/index.html"},
		{"/annotations/a/b", "annotations/a/b/index.html"},
		{"  /categories/x  ", "categories/x/index.html"},
	}
	for _, tc := range cases {
		if got := buildOutputPath(tc.route); got != tc.want {
			t.Fatalf("buildOutputPath(%q) = %q, want %q", tc.route, got, tc.want)
		}
	}
}

// recordingStorage implements the storage provider contract in memory so tests
// can inspect generator writes.
type recordingStorage struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]struct{}
}

var _ interfaces.StorageProvider = (*recordingStorage)(nil)

func newRecordingStorage() *recordingStorage {
	return &recordingStorage{
		files: map[string][]byte{},
		dirs:  map[string]struct{}{},
	}
}

func (s *recordingStorage) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	return out
}

func (s *recordingStorage) Query(_ context.Context, query string, args ...any) (storage.Rows, error) {
	if query != storageOpRead || len(args) == 0 {
		return nil, nil
	}
	target, _ := args[0].(string)
	s.mu.Lock()
	data, ok := s.files[target]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return &memoryRows{data: data}, nil
}

func (s *recordingStorage) Exec(_ context.Context, query string, args ...any) (storage.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch query {
	case storageOpEnsureDir:
		if len(args) > 0 {
			if dir, ok := args[0].(string); ok {
				s.dirs[dir] = struct{}{}
			}
		}
	case storageOpWrite:
		target, _ := args[0].(string)
		reader, _ := args[1].(io.Reader)
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, err
		}
		s.files[target] = data
	case storageOpRemove:
		target, _ := args[0].(string)
		for p := range s.files {
			if p == target || strings.HasPrefix(p, target+"/") {
				delete(s.files, p)
			}
		}
	}
	return memoryResult{}, nil
}

func (s *recordingStorage) Transaction(ctx context.Context, fn func(tx storage.Transaction) error) error {
	return nil
}

type memoryRows struct {
	data []byte
	read bool
}

func (r *memoryRows) Next() bool {
	if r.read {
		return false
	}
	r.read = true
	return true
}

func (r *memoryRows) Scan(dest ...any) error {
	if len(dest) == 0 {
		return io.ErrUnexpectedEOF
	}
	if out, ok := dest[0].(*[]byte); ok {
		*out = append((*out)[:0], r.data...)
		return nil
	}
	return io.ErrUnexpectedEOF
}

func (r *memoryRows) Close() error { return nil }

type memoryResult struct{}

func (memoryResult) RowsAffected() (int64, error) { return 0, nil }
func (memoryResult) LastInsertId() (int64, error) { return 0, nil }
