package annocat_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	annocat "github.com/goliatone/go-annocat"
	catalogcmd "github.com/goliatone/go-annocat/internal/commands/catalog"
	"github.com/goliatone/go-annocat/internal/generator"
	"github.com/goliatone/go-annocat/internal/lint"
)

const springNote = `# Dependency Injection

Core container annotations.

## @Autowired

Marks a constructor, field, or setter for automatic dependency injection.

` + "```java" + `
@Autowired
private UserRepository repository;
` + "```" + `

## @Qualifier

Selects a specific candidate bean when multiple match.

# Web MVC

## @GetMapping

Maps HTTP GET requests onto a handler method.

` + "```java" + `
@GetMapping("/users")
public List<User> list() {}
` + "```" + `
`

func writeNotes(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "spring.md"), []byte(springNote), 0o644); err != nil {
		t.Fatalf("write note fixture: %v", err)
	}
	return dir
}

func moduleConfig(t *testing.T) annocat.Config {
	t.Helper()
	cfg := annocat.DefaultConfig()
	cfg.Notes.ContentDir = writeNotes(t)
	cfg.Features.Lint = true
	cfg.Features.Generator = true
	cfg.Generator.Enabled = true
	cfg.Generator.OutputDir = filepath.Join(t.TempDir(), "dist")
	cfg.Generator.BaseURL = "https://docs.example.com"
	return cfg
}

func TestModuleImportsNotesIntoCatalog(t *testing.T) {
	module, err := annocat.New(moduleConfig(t))
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	defer module.Close()

	ctx := context.Background()
	set, err := module.RegisterCommands(nil)
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}

	err = set.Import.Execute(ctx, catalogcmd.ImportNotesCommand{
		Directory: module.Container().Config.Notes.ContentDir,
	})
	if err != nil {
		t.Fatalf("import command: %v", err)
	}

	record, err := module.Catalog().GetByName(ctx, "Dependency Injection", "@Autowired")
	if err != nil {
		t.Fatalf("lookup imported record: %v", err)
	}
	if record.Example == "" {
		t.Fatal("expected example captured from fenced block")
	}
	if record.ExampleLanguage != "java" {
		t.Fatalf("expected java fence language, got %q", record.ExampleLanguage)
	}

	categories, err := module.Catalog().Categories(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
}

func TestModuleBuildsSiteFromImportedCatalog(t *testing.T) {
	cfg := moduleConfig(t)
	module, err := annocat.New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	defer module.Close()

	ctx := context.Background()
	set, err := module.RegisterCommands(nil)
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if set.Build == nil {
		t.Fatal("expected build handler wired")
	}

	err = set.Import.Execute(ctx, catalogcmd.ImportNotesCommand{
		Directory: cfg.Notes.ContentDir,
	})
	if err != nil {
		t.Fatalf("import command: %v", err)
	}

	if err := set.Build.Execute(ctx, catalogcmd.BuildSiteCommand{}); err != nil {
		t.Fatalf("build command: %v", err)
	}

	index, err := os.ReadFile(filepath.Join(cfg.Generator.OutputDir, "index.html"))
	if err != nil {
		t.Fatalf("read generated index: %v", err)
	}
	if len(index) == 0 {
		t.Fatal("expected rendered index content")
	}

	exportPath := filepath.Join(cfg.Generator.OutputDir, "catalog.json")
	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("read catalog export: %v", err)
	}
	var export struct {
		Stats struct {
			Categories  int `json:"categories"`
			Annotations int `json:"annotations"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("decode catalog export: %v", err)
	}
	if export.Stats.Categories != 2 || export.Stats.Annotations != 3 {
		t.Fatalf("unexpected export stats: %+v", export.Stats)
	}

	annotationPage := filepath.Join(cfg.Generator.OutputDir, "annotations", "web-mvc", "getmapping", "index.html")
	if _, err := os.Stat(annotationPage); err != nil {
		t.Fatalf("expected annotation page at %s: %v", annotationPage, err)
	}
}

func TestModuleLintReportsMissingExample(t *testing.T) {
	cfg := moduleConfig(t)
	module, err := annocat.New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	defer module.Close()

	ctx := context.Background()

	var report *lint.Report
	set, err := module.RegisterCommands(nil, catalogcmd.WithReportSink(func(_ context.Context, r *lint.Report) {
		report = r
	}))
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if set.Lint == nil {
		t.Fatal("expected lint handler wired")
	}

	err = set.Import.Execute(ctx, catalogcmd.ImportNotesCommand{
		Directory: cfg.Notes.ContentDir,
	})
	if err != nil {
		t.Fatalf("import command: %v", err)
	}

	err = set.Lint.Execute(ctx, catalogcmd.LintNotesCommand{
		Directory: cfg.Notes.ContentDir,
		FailOn:    "none",
	})
	if err != nil {
		t.Fatalf("lint command: %v", err)
	}
	if report == nil {
		t.Fatal("expected lint report delivered")
	}
	var found bool
	for _, issue := range report.Issues {
		if issue.Rule == lint.RuleEntryMissingExample {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected missing-example finding for @Qualifier, got %+v", report.Issues)
	}
}

func TestModuleGeneratorDisabledWithoutFeature(t *testing.T) {
	cfg := moduleConfig(t)
	cfg.Features.Generator = false
	cfg.Generator.Enabled = false

	module, err := annocat.New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	defer module.Close()

	_, err = module.Generator().Build(context.Background(), generator.BuildOptions{})
	if err == nil {
		t.Fatal("expected disabled generator to refuse builds")
	}
}
