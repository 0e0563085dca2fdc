package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-annocat/pkg/interfaces"
)

// Config controls how the note service discovers and parses files.
type Config struct {
	BasePath        string
	Pattern         string
	Recursive       bool
	DefaultCategory string
	Parser          interfaces.ParseOptions
	// Merge overrides the importer's duplicate resolution policy.
	Merge *MergePolicy
}

// Service implements interfaces.NoteService for filesystem-backed notes.
type Service struct {
	cfg       Config
	parser    interfaces.MarkdownParser
	loader    *Loader
	extractor *Extractor
	importer  *Importer
}

// NewService constructs a note service using an underlying loader. When
// parser is nil, a Goldmark parser with the provided default options is
// created. The catalog may be nil for read-only workflows; Import and Sync
// then return ErrCatalogServiceRequired.
func NewService(cfg Config, parser interfaces.MarkdownParser, cat interfaces.CatalogService, logger interfaces.Logger) (*Service, error) {
	filesystem, err := prepareFilesystem(cfg.BasePath)
	if err != nil {
		return nil, err
	}

	if parser == nil {
		parser = NewGoldmarkParser(cfg.Parser)
	}

	loader := NewLoader(filesystem, LoaderConfig{
		BasePath:  cfg.BasePath,
		Pattern:   cfg.Pattern,
		Recursive: cfg.Recursive,
	})

	return &Service{
		cfg:       cfg,
		parser:    parser,
		loader:    loader,
		extractor: NewExtractor(),
		importer:  NewImporter(ImporterConfig{Catalog: cat, Logger: logger, Merge: cfg.Merge}),
	}, nil
}

// NewServiceWithFS is the fs.FS variant of NewService, used by tests and
// callers that already hold a filesystem handle.
func NewServiceWithFS(filesystem fs.FS, cfg Config, parser interfaces.MarkdownParser, cat interfaces.CatalogService, logger interfaces.Logger) *Service {
	if parser == nil {
		parser = NewGoldmarkParser(cfg.Parser)
	}
	return &Service{
		cfg:    cfg,
		parser: parser,
		loader: NewLoader(filesystem, LoaderConfig{
			BasePath:  cfg.BasePath,
			Pattern:   cfg.Pattern,
			Recursive: cfg.Recursive,
		}),
		extractor: NewExtractor(),
		importer:  NewImporter(ImporterConfig{Catalog: cat, Logger: logger, Merge: cfg.Merge}),
	}
}

// Load reads a single note relative to the configured base path.
func (s *Service) Load(ctx context.Context, path string, opts interfaces.LoadOptions) (*interfaces.Note, error) {
	result, err := s.loader.LoadFile(ctx, s.normalisePath(path), toLoaderParams(opts))
	if err != nil {
		return nil, err
	}
	if err := s.renderNote(ctx, result.Note, opts.Parser); err != nil {
		return nil, err
	}
	return result.Note, nil
}

// LoadDirectory reads every note within the supplied directory.
func (s *Service) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Note, error) {
	results, err := s.loader.LoadDirectory(ctx, s.normalisePath(dir), toLoaderParams(opts))
	if err != nil {
		return nil, err
	}

	notes := make([]*interfaces.Note, 0, len(results))
	for _, result := range results {
		if err := s.renderNote(ctx, result.Note, opts.Parser); err != nil {
			return nil, err
		}
		notes = append(notes, result.Note)
	}
	return notes, nil
}

// Render parses Markdown bytes into HTML using the configured parser.
func (s *Service) Render(ctx context.Context, markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return s.parser.ParseWithOptions(markdown, mergeParseOptions(s.cfg.Parser, opts))
}

// Extract walks a loaded note and returns its annotation entries, index
// references, and fence inventory.
func (s *Service) Extract(ctx context.Context, note *interfaces.Note) (*interfaces.Extraction, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return s.extractor.Extract(note)
}

// Import extracts a single note and folds its entries into the catalog.
func (s *Service) Import(ctx context.Context, note *interfaces.Note, opts interfaces.ImportOptions) (*interfaces.ImportResult, error) {
	extraction, err := s.Extract(ctx, note)
	if err != nil {
		return nil, err
	}
	return s.importer.ImportExtractions(ctx, []*interfaces.Extraction{extraction}, s.withDefaultCategory(opts))
}

// ImportDirectory loads every note under dir, merges the extracted entries
// across files, and imports the result.
func (s *Service) ImportDirectory(ctx context.Context, dir string, opts interfaces.ImportOptions) (*interfaces.ImportResult, error) {
	extractions, err := s.extractDirectory(ctx, dir)
	if err != nil {
		return nil, err
	}
	return s.importer.ImportExtractions(ctx, extractions, s.withDefaultCategory(opts))
}

// Sync reconciles the catalog with the notes under dir: new entries are
// created, changed entries updated when requested, and orphaned records
// removed when requested.
func (s *Service) Sync(ctx context.Context, dir string, opts interfaces.SyncOptions) (*interfaces.SyncResult, error) {
	extractions, err := s.extractDirectory(ctx, dir)
	if err != nil {
		return nil, err
	}
	opts.ImportOptions = s.withDefaultCategory(opts.ImportOptions)
	return s.importer.SyncExtractions(ctx, extractions, opts)
}

func (s *Service) extractDirectory(ctx context.Context, dir string) ([]*interfaces.Extraction, error) {
	results, err := s.loader.LoadDirectory(ctx, s.normalisePath(dir), LoadParams{})
	if err != nil {
		return nil, err
	}

	extractions := make([]*interfaces.Extraction, 0, len(results))
	for _, result := range results {
		extraction, err := s.extractor.Extract(result.Note)
		if err != nil {
			return nil, fmt.Errorf("markdown extract %s: %w", result.Note.FilePath, err)
		}
		extractions = append(extractions, extraction)
	}
	return extractions, nil
}

func (s *Service) withDefaultCategory(opts interfaces.ImportOptions) interfaces.ImportOptions {
	if strings.TrimSpace(opts.DefaultCategory) == "" {
		opts.DefaultCategory = s.cfg.DefaultCategory
	}
	return opts
}

func (s *Service) renderNote(ctx context.Context, note *interfaces.Note, overrides interfaces.ParseOptions) error {
	if note == nil {
		return nil
	}
	html, err := s.Render(ctx, note.Body, overrides)
	if err != nil {
		return fmt.Errorf("markdown render note %s: %w", note.FilePath, err)
	}
	note.BodyHTML = html
	return nil
}

func (s *Service) normalisePath(path string) string {
	if strings.TrimSpace(path) == "" {
		return "."
	}
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) && strings.TrimSpace(s.cfg.BasePath) != "" {
		if rel, err := filepath.Rel(s.cfg.BasePath, clean); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(clean)
}

func mergeParseOptions(base, override interfaces.ParseOptions) interfaces.ParseOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	if override.Sanitize {
		result.Sanitize = true
	}
	if override.HardWraps {
		result.HardWraps = true
	}
	if override.SafeMode {
		result.SafeMode = true
	}
	return result
}

func toLoaderParams(opts interfaces.LoadOptions) LoadParams {
	return LoadParams{
		Pattern:   opts.Pattern,
		Recursive: opts.Recursive,
	}
}

func prepareFilesystem(basePath string) (fs.FS, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = "."
	}
	if _, err := os.Stat(basePath); err != nil {
		return nil, fmt.Errorf("markdown service: stat base path %s: %w", basePath, err)
	}
	return os.DirFS(basePath), nil
}

var _ interfaces.NoteService = (*Service)(nil)
