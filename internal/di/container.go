// Package di wires runtime configuration into the concrete services that make
// up the annotation catalog module: storage, logging, note ingestion, lint,
// and the site generator.
package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"

	internalcatalog "github.com/goliatone/go-annocat/internal/catalog"
	catalogcmd "github.com/goliatone/go-annocat/internal/commands/catalog"
	"github.com/goliatone/go-annocat/internal/generator"
	"github.com/goliatone/go-annocat/internal/lint"
	"github.com/goliatone/go-annocat/internal/logging"
	"github.com/goliatone/go-annocat/internal/logging/console"
	"github.com/goliatone/go-annocat/internal/logging/gologger"
	"github.com/goliatone/go-annocat/internal/markdown"
	"github.com/goliatone/go-annocat/internal/runtimeconfig"
	"github.com/goliatone/go-annocat/internal/watch"
	"github.com/goliatone/go-annocat/pkg/interfaces"
	pkgstorage "github.com/goliatone/go-annocat/pkg/storage"
)

// Container wires module dependencies from a validated configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	categoryRepo   internalcatalog.CategoryRepository
	annotationRepo internalcatalog.AnnotationRepository

	parser    interfaces.MarkdownParser
	renderer  interfaces.TemplateRenderer
	artifacts interfaces.StorageProvider

	catalogSvc   interfaces.CatalogService
	noteSvc      interfaces.NoteService
	lintRunner   *lint.Runner
	generatorSvc generator.Service
	routeManager *urlkit.RouteManager
}

// Option mutates the container before services are finalised.
type Option func(*Container)

// WithLoggerProvider overrides the configured logging backend.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB supplies an externally managed database handle. The container
// will not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache service and key serializer.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithCatalogService overrides the default catalog service binding.
func WithCatalogService(svc interfaces.CatalogService) Option {
	return func(c *Container) {
		c.catalogSvc = svc
	}
}

// WithNoteService overrides the default note service binding.
func WithNoteService(svc interfaces.NoteService) Option {
	return func(c *Container) {
		c.noteSvc = svc
	}
}

// WithMarkdownParser overrides the Goldmark default.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(c *Container) {
		c.parser = parser
	}
}

// WithTemplateRenderer overrides the embedded site templates.
func WithTemplateRenderer(renderer interfaces.TemplateRenderer) Option {
	return func(c *Container) {
		c.renderer = renderer
	}
}

// WithArtifactStorage overrides where generated pages and assets are written.
func WithArtifactStorage(provider interfaces.StorageProvider) Option {
	return func(c *Container) {
		c.artifacts = provider
	}
}

// WithGeneratorService overrides the default generator binding.
func WithGeneratorService(svc generator.Service) Option {
	return func(c *Container) {
		c.generatorSvc = svc
	}
}

// NewContainer validates the configuration and wires all module services.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	if c.ownsDB {
		if err := internalcatalog.EnsureSchema(context.Background(), c.bunDB); err != nil {
			return nil, fmt.Errorf("di: catalog schema: %w", err)
		}
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureRoutes()

	if c.catalogSvc == nil {
		c.catalogSvc = internalcatalog.NewService(
			c.categoryRepo,
			c.annotationRepo,
			internalcatalog.WithLogger(logging.CatalogLogger(c.loggerProvider)),
		)
	}

	if c.noteSvc == nil {
		svc, err := markdown.NewService(markdown.Config{
			BasePath:        cfg.Notes.ContentDir,
			Pattern:         cfg.Notes.Pattern,
			Recursive:       cfg.Notes.Recursive,
			DefaultCategory: cfg.Notes.DefaultCategory,
			Parser: interfaces.ParseOptions{
				Extensions: cfg.Notes.Parser.Extensions,
				Sanitize:   cfg.Notes.Parser.Sanitize,
				HardWraps:  cfg.Notes.Parser.HardWraps,
				SafeMode:   cfg.Notes.Parser.SafeMode,
			},
			Merge: &markdown.MergePolicy{
				PreferLongestDescription: cfg.Catalog.PreferLongestDescription,
				KeepConflicts:            cfg.Catalog.KeepConflicts,
			},
		}, c.parser, c.catalogSvc, logging.MarkdownLogger(c.loggerProvider))
		if err != nil {
			return nil, fmt.Errorf("di: note service: %w", err)
		}
		c.noteSvc = svc
	}

	if c.lintRunner == nil && cfg.Features.Lint {
		c.lintRunner = lint.New(c.catalogSvc, logging.LintLogger(c.loggerProvider), lint.Config{
			DisabledRules: cfg.Lint.DisabledRules,
		})
	}

	c.configureGenerator()

	return c, nil
}

// Close releases resources owned by the container, currently the database
// handle when the container opened it itself.
func (c *Container) Close() error {
	if c.bunDB != nil && c.ownsDB {
		err := c.bunDB.Close()
		c.bunDB = nil
		return err
	}
	return nil
}

// LoggerProvider exposes the wired logging backend.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Catalog exposes the catalog service.
func (c *Container) Catalog() interfaces.CatalogService {
	return c.catalogSvc
}

// Notes exposes the note ingestion service.
func (c *Container) Notes() interfaces.NoteService {
	return c.noteSvc
}

// Lint exposes the lint runner; nil when the lint feature is disabled.
func (c *Container) Lint() *lint.Runner {
	return c.lintRunner
}

// Generator exposes the site generator service.
func (c *Container) Generator() generator.Service {
	return c.generatorSvc
}

// RouteManager exposes the urlkit route table when one is configured.
func (c *Container) RouteManager() *urlkit.RouteManager {
	return c.routeManager
}

// DB exposes the bun handle; nil for the memory driver.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

// CommandServices bundles the services consumed by catalog command handlers.
func (c *Container) CommandServices() catalogcmd.Services {
	return catalogcmd.Services{
		Notes:     c.noteSvc,
		Lint:      c.lintRunner,
		Generator: c.generatorSvc,
	}
}

// FeatureGates derives runtime feature toggles from the configuration.
func (c *Container) FeatureGates() catalogcmd.FeatureGates {
	cfg := c.Config
	return catalogcmd.FeatureGates{
		LintEnabled:      func() bool { return cfg.Features.Lint },
		GeneratorEnabled: func() bool { return cfg.Features.Generator && cfg.Generator.Enabled },
	}
}

// ErrWatchFeatureDisabled is returned by NewWatcher when the watch feature
// has not been enabled in the configuration.
var ErrWatchFeatureDisabled = errors.New("di: watch feature is disabled")

// NewWatcher builds a filesystem watcher over the notes directory that invokes
// the supplied handler with debounced change batches.
func (c *Container) NewWatcher(handler watch.Handler) (*watch.Watcher, error) {
	if !c.Config.Features.Watch || !c.Config.Watch.Enabled {
		return nil, ErrWatchFeatureDisabled
	}
	return watch.New(watch.Config{
		Directory: c.Config.Notes.ContentDir,
		Pattern:   c.Config.Notes.Pattern,
		Debounce:  c.Config.Watch.Debounce,
	}, handler, logging.WatchLogger(c.loggerProvider))
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}

	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return fmt.Errorf("di: logging: %w", err)
		}
		c.loggerProvider = provider
	default:
		minLevel := consoleLevel(logCfg.Level)
		c.loggerProvider = console.NewProvider(console.Options{
			MinLevel: &minLevel,
		})
	}
	return nil
}

func (c *Container) configureStorage() error {
	if c.bunDB != nil {
		return nil
	}

	driver := strings.ToLower(strings.TrimSpace(c.Config.Storage.Driver))
	switch driver {
	case "", "memory":
		return nil
	case "sqlite":
		sqldb, err := sql.Open("sqlite3", c.Config.Storage.DSN)
		if err != nil {
			return fmt.Errorf("di: open sqlite: %w", err)
		}
		c.bunDB = bun.NewDB(sqldb, sqlitedialect.New())
		c.ownsDB = true
	case "postgres":
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(c.Config.Storage.DSN)))
		c.bunDB = bun.NewDB(sqldb, pgdialect.New())
		c.ownsDB = true
	default:
		return fmt.Errorf("%w: %s", runtimeconfig.ErrStorageDriverUnknown, driver)
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if c.bunDB == nil {
		return
	}

	if c.cacheService == nil {
		service, err := repocache.NewCacheService(repocache.DefaultConfig())
		if err == nil {
			c.cacheService = service
		}
	}
	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB != nil {
		c.categoryRepo = internalcatalog.NewBunCategoryRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.annotationRepo = internalcatalog.NewBunAnnotationRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		return
	}
	c.categoryRepo = internalcatalog.NewMemoryCategoryRepository()
	c.annotationRepo = internalcatalog.NewMemoryAnnotationRepository()
}

func (c *Container) configureRoutes() {
	routes := c.Config.Routes
	if routes.RouteConfig == nil {
		return
	}
	c.routeManager = urlkit.NewRouteManager(routes.RouteConfig)
}

func (c *Container) configureGenerator() {
	if c.generatorSvc != nil {
		return
	}
	genCfg := c.Config.Generator
	if !c.Config.Features.Generator || !genCfg.Enabled {
		c.generatorSvc = generator.NewDisabledService()
		return
	}

	if c.renderer == nil {
		c.renderer = generator.NewDefaultRenderer()
	}
	if c.artifacts == nil {
		c.artifacts = pkgstorage.NewFilesystemProvider(".", "")
	}

	c.generatorSvc = generator.NewService(generator.Config{
		OutputDir:       genCfg.OutputDir,
		BaseURL:         genCfg.BaseURL,
		SiteTitle:       genCfg.SiteTitle,
		CleanBuild:      genCfg.CleanBuild,
		Incremental:     genCfg.Incremental,
		GenerateSitemap: genCfg.GenerateSitemap,
		GenerateJSON:    genCfg.GenerateJSON,
		Workers:         genCfg.Workers,
		Theming: generator.ThemingConfig{
			Enabled:    genCfg.Theme.Enabled,
			Path:       genCfg.Theme.Path,
			Variant:    genCfg.Theme.Variant,
			CopyAssets: genCfg.Theme.CopyAssets,
		},
		Routes: generator.RouteOptions{
			Manager:         c.routeManager,
			Group:           c.Config.Routes.Group,
			CategoryRoute:   c.Config.Routes.CategoryRoute,
			AnnotationRoute: c.Config.Routes.AnnotationRoute,
		},
	}, generator.Dependencies{
		Catalog:  c.catalogSvc,
		Renderer: c.renderer,
		Storage:  c.artifacts,
		Markdown: c.markdownParser(),
		Logger:   logging.GeneratorLogger(c.loggerProvider),
	})
}

func (c *Container) markdownParser() interfaces.MarkdownParser {
	if c.parser != nil {
		return c.parser
	}
	parserCfg := c.Config.Notes.Parser
	c.parser = markdown.NewGoldmarkParser(interfaces.ParseOptions{
		Extensions: parserCfg.Extensions,
		Sanitize:   parserCfg.Sanitize,
		HardWraps:  parserCfg.HardWraps,
		SafeMode:   parserCfg.SafeMode,
	})
	return c.parser
}

func consoleLevel(level string) console.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return console.LevelTrace
	case "debug":
		return console.LevelDebug
	case "warn", "warning":
		return console.LevelWarn
	case "error":
		return console.LevelError
	case "fatal":
		return console.LevelFatal
	default:
		return console.LevelInfo
	}
}
