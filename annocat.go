// Package annocat turns Markdown annotation notes into a normalized
// reference catalog. It loads note files, extracts annotation entries,
// merges duplicates across overlapping documents, lints documentation
// quality, and renders a static reference site with a machine-readable
// JSON export.
package annocat

import (
	catalogcmd "github.com/goliatone/go-annocat/internal/commands/catalog"
	"github.com/goliatone/go-annocat/internal/di"
	"github.com/goliatone/go-annocat/internal/generator"
	"github.com/goliatone/go-annocat/internal/lint"
	"github.com/goliatone/go-annocat/internal/watch"
	"github.com/goliatone/go-annocat/pkg/interfaces"
)

// CatalogService exports the catalog contract for consumers of the annocat package.
type CatalogService = interfaces.CatalogService

// NoteService exports the note ingestion contract.
type NoteService = interfaces.NoteService

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

// LintRunner exports the documentation-quality lint runner.
type LintRunner = lint.Runner

// LintReport exports the lint report produced by a run.
type LintReport = lint.Report

// Watcher exports the notes filesystem watcher.
type Watcher = watch.Watcher

// ErrWatchFeatureDisabled is returned by NewWatcher when the watch feature
// has not been enabled in the configuration.
var ErrWatchFeatureDisabled = di.ErrWatchFeatureDisabled

// Module is the top level runtime facade over the wired services.
type Module struct {
	container *di.Container
}

// New constructs a module from the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Catalog returns the configured catalog service.
func (m *Module) Catalog() CatalogService {
	return m.container.Catalog()
}

// Notes returns the configured note ingestion service.
func (m *Module) Notes() NoteService {
	return m.container.Notes()
}

// Lint returns the lint runner; nil when the lint feature is disabled.
func (m *Module) Lint() *LintRunner {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Lint()
}

// Generator returns the configured site generator service.
func (m *Module) Generator() GeneratorService {
	return m.container.Generator()
}

// NewWatcher builds a debounced filesystem watcher over the notes directory.
// It returns ErrWatchFeatureDisabled unless the watch feature is enabled.
func (m *Module) NewWatcher(handler watch.Handler) (*Watcher, error) {
	return m.container.NewWatcher(handler)
}

// RegisterCommands wires the catalog command handlers against the supplied
// registry. Pass nil to only build the handler set.
func (m *Module) RegisterCommands(reg catalogcmd.CommandRegistry, opts ...catalogcmd.Option) (*catalogcmd.HandlerSet, error) {
	return catalogcmd.RegisterCatalogCommands(
		reg,
		m.container.CommandServices(),
		m.container.LoggerProvider(),
		m.container.FeatureGates(),
		opts...,
	)
}

// Close releases container-owned resources such as database handles.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
