package catalogcmd

import (
	"errors"

	"github.com/goliatone/go-annocat/internal/commands"
	"github.com/goliatone/go-annocat/internal/generator"
	"github.com/goliatone/go-annocat/internal/lint"
	"github.com/goliatone/go-annocat/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// Services bundles the domain services the catalog command handlers depend on.
// Lint and Generator may be nil when the corresponding feature is disabled.
type Services struct {
	Notes     interfaces.NoteService
	Lint      *lint.Runner
	Generator generator.Service
}

// HandlerSet groups the catalog command handlers produced by RegisterCatalogCommands.
type HandlerSet struct {
	Import *ImportNotesHandler
	Sync   *SyncNotesHandler
	Lint   *LintNotesHandler
	Build  *BuildSiteHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	importHandlerOpts []commands.HandlerOption[ImportNotesCommand]
	syncHandlerOpts   []commands.HandlerOption[SyncNotesCommand]
	lintHandlerOpts   []commands.HandlerOption[LintNotesCommand]
	buildHandlerOpts  []commands.HandlerOption[BuildSiteCommand]
	reportSink        ReportSink
}

// WithImportHandlerOptions forwards options to the ImportNotesHandler constructor.
func WithImportHandlerOptions(opts ...commands.HandlerOption[ImportNotesCommand]) Option {
	return func(cfg *options) {
		cfg.importHandlerOpts = append(cfg.importHandlerOpts, opts...)
	}
}

// WithSyncHandlerOptions forwards options to the SyncNotesHandler constructor.
func WithSyncHandlerOptions(opts ...commands.HandlerOption[SyncNotesCommand]) Option {
	return func(cfg *options) {
		cfg.syncHandlerOpts = append(cfg.syncHandlerOpts, opts...)
	}
}

// WithLintHandlerOptions forwards options to the LintNotesHandler constructor.
func WithLintHandlerOptions(opts ...commands.HandlerOption[LintNotesCommand]) Option {
	return func(cfg *options) {
		cfg.lintHandlerOpts = append(cfg.lintHandlerOpts, opts...)
	}
}

// WithBuildHandlerOptions forwards options to the BuildSiteHandler constructor.
func WithBuildHandlerOptions(opts ...commands.HandlerOption[BuildSiteCommand]) Option {
	return func(cfg *options) {
		cfg.buildHandlerOpts = append(cfg.buildHandlerOpts, opts...)
	}
}

// WithReportSink routes lint reports to the supplied callback.
func WithReportSink(sink ReportSink) Option {
	return func(cfg *options) {
		cfg.reportSink = sink
	}
}

// RegisterCatalogCommands builds catalog command handlers and registers them with the
// provided registry. A HandlerSet containing the constructed handlers is returned so
// callers can wire additional integrations as needed. Lint and Build handlers are only
// constructed when their services are present.
func RegisterCatalogCommands(reg CommandRegistry, services Services, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if services.Notes == nil {
		return nil, errors.New("catalog command registration: note service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "catalog")

	set := &HandlerSet{
		Import: NewImportNotesHandler(services.Notes, logger, cfg.importHandlerOpts...),
		Sync:   NewSyncNotesHandler(services.Notes, logger, cfg.syncHandlerOpts...),
	}
	if services.Lint != nil {
		set.Lint = NewLintNotesHandler(services.Notes, services.Lint, logger, gates, cfg.reportSink, cfg.lintHandlerOpts...)
	}
	if services.Generator != nil {
		set.Build = NewBuildSiteHandler(services.Generator, logger, gates, cfg.buildHandlerOpts...)
	}

	if reg != nil {
		handlers := []any{set.Import, set.Sync}
		if set.Lint != nil {
			handlers = append(handlers, set.Lint)
		}
		if set.Build != nil {
			handlers = append(handlers, set.Build)
		}
		for _, handler := range handlers {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}

	return set, nil
}
