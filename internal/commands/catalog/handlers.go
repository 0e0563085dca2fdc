package catalogcmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-annocat/internal/commands"
	"github.com/goliatone/go-annocat/internal/generator"
	"github.com/goliatone/go-annocat/internal/lint"
	"github.com/goliatone/go-annocat/internal/logging"
	"github.com/goliatone/go-annocat/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	importOperation = "catalog.import_notes"
	syncOperation   = "catalog.sync_notes"
	lintOperation   = "catalog.lint_notes"
	buildOperation  = "catalog.build_site"
)

var (
	// ErrLintFeatureDisabled is returned when the lint feature flag is off at runtime.
	ErrLintFeatureDisabled = errors.New("catalog command: lint feature disabled")
	// ErrGeneratorFeatureDisabled is returned when the generator feature flag is off at runtime.
	ErrGeneratorFeatureDisabled = errors.New("catalog command: generator feature disabled")
	// ErrLintFailed reports that the lint run produced issues at or above the
	// configured severity threshold.
	ErrLintFailed = errors.New("catalog command: lint found blocking issues")
)

var (
	_ command.Commander[ImportNotesCommand] = (*ImportNotesHandler)(nil)
	_ command.Commander[SyncNotesCommand]   = (*SyncNotesHandler)(nil)
	_ command.Commander[LintNotesCommand]   = (*LintNotesHandler)(nil)
	_ command.Commander[BuildSiteCommand]   = (*BuildSiteHandler)(nil)
)

// ImportNotesHandler orchestrates note imports via the shared command handler foundation.
type ImportNotesHandler struct {
	inner *commands.Handler[ImportNotesCommand]
}

// NewImportNotesHandler creates a handler bound to the supplied note service.
func NewImportNotesHandler(service interfaces.NoteService, logger interfaces.Logger, opts ...commands.HandlerOption[ImportNotesCommand]) *ImportNotesHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ImportNotesCommand) error {
		result, err := service.ImportDirectory(ctx, msg.Directory, interfaces.ImportOptions{
			DefaultCategory: msg.DefaultCategory,
			DryRun:          msg.DryRun,
		})
		if err != nil {
			return err
		}
		if result != nil {
			logging.WithFields(baseLogger, map[string]any{
				"created_count": len(result.Created),
				"updated_count": len(result.Updated),
				"skipped_count": len(result.Skipped),
				"error_count":   len(result.Errors),
				"dry_run":       msg.DryRun,
			}).Info("catalog.command.import_notes.completed")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ImportNotesCommand]{
		commands.WithLogger[ImportNotesCommand](baseLogger),
		commands.WithOperation[ImportNotesCommand](importOperation),
		commands.WithMessageFields(func(msg ImportNotesCommand) map[string]any {
			fields := map[string]any{
				"directory": msg.Directory,
			}
			if msg.Pattern != "" {
				fields["pattern"] = msg.Pattern
			}
			if msg.DefaultCategory != "" {
				fields["default_category"] = msg.DefaultCategory
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ImportNotesCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportNotesHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ImportNotesCommand].
func (h *ImportNotesHandler) Execute(ctx context.Context, msg ImportNotesCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SyncNotesHandler orchestrates catalog synchronisation runs.
type SyncNotesHandler struct {
	inner *commands.Handler[SyncNotesCommand]
}

// NewSyncNotesHandler creates a handler bound to the supplied note service.
func NewSyncNotesHandler(service interfaces.NoteService, logger interfaces.Logger, opts ...commands.HandlerOption[SyncNotesCommand]) *SyncNotesHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg SyncNotesCommand) error {
		result, err := service.Sync(ctx, msg.Directory, interfaces.SyncOptions{
			ImportOptions: interfaces.ImportOptions{
				DefaultCategory: msg.DefaultCategory,
				DryRun:          msg.DryRun,
			},
			DeleteOrphaned: msg.DeleteOrphaned,
			UpdateExisting: msg.UpdateExisting,
		})
		if err != nil {
			return err
		}
		if result != nil {
			logging.WithFields(baseLogger, map[string]any{
				"created_count":   result.Created,
				"updated_count":   result.Updated,
				"deleted_count":   result.Deleted,
				"skipped_count":   result.Skipped,
				"error_count":     len(result.Errors),
				"dry_run":         msg.DryRun,
				"delete_orphans":  msg.DeleteOrphaned,
				"update_existing": msg.UpdateExisting,
			}).Info("catalog.command.sync_notes.completed")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SyncNotesCommand]{
		commands.WithLogger[SyncNotesCommand](baseLogger),
		commands.WithOperation[SyncNotesCommand](syncOperation),
		commands.WithMessageFields(func(msg SyncNotesCommand) map[string]any {
			fields := map[string]any{
				"directory": msg.Directory,
			}
			if msg.Pattern != "" {
				fields["pattern"] = msg.Pattern
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			if msg.DeleteOrphaned {
				fields["delete_orphans"] = true
			}
			if msg.UpdateExisting {
				fields["update_existing"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SyncNotesCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SyncNotesHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SyncNotesCommand].
func (h *SyncNotesHandler) Execute(ctx context.Context, msg SyncNotesCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ReportSink receives the lint report produced by a LintNotesCommand run.
type ReportSink func(context.Context, *lint.Report)

// LintNotesHandler extracts entries from the notes directory and runs the
// documentation-quality rules against them and the catalog.
type LintNotesHandler struct {
	inner *commands.Handler[LintNotesCommand]
}

// NewLintNotesHandler creates a handler bound to the supplied services. The
// optional sink receives the full report; the handler itself fails with
// ErrLintFailed when the report crosses the FailOn threshold.
func NewLintNotesHandler(service interfaces.NoteService, runner *lint.Runner, logger interfaces.Logger, gates FeatureGates, sink ReportSink, opts ...commands.HandlerOption[LintNotesCommand]) *LintNotesHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg LintNotesCommand) error {
		if !gates.lintEnabled() {
			return ErrLintFeatureDisabled
		}

		notes, err := service.LoadDirectory(ctx, msg.Directory, interfaces.LoadOptions{Pattern: msg.Pattern})
		if err != nil {
			return err
		}
		extractions := make([]*interfaces.Extraction, 0, len(notes))
		for _, note := range notes {
			extraction, err := service.Extract(ctx, note)
			if err != nil {
				return fmt.Errorf("extract %s: %w", note.FilePath, err)
			}
			extractions = append(extractions, extraction)
		}

		report, err := runner.Run(ctx, extractions)
		if err != nil {
			return err
		}
		if sink != nil {
			sink(ctx, report)
		}
		logging.WithFields(baseLogger, map[string]any{
			"issues":   len(report.Issues),
			"errors":   report.Errors,
			"warnings": report.Warnings,
		}).Info("catalog.command.lint_notes.completed")
		if report.Failed(msg.FailOn) {
			return fmt.Errorf("%w: %d errors, %d warnings", ErrLintFailed, report.Errors, report.Warnings)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[LintNotesCommand]{
		commands.WithLogger[LintNotesCommand](baseLogger),
		commands.WithOperation[LintNotesCommand](lintOperation),
		commands.WithMessageFields(func(msg LintNotesCommand) map[string]any {
			fields := map[string]any{
				"directory": msg.Directory,
			}
			if msg.Pattern != "" {
				fields["pattern"] = msg.Pattern
			}
			if msg.FailOn != "" {
				fields["fail_on"] = msg.FailOn
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[LintNotesCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &LintNotesHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[LintNotesCommand].
func (h *LintNotesHandler) Execute(ctx context.Context, msg LintNotesCommand) error {
	return h.inner.Execute(ctx, msg)
}

// BuildSiteHandler renders the static reference site from the current catalog.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler creates a handler bound to the supplied generator service.
func NewBuildSiteHandler(service generator.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if !gates.generatorEnabled() {
			return ErrGeneratorFeatureDisabled
		}

		result, err := service.Build(ctx, generator.BuildOptions{
			Categories: msg.Categories,
			DryRun:     msg.DryRun,
		})
		if err != nil {
			return err
		}
		if result != nil {
			logging.WithFields(baseLogger, map[string]any{
				"pages_built":   result.PagesBuilt,
				"pages_skipped": result.PagesSkipped,
				"assets_built":  result.AssetsBuilt,
				"export":        result.ExportWritten,
				"dry_run":       msg.DryRun,
			}).Info("catalog.command.build_site.completed")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand](buildOperation),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{}
			if len(msg.Categories) > 0 {
				fields["categories"] = msg.Categories
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}
