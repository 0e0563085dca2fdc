package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

var ErrContentDirRequired = errors.New("annocat config: content directory is required")
var ErrGeneratorOutputDirRequired = errors.New("annocat config: generator output directory is required when generator is enabled")
var ErrStorageDriverUnknown = errors.New("annocat config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("annocat config: storage dsn is required for database drivers")
var ErrLoggingProviderRequired = errors.New("annocat config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("annocat config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("annocat config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("annocat config: logging format is invalid")
var ErrWatchDebounceInvalid = errors.New("annocat config: watch debounce must be zero or positive")
var ErrThemePathRequired = errors.New("annocat config: theme path is required when theme assets are enabled")

// Config aggregates feature flags and adapter bindings for the catalog module.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Enabled   bool
	Notes     NotesConfig
	Catalog   CatalogConfig
	Storage   StorageConfig
	Generator GeneratorConfig
	Lint      LintConfig
	Watch     WatchConfig
	Routes    RoutesConfig
	Features  Features
	Logging   LoggingConfig
}

// NotesConfig captures filesystem and parser behaviour for note ingestion.
type NotesConfig struct {
	ContentDir      string
	Pattern         string
	Recursive       bool
	DefaultCategory string
	Parser          ParserConfig
}

// ParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type ParserConfig struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}

// CatalogConfig controls merge behaviour for duplicate entries.
type CatalogConfig struct {
	// PreferLongestDescription keeps the longest description when duplicates
	// disagree; shorter variants are recorded as conflicts.
	PreferLongestDescription bool
	// KeepConflicts retains losing descriptions on the record for lint.
	KeepConflicts bool
}

// StorageConfig selects the catalog persistence backend.
type StorageConfig struct {
	// Driver is one of "memory", "sqlite", "postgres".
	Driver string
	DSN    string
}

// GeneratorConfig captures behaviour for the static reference site generator.
type GeneratorConfig struct {
	Enabled         bool
	OutputDir       string
	BaseURL         string
	SiteTitle       string
	CleanBuild      bool
	Incremental     bool
	GenerateSitemap bool
	GenerateJSON    bool
	Workers         int
	Theme           ThemeConfig
}

// ThemeConfig wires go-theme manifests into the generated site.
type ThemeConfig struct {
	Enabled    bool
	Path       string
	Variant    string
	CopyAssets bool
}

// LintConfig toggles individual documentation-quality rules.
type LintConfig struct {
	DisabledRules []string
	// FailOn escalates exit status when issues at or above this severity exist
	// ("warning" or "error").
	FailOn string
}

// WatchConfig controls the rebuild-on-change loop.
type WatchConfig struct {
	Enabled  bool
	Debounce time.Duration
}

// RoutesConfig carries the go-urlkit route table used when building site URLs.
type RoutesConfig struct {
	RouteConfig *urlkit.Config
	// Group names the urlkit group holding site routes.
	Group string
	// CategoryRoute and AnnotationRoute name routes inside Group.
	CategoryRoute   string
	AnnotationRoute string
}

// Features toggles module functionality.
type Features struct {
	Generator bool
	Lint      bool
	Watch     bool
	Logger    bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults for a notes directory layout.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Notes: NotesConfig{
			ContentDir:      "notes",
			Pattern:         "**/*.md",
			Recursive:       true,
			DefaultCategory: "uncategorized",
		},
		Catalog: CatalogConfig{
			PreferLongestDescription: true,
			KeepConflicts:            true,
		},
		Storage: StorageConfig{
			Driver: "memory",
		},
		Generator: GeneratorConfig{
			OutputDir:       "dist",
			SiteTitle:       "Annotation Reference",
			CleanBuild:      true,
			Incremental:     false,
			GenerateSitemap: true,
			GenerateJSON:    true,
			Workers:         0,
			Theme: ThemeConfig{
				CopyAssets: true,
			},
		},
		Lint: LintConfig{
			FailOn: "error",
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
		Routes: RoutesConfig{
			Group:           "site",
			CategoryRoute:   "category",
			AnnotationRoute: "annotation",
		},
		Features: Features{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Notes.ContentDir) == "" {
		return ErrContentDirRequired
	}
	switch normalizeDriver(cfg.Storage.Driver) {
	case "", "memory":
	case "sqlite", "postgres":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if cfg.Generator.Enabled {
		if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
			return ErrGeneratorOutputDirRequired
		}
		if cfg.Generator.Theme.Enabled && strings.TrimSpace(cfg.Generator.Theme.Path) == "" {
			return ErrThemePathRequired
		}
	}
	if cfg.Watch.Debounce < 0 {
		return ErrWatchDebounceInvalid
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeDriver(driver string) string {
	return strings.ToLower(strings.TrimSpace(driver))
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
