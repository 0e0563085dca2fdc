package annocat

import "github.com/goliatone/go-annocat/internal/runtimeconfig"

var (
	ErrContentDirRequired         = runtimeconfig.ErrContentDirRequired
	ErrGeneratorOutputDirRequired = runtimeconfig.ErrGeneratorOutputDirRequired
	ErrStorageDriverUnknown       = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired         = runtimeconfig.ErrStorageDSNRequired
	ErrLoggingProviderRequired    = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
	ErrWatchDebounceInvalid       = runtimeconfig.ErrWatchDebounceInvalid
	ErrThemePathRequired          = runtimeconfig.ErrThemePathRequired
)

type (
	Config          = runtimeconfig.Config
	NotesConfig     = runtimeconfig.NotesConfig
	ParserConfig    = runtimeconfig.ParserConfig
	CatalogConfig   = runtimeconfig.CatalogConfig
	StorageConfig   = runtimeconfig.StorageConfig
	GeneratorConfig = runtimeconfig.GeneratorConfig
	ThemeConfig     = runtimeconfig.ThemeConfig
	LintConfig      = runtimeconfig.LintConfig
	WatchConfig     = runtimeconfig.WatchConfig
	RoutesConfig    = runtimeconfig.RoutesConfig
	Features        = runtimeconfig.Features
	LoggingConfig   = runtimeconfig.LoggingConfig
)

// DefaultConfig returns the runtime defaults for a notes directory layout.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
