package configfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-annocat/internal/runtimeconfig"
)

// ErrConfigNotFound indicates the requested config file does not exist.
var ErrConfigNotFound = errors.New("configfile: config file not found")

// fileConfig mirrors runtimeconfig.Config with yaml tags so hosts can keep an
// annocat.yml next to their notes directory. Zero values fall back to
// DefaultConfig, so partial files are fine.
type fileConfig struct {
	Notes struct {
		ContentDir      string   `yaml:"content_dir"`
		Pattern         string   `yaml:"pattern"`
		Recursive       *bool    `yaml:"recursive"`
		DefaultCategory string   `yaml:"default_category"`
		Extensions      []string `yaml:"extensions"`
	} `yaml:"notes"`
	Storage struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"storage"`
	Generator struct {
		Enabled     *bool  `yaml:"enabled"`
		OutputDir   string `yaml:"output_dir"`
		BaseURL     string `yaml:"base_url"`
		SiteTitle   string `yaml:"site_title"`
		CleanBuild  *bool  `yaml:"clean_build"`
		Incremental *bool  `yaml:"incremental"`
		Sitemap     *bool  `yaml:"sitemap"`
		JSON        *bool  `yaml:"json"`
		Workers     int    `yaml:"workers"`
		Theme       struct {
			Enabled    *bool  `yaml:"enabled"`
			Path       string `yaml:"path"`
			Variant    string `yaml:"variant"`
			CopyAssets *bool  `yaml:"copy_assets"`
		} `yaml:"theme"`
	} `yaml:"generator"`
	Lint struct {
		Enabled       *bool    `yaml:"enabled"`
		DisabledRules []string `yaml:"disabled_rules"`
		FailOn        string   `yaml:"fail_on"`
	} `yaml:"lint"`
	Watch struct {
		Enabled    *bool `yaml:"enabled"`
		DebounceMS int   `yaml:"debounce_ms"`
	} `yaml:"watch"`
	Logging struct {
		Provider  string   `yaml:"provider"`
		Level     string   `yaml:"level"`
		Format    string   `yaml:"format"`
		AddSource bool     `yaml:"add_source"`
		Focus     []string `yaml:"focus"`
	} `yaml:"logging"`
}

// Load reads a YAML config file and layers it over DefaultConfig. A missing
// path returns ErrConfigNotFound so callers can fall back to defaults.
func Load(path string) (runtimeconfig.Config, error) {
	cfg := runtimeconfig.DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("configfile: read %s: %w", path, err)
	}

	return Parse(data)
}

// Parse layers raw YAML config bytes over DefaultConfig.
func Parse(data []byte) (runtimeconfig.Config, error) {
	cfg := runtimeconfig.DefaultConfig()

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("configfile: parse: %w", err)
	}

	applyNotes(&cfg, file)
	applyStorage(&cfg, file)
	applyGenerator(&cfg, file)
	applyLint(&cfg, file)
	applyWatch(&cfg, file)
	applyLogging(&cfg, file)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyNotes(cfg *runtimeconfig.Config, file fileConfig) {
	if v := strings.TrimSpace(file.Notes.ContentDir); v != "" {
		cfg.Notes.ContentDir = v
	}
	if v := strings.TrimSpace(file.Notes.Pattern); v != "" {
		cfg.Notes.Pattern = v
	}
	if file.Notes.Recursive != nil {
		cfg.Notes.Recursive = *file.Notes.Recursive
	}
	if v := strings.TrimSpace(file.Notes.DefaultCategory); v != "" {
		cfg.Notes.DefaultCategory = v
	}
	if len(file.Notes.Extensions) > 0 {
		cfg.Notes.Parser.Extensions = append([]string(nil), file.Notes.Extensions...)
	}
}

func applyStorage(cfg *runtimeconfig.Config, file fileConfig) {
	if v := strings.TrimSpace(file.Storage.Driver); v != "" {
		cfg.Storage.Driver = v
	}
	if v := strings.TrimSpace(file.Storage.DSN); v != "" {
		cfg.Storage.DSN = v
	}
}

func applyGenerator(cfg *runtimeconfig.Config, file fileConfig) {
	gen := file.Generator
	if gen.Enabled != nil {
		cfg.Generator.Enabled = *gen.Enabled
		cfg.Features.Generator = *gen.Enabled
	}
	if v := strings.TrimSpace(gen.OutputDir); v != "" {
		cfg.Generator.OutputDir = v
	}
	if v := strings.TrimSpace(gen.BaseURL); v != "" {
		cfg.Generator.BaseURL = v
	}
	if v := strings.TrimSpace(gen.SiteTitle); v != "" {
		cfg.Generator.SiteTitle = v
	}
	if gen.CleanBuild != nil {
		cfg.Generator.CleanBuild = *gen.CleanBuild
	}
	if gen.Incremental != nil {
		cfg.Generator.Incremental = *gen.Incremental
	}
	if gen.Sitemap != nil {
		cfg.Generator.GenerateSitemap = *gen.Sitemap
	}
	if gen.JSON != nil {
		cfg.Generator.GenerateJSON = *gen.JSON
	}
	if gen.Workers > 0 {
		cfg.Generator.Workers = gen.Workers
	}
	if gen.Theme.Enabled != nil {
		cfg.Generator.Theme.Enabled = *gen.Theme.Enabled
	}
	if v := strings.TrimSpace(gen.Theme.Path); v != "" {
		cfg.Generator.Theme.Path = v
	}
	if v := strings.TrimSpace(gen.Theme.Variant); v != "" {
		cfg.Generator.Theme.Variant = v
	}
	if gen.Theme.CopyAssets != nil {
		cfg.Generator.Theme.CopyAssets = *gen.Theme.CopyAssets
	}
}

func applyLint(cfg *runtimeconfig.Config, file fileConfig) {
	if file.Lint.Enabled != nil {
		cfg.Features.Lint = *file.Lint.Enabled
	}
	if len(file.Lint.DisabledRules) > 0 {
		cfg.Lint.DisabledRules = append([]string(nil), file.Lint.DisabledRules...)
	}
	if v := strings.TrimSpace(file.Lint.FailOn); v != "" {
		cfg.Lint.FailOn = v
	}
}

func applyWatch(cfg *runtimeconfig.Config, file fileConfig) {
	if file.Watch.Enabled != nil {
		cfg.Watch.Enabled = *file.Watch.Enabled
		cfg.Features.Watch = *file.Watch.Enabled
	}
	if file.Watch.DebounceMS > 0 {
		cfg.Watch.Debounce = time.Duration(file.Watch.DebounceMS) * time.Millisecond
	}
}

func applyLogging(cfg *runtimeconfig.Config, file fileConfig) {
	if v := strings.TrimSpace(file.Logging.Provider); v != "" {
		cfg.Logging.Provider = v
		cfg.Features.Logger = true
	}
	if v := strings.TrimSpace(file.Logging.Level); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(file.Logging.Format); v != "" {
		cfg.Logging.Format = v
	}
	if file.Logging.AddSource {
		cfg.Logging.AddSource = true
	}
	if len(file.Logging.Focus) > 0 {
		cfg.Logging.Focus = append([]string(nil), file.Logging.Focus...)
	}
}
