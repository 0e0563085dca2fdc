package configfile

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_LayersOverDefaults(t *testing.T) {
	data := []byte(`
notes:
  content_dir: docs/annotations
  pattern: "**/*.markdown"
  default_category: general
storage:
  driver: sqlite
  dsn: "file:catalog.db?_fk=1"
generator:
  enabled: true
  output_dir: public
  base_url: https://annotations.example.com
  incremental: true
watch:
  debounce_ms: 500
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "docs/annotations", cfg.Notes.ContentDir)
	assert.Equal(t, "**/*.markdown", cfg.Notes.Pattern)
	assert.Equal(t, "general", cfg.Notes.DefaultCategory)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.True(t, cfg.Generator.Enabled)
	assert.True(t, cfg.Features.Generator)
	assert.True(t, cfg.Generator.Incremental)
	assert.Equal(t, "public", cfg.Generator.OutputDir)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)

	// untouched defaults survive
	assert.True(t, cfg.Generator.GenerateSitemap)
	assert.Equal(t, "console", cfg.Logging.Provider)
}

func TestParse_LintSectionEnablesFeature(t *testing.T) {
	data := []byte(`
lint:
  enabled: true
  fail_on: warning
  disabled_rules: [empty-category]
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.True(t, cfg.Features.Lint)
	assert.Equal(t, "warning", cfg.Lint.FailOn)
	assert.Equal(t, []string{"empty-category"}, cfg.Lint.DisabledRules)

	cfg, err = Parse([]byte("lint:\n  enabled: false\n"))
	require.NoError(t, err)
	assert.False(t, cfg.Features.Lint)
}

func TestParse_WatchSectionEnablesFeature(t *testing.T) {
	data := []byte(`
watch:
  enabled: true
  debounce_ms: 100
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.True(t, cfg.Watch.Enabled)
	assert.True(t, cfg.Features.Watch)
	assert.Equal(t, 100*time.Millisecond, cfg.Watch.Debounce)
}

func TestParse_InvalidConfigFailsValidation(t *testing.T) {
	data := []byte(`
storage:
  driver: sqlite
`)

	_, err := Parse(data)
	require.Error(t, err)
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := Parse([]byte("notes: [unclosed"))
	require.Error(t, err)
}

func TestLoad_MissingFileReturnsSentinel(t *testing.T) {
	_, err := Load("testdata/does-not-exist.yml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "notes", cfg.Notes.ContentDir)
}
