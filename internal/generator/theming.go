package generator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

// ThemingConfig wires a go-theme manifest directory into the generated site.
type ThemingConfig struct {
	Enabled           bool
	Path              string
	Variant           string
	CopyAssets        bool
	CSSVariablePrefix string
	PartialFallbacks  map[string]string
}

// ThemeContext surfaces go-theme selection data to templates.
type ThemeContext struct {
	Name      string
	Variant   string
	Tokens    map[string]string
	CSSVars   map[string]string
	Partials  map[string]string
	AssetURL  func(string) string
	Template  func(string, string) string
	Selection *gotheme.Selection
}

type themeManifestLoader interface {
	Load(themePath string) (*gotheme.Manifest, error)
}

type fsThemeManifestLoader struct{}

func (fsThemeManifestLoader) Load(themePath string) (*gotheme.Manifest, error) {
	cleaned := filepath.Clean(strings.TrimSpace(themePath))
	if cleaned == "" {
		return nil, fmt.Errorf("theme path required")
	}
	return gotheme.LoadDir(os.DirFS(cleaned), ".")
}

// themeSelector loads the configured theme manifest once and resolves a
// go-theme Selection for template rendering and asset copying.
type themeSelector struct {
	registry *gotheme.MemoryRegistry
	loader   themeManifestLoader
	cfg      ThemingConfig

	mu       sync.Mutex
	manifest *gotheme.Manifest
}

func newThemeSelector(cfg ThemingConfig, loader themeManifestLoader) *themeSelector {
	if loader == nil {
		loader = fsThemeManifestLoader{}
	}
	return &themeSelector{
		registry: gotheme.NewRegistry(),
		loader:   loader,
		cfg:      cfg,
	}
}

func (s *themeSelector) Selection() (*gotheme.Selection, error) {
	if s == nil || !s.cfg.Enabled {
		return nil, nil
	}

	manifest, err := s.ensureManifest()
	if err != nil {
		return nil, err
	}

	selector := gotheme.Selector{
		Registry:       s.registry,
		DefaultTheme:   manifest.Name,
		DefaultVariant: strings.TrimSpace(s.cfg.Variant),
	}

	selection, err := selector.Select(manifest.Name, strings.TrimSpace(s.cfg.Variant))
	if err != nil {
		return nil, fmt.Errorf("select theme %s: %w", manifest.Name, err)
	}
	return selection, nil
}

func (s *themeSelector) ensureManifest() (*gotheme.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.manifest != nil {
		return s.manifest, nil
	}

	manifest, err := s.loader.Load(s.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("load theme manifest from %s: %w", s.cfg.Path, err)
	}

	normalized := *manifest
	if strings.TrimSpace(normalized.Name) == "" {
		normalized.Name = "default"
	}

	if err := s.registry.Register(&normalized); err != nil {
		return nil, fmt.Errorf("register theme manifest: %w", err)
	}
	s.manifest = &normalized
	return &normalized, nil
}

// Open returns a reader for an asset relative to the theme directory.
func (s *themeSelector) Open(asset string) (io.ReadCloser, error) {
	cleaned := filepath.Clean(strings.TrimSpace(s.cfg.Path))
	if cleaned == "" {
		return nil, fmt.Errorf("generator: theme path not configured")
	}
	rel := strings.TrimPrefix(strings.TrimSpace(asset), "/")
	if rel == "" {
		return nil, fmt.Errorf("generator: asset path required")
	}
	return os.DirFS(cleaned).Open(rel)
}

func buildThemeContext(selection *gotheme.Selection, cfg ThemingConfig) ThemeContext {
	empty := ThemeContext{
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
		Partials: map[string]string{},
		AssetURL: func(string) string { return "" },
		Template: func(_ string, fallback string) string { return fallback },
	}
	if selection == nil {
		return empty
	}

	return ThemeContext{
		Name:      selection.Theme,
		Variant:   selection.Variant,
		Tokens:    selection.Tokens(),
		CSSVars:   selection.CSSVariables(cfg.CSSVariablePrefix),
		Partials:  selection.Partials(cfg.PartialFallbacks),
		AssetURL:  func(key string) string { url, _ := selection.Asset(key); return url },
		Template:  selection.Template,
		Selection: selection,
	}
}

func collectThemeAssets(selection *gotheme.Selection) []string {
	if selection == nil || selection.Manifest == nil {
		return nil
	}

	assets := selection.Manifest.Assets.Files
	if variant := strings.TrimSpace(selection.Variant); variant != "" {
		if v, ok := selection.Manifest.Variants[variant]; ok && len(v.Assets.Files) > 0 {
			merged := make(map[string]string, len(selection.Manifest.Assets.Files)+len(v.Assets.Files))
			for key, p := range selection.Manifest.Assets.Files {
				merged[key] = p
			}
			for key, p := range v.Assets.Files {
				merged[key] = p
			}
			assets = merged
		}
	}

	seen := map[string]struct{}{}
	var out []string
	for _, asset := range assets {
		asset = strings.TrimPrefix(strings.TrimSpace(asset), "/")
		if asset == "" {
			continue
		}
		if _, ok := seen[asset]; ok {
			continue
		}
		seen[asset] = struct{}{}
		out = append(out, filepath.ToSlash(asset))
	}
	return out
}

func detectAssetContentType(asset string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(asset), "."))
	switch ext {
	case "css":
		return "text/css"
	case "js":
		return "application/javascript"
	case "json":
		return "application/json"
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "ico":
		return "image/x-icon"
	default:
		return "application/octet-stream"
	}
}
