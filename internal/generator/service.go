package generator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-annocat/pkg/interfaces"
	gotheme "github.com/goliatone/go-theme"
)

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled  = errors.New("generator: service disabled")
	errRendererRequired = errors.New("generator: template renderer is required")
	errCatalogRequired  = errors.New("generator: catalog service is required")
)

// Service describes the static reference site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	OutputDir       string
	BaseURL         string
	SiteTitle       string
	CleanBuild      bool
	Incremental     bool
	GenerateSitemap bool
	GenerateJSON    bool
	Workers         int
	Theming         ThemingConfig
	Routes          RouteOptions
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	// Categories restricts the build to the named category slugs. The index
	// page is only rebuilt on unfiltered runs.
	Categories []string
	DryRun     bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	PagesBuilt    int
	PagesSkipped  int
	AssetsBuilt   int
	AssetsSkipped int
	ExportWritten bool
	Duration      time.Duration
	Rendered      []RenderedPage
	Diagnostics   []RenderDiagnostic
	Errors        []error
	DryRun        bool
}

// Dependencies lists the services required by the generator.
type Dependencies struct {
	Catalog  interfaces.CatalogService
	Renderer interfaces.TemplateRenderer
	Storage  interfaces.StorageProvider
	Markdown interfaces.MarkdownParser
	Logger   interfaces.Logger
}

// NewService wires a generator implementation with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	return &service{
		cfg:    cfg,
		deps:   deps,
		routes: newSiteRoutes(cfg.Routes),
		themes: newThemeSelector(cfg.Theming, nil),
		now:    time.Now,
	}
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg    Config
	deps   Dependencies
	routes *siteRoutes
	themes *themeSelector
	now    func() time.Time
}

type disabledService struct{}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Renderer == nil {
		return nil, errRendererRequired
	}

	start := time.Now()
	buildCtx, err := s.loadContext(ctx, opts)
	if err != nil {
		return nil, err
	}

	themeSelection, err := s.themes.Selection()
	if err != nil {
		return nil, err
	}
	themeCtx := buildThemeContext(themeSelection, s.cfg.Theming)

	result := &BuildResult{
		DryRun:      opts.DryRun,
		Diagnostics: make([]RenderDiagnostic, 0, len(buildCtx.Pages)),
	}

	siteMeta := SiteMetadata{
		Title:      s.cfg.SiteTitle,
		BaseURL:    strings.TrimRight(s.cfg.BaseURL, "/"),
		Categories: buildCtx.Categories,
		Stats:      buildCtx.Stats,
		Metadata:   map[string]any{},
	}

	var (
		mu          sync.Mutex
		rendered    = make([]RenderedPage, 0, len(buildCtx.Pages))
		errorsSlice []error
		baseDir     = strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	)

	if s.cfg.CleanBuild && !opts.DryRun {
		if err := s.Clean(ctx); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	manifest, manifestErr := s.loadManifest(ctx)
	if manifestErr != nil {
		errorsSlice = append(errorsSlice, manifestErr)
	}
	if manifest == nil || s.cfg.CleanBuild {
		manifest = newBuildManifest()
	}

	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		if outcome.err != nil {
			errorsSlice = append(errorsSlice, outcome.err)
			return
		}
		if outcome.skipped {
			result.PagesSkipped++
			return
		}
		result.PagesBuilt++
		if !opts.DryRun {
			rendered = append(rendered, outcome.page)
		}
	}

	workerCount := s.effectiveWorkerCount(len(buildCtx.Categories))
	if workerCount <= 1 || len(buildCtx.Pages) <= 1 {
		for _, page := range buildCtx.Pages {
			select {
			case <-ctx.Done():
				collect(renderOutcome{
					diagnostic: RenderDiagnostic{
						PageID: page.ID,
						Kind:   page.Kind,
						Route:  page.Route,
						Err:    ctx.Err(),
					},
					err: ctx.Err(),
				})
				return result, ctx.Err()
			default:
				collect(s.renderPage(ctx, siteMeta, themeCtx, buildCtx, page, manifest, baseDir))
			}
		}
	} else {
		if err := s.renderConcurrently(ctx, siteMeta, themeCtx, buildCtx, workerCount, manifest, baseDir, collect); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if opts.DryRun {
		result.Rendered = rendered
		result.Duration = time.Since(start)
		if len(errorsSlice) > 0 {
			result.Errors = append(result.Errors, errorsSlice...)
			return result, errors.Join(errorsSlice...)
		}
		return result, nil
	}

	writer := newArtifactWriter(s.deps.Storage)
	if err := s.persistPages(ctx, writer, rendered, baseDir); err != nil {
		errorsSlice = append(errorsSlice, err)
	}
	// persistPages fills Output and Checksum in place.
	result.Rendered = rendered

	if s.cfg.Theming.Enabled && s.cfg.Theming.CopyAssets {
		assetSummary, err := s.copyAssets(ctx, writer, themeSelection, manifest, baseDir)
		if err != nil {
			errorsSlice = append(errorsSlice, err)
		} else {
			result.AssetsBuilt += assetSummary.Built
			result.AssetsSkipped += assetSummary.Skipped
		}
	}

	if s.cfg.GenerateSitemap {
		sitemapPages := s.mergeRenderedForSitemap(buildCtx, rendered, manifest)
		if err := s.writeSitemap(ctx, writer, siteMeta, buildCtx, sitemapPages); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if s.cfg.GenerateJSON {
		if err := s.writeExport(ctx, writer, buildCtx, baseDir); err != nil {
			errorsSlice = append(errorsSlice, err)
		} else {
			result.ExportWritten = true
		}
	}

	if manifest != nil && len(errorsSlice) == 0 {
		manifest.GeneratedAt = buildCtx.GeneratedAt
		for _, page := range rendered {
			if strings.TrimSpace(page.Checksum) == "" {
				continue
			}
			manifest.setPage(manifestPage{
				PageID:       page.PageID.String(),
				Kind:         string(page.Kind),
				Route:        page.Route,
				Output:       page.Output,
				Template:     page.Template,
				Hash:         page.Metadata.Hash,
				Checksum:     page.Checksum,
				LastModified: page.Metadata.LastModified,
				RenderedAt:   buildCtx.GeneratedAt,
			})
		}
		if err := s.persistManifest(ctx, writer, manifest); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	result.Duration = time.Since(start)
	if s.deps.Logger != nil {
		s.deps.Logger.Info("site build finished",
			"pages_built", result.PagesBuilt,
			"pages_skipped", result.PagesSkipped,
			"assets_built", result.AssetsBuilt,
			"errors", len(errorsSlice),
			"duration", result.Duration.String(),
		)
	}
	if len(errorsSlice) > 0 {
		result.Errors = append(result.Errors, errorsSlice...)
		return result, errors.Join(errorsSlice...)
	}
	return result, nil
}

func (s *service) Clean(ctx context.Context) error {
	if s.deps.Storage == nil {
		return nil
	}
	target := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	if target == "" {
		return nil
	}
	_, err := s.deps.Storage.Exec(ctx, storageOpRemove, target)
	if err != nil {
		return fmt.Errorf("generator: clean output: %w", err)
	}
	return nil
}

func (s *service) renderConcurrently(
	ctx context.Context,
	siteMeta SiteMetadata,
	themeCtx ThemeContext,
	buildCtx *BuildContext,
	workers int,
	manifest *buildManifest,
	baseDir string,
	collect func(renderOutcome),
) error {
	grouped := groupPages(buildCtx.Pages)
	if len(grouped) == 0 {
		return nil
	}

	jobs := make(chan []*PageData)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				for _, page := range batch {
					select {
					case <-ctx.Done():
						collect(renderOutcome{
							diagnostic: RenderDiagnostic{
								PageID: page.ID,
								Kind:   page.Kind,
								Route:  page.Route,
								Err:    ctx.Err(),
							},
							err: ctx.Err(),
						})
						return
					default:
						collect(s.renderPage(ctx, siteMeta, themeCtx, buildCtx, page, manifest, baseDir))
					}
				}
			}
		}()
	}

	for _, batch := range grouped {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- batch:
		}
	}
	close(jobs)
	wg.Wait()
	return nil
}

func (s *service) renderPage(
	ctx context.Context,
	siteMeta SiteMetadata,
	themeCtx ThemeContext,
	buildCtx *BuildContext,
	data *PageData,
	manifest *buildManifest,
	baseDir string,
) renderOutcome {
	outcome := renderOutcome{
		diagnostic: RenderDiagnostic{
			PageID: data.ID,
			Kind:   data.Kind,
			Route:  data.Route,
		},
	}

	select {
	case <-ctx.Done():
		outcome.err = ctx.Err()
		outcome.diagnostic.Err = ctx.Err()
		return outcome
	default:
	}

	templateName := themeCtx.Template(data.Template, data.Template)
	outcome.diagnostic.Template = templateName

	if s.cfg.Incremental && manifest != nil {
		destRel := buildOutputPath(data.Route)
		expectedOutput := joinOutputPath(baseDir, destRel)
		if manifest.shouldSkipPage(data.ID, data.Kind, data.Metadata.Hash, expectedOutput) {
			outcome.skipped = true
			outcome.diagnostic.Skipped = true
			return outcome
		}
	}

	templateCtx := TemplateContext{
		Site: siteMeta,
		Page: PageRenderingContext{
			Kind:        data.Kind,
			Title:       data.Title,
			Route:       data.Route,
			Category:    data.Category,
			Annotation:  data.Annotation,
			Annotations: data.Annotations,
			Metadata:    data.Metadata,
		},
		Build: BuildMetadata{
			GeneratedAt: buildCtx.GeneratedAt,
			Options:     buildCtx.Options,
		},
		Theme:   themeCtx,
		Helpers: newTemplateHelpers(siteMeta.BaseURL),
	}

	start := time.Now()
	rendered, err := s.deps.Renderer.RenderTemplate(templateName, templateCtx)
	duration := time.Since(start)
	outcome.diagnostic.Duration = duration
	if err != nil {
		wrapped := fmt.Errorf("generator: render template %q for %s %s: %w", templateName, data.Kind, data.Route, err)
		outcome.err = wrapped
		outcome.diagnostic.Err = wrapped
		return outcome
	}

	outcome.page = RenderedPage{
		PageID:   data.ID,
		Kind:     data.Kind,
		Route:    data.Route,
		Template: templateName,
		HTML:     rendered,
		Metadata: data.Metadata,
		Duration: duration,
	}
	return outcome
}

func (s *service) persistPages(
	ctx context.Context,
	writer artifactWriter,
	pages []RenderedPage,
	baseDir string,
) error {
	if len(pages) == 0 {
		return nil
	}
	dirCache := map[string]struct{}{}
	if baseDir != "" {
		dirCache[baseDir] = struct{}{}
		if err := writer.EnsureDir(ctx, baseDir); err != nil {
			return err
		}
	}
	for i := range pages {
		destRel := buildOutputPath(pages[i].Route)
		fullPath := joinOutputPath(baseDir, destRel)
		if err := ensureDir(ctx, writer, dirCache, path.Dir(fullPath)); err != nil {
			return err
		}
		checksum := computeHashFromString(pages[i].HTML)
		pages[i].Output = fullPath
		pages[i].Checksum = checksum

		metadata := map[string]string{
			"page_id":  pages[i].PageID.String(),
			"kind":     string(pages[i].Kind),
			"route":    pages[i].Route,
			"template": pages[i].Template,
		}
		if s.cfg.Incremental {
			metadata["incremental"] = "true"
		}
		req := writeFileRequest{
			Path:        fullPath,
			Content:     strings.NewReader(pages[i].HTML),
			Size:        int64(len(pages[i].HTML)),
			Category:    categoryPage,
			ContentType: "text/html; charset=utf-8",
			Checksum:    checksum,
			Metadata:    metadata,
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

type assetCopySummary struct {
	Built   int
	Skipped int
}

func (s *service) copyAssets(
	ctx context.Context,
	writer artifactWriter,
	selection *gotheme.Selection,
	manifest *buildManifest,
	baseDir string,
) (assetCopySummary, error) {
	summary := assetCopySummary{}
	assets := collectThemeAssets(selection)
	if len(assets) == 0 {
		return summary, nil
	}
	dirCache := map[string]struct{}{}
	if baseDir != "" {
		dirCache[baseDir] = struct{}{}
		if err := writer.EnsureDir(ctx, baseDir); err != nil {
			return summary, err
		}
	}
	themeName := ""
	if selection != nil {
		themeName = selection.Theme
	}
	for _, asset := range assets {
		reader, err := s.themes.Open(asset)
		if err != nil {
			return summary, err
		}
		data, err := io.ReadAll(reader)
		_ = reader.Close()
		if err != nil {
			return summary, err
		}
		destRel := path.Join("assets", asset)
		fullPath := joinOutputPath(baseDir, destRel)
		checksum := computeHash(data)
		if manifest != nil && s.cfg.Incremental {
			if manifest.shouldSkipAsset(themeName, asset, checksum, fullPath) {
				summary.Skipped++
				continue
			}
		}
		if err := ensureDir(ctx, writer, dirCache, path.Dir(fullPath)); err != nil {
			return summary, err
		}
		req := writeFileRequest{
			Path:        fullPath,
			Content:     bytes.NewReader(data),
			Size:        int64(len(data)),
			Category:    categoryAsset,
			ContentType: detectAssetContentType(destRel),
			Checksum:    checksum,
			Metadata: map[string]string{
				"theme": themeName,
				"asset": asset,
			},
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return summary, err
		}
		summary.Built++
		if manifest != nil {
			manifest.setAsset(manifestAsset{
				Key:      manifest.assetKey(themeName, asset),
				Theme:    themeName,
				Source:   asset,
				Output:   fullPath,
				Checksum: checksum,
				Size:     int64(len(data)),
				CopiedAt: s.now(),
			})
		}
	}
	return summary, nil
}

func (s *service) mergeRenderedForSitemap(
	buildCtx *BuildContext,
	rendered []RenderedPage,
	manifest *buildManifest,
) []RenderedPage {
	if buildCtx == nil || manifest == nil {
		return append([]RenderedPage(nil), rendered...)
	}

	renderedByKey := make(map[string]RenderedPage, len(rendered))
	for _, page := range rendered {
		renderedByKey[manifest.pageKey(page.PageID, page.Kind)] = page
	}

	sitemap := make([]RenderedPage, 0, len(buildCtx.Pages))
	for _, data := range buildCtx.Pages {
		key := manifest.pageKey(data.ID, data.Kind)
		if page, ok := renderedByKey[key]; ok {
			sitemap = append(sitemap, page)
			continue
		}
		if entry, ok := manifest.lookupPage(data.ID, data.Kind); ok {
			sitemap = append(sitemap, RenderedPage{
				PageID:   data.ID,
				Kind:     data.Kind,
				Route:    entry.Route,
				Output:   entry.Output,
				Template: entry.Template,
				Metadata: DependencyMetadata{
					Hash:         entry.Hash,
					LastModified: entry.LastModified,
				},
				Checksum: entry.Checksum,
			})
			continue
		}
		sitemap = append(sitemap, RenderedPage{
			PageID:   data.ID,
			Kind:     data.Kind,
			Route:    data.Route,
			Template: data.Template,
			Metadata: data.Metadata,
		})
	}
	return sitemap
}

func (s *service) loadManifest(ctx context.Context) (*buildManifest, error) {
	if s.deps.Storage == nil {
		return newBuildManifest(), nil
	}
	target := s.manifestTargetPath()
	if strings.TrimSpace(target) == "" {
		return newBuildManifest(), nil
	}
	rows, err := s.deps.Storage.Query(ctx, storageOpRead, target)
	if err != nil {
		return nil, fmt.Errorf("generator: read manifest: %w", err)
	}
	if rows == nil {
		return newBuildManifest(), nil
	}
	defer rows.Close()
	if !rows.Next() {
		return newBuildManifest(), nil
	}
	var data []byte
	if err := rows.Scan(&data); err != nil {
		return nil, fmt.Errorf("generator: scan manifest: %w", err)
	}
	return parseManifest(data)
}

func (s *service) manifestTargetPath() string {
	base := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	return joinOutputPath(base, manifestFileName)
}

func (s *service) persistManifest(ctx context.Context, writer artifactWriter, manifest *buildManifest) error {
	if manifest == nil {
		return nil
	}
	data, err := manifest.marshal()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	target := s.manifestTargetPath()
	if strings.TrimSpace(target) == "" {
		return nil
	}
	dirCache := map[string]struct{}{}
	if err := ensureDir(ctx, writer, dirCache, path.Dir(target)); err != nil {
		return err
	}
	metadata := map[string]string{
		"version": strconv.Itoa(manifest.Version),
	}
	if !manifest.GeneratedAt.IsZero() {
		metadata["generated_at"] = manifest.GeneratedAt.UTC().Format(time.RFC3339)
	}
	req := writeFileRequest{
		Path:        target,
		Content:     bytes.NewReader(data),
		Size:        int64(len(data)),
		Category:    categoryManifest,
		ContentType: "application/json",
		Checksum:    computeHash(data),
		Metadata:    metadata,
	}
	return writer.WriteFile(ctx, req)
}

func (s *service) writeSitemap(
	ctx context.Context,
	writer artifactWriter,
	siteMeta SiteMetadata,
	buildCtx *BuildContext,
	pages []RenderedPage,
) error {
	content := buildSitemap(siteMeta.BaseURL, pages, buildCtx.GeneratedAt)
	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	fullPath := joinOutputPath(baseDir, "sitemap.xml")
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(fullPath)); err != nil {
		return err
	}
	checksum := computeHashFromString(content)
	req := writeFileRequest{
		Path:        fullPath,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categorySitemap,
		ContentType: "application/xml",
		Checksum:    checksum,
		Metadata: map[string]string{
			"generated_at": buildCtx.GeneratedAt.UTC().Format(time.RFC3339),
		},
	}
	return writer.WriteFile(ctx, req)
}

func (s *service) writeExport(
	ctx context.Context,
	writer artifactWriter,
	buildCtx *BuildContext,
	baseDir string,
) error {
	data, err := buildExport(buildCtx)
	if err != nil {
		return err
	}
	fullPath := joinOutputPath(baseDir, exportFileName)
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(fullPath)); err != nil {
		return err
	}
	req := writeFileRequest{
		Path:        fullPath,
		Content:     bytes.NewReader(data),
		Size:        int64(len(data)),
		Category:    categoryExport,
		ContentType: "application/json",
		Checksum:    computeHash(data),
		Metadata: map[string]string{
			"generated_at": buildCtx.GeneratedAt.UTC().Format(time.RFC3339),
		},
	}
	return writer.WriteFile(ctx, req)
}

func (s *service) effectiveWorkerCount(groupCount int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if groupCount > 0 && workers > groupCount {
		return groupCount
	}
	return workers
}

func groupPages(pages []*PageData) [][]*PageData {
	byKey := map[string][]*PageData{}
	order := []string{}
	for _, page := range pages {
		if page == nil {
			continue
		}
		if _, ok := byKey[page.GroupKey]; !ok {
			order = append(order, page.GroupKey)
		}
		byKey[page.GroupKey] = append(byKey[page.GroupKey], page)
	}
	grouped := make([][]*PageData, 0, len(order))
	for _, key := range order {
		grouped = append(grouped, byKey[key])
	}
	return grouped
}

func ensureDir(ctx context.Context, writer artifactWriter, cache map[string]struct{}, dir string) error {
	dir = strings.Trim(dir, " ")
	if dir == "" || dir == "." {
		return nil
	}
	if cache != nil {
		if _, ok := cache[dir]; ok {
			return nil
		}
		cache[dir] = struct{}{}
	}
	return writer.EnsureDir(ctx, dir)
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func computeHashFromString(content string) string {
	return computeHash([]byte(content))
}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}
