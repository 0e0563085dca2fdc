package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-annocat/internal/identity"
	"github.com/goliatone/go-annocat/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	templateIndex      = "index"
	templateCategory   = "category"
	templateAnnotation = "annotation"
)

// BuildContext aggregates the catalog snapshot a build renders from.
type BuildContext struct {
	GeneratedAt time.Time
	Options     BuildOptions
	Stats       *interfaces.CatalogStats
	Categories  []*CategorySummary
	Pages       []*PageData
	Records     []*interfaces.AnnotationRecord
}

// PageData describes one output page and the data required to render it.
type PageData struct {
	ID          uuid.UUID
	Kind        PageKind
	Route       string
	Template    string
	Title       string
	Category    *CategoryView
	Annotation  *AnnotationView
	Annotations []*AnnotationView
	Metadata    DependencyMetadata
	// GroupKey batches pages for the worker pool; annotation and category
	// pages share their category slug, the index page stands alone.
	GroupKey string
}

func (s *service) loadContext(ctx context.Context, opts BuildOptions) (*BuildContext, error) {
	if s.deps.Catalog == nil {
		return nil, errCatalogRequired
	}

	records, err := s.deps.Catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("generator: list catalog: %w", err)
	}
	categories, err := s.deps.Catalog.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("generator: list categories: %w", err)
	}
	stats, err := s.deps.Catalog.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("generator: catalog stats: %w", err)
	}

	filter := categoryFilter(opts.Categories)

	buildCtx := &BuildContext{
		GeneratedAt: s.now().UTC(),
		Options:     opts,
		Stats:       stats,
		Records:     records,
	}

	summaries := make([]*CategorySummary, 0, len(categories))
	for _, cat := range categories {
		if cat == nil {
			continue
		}
		summaries = append(summaries, &CategorySummary{
			Name:  cat.Name,
			Slug:  cat.Slug,
			Count: cat.Count,
			URL:   s.routes.Category(cat.Slug),
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Slug < summaries[j].Slug })
	buildCtx.Categories = summaries

	views := make(map[string][]*AnnotationView, len(categories))
	for _, record := range records {
		if record == nil {
			continue
		}
		if filter != nil {
			if _, ok := filter[record.CategorySlug]; !ok {
				continue
			}
		}
		view, err := s.annotationView(record)
		if err != nil {
			return nil, err
		}
		views[record.CategorySlug] = append(views[record.CategorySlug], view)
	}

	pages := make([]*PageData, 0, len(records)+len(categories)+1)
	indexAnnotations := make([]*AnnotationView, 0, len(records))
	for _, cat := range categories {
		if cat == nil {
			continue
		}
		if filter != nil {
			if _, ok := filter[cat.Slug]; !ok {
				continue
			}
		}
		members := views[cat.Slug]
		sort.Slice(members, func(i, j int) bool { return members[i].Slug < members[j].Slug })
		indexAnnotations = append(indexAnnotations, members...)

		catView := &CategoryView{
			Record: cat,
			Name:   cat.Name,
			Slug:   cat.Slug,
			Count:  cat.Count,
			URL:    s.routes.Category(cat.Slug),
		}
		pages = append(pages, &PageData{
			ID:          cat.ID,
			Kind:        KindCategory,
			Route:       catView.URL,
			Template:    templateCategory,
			Title:       cat.Name,
			Category:    catView,
			Annotations: members,
			Metadata:    categoryMetadata(cat, members),
			GroupKey:    cat.Slug,
		})

		for _, member := range members {
			pages = append(pages, &PageData{
				ID:         member.Record.ID,
				Kind:       KindAnnotation,
				Route:      member.URL,
				Template:   templateAnnotation,
				Title:      member.Name,
				Category:   catView,
				Annotation: member,
				Metadata:   annotationMetadata(member.Record),
				GroupKey:   cat.Slug,
			})
		}
	}

	if filter == nil {
		pages = append(pages, &PageData{
			ID:          identity.UUID("go-annocat:page:index"),
			Kind:        KindIndex,
			Route:       s.routes.Index(),
			Template:    templateIndex,
			Title:       strings.TrimSpace(s.cfg.SiteTitle),
			Annotations: indexAnnotations,
			Metadata:    indexMetadata(buildCtx.Stats, pages),
			GroupKey:    "",
		})
	}

	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Route < pages[j].Route })
	buildCtx.Pages = pages
	return buildCtx, nil
}

func (s *service) annotationView(record *interfaces.AnnotationRecord) (*AnnotationView, error) {
	view := &AnnotationView{
		Record:          record,
		Name:            record.Name,
		Slug:            record.Slug,
		Category:        record.Category,
		CategorySlug:    record.CategorySlug,
		Description:     record.Description,
		Example:         record.Example,
		ExampleLanguage: record.ExampleLanguage,
		Conflicts:       append([]string(nil), record.Conflicts...),
		Sources:         append([]interfaces.SourceRef(nil), record.Sources...),
		URL:             s.routes.Annotation(record.CategorySlug, record.Slug),
	}
	if s.deps.Markdown != nil && strings.TrimSpace(record.Description) != "" {
		html, err := s.deps.Markdown.Parse([]byte(record.Description))
		if err != nil {
			return nil, fmt.Errorf("generator: render description for %s: %w", record.Name, err)
		}
		view.DescriptionHTML = string(html)
	}
	return view, nil
}

func categoryFilter(slugs []string) map[string]struct{} {
	cleaned := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		slug = strings.ToLower(strings.TrimSpace(slug))
		if slug == "" {
			continue
		}
		cleaned[slug] = struct{}{}
	}
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}

func annotationMetadata(record *interfaces.AnnotationRecord) DependencyMetadata {
	hasher := sha256.New()
	hasher.Write([]byte(record.CategorySlug))
	hasher.Write([]byte{0})
	hasher.Write([]byte(record.Slug))
	hasher.Write([]byte{0})
	hasher.Write([]byte(record.Description))
	hasher.Write([]byte{0})
	hasher.Write([]byte(record.Example))
	hasher.Write([]byte{0})
	hasher.Write([]byte(record.ExampleLanguage))
	for _, conflict := range record.Conflicts {
		hasher.Write([]byte{0})
		hasher.Write([]byte(conflict))
	}
	for _, source := range record.Sources {
		hasher.Write([]byte{0})
		hasher.Write([]byte(source.Path))
		hasher.Write([]byte{0})
		hasher.Write([]byte(source.Checksum))
	}
	return DependencyMetadata{
		Hash:         hex.EncodeToString(hasher.Sum(nil)),
		LastModified: record.UpdatedAt,
	}
}

func categoryMetadata(cat *interfaces.CategoryRecord, members []*AnnotationView) DependencyMetadata {
	hasher := sha256.New()
	hasher.Write([]byte(cat.Slug))
	hasher.Write([]byte{0})
	hasher.Write([]byte(strconv.Itoa(cat.Count)))
	meta := DependencyMetadata{}
	for _, member := range members {
		memberMeta := annotationMetadata(member.Record)
		hasher.Write([]byte{0})
		hasher.Write([]byte(memberMeta.Hash))
		if memberMeta.LastModified.After(meta.LastModified) {
			meta.LastModified = memberMeta.LastModified
		}
	}
	meta.Hash = hex.EncodeToString(hasher.Sum(nil))
	return meta
}

func indexMetadata(stats *interfaces.CatalogStats, pages []*PageData) DependencyMetadata {
	hasher := sha256.New()
	if stats != nil {
		hasher.Write([]byte(fmt.Sprintf("%d:%d:%d:%d:%d",
			stats.Categories, stats.Annotations, stats.MissingDescriptions, stats.MissingExamples, stats.Conflicted)))
	}
	meta := DependencyMetadata{}
	for _, page := range pages {
		hasher.Write([]byte{0})
		hasher.Write([]byte(page.Metadata.Hash))
		if page.Metadata.LastModified.After(meta.LastModified) {
			meta.LastModified = page.Metadata.LastModified
		}
	}
	meta.Hash = hex.EncodeToString(hasher.Sum(nil))
	return meta
}
