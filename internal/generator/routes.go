package generator

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"
)

// RouteOptions configures the go-urlkit backed site route table.
type RouteOptions struct {
	Manager         *urlkit.RouteManager
	Group           string
	CategoryRoute   string
	AnnotationRoute string
	// CategoryParam and AnnotationParam name the placeholders inside the
	// configured routes. Defaults are "category" and "slug".
	CategoryParam   string
	AnnotationParam string
}

// siteRoutes resolves site-relative routes for generated pages. When no
// RouteManager is configured it falls back to a conventional path layout.
type siteRoutes struct {
	manager         *urlkit.RouteManager
	group           string
	categoryRoute   string
	annotationRoute string
	categoryParam   string
	annotationParam string

	groupCache map[string]*urlkit.Group
	mu         sync.RWMutex
}

func newSiteRoutes(opts RouteOptions) *siteRoutes {
	if opts.CategoryRoute == "" {
		opts.CategoryRoute = "category"
	}
	if opts.AnnotationRoute == "" {
		opts.AnnotationRoute = "annotation"
	}
	if opts.CategoryParam == "" {
		opts.CategoryParam = "category"
	}
	if opts.AnnotationParam == "" {
		opts.AnnotationParam = "slug"
	}
	return &siteRoutes{
		manager:         opts.Manager,
		group:           strings.TrimSpace(opts.Group),
		categoryRoute:   opts.CategoryRoute,
		annotationRoute: opts.AnnotationRoute,
		categoryParam:   opts.CategoryParam,
		annotationParam: opts.AnnotationParam,
		groupCache:      make(map[string]*urlkit.Group),
	}
}

// Index returns the site root route.
func (r *siteRoutes) Index() string {
	return "/"
}

// Category resolves the route for a category page.
func (r *siteRoutes) Category(slug string) string {
	if built, err := r.build(r.categoryRoute, map[string]any{r.categoryParam: slug}); err == nil && built != "" {
		return built
	}
	return "/" + path.Join("categories", slug)
}

// Annotation resolves the route for an annotation page.
func (r *siteRoutes) Annotation(categorySlug, slug string) string {
	params := map[string]any{
		r.categoryParam:   categorySlug,
		r.annotationParam: slug,
	}
	if built, err := r.build(r.annotationRoute, params); err == nil && built != "" {
		return built
	}
	return "/" + path.Join("annotations", categorySlug, slug)
}

func (r *siteRoutes) build(route string, params map[string]any) (string, error) {
	if r == nil || r.manager == nil || r.group == "" {
		return "", fmt.Errorf("generator: route manager not configured")
	}
	group, err := r.groupForPath(r.group)
	if err != nil || group == nil {
		return "", err
	}
	builder, err := r.safeBuilder(group, route)
	if err != nil || builder == nil {
		if err == nil {
			err = fmt.Errorf("generator: route %q not found in group %q", route, r.group)
		}
		return "", err
	}
	for key, val := range params {
		builder.WithParam(key, val)
	}
	built, err := builder.Build()
	if err != nil {
		return "", err
	}
	return routePath(built), nil
}

// routePath strips scheme and host so manifest keys and output paths stay
// relative regardless of the group BaseURL.
func routePath(built string) string {
	parsed, err := url.Parse(strings.TrimSpace(built))
	if err != nil {
		return strings.TrimSpace(built)
	}
	p := parsed.Path
	if p == "" {
		p = "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func (r *siteRoutes) groupForPath(groupPath string) (*urlkit.Group, error) {
	r.mu.RLock()
	group, ok := r.groupCache[groupPath]
	r.mu.RUnlock()
	if ok {
		return group, nil
	}

	parts := strings.Split(groupPath, ".")
	if len(parts) == 0 {
		return nil, fmt.Errorf("generator: invalid route group path %q", groupPath)
	}

	root, err := lookupGroup(r.manager, parts[0])
	if err != nil {
		return nil, err
	}
	current := root
	for _, part := range parts[1:] {
		current, err = lookupChildGroup(current, part)
		if err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	r.groupCache[groupPath] = current
	r.mu.Unlock()
	return current, nil
}

func (r *siteRoutes) safeBuilder(group *urlkit.Group, route string) (*urlkit.Builder, error) {
	if group == nil {
		return nil, fmt.Errorf("generator: urlkit group is nil")
	}
	var (
		builder *urlkit.Builder
		err     error
	)
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("generator: urlkit builder panic: %v", rec)
		}
	}()
	builder = group.Builder(route)
	return builder, err
}

func lookupGroup(manager *urlkit.RouteManager, name string) (*urlkit.Group, error) {
	if manager == nil {
		return nil, fmt.Errorf("generator: route manager not configured")
	}
	var (
		group *urlkit.Group
		err   error
	)
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("generator: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, err
}

func lookupChildGroup(parent *urlkit.Group, name string) (*urlkit.Group, error) {
	if parent == nil {
		return nil, fmt.Errorf("generator: parent group is nil")
	}
	var (
		group *urlkit.Group
		err   error
	)
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("generator: child group %q not found", name)
		}
	}()
	group = parent.Group(name)
	return group, err
}
