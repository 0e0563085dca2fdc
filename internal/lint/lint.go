// Package lint runs documentation-quality checks over extracted notes and
// the merged catalog: indexed names without entries, entries missing prose or
// examples, fences without a declared language, conflicting duplicate
// descriptions, and categories left empty.
package lint

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-annocat/catalog"
	"github.com/goliatone/go-annocat/pkg/interfaces"
)

// Rule identifiers. Configuration disables rules by these names.
const (
	RuleIndexMissingEntry       = "index-missing-entry"
	RuleEntryMissingDescription = "entry-missing-description"
	RuleEntryMissingExample     = "entry-missing-example"
	RuleFenceMissingLanguage    = "fence-missing-language"
	RuleDuplicateConflict       = "duplicate-conflict"
	RuleEmptyCategory           = "empty-category"
)

// Severity levels for reported issues.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

var ruleSeverity = map[string]string{
	RuleIndexMissingEntry:       SeverityError,
	RuleEntryMissingDescription: SeverityWarning,
	RuleEntryMissingExample:     SeverityWarning,
	RuleFenceMissingLanguage:    SeverityWarning,
	RuleDuplicateConflict:       SeverityError,
	RuleEmptyCategory:           SeverityWarning,
}

// Issue is a single lint finding, addressed by file and line when known.
type Issue struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Path     string `json:"path,omitempty"`
	Line     int    `json:"line,omitempty"`
}

// Report aggregates findings from one lint run.
type Report struct {
	Issues   []Issue `json:"issues"`
	Errors   int     `json:"errors"`
	Warnings int     `json:"warnings"`
}

// Failed reports whether the run should fail given the configured threshold.
// Threshold "error" fails on errors only, "warning" fails on any finding,
// and "none" never fails.
func (r *Report) Failed(failOn string) bool {
	switch strings.ToLower(strings.TrimSpace(failOn)) {
	case "none":
		return false
	case "warning", "warn":
		return r.Errors > 0 || r.Warnings > 0
	default:
		return r.Errors > 0
	}
}

// Config controls which rules run.
type Config struct {
	DisabledRules []string
}

// Runner evaluates lint rules against extractions and the merged catalog.
type Runner struct {
	catalog  interfaces.CatalogService
	logger   interfaces.Logger
	disabled map[string]struct{}
}

// New constructs a lint runner. The catalog may be nil; catalog-backed rules
// are then skipped.
func New(cat interfaces.CatalogService, logger interfaces.Logger, cfg Config) *Runner {
	disabled := make(map[string]struct{}, len(cfg.DisabledRules))
	for _, rule := range cfg.DisabledRules {
		rule = strings.ToLower(strings.TrimSpace(rule))
		if rule != "" {
			disabled[rule] = struct{}{}
		}
	}
	return &Runner{
		catalog:  cat,
		logger:   logger,
		disabled: disabled,
	}
}

// Run evaluates every enabled rule and returns the aggregated report. Issues
// are sorted by path, line, then rule so output stays stable across runs.
func (r *Runner) Run(ctx context.Context, extractions []*interfaces.Extraction) (*Report, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	report := &Report{Issues: []Issue{}}

	r.checkIndexReferences(extractions, report)
	r.checkFences(extractions, report)

	if r.catalog != nil {
		if err := r.checkCatalog(ctx, report); err != nil {
			return nil, err
		}
	}

	sort.Slice(report.Issues, func(i, j int) bool {
		a, b := report.Issues[i], report.Issues[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})

	for _, issue := range report.Issues {
		switch issue.Severity {
		case SeverityError:
			report.Errors++
		default:
			report.Warnings++
		}
	}

	if r.logger != nil {
		r.logger.Info("lint completed", "issues", len(report.Issues), "errors", report.Errors, "warnings", report.Warnings)
	}
	return report, nil
}

func (r *Runner) enabled(rule string) bool {
	_, off := r.disabled[rule]
	return !off
}

func (r *Runner) add(report *Report, rule, message, path string, line int) {
	report.Issues = append(report.Issues, Issue{
		Rule:     rule,
		Severity: ruleSeverity[rule],
		Message:  message,
		Path:     path,
		Line:     line,
	})
}

// checkIndexReferences flags names listed in index sections that have no
// explanatory entry anywhere in the corpus. Matching is by normalized name
// across categories, since index sections rarely scope names precisely.
func (r *Runner) checkIndexReferences(extractions []*interfaces.Extraction, report *Report) {
	if !r.enabled(RuleIndexMissingEntry) {
		return
	}

	known := map[string]struct{}{}
	for _, extraction := range extractions {
		if extraction == nil {
			continue
		}
		for _, entry := range extraction.Entries {
			known[nameKey(entry.Name)] = struct{}{}
		}
	}

	for _, extraction := range extractions {
		if extraction == nil {
			continue
		}
		for _, ref := range extraction.References {
			if _, ok := known[nameKey(ref.Name)]; ok {
				continue
			}
			r.add(report, RuleIndexMissingEntry,
				fmt.Sprintf("%s is listed in an index but has no entry", ref.Name),
				ref.SourcePath, ref.Line)
		}
	}
}

func (r *Runner) checkFences(extractions []*interfaces.Extraction, report *Report) {
	if !r.enabled(RuleFenceMissingLanguage) {
		return
	}

	for _, extraction := range extractions {
		if extraction == nil {
			continue
		}
		for _, fence := range extraction.Fences {
			if fence.Language != "" {
				continue
			}
			r.add(report, RuleFenceMissingLanguage,
				"fenced code block has no language", fence.SourcePath, fence.Line)
		}
	}
}

func (r *Runner) checkCatalog(ctx context.Context, report *Report) error {
	records, err := r.catalog.List(ctx)
	if err != nil {
		return fmt.Errorf("lint: list catalog: %w", err)
	}

	for _, record := range records {
		path, line := primarySource(record)

		if r.enabled(RuleEntryMissingDescription) && record.Description == "" {
			r.add(report, RuleEntryMissingDescription,
				fmt.Sprintf("%s has no description", record.Name), path, line)
		}
		if r.enabled(RuleEntryMissingExample) && record.Example == "" {
			r.add(report, RuleEntryMissingExample,
				fmt.Sprintf("%s has no example", record.Name), path, line)
		}
		if r.enabled(RuleDuplicateConflict) && len(record.Conflicts) > 0 {
			r.add(report, RuleDuplicateConflict,
				fmt.Sprintf("%s has %d conflicting descriptions across files", record.Name, len(record.Conflicts)+1),
				path, line)
		}
	}

	if r.enabled(RuleEmptyCategory) {
		categories, err := r.catalog.Categories(ctx)
		if err != nil {
			return fmt.Errorf("lint: list categories: %w", err)
		}
		for _, category := range categories {
			if category.Count > 0 {
				continue
			}
			r.add(report, RuleEmptyCategory,
				fmt.Sprintf("category %q has no annotations", category.Name), "", 0)
		}
	}

	return nil
}

func primarySource(record *interfaces.AnnotationRecord) (string, int) {
	if len(record.Sources) == 0 {
		return "", 0
	}
	src := record.Sources[0]
	return src.Path, src.Line
}

func nameKey(name string) string {
	key, err := catalog.NormalizeSlug(name)
	if err != nil || key == "" {
		return strings.ToLower(catalog.StripSigil(name))
	}
	return key
}
