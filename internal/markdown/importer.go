package markdown

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-annocat/catalog"
	"github.com/goliatone/go-annocat/pkg/interfaces"
)

var (
	ErrCatalogServiceRequired = errors.New("markdown importer: catalog service is required")
	ErrEntryNameMissing       = errors.New("markdown importer: entry name is required")
	ErrCategoryMissing        = errors.New("markdown importer: category could not be determined")
)

// MergePolicy controls how disagreeing duplicate drafts are resolved.
type MergePolicy struct {
	// PreferLongestDescription keeps the longest description when drafts
	// disagree; when false the first draft in source order wins.
	PreferLongestDescription bool
	// KeepConflicts records losing descriptions on the entry for lint.
	KeepConflicts bool
}

func defaultMergePolicy() MergePolicy {
	return MergePolicy{
		PreferLongestDescription: true,
		KeepConflicts:            true,
	}
}

// ImporterConfig encapsulates dependencies required to persist extracted entries.
type ImporterConfig struct {
	Catalog interfaces.CatalogService
	Logger  interfaces.Logger
	// Merge overrides the default resolution policy when set.
	Merge *MergePolicy
}

// Importer folds extracted entry drafts into catalog records. Drafts for the
// same annotation repeat across overlapping note files; the importer merges
// each group into one record before touching the catalog.
type Importer struct {
	catalog interfaces.CatalogService
	logger  interfaces.Logger
	merge   MergePolicy
}

// NewImporter builds an Importer from the supplied configuration.
func NewImporter(cfg ImporterConfig) *Importer {
	merge := defaultMergePolicy()
	if cfg.Merge != nil {
		merge = *cfg.Merge
	}
	return &Importer{
		catalog: cfg.Catalog,
		logger:  cfg.Logger,
		merge:   merge,
	}
}

// ImportExtractions merges drafts from the supplied extractions and upserts
// them into the catalog.
func (i *Importer) ImportExtractions(ctx context.Context, extractions []*interfaces.Extraction, opts interfaces.ImportOptions) (*interfaces.ImportResult, error) {
	if i.catalog == nil {
		return nil, ErrCatalogServiceRequired
	}

	merged, err := mergeDrafts(collectDrafts(extractions), opts.DefaultCategory, i.merge)
	if err != nil {
		return nil, err
	}

	acc := newImportAccumulator()
	for _, entry := range merged {
		if err := i.applyEntry(ctx, entry, opts, true, acc); err != nil {
			acc.addError(err)
		}
	}
	return acc.result(), firstError(acc.errors)
}

// SyncExtractions imports all extracted entries and optionally deletes
// catalog records no longer present in any note.
func (i *Importer) SyncExtractions(ctx context.Context, extractions []*interfaces.Extraction, opts interfaces.SyncOptions) (*interfaces.SyncResult, error) {
	if i.catalog == nil {
		return nil, ErrCatalogServiceRequired
	}

	merged, err := mergeDrafts(collectDrafts(extractions), opts.DefaultCategory, i.merge)
	if err != nil {
		return nil, err
	}

	acc := newSyncAccumulator()
	seen := make(map[string]struct{}, len(merged))

	for _, entry := range merged {
		seen[entry.key] = struct{}{}

		res := newImportAccumulator()
		if err := i.applyEntry(ctx, entry, opts.ImportOptions, opts.UpdateExisting, res); err != nil {
			res.addError(err)
		}
		acc.merge(res.result())
	}

	if opts.DeleteOrphaned {
		if err := i.deleteOrphaned(ctx, seen, opts, acc); err != nil {
			acc.addError(err)
		}
	}

	return acc.result(), firstError(acc.errors)
}

func (i *Importer) applyEntry(ctx context.Context, entry mergedEntry, opts interfaces.ImportOptions, updateExisting bool, acc *importAccumulator) error {
	existing, err := i.catalog.GetByName(ctx, entry.category, entry.name)
	if err != nil && !catalog.IsNotFound(err) {
		return fmt.Errorf("markdown importer: catalog lookup %s: %w", entry.key, err)
	}

	if existing != nil && (!updateExisting || !entryChanged(existing, entry)) {
		acc.skip(entry.key)
		return nil
	}

	if opts.DryRun {
		acc.skip(entry.key)
		return nil
	}

	record, upsertErr := i.catalog.UpsertEntry(ctx, interfaces.EntryUpsertRequest{
		Name:            entry.name,
		Category:        entry.category,
		Description:     entry.description,
		Example:         entry.example,
		ExampleLanguage: entry.exampleLanguage,
		Sources:         entry.sources,
		Conflicts:       entry.conflicts,
	})
	if upsertErr != nil {
		return fmt.Errorf("markdown importer: upsert %s: %w", entry.key, upsertErr)
	}

	if i.logger != nil {
		i.logger.Debug("entry imported", "entry", entry.key, "record", record.ID.String())
	}

	if existing == nil {
		acc.created(entry.key)
	} else {
		acc.updated(entry.key)
	}
	return nil
}

func (i *Importer) deleteOrphaned(ctx context.Context, seen map[string]struct{}, opts interfaces.SyncOptions, acc *syncAccumulator) error {
	records, err := i.catalog.List(ctx)
	if err != nil {
		return fmt.Errorf("markdown importer: list catalog: %w", err)
	}

	for _, record := range records {
		key := entryKey(record.Category, record.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		if opts.DryRun {
			acc.deleted++
			continue
		}
		if err := i.catalog.Delete(ctx, interfaces.EntryDeleteRequest{
			ID:     record.ID,
			Reason: "orphaned during sync",
		}); err != nil {
			return fmt.Errorf("markdown importer: delete %s: %w", key, err)
		}
		acc.deleted++
	}

	return nil
}

// mergedEntry is the deduplicated view of one annotation across all notes.
type mergedEntry struct {
	key             string
	name            string
	category        string
	description     string
	example         string
	exampleLanguage string
	sources         []interfaces.SourceRef
	conflicts       []string
}

func collectDrafts(extractions []*interfaces.Extraction) []draftWithNote {
	var drafts []draftWithNote
	for _, extraction := range extractions {
		if extraction == nil {
			continue
		}
		for _, draft := range extraction.Entries {
			drafts = append(drafts, draftWithNote{draft: draft, note: extraction.Note})
		}
	}
	return drafts
}

type draftWithNote struct {
	draft interfaces.EntryDraft
	note  *interfaces.Note
}

// mergeDrafts groups drafts by category and normalized name, then resolves
// each group into one entry. Resolution is deterministic: drafts are sorted
// by source path and line first, then the policy picks the winning
// description (longest, or first in source order) and the first non-empty
// example. Losing descriptions become conflicts when the policy keeps them.
func mergeDrafts(drafts []draftWithNote, defaultCategory string, policy MergePolicy) ([]mergedEntry, error) {
	slices.SortStableFunc(drafts, func(a, b draftWithNote) int {
		if c := strings.Compare(a.draft.SourcePath, b.draft.SourcePath); c != 0 {
			return c
		}
		return a.draft.Line - b.draft.Line
	})

	groups := map[string][]draftWithNote{}
	order := []string{}

	for _, item := range drafts {
		name := strings.TrimSpace(item.draft.Name)
		if name == "" {
			return nil, ErrEntryNameMissing
		}
		category := strings.TrimSpace(item.draft.Category)
		if category == "" {
			category = strings.TrimSpace(defaultCategory)
		}
		if category == "" {
			return nil, fmt.Errorf("%w: %s (%s)", ErrCategoryMissing, name, item.draft.SourcePath)
		}

		item.draft.Category = category
		key := entryKey(category, name)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], item)
	}

	slices.Sort(order)

	merged := make([]mergedEntry, 0, len(order))
	for _, key := range order {
		merged = append(merged, resolveGroup(key, groups[key], policy))
	}
	return merged, nil
}

func resolveGroup(key string, group []draftWithNote, policy MergePolicy) mergedEntry {
	entry := mergedEntry{
		key:      key,
		name:     group[0].draft.Name,
		category: group[0].draft.Category,
	}

	for _, item := range group {
		draft := item.draft

		description := strings.TrimSpace(draft.Description)
		if description != "" {
			switch {
			case entry.description == "":
				entry.description = description
			case description != entry.description:
				if policy.PreferLongestDescription && len(description) > len(entry.description) {
					if policy.KeepConflicts {
						entry.conflicts = appendConflict(entry.conflicts, entry.description)
					}
					entry.description = description
				} else if policy.KeepConflicts {
					entry.conflicts = appendConflict(entry.conflicts, description)
				}
			}
		}

		if entry.example == "" && strings.TrimSpace(draft.Example) != "" {
			entry.example = draft.Example
			entry.exampleLanguage = draft.ExampleLanguage
		}

		entry.sources = append(entry.sources, interfaces.SourceRef{
			Path:     draft.SourcePath,
			Checksum: noteChecksum(item.note),
			Line:     draft.Line,
			Complete: description != "" && strings.TrimSpace(draft.Example) != "",
			SeenAt:   noteModified(item.note),
		})
	}

	return entry
}

func appendConflict(conflicts []string, candidate string) []string {
	if slices.Contains(conflicts, candidate) {
		return conflicts
	}
	return append(conflicts, candidate)
}

func entryKey(category, name string) string {
	categorySlug, err := catalog.NormalizeSlug(category)
	if err != nil || categorySlug == "" {
		categorySlug = strings.ToLower(strings.TrimSpace(category))
	}
	nameSlug, err := catalog.NormalizeSlug(name)
	if err != nil || nameSlug == "" {
		nameSlug = strings.ToLower(catalog.StripSigil(name))
	}
	return categorySlug + "/" + nameSlug
}

func entryChanged(existing *interfaces.AnnotationRecord, entry mergedEntry) bool {
	if existing.Description != entry.description {
		return true
	}
	if existing.Example != entry.example {
		return true
	}
	if existing.ExampleLanguage != entry.exampleLanguage {
		return true
	}
	if len(existing.Sources) != len(entry.sources) {
		return true
	}
	existingSums := make(map[string]string, len(existing.Sources))
	for _, src := range existing.Sources {
		existingSums[src.Path] = src.Checksum
	}
	for _, src := range entry.sources {
		if existingSums[src.Path] != src.Checksum {
			return true
		}
	}
	return false
}

func noteChecksum(note *interfaces.Note) string {
	if note == nil || len(note.Checksum) == 0 {
		return ""
	}
	return hex.EncodeToString(note.Checksum)
}

func noteModified(note *interfaces.Note) time.Time {
	if note == nil {
		return time.Time{}
	}
	return note.LastModified
}

type importAccumulator struct {
	createdKeys []string
	updatedKeys []string
	skippedKeys []string
	errors      []error
}

func newImportAccumulator() *importAccumulator {
	return &importAccumulator{
		createdKeys: []string{},
		updatedKeys: []string{},
		skippedKeys: []string{},
		errors:      []error{},
	}
}

func (a *importAccumulator) created(key string) { a.createdKeys = append(a.createdKeys, key) }
func (a *importAccumulator) updated(key string) { a.updatedKeys = append(a.updatedKeys, key) }
func (a *importAccumulator) skip(key string)    { a.skippedKeys = append(a.skippedKeys, key) }

func (a *importAccumulator) addError(err error) {
	if err != nil {
		a.errors = append(a.errors, err)
	}
}

func (a *importAccumulator) result() *interfaces.ImportResult {
	return &interfaces.ImportResult{
		Created: a.createdKeys,
		Updated: a.updatedKeys,
		Skipped: a.skippedKeys,
		Errors:  a.errors,
	}
}

type syncAccumulator struct {
	created int
	updated int
	deleted int
	skipped int
	errors  []error
}

func newSyncAccumulator() *syncAccumulator {
	return &syncAccumulator{
		errors: []error{},
	}
}

func (s *syncAccumulator) merge(res *interfaces.ImportResult) {
	if res == nil {
		return
	}
	s.created += len(res.Created)
	s.updated += len(res.Updated)
	s.skipped += len(res.Skipped)
	s.errors = append(s.errors, res.Errors...)
}

func (s *syncAccumulator) addError(err error) {
	if err != nil {
		s.errors = append(s.errors, err)
	}
}

func (s *syncAccumulator) result() *interfaces.SyncResult {
	return &interfaces.SyncResult{
		Created: s.created,
		Updated: s.updated,
		Deleted: s.deleted,
		Skipped: s.skipped,
		Errors:  s.errors,
	}
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
