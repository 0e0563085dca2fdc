package generator

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/goliatone/go-annocat/internal/validation"
	"github.com/goliatone/go-annocat/pkg/interfaces"
)

const exportFileName = "catalog.json"

type exportDocument struct {
	GeneratedAt string           `json:"generated_at"`
	Stats       *exportStats     `json:"stats,omitempty"`
	Categories  []exportCategory `json:"categories"`
}

type exportStats struct {
	Categories          int `json:"categories"`
	Annotations         int `json:"annotations"`
	MissingDescriptions int `json:"missing_descriptions"`
	MissingExamples     int `json:"missing_examples"`
	Conflicted          int `json:"conflicted"`
}

type exportCategory struct {
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Count       int                `json:"count"`
	Annotations []exportAnnotation `json:"annotations"`
}

type exportAnnotation struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Slug            string         `json:"slug"`
	Description     string         `json:"description"`
	Example         string         `json:"example"`
	ExampleLanguage string         `json:"example_language"`
	Conflicts       []string       `json:"conflicts"`
	Sources         []exportSource `json:"sources"`
}

type exportSource struct {
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
	Line     int    `json:"line,omitempty"`
	Complete bool   `json:"complete"`
	SeenAt   string `json:"seen_at"`
}

// buildExport flattens the catalog snapshot into the machine-readable JSON
// document shipped next to the rendered site. The output is validated against
// the embedded schema before it is written.
func buildExport(buildCtx *BuildContext) ([]byte, error) {
	doc := exportDocument{
		GeneratedAt: buildCtx.GeneratedAt.UTC().Format(time.RFC3339),
		Categories:  []exportCategory{},
	}
	if buildCtx.Stats != nil {
		doc.Stats = &exportStats{
			Categories:          buildCtx.Stats.Categories,
			Annotations:         buildCtx.Stats.Annotations,
			MissingDescriptions: buildCtx.Stats.MissingDescriptions,
			MissingExamples:     buildCtx.Stats.MissingExamples,
			Conflicted:          buildCtx.Stats.Conflicted,
		}
	}

	grouped := map[string][]*interfaces.AnnotationRecord{}
	for _, record := range buildCtx.Records {
		if record == nil {
			continue
		}
		grouped[record.CategorySlug] = append(grouped[record.CategorySlug], record)
	}

	for _, summary := range buildCtx.Categories {
		records := grouped[summary.Slug]
		sort.Slice(records, func(i, j int) bool { return records[i].Slug < records[j].Slug })
		category := exportCategory{
			Name:        summary.Name,
			Slug:        summary.Slug,
			Count:       len(records),
			Annotations: make([]exportAnnotation, 0, len(records)),
		}
		for _, record := range records {
			category.Annotations = append(category.Annotations, exportRecord(record))
		}
		doc.Categories = append(doc.Categories, category)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("generator: marshal export: %w", err)
	}
	if err := validation.ValidateExportBytes(data); err != nil {
		return nil, fmt.Errorf("generator: export failed validation: %w", err)
	}
	return data, nil
}

func exportRecord(record *interfaces.AnnotationRecord) exportAnnotation {
	out := exportAnnotation{
		ID:              record.ID.String(),
		Name:            record.Name,
		Slug:            record.Slug,
		Description:     record.Description,
		Example:         record.Example,
		ExampleLanguage: record.ExampleLanguage,
		Conflicts:       []string{},
		Sources:         []exportSource{},
	}
	out.Conflicts = append(out.Conflicts, record.Conflicts...)
	for _, source := range record.Sources {
		out.Sources = append(out.Sources, exportSource{
			Path:     source.Path,
			Checksum: source.Checksum,
			Line:     source.Line,
			Complete: source.Complete,
			SeenAt:   source.SeenAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}
