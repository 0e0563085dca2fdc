package interfaces

import (
	"context"
	"time"
)

// MarkdownParser defines how raw Markdown bytes are converted into HTML.
// Implementations should be reusable across invocations so callers can share
// a single instance without additional locking.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
}

// NoteService exposes the high-level file workflows for annotation notes:
// loading Markdown documents, extracting annotation entries from them, and
// synchronising the extracted entries with the catalog.
type NoteService interface {
	Load(ctx context.Context, path string, opts LoadOptions) (*Note, error)
	LoadDirectory(ctx context.Context, dir string, opts LoadOptions) ([]*Note, error)
	Render(ctx context.Context, markdown []byte, opts ParseOptions) ([]byte, error)
	Extract(ctx context.Context, note *Note) (*Extraction, error)
	Import(ctx context.Context, note *Note, opts ImportOptions) (*ImportResult, error)
	ImportDirectory(ctx context.Context, dir string, opts ImportOptions) (*ImportResult, error)
	Sync(ctx context.Context, dir string, opts SyncOptions) (*SyncResult, error)
}

// Note represents a Markdown note file with parsed metadata and content. The
// struct is shared between the interfaces package and internal implementations
// so consumers can depend on a stable contract.
type Note struct {
	FilePath     string
	FrontMatter  FrontMatter
	Body         []byte
	BodyHTML     []byte
	LastModified time.Time
	// Checksum stores a digest of the original file content (SHA-256) so sync
	// workflows can detect changes without re-importing unchanged files.
	Checksum []byte
}

// FrontMatter models metadata extracted from annotation note files. Fields
// stay flexible through the Custom map for domain-specific values.
type FrontMatter struct {
	Title     string         `yaml:"title" json:"title"`
	Slug      string         `yaml:"slug" json:"slug"`
	Summary   string         `yaml:"summary" json:"summary"`
	Category  string         `yaml:"category" json:"category"`
	Framework string         `yaml:"framework" json:"framework"`
	Tags      []string       `yaml:"tags" json:"tags"`
	Author    string         `yaml:"author" json:"author"`
	Date      time.Time      `yaml:"date" json:"date"`
	Draft     bool           `yaml:"draft" json:"draft"`
	Custom    map[string]any `yaml:",inline" json:"custom"`
	Raw       map[string]any `yaml:"-" json:"raw"`
}

// LoadOptions fine-tunes how notes are discovered and parsed from disk.
type LoadOptions struct {
	Recursive *bool
	Pattern   string
	Parser    ParseOptions
}

// EntryDraft is a single annotation entry extracted from a note before
// normalization. Drafts repeat across overlapping note files; the importer
// merges them into catalog records.
type EntryDraft struct {
	// Name is the annotation identifier as written in the note (e.g. "@Autowired").
	Name string
	// Category is the heading-derived grouping active when the entry appeared.
	Category string
	// Description collects the explanatory paragraphs following the entry heading.
	Description string
	// Example holds the fenced code snippet demonstrating usage, when present.
	Example string
	// ExampleLanguage is the language declared on the example fence.
	ExampleLanguage string
	// SourcePath references the note file the draft came from.
	SourcePath string
	// Line is the 1-based line of the entry heading, when known.
	Line int
}

// IndexReference records an annotation name listed without an explanatory
// body (e.g. in an index or summary section). Lint uses these to detect
// indexed names missing a corresponding entry.
type IndexReference struct {
	Name       string
	Category   string
	SourcePath string
	Line       int
}

// Extraction is the structured result of walking a note document.
type Extraction struct {
	Note       *Note
	Entries    []EntryDraft
	References []IndexReference
	// Fences counts fenced code blocks seen, including ones without a
	// declared language, so lint can report fence-missing-language.
	Fences []FenceInfo
}

// FenceInfo describes a fenced code block encountered during extraction.
type FenceInfo struct {
	Language   string
	SourcePath string
	Line       int
}

// ImportOptions controls how extracted entries are folded into the catalog.
type ImportOptions struct {
	// DefaultCategory applies when a note yields entries with no heading-derived category.
	DefaultCategory string
	DryRun          bool
}

// SyncOptions extends ImportOptions to handle update/delete semantics for
// repeated synchronisation runs.
type SyncOptions struct {
	ImportOptions
	DeleteOrphaned bool
	UpdateExisting bool
}

// ImportResult reports the outcome of an import run, exposing counts and keys
// so callers can audit behaviour or trigger follow-up actions.
type ImportResult struct {
	Created []string
	Updated []string
	Skipped []string
	Errors  []error
}

// SyncResult summarises a bulk sync run across many note files.
type SyncResult struct {
	Created int
	Updated int
	Deleted int
	Skipped int
	Errors  []error
}
